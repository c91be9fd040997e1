package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/kbridge/backend/internal/application/catalog"
	disputeapp "github.com/kbridge/backend/internal/application/dispute"
	reviewapp "github.com/kbridge/backend/internal/application/review"
	tradeapp "github.com/kbridge/backend/internal/application/trade"
	"github.com/kbridge/backend/internal/domain/pricing"
	"github.com/kbridge/backend/internal/infrastructure/cache"
	"github.com/kbridge/backend/internal/infrastructure/config"
	"github.com/kbridge/backend/internal/infrastructure/event"
	"github.com/kbridge/backend/internal/infrastructure/logger"
	"github.com/kbridge/backend/internal/infrastructure/notification"
	"github.com/kbridge/backend/internal/infrastructure/payment"
	"github.com/kbridge/backend/internal/infrastructure/persistence"
	"github.com/kbridge/backend/internal/interfaces/http/handler"
	"github.com/kbridge/backend/internal/interfaces/http/middleware"
	"github.com/kbridge/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting kbridge backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	// Repositories
	listingRepo := persistence.NewGormListingRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	disputeRepo := persistence.NewGormDisputeRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// External collaborators
	gateway := payment.NewHTTPGateway(cfg.Payment)
	notifier := notification.NewLogNotifier(log)

	var rates pricing.RateSource = cache.NewHTTPRateSource(cfg.FXCache)
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, FX rates will not be cached", zap.Error(err))
	} else {
		defer func() { _ = redisClient.Close() }()
		rates = cache.NewRedisRateCache(redisClient, rates, cfg.FXCache.TTL, log)
	}

	// Event bus with the audit trail subscriber
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewAuditLogHandler(log))

	// Domain services
	pricingEngine := pricing.NewEngine()
	shippingCalc := pricing.NewShippingCalculator()
	bundleCalc := pricing.NewBundleCalculator()

	// Application services
	listingService := catalogapp.NewListingService(listingRepo, rates)
	orderService := tradeapp.NewOrderService(orderRepo, listingRepo, pricingEngine, shippingCalc, gateway, notifier, txManager)
	orderService.SetEventPublisher(bus)
	checkoutService := tradeapp.NewCheckoutService(listingRepo, shippingCalc, bundleCalc)
	disputeService := disputeapp.NewService(disputeRepo, orderRepo, gateway, notifier, txManager, cfg.Dispute.VoteQuorum)
	disputeService.SetEventPublisher(bus)
	reviewService := reviewapp.NewService(reviewRepo, orderRepo)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(1 << 20))
	engine.Use(middleware.RateLimit(middleware.NewRateLimiter(300, time.Minute)))
	engine.Use(middleware.JWTAuth(middleware.AuthConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		SkipPaths: []string{
			"/api/v1/health",
			"/api/v1/ready",
		},
	}))

	r := router.NewRouter(engine)
	r.Register(handler.NewSystemHandler(db))
	r.Register(handler.NewListingHandler(listingService))
	r.Register(handler.NewOrderHandler(orderService))
	r.Register(handler.NewCheckoutHandler(checkoutService))
	r.Register(handler.NewDisputeHandler(disputeService))
	r.Register(handler.NewReviewHandler(reviewService))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
