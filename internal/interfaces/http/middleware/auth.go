package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kbridge/backend/internal/interfaces/http/dto"
)

// AuthUserIDKey is the gin context key carrying the authenticated user ID
const AuthUserIDKey = "auth_user_id"

// AuthConfig holds JWT authentication middleware settings. Identity is
// issued elsewhere; this middleware only verifies the signature and extracts
// the actor ID from the subject claim.
type AuthConfig struct {
	Secret    string
	Issuer    string
	SkipPaths []string
}

// JWTAuth returns a middleware that authenticates requests by bearer token
func JWTAuth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "Missing bearer token")
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		parserOpts := []jwt.ParserOption{
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		}
		if cfg.Issuer != "" {
			parserOpts = append(parserOpts, jwt.WithIssuer(cfg.Issuer))
		}

		claims := jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(cfg.Secret), nil
		}, parserOpts...)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			abortUnauthorized(c, "Token subject is not a user ID")
			return
		}

		c.Set(AuthUserIDKey, userID)
		c.Next()
	}
}

// GetAuthUserID extracts the authenticated user ID set by JWTAuth
func GetAuthUserID(c *gin.Context) (uuid.UUID, error) {
	value, exists := c.Get(AuthUserIDKey)
	if !exists {
		return uuid.Nil, fmt.Errorf("no authenticated user in context")
	}
	userID, ok := value.(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("unexpected user ID type in context")
	}
	return userID, nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}
