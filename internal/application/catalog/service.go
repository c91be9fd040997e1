package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kbridge/backend/internal/domain/listing"
	"github.com/kbridge/backend/internal/domain/pricing"
	"github.com/kbridge/backend/internal/domain/shared"
	"github.com/kbridge/backend/internal/domain/shared/valueobject"
)

// ListingService manages the seller's catalog. Prices are quoted in KRW and
// mirrored into CNY through the rate source at write time.
type ListingService struct {
	listingRepo listing.Repository
	rates       pricing.RateSource
}

// NewListingService creates a new ListingService
func NewListingService(listingRepo listing.Repository, rates pricing.RateSource) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		rates:       rates,
	}
}

// Create publishes a new listing for the seller
func (s *ListingService) Create(ctx context.Context, sellerID uuid.UUID, req CreateListingRequest) (*ListingResponse, error) {
	price, err := s.mirror(ctx, req.UnitPriceKRW)
	if err != nil {
		return nil, err
	}

	l, err := listing.NewListing(sellerID, req.Title, price, req.Quantity, req.UnitWeightKg, listing.TradeDirection(req.Direction))
	if err != nil {
		return nil, err
	}

	if err := s.listingRepo.Save(ctx, l); err != nil {
		return nil, err
	}
	return ToListingResponse(l), nil
}

// UpdatePrice re-prices a listing at the current exchange rate. Orders
// already placed keep the price they were quoted.
func (s *ListingService) UpdatePrice(ctx context.Context, sellerID, listingID uuid.UUID, req UpdatePriceRequest) (*ListingResponse, error) {
	l, err := s.ownedListing(ctx, sellerID, listingID)
	if err != nil {
		return nil, err
	}

	price, err := s.mirror(ctx, req.UnitPriceKRW)
	if err != nil {
		return nil, err
	}
	if price.IsZero() || price.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unit price must be positive in both currencies")
	}

	l.UnitPrice = price
	if err := s.listingRepo.Save(ctx, l); err != nil {
		return nil, err
	}
	return ToListingResponse(l), nil
}

// Restock returns stock to a listing, reactivating it when sold out
func (s *ListingService) Restock(ctx context.Context, sellerID, listingID uuid.UUID, req RestockRequest) (*ListingResponse, error) {
	if _, err := s.ownedListing(ctx, sellerID, listingID); err != nil {
		return nil, err
	}

	if err := s.listingRepo.RestoreStock(ctx, listingID, req.Quantity); err != nil {
		return nil, err
	}

	refreshed, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return ToListingResponse(refreshed), nil
}

// Suspend takes a listing off the market
func (s *ListingService) Suspend(ctx context.Context, sellerID, listingID uuid.UUID) (*ListingResponse, error) {
	l, err := s.ownedListing(ctx, sellerID, listingID)
	if err != nil {
		return nil, err
	}

	l.Suspend()
	if err := s.listingRepo.Save(ctx, l); err != nil {
		return nil, err
	}
	return ToListingResponse(l), nil
}

// Activate puts a suspended listing back on the market
func (s *ListingService) Activate(ctx context.Context, sellerID, listingID uuid.UUID) (*ListingResponse, error) {
	l, err := s.ownedListing(ctx, sellerID, listingID)
	if err != nil {
		return nil, err
	}

	if err := l.Activate(); err != nil {
		return nil, err
	}
	if err := s.listingRepo.Save(ctx, l); err != nil {
		return nil, err
	}
	return ToListingResponse(l), nil
}

// GetByID returns a listing
func (s *ListingService) GetByID(ctx context.Context, listingID uuid.UUID) (*ListingResponse, error) {
	l, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return ToListingResponse(l), nil
}

// ListBySeller returns a seller's listings
func (s *ListingService) ListBySeller(ctx context.Context, sellerID uuid.UUID, filter ListingFilter) ([]*ListingResponse, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}

	listings, err := s.listingRepo.FindBySeller(ctx, sellerID, domainFilter)
	if err != nil {
		return nil, err
	}
	return ToListingResponses(listings), nil
}

func (s *ListingService) ownedListing(ctx context.Context, sellerID, listingID uuid.UUID) (*listing.Listing, error) {
	l, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l.SellerID != sellerID {
		return nil, shared.NewDomainError("FORBIDDEN", "Only the seller can manage this listing")
	}
	return l, nil
}

func (s *ListingService) mirror(ctx context.Context, krwAmount decimal.Decimal) (valueobject.DualMoney, error) {
	rate, err := s.rates.KRWPerCNY(ctx)
	if err != nil {
		return valueobject.DualMoney{}, shared.NewDomainError("INTERNAL_ERROR", "Exchange rate unavailable")
	}
	return pricing.MirrorPrice(valueobject.NewMoneyKRW(krwAmount), rate)
}
