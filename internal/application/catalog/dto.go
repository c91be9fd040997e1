package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kbridge/backend/internal/domain/listing"
)

// CreateListingRequest represents a request to publish a listing. The seller
// quotes in KRW only; the CNY leg is mirrored from the live exchange rate at
// publish time and fixed from then on.
type CreateListingRequest struct {
	Title        string          `json:"title" binding:"required,min=1,max=200"`
	UnitPriceKRW decimal.Decimal `json:"unit_price_krw" binding:"required"`
	Quantity     int             `json:"quantity" binding:"required,min=1"`
	UnitWeightKg decimal.Decimal `json:"unit_weight_kg"`
	Direction    string          `json:"direction" binding:"required,oneof=KR_TO_CN CN_TO_KR"`
}

// UpdatePriceRequest re-prices a listing from a new KRW amount
type UpdatePriceRequest struct {
	UnitPriceKRW decimal.Decimal `json:"unit_price_krw" binding:"required"`
}

// RestockRequest adds stock to a listing
type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// ListingFilter represents filter options for listing queries
type ListingFilter struct {
	Status   *listing.Status `form:"status"`
	Page     int             `form:"page" binding:"min=0"`
	PageSize int             `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string          `form:"order_by"`
	OrderDir string          `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ListingResponse represents a listing in API responses
type ListingResponse struct {
	ID                     uuid.UUID       `json:"id"`
	SellerID               uuid.UUID       `json:"seller_id"`
	Title                  string          `json:"title"`
	UnitPriceKRW           decimal.Decimal `json:"unit_price_krw"`
	UnitPriceCNY           decimal.Decimal `json:"unit_price_cny"`
	Quantity               int             `json:"quantity"`
	UnitWeightKg           decimal.Decimal `json:"unit_weight_kg"`
	Direction              string          `json:"direction"`
	SellerBusinessVerified bool            `json:"seller_business_verified"`
	Status                 string          `json:"status"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// ToListingResponse converts a domain listing to its API representation
func ToListingResponse(l *listing.Listing) *ListingResponse {
	return &ListingResponse{
		ID:                     l.ID,
		SellerID:               l.SellerID,
		Title:                  l.Title,
		UnitPriceKRW:           l.UnitPrice.AmountKRW(),
		UnitPriceCNY:           l.UnitPrice.AmountCNY(),
		Quantity:               l.Quantity,
		UnitWeightKg:           l.UnitWeightKg,
		Direction:              l.Direction.String(),
		SellerBusinessVerified: l.SellerBusinessVerified,
		Status:                 string(l.Status),
		CreatedAt:              l.CreatedAt,
		UpdatedAt:              l.UpdatedAt,
	}
}

// ToListingResponses converts a slice of domain listings
func ToListingResponses(listings []listing.Listing) []*ListingResponse {
	responses := make([]*ListingResponse, len(listings))
	for i := range listings {
		responses[i] = ToListingResponse(&listings[i])
	}
	return responses
}
