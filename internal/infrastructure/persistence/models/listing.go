package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kbridge/backend/internal/domain/listing"
	"github.com/kbridge/backend/internal/domain/shared/valueobject"
)

// ListingModel is the persistence model for the Listing aggregate root
type ListingModel struct {
	AggregateModel
	SellerID               uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title                  string          `gorm:"type:varchar(200);not null"`
	UnitPriceKRW           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPriceCNY           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity               int             `gorm:"not null;check:quantity >= 0"`
	UnitWeightKg           decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`
	Direction              string          `gorm:"type:varchar(10);not null"`
	SellerBusinessVerified bool            `gorm:"not null;default:false"`
	Status                 string          `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
}

// TableName returns the table name for GORM
func (ListingModel) TableName() string {
	return "listings"
}

// ToDomain converts the persistence model to a domain Listing
func (m *ListingModel) ToDomain() *listing.Listing {
	return &listing.Listing{
		BaseAggregateRoot:      m.ToDomainAggregateRoot(),
		SellerID:               m.SellerID,
		Title:                  m.Title,
		UnitPrice:              valueobject.NewDualMoney(m.UnitPriceKRW, m.UnitPriceCNY),
		Quantity:               m.Quantity,
		UnitWeightKg:           m.UnitWeightKg,
		Direction:              listing.TradeDirection(m.Direction),
		SellerBusinessVerified: m.SellerBusinessVerified,
		Status:                 listing.Status(m.Status),
	}
}

// FromDomain populates the persistence model from a domain Listing
func (m *ListingModel) FromDomain(l *listing.Listing) {
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	m.SellerID = l.SellerID
	m.Title = l.Title
	m.UnitPriceKRW = l.UnitPrice.AmountKRW()
	m.UnitPriceCNY = l.UnitPrice.AmountCNY()
	m.Quantity = l.Quantity
	m.UnitWeightKg = l.UnitWeightKg
	m.Direction = l.Direction.String()
	m.SellerBusinessVerified = l.SellerBusinessVerified
	m.Status = string(l.Status)
}
