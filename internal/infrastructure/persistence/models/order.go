package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kbridge/backend/internal/domain/order"
	"github.com/kbridge/backend/internal/domain/shared/valueobject"
)

// OrderModel is the persistence model for the Order aggregate root. Escrow
// is embedded; it has no identity of its own.
type OrderModel struct {
	AggregateModel
	OrderNumber     string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	ListingID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ListingTitle    string          `gorm:"type:varchar(200);not null"`
	BuyerID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellerID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity        int             `gorm:"not null"`
	ItemPriceKRW    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ItemPriceCNY    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ShippingFeeKRW  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ShippingFeeCNY  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PlatformFeeKRW  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PlatformFeeCNY  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalKRW        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCNY        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	FeeRate         decimal.Decimal `gorm:"type:decimal(5,4);not null"`
	ShippingAddress string          `gorm:"type:varchar(500);not null"`
	CarrierID       *string         `gorm:"type:varchar(50)"`
	TrackingNumber  string          `gorm:"type:varchar(100)"`
	Status          string          `gorm:"type:varchar(20);not null;default:'PENDING_PAYMENT';index"`

	EscrowState         string          `gorm:"type:varchar(10);not null;default:'NONE'"`
	GatewayReference    string          `gorm:"type:varchar(100)"`
	EscrowAmountKRW     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	EscrowAmountCNY     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RefundedToBuyerKRW  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RefundedToBuyerCNY  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReleasedToSellerKRW decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReleasedToSellerCNY decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	EscrowSettledAt     *time.Time

	PaidAt          *time.Time `gorm:"index"`
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	ConfirmedAt     *time.Time
	DisputedAt      *time.Time
	CancelledAt     *time.Time
	BuyerRefundRate *int
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	return &order.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		ListingID:         m.ListingID,
		ListingTitle:      m.ListingTitle,
		BuyerID:           m.BuyerID,
		SellerID:          m.SellerID,
		Quantity:          m.Quantity,
		ItemPrice:         valueobject.NewDualMoney(m.ItemPriceKRW, m.ItemPriceCNY),
		ShippingFee:       valueobject.NewDualMoney(m.ShippingFeeKRW, m.ShippingFeeCNY),
		PlatformFee:       valueobject.NewDualMoney(m.PlatformFeeKRW, m.PlatformFeeCNY),
		Total:             valueobject.NewDualMoney(m.TotalKRW, m.TotalCNY),
		FeeRate:           m.FeeRate,
		ShippingAddress:   m.ShippingAddress,
		CarrierID:         m.CarrierID,
		TrackingNumber:    m.TrackingNumber,
		Status:            order.Status(m.Status),
		Escrow: order.Escrow{
			GatewayReference: m.GatewayReference,
			Amount:           valueobject.NewDualMoney(m.EscrowAmountKRW, m.EscrowAmountCNY),
			State:            order.EscrowState(m.EscrowState),
			RefundedToBuyer:  valueobject.NewDualMoney(m.RefundedToBuyerKRW, m.RefundedToBuyerCNY),
			ReleasedToSeller: valueobject.NewDualMoney(m.ReleasedToSellerKRW, m.ReleasedToSellerCNY),
			SettledAt:        m.EscrowSettledAt,
		},
		PaidAt:          m.PaidAt,
		ShippedAt:       m.ShippedAt,
		DeliveredAt:     m.DeliveredAt,
		ConfirmedAt:     m.ConfirmedAt,
		DisputedAt:      m.DisputedAt,
		CancelledAt:     m.CancelledAt,
		BuyerRefundRate: m.BuyerRefundRate,
	}
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.ListingID = o.ListingID
	m.ListingTitle = o.ListingTitle
	m.BuyerID = o.BuyerID
	m.SellerID = o.SellerID
	m.Quantity = o.Quantity
	m.ItemPriceKRW = o.ItemPrice.AmountKRW()
	m.ItemPriceCNY = o.ItemPrice.AmountCNY()
	m.ShippingFeeKRW = o.ShippingFee.AmountKRW()
	m.ShippingFeeCNY = o.ShippingFee.AmountCNY()
	m.PlatformFeeKRW = o.PlatformFee.AmountKRW()
	m.PlatformFeeCNY = o.PlatformFee.AmountCNY()
	m.TotalKRW = o.Total.AmountKRW()
	m.TotalCNY = o.Total.AmountCNY()
	m.FeeRate = o.FeeRate
	m.ShippingAddress = o.ShippingAddress
	m.CarrierID = o.CarrierID
	m.TrackingNumber = o.TrackingNumber
	m.Status = o.Status.String()
	m.EscrowState = o.Escrow.State.String()
	m.GatewayReference = o.Escrow.GatewayReference
	m.EscrowAmountKRW = o.Escrow.Amount.AmountKRW()
	m.EscrowAmountCNY = o.Escrow.Amount.AmountCNY()
	m.RefundedToBuyerKRW = o.Escrow.RefundedToBuyer.AmountKRW()
	m.RefundedToBuyerCNY = o.Escrow.RefundedToBuyer.AmountCNY()
	m.ReleasedToSellerKRW = o.Escrow.ReleasedToSeller.AmountKRW()
	m.ReleasedToSellerCNY = o.Escrow.ReleasedToSeller.AmountCNY()
	m.EscrowSettledAt = o.Escrow.SettledAt
	m.PaidAt = o.PaidAt
	m.ShippedAt = o.ShippedAt
	m.DeliveredAt = o.DeliveredAt
	m.ConfirmedAt = o.ConfirmedAt
	m.DisputedAt = o.DisputedAt
	m.CancelledAt = o.CancelledAt
	m.BuyerRefundRate = o.BuyerRefundRate
}
