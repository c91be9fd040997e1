package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/kbridge/backend/internal/domain/review"
)

// ReviewModel is the persistence model for the Review aggregate root
type ReviewModel struct {
	AggregateModel
	OrderID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_order_reviewer,priority:1"`
	ReviewerID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_order_reviewer,priority:2"`
	RevieweeID uuid.UUID      `gorm:"type:uuid;not null;index"`
	Rating     int            `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment    string         `gorm:"type:varchar(2000)"`
	Images     pq.StringArray `gorm:"type:text[]"`
}

// TableName returns the table name for GORM
func (ReviewModel) TableName() string {
	return "reviews"
}

// ToDomain converts the persistence model to a domain Review
func (m *ReviewModel) ToDomain() *review.Review {
	return &review.Review{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderID:           m.OrderID,
		ReviewerID:        m.ReviewerID,
		RevieweeID:        m.RevieweeID,
		Rating:            m.Rating,
		Comment:           m.Comment,
		Images:            []string(m.Images),
	}
}

// FromDomain populates the persistence model from a domain Review
func (m *ReviewModel) FromDomain(r *review.Review) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.OrderID = r.OrderID
	m.ReviewerID = r.ReviewerID
	m.RevieweeID = r.RevieweeID
	m.Rating = r.Rating
	m.Comment = r.Comment
	m.Images = pq.StringArray(r.Images)
}

// UserRatingModel is the materialized average rating per user, kept in step
// with review writes inside the same transaction
type UserRatingModel struct {
	UserID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	AverageRating decimal.Decimal `gorm:"type:decimal(3,1);not null;default:0"`
	ReviewCount   int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (UserRatingModel) TableName() string {
	return "user_ratings"
}
