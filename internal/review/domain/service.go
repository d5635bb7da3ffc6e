package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/providerpulse/providerpulse/pkg/db/pagination"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("review not found")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrContentRequired = errors.New("review content is required")
)

type ListFilter struct {
	ProviderID snowflake.ID
	MinRating  int
	MaxRating  int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, review *Review) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Review, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Page) ([]Review, int64, error)
	Update(ctx context.Context, db *gorm.DB, review *Review) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	// AverageRatings returns the mean rating for each provider id that has
	// at least one review. Providers without reviews are absent from the map.
	AverageRatings(ctx context.Context, db *gorm.DB, providerIDs []snowflake.ID) (map[snowflake.ID]float64, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Review, error)
	List(ctx context.Context, filter ListFilter, page pagination.Page) ([]Review, pagination.PageInfo, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRequest) (*Review, error)
	Delete(ctx context.Context, id snowflake.ID) error
	// AverageRating is nil when the provider has no reviews.
	AverageRating(ctx context.Context, providerID snowflake.ID) (*float64, error)
	AverageRatings(ctx context.Context, providerIDs []snowflake.ID) (map[snowflake.ID]float64, error)
}

type CreateRequest struct {
	ProviderID   string   `json:"provider_id"`
	Rating       int      `json:"rating"`
	Title        *string  `json:"title"`
	Content      string   `json:"content"`
	Pros         []string `json:"pros"`
	Cons         []string `json:"cons"`
	ReviewerName *string  `json:"reviewer_name"`
	ReviewerRole *string  `json:"reviewer_role"`
}

type UpdateRequest struct {
	Rating       *int     `json:"rating"`
	Title        *string  `json:"title"`
	Content      *string  `json:"content"`
	Pros         []string `json:"pros"`
	Cons         []string `json:"cons"`
	ReviewerName *string  `json:"reviewer_name"`
	ReviewerRole *string  `json:"reviewer_role"`
}
