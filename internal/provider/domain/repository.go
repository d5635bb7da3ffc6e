package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/providerpulse/providerpulse/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Search string
	Status Status
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, provider *Provider) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Provider, error)
	FindByIDOrSlug(ctx context.Context, db *gorm.DB, idOrSlug string) (*Provider, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Page) ([]Provider, int64, error)
	ListByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]Provider, error)
	ListIDsByStatus(ctx context.Context, db *gorm.DB, status Status, limit int) ([]snowflake.ID, error)
	Update(ctx context.Context, db *gorm.DB, provider *Provider) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
