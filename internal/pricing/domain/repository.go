package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/providerpulse/providerpulse/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, pm *ProviderModel) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ProviderModel, error)
	List(ctx context.Context, db *gorm.DB, providerID, modelID snowflake.ID, page pagination.Page) ([]ProviderModel, int64, error)
	Update(ctx context.Context, db *gorm.DB, pm *ProviderModel) error
	LatestByProvider(ctx context.Context, db *gorm.DB, providerIDs []snowflake.ID) (map[snowflake.ID]ProviderModel, error)
}

type HistoryRepository interface {
	Append(ctx context.Context, db *gorm.DB, entry *PriceHistory) error
	List(ctx context.Context, db *gorm.DB, filter HistoryFilter, since time.Time, page pagination.Page) ([]PriceHistory, int64, error)
	CountByID(ctx context.Context, db *gorm.DB, providerModelID snowflake.ID) (int64, error)
}
