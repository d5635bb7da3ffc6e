package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	pricingdomain "github.com/providerpulse/providerpulse/internal/pricing/domain"
	"github.com/providerpulse/providerpulse/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() pricingdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, pm *pricingdomain.ProviderModel) error {
	return db.WithContext(ctx).Create(pm).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*pricingdomain.ProviderModel, error) {
	var pm pricingdomain.ProviderModel
	err := db.WithContext(ctx).Where("id = ?", id).Take(&pm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &pm, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, providerID, modelID snowflake.ID, page pagination.Page) ([]pricingdomain.ProviderModel, int64, error) {
	query := db.WithContext(ctx).Model(&pricingdomain.ProviderModel{})
	if providerID != 0 {
		query = query.Where("provider_id = ?", providerID)
	}
	if modelID != 0 {
		query = query.Where("model_id = ?", modelID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []pricingdomain.ProviderModel
	err := pagination.Apply(query.Order("updated_at DESC"), page).Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, pm *pricingdomain.ProviderModel) error {
	return db.WithContext(ctx).Save(pm).Error
}

func (r *repo) LatestByProvider(ctx context.Context, db *gorm.DB, providerIDs []snowflake.ID) (map[snowflake.ID]pricingdomain.ProviderModel, error) {
	if len(providerIDs) == 0 {
		return map[snowflake.ID]pricingdomain.ProviderModel{}, nil
	}

	var items []pricingdomain.ProviderModel
	err := db.WithContext(ctx).
		Where("provider_id IN ?", providerIDs).
		Order("updated_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	// Rows are newest first; keep the first seen per provider.
	out := make(map[snowflake.ID]pricingdomain.ProviderModel)
	for _, item := range items {
		if _, ok := out[item.ProviderID]; !ok {
			out[item.ProviderID] = item
		}
	}
	return out, nil
}

type historyRepo struct{}

func ProvideHistory() pricingdomain.HistoryRepository {
	return &historyRepo{}
}

func (r *historyRepo) Append(ctx context.Context, db *gorm.DB, entry *pricingdomain.PriceHistory) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *historyRepo) List(ctx context.Context, db *gorm.DB, filter pricingdomain.HistoryFilter, since time.Time, page pagination.Page) ([]pricingdomain.PriceHistory, int64, error) {
	query := db.WithContext(ctx).Model(&pricingdomain.PriceHistory{}).
		Where("recorded_at >= ?", since)
	if filter.ProviderID != 0 {
		query = query.Where("provider_id = ?", filter.ProviderID)
	}
	if filter.ProviderModelID != 0 {
		query = query.Where("provider_model_id = ?", filter.ProviderModelID)
	}
	if filter.ModelID != 0 {
		query = query.Where(
			"provider_model_id IN (SELECT id FROM provider_models WHERE model_id = ?)",
			filter.ModelID,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []pricingdomain.PriceHistory
	err := pagination.Apply(query.Order("recorded_at DESC"), page).Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *historyRepo) CountByID(ctx context.Context, db *gorm.DB, providerModelID snowflake.ID) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&pricingdomain.PriceHistory{}).
		Where("provider_model_id = ?", providerModelID).
		Count(&total).Error
	return total, err
}
