package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/providerpulse/providerpulse/internal/probe/domain"
	"github.com/providerpulse/providerpulse/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, probe *domain.AvailabilityProbe) error {
	return db.WithContext(ctx).Create(probe).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, since time.Time, page pagination.Page) ([]domain.AvailabilityProbe, int64, error) {
	tx := db.WithContext(ctx).Model(&domain.AvailabilityProbe{}).
		Where("checked_at >= ?", since)

	if filter.ProviderID != 0 {
		tx = tx.Where("provider_id = ?", filter.ProviderID)
	}
	if filter.ProviderModelID != 0 {
		tx = tx.Where("provider_model_id = ?", filter.ProviderModelID)
	}
	if filter.ProbeType != "" {
		tx = tx.Where("probe_type = ?", filter.ProbeType)
	}
	if filter.Success != nil {
		tx = tx.Where("is_success = ?", *filter.Success)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.AvailabilityProbe
	if err := pagination.Apply(tx, page).
		Order("checked_at DESC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Aggregate(ctx context.Context, db *gorm.DB, providerIDs []snowflake.ID, since time.Time) ([]domain.UptimeRow, error) {
	tx := db.WithContext(ctx).Model(&domain.AvailabilityProbe{}).
		Select(`provider_id,
			COUNT(*) AS total,
			SUM(CASE WHEN is_success THEN 1 ELSE 0 END) AS success,
			AVG(response_time_ms) AS avg_response_time_ms`).
		Where("checked_at >= ?", since).
		Group("provider_id")

	if len(providerIDs) > 0 {
		tx = tx.Where("provider_id IN ?", providerIDs)
	}

	var rows []domain.UptimeRow
	if err := tx.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) Latency(ctx context.Context, db *gorm.DB, since time.Time) (*domain.LatencyStats, error) {
	var stats domain.LatencyStats
	err := db.WithContext(ctx).Model(&domain.AvailabilityProbe{}).
		Select(`COUNT(response_time_ms) AS count,
			AVG(response_time_ms) AS avg_ms,
			MIN(response_time_ms) AS min_ms,
			MAX(response_time_ms) AS max_ms`).
		Where("checked_at >= ?", since).
		Where("response_time_ms IS NOT NULL").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
