package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	reviewdomain "github.com/providerpulse/providerpulse/internal/review/domain"
	"github.com/providerpulse/providerpulse/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() reviewdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, review *reviewdomain.Review) error {
	return db.WithContext(ctx).Create(review).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*reviewdomain.Review, error) {
	var review reviewdomain.Review
	err := db.WithContext(ctx).Where("id = ?", id).Take(&review).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter reviewdomain.ListFilter, page pagination.Page) ([]reviewdomain.Review, int64, error) {
	query := db.WithContext(ctx).Model(&reviewdomain.Review{})
	if filter.ProviderID != 0 {
		query = query.Where("provider_id = ?", filter.ProviderID)
	}
	if filter.MinRating > 0 {
		query = query.Where("rating >= ?", filter.MinRating)
	}
	if filter.MaxRating > 0 {
		query = query.Where("rating <= ?", filter.MaxRating)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []reviewdomain.Review
	err := pagination.Apply(query.Order("created_at DESC"), page).Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, review *reviewdomain.Review) error {
	return db.WithContext(ctx).Save(review).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&reviewdomain.Review{}).Error
}

type ratingRow struct {
	ProviderID snowflake.ID
	AvgRating  float64
}

func (r *repo) AverageRatings(ctx context.Context, db *gorm.DB, providerIDs []snowflake.ID) (map[snowflake.ID]float64, error) {
	if len(providerIDs) == 0 {
		return map[snowflake.ID]float64{}, nil
	}

	var rows []ratingRow
	err := db.WithContext(ctx).Raw(
		`SELECT provider_id, AVG(CAST(rating AS REAL)) AS avg_rating
		 FROM reviews
		 WHERE provider_id IN ?
		 GROUP BY provider_id`,
		providerIDs,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[snowflake.ID]float64, len(rows))
	for _, row := range rows {
		out[row.ProviderID] = row.AvgRating
	}
	return out, nil
}
