package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	providerdomain "github.com/providerpulse/providerpulse/internal/provider/domain"
	"github.com/providerpulse/providerpulse/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() providerdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *providerdomain.Provider) error {
	return db.WithContext(ctx).Create(p).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*providerdomain.Provider, error) {
	var p providerdomain.Provider
	err := db.WithContext(ctx).Where("id = ?", id).Take(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) FindByIDOrSlug(ctx context.Context, db *gorm.DB, idOrSlug string) (*providerdomain.Provider, error) {
	var p providerdomain.Provider
	query := db.WithContext(ctx)
	if id, err := snowflake.ParseString(idOrSlug); err == nil {
		query = query.Where("id = ? OR slug = ?", id, idOrSlug)
	} else {
		query = query.Where("slug = ?", idOrSlug)
	}
	if err := query.Take(&p).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter providerdomain.ListFilter, page pagination.Page) ([]providerdomain.Provider, int64, error) {
	query := db.WithContext(ctx).Model(&providerdomain.Provider{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ?", pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []providerdomain.Provider
	err := pagination.Apply(query.Order("added_at DESC"), page).Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) ListByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]providerdomain.Provider, error) {
	var items []providerdomain.Provider
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListIDsByStatus(ctx context.Context, db *gorm.DB, status providerdomain.Status, limit int) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).
		Model(&providerdomain.Provider{}).
		Where("status = ?", status).
		Order("added_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, p *providerdomain.Provider) error {
	return db.WithContext(ctx).Save(p).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&providerdomain.Provider{}).Error
}
