package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/providerpulse/providerpulse/internal/catalog/domain"
	"github.com/providerpulse/providerpulse/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() catalogdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, m *catalogdomain.Model) error {
	return db.WithContext(ctx).Create(m).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*catalogdomain.Model, error) {
	var m catalogdomain.Model
	err := db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *repo) FindByIDOrName(ctx context.Context, db *gorm.DB, idOrName string) (*catalogdomain.Model, error) {
	var m catalogdomain.Model
	query := db.WithContext(ctx)
	if id, err := snowflake.ParseString(idOrName); err == nil {
		query = query.Where("id = ? OR name = ?", id, idOrName)
	} else {
		query = query.Where("name = ?", idOrName)
	}
	if err := query.Take(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter catalogdomain.ListFilter, page pagination.Page) ([]catalogdomain.Model, int64, error) {
	query := db.WithContext(ctx).Model(&catalogdomain.Model{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(display_name) LIKE ?", pattern, pattern)
	}
	if filter.Family != "" {
		query = query.Where("family = ?", filter.Family)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []catalogdomain.Model
	err := pagination.Apply(query.Order("updated_at DESC"), page).Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, m *catalogdomain.Model) error {
	return db.WithContext(ctx).Save(m).Error
}
