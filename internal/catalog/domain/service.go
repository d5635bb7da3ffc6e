package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/providerpulse/providerpulse/pkg/db/pagination"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("model not found")
	ErrNameTaken    = errors.New("model name already exists")
	ErrNameRequired = errors.New("model name is required")
)

type ListFilter struct {
	Search string
	Family string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, model *Model) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Model, error)
	FindByIDOrName(ctx context.Context, db *gorm.DB, idOrName string) (*Model, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Page) ([]Model, int64, error)
	Update(ctx context.Context, db *gorm.DB, model *Model) error
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Model, error)
	Get(ctx context.Context, idOrName string) (*Model, error)
	List(ctx context.Context, filter ListFilter, page pagination.Page) ([]Model, pagination.PageInfo, error)
	Update(ctx context.Context, idOrName string, req UpdateRequest) (*Model, error)
}

type CreateRequest struct {
	Name          string   `json:"name"`
	DisplayName   string   `json:"display_name"`
	Family        string   `json:"family"`
	Vendor        string   `json:"vendor"`
	ContextWindow *int     `json:"context_window"`
	MaxOutput     *int     `json:"max_output"`
	Modality      []string `json:"modality"`
	Description   *string  `json:"description"`
}

type UpdateRequest struct {
	DisplayName   *string  `json:"display_name"`
	Family        *string  `json:"family"`
	Vendor        *string  `json:"vendor"`
	ContextWindow *int     `json:"context_window"`
	MaxOutput     *int     `json:"max_output"`
	Modality      []string `json:"modality"`
	Description   *string  `json:"description"`
	Deprecated    *bool    `json:"deprecated"`
}
