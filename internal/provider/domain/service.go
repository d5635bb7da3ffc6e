package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/providerpulse/providerpulse/pkg/db/pagination"
)

var (
	ErrNotFound      = errors.New("provider not found")
	ErrSlugTaken     = errors.New("provider slug already exists")
	ErrInvalidStatus = errors.New("invalid provider status")
	ErrNameRequired  = errors.New("provider name is required")
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Provider, error)
	Get(ctx context.Context, idOrSlug string) (*Provider, error)
	List(ctx context.Context, filter ListFilter, page pagination.Page) ([]Provider, pagination.PageInfo, error)
	ListByIDs(ctx context.Context, ids []snowflake.ID) ([]Provider, error)
	// ActiveIDs returns ids of ACTIVE providers, capped at limit. Used by
	// the sweep to pre-select probe candidates.
	ActiveIDs(ctx context.Context, limit int) ([]snowflake.ID, error)
	Update(ctx context.Context, idOrSlug string, req UpdateRequest) (*Provider, error)
	// Delete removes the provider and cascades to its provider models,
	// price history, probes and reviews.
	Delete(ctx context.Context, idOrSlug string) error
}

type CreateRequest struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Website     string  `json:"website"`
	Description *string `json:"description"`
	Country     *string `json:"country"`
	Status      Status  `json:"status"`
}

type UpdateRequest struct {
	Name        *string `json:"name"`
	Website     *string `json:"website"`
	Description *string `json:"description"`
	Country     *string `json:"country"`
	Status      *Status `json:"status"`
}

// Touch refreshes the UpdatedAt stamp.
func (p *Provider) Touch(now time.Time) {
	p.UpdatedAt = now
}
