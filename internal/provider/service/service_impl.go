package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/providerpulse/providerpulse/internal/clock"
	providerdomain "github.com/providerpulse/providerpulse/internal/provider/domain"
	"github.com/providerpulse/providerpulse/pkg/db"
	"github.com/providerpulse/providerpulse/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  providerdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  providerdomain.Repository
}

func New(p Params) providerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("provider.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req providerdomain.CreateRequest) (*providerdomain.Provider, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, providerdomain.ErrNameRequired
	}

	status := req.Status
	if status == "" {
		status = providerdomain.StatusActive
	}
	if !status.Valid() {
		return nil, providerdomain.ErrInvalidStatus
	}

	slugValue := strings.TrimSpace(req.Slug)
	if slugValue == "" {
		slugValue = name
	}
	slugValue = slug.Make(slugValue)

	now := s.clock.Now()
	entity := &providerdomain.Provider{
		ID:          s.genID.Generate(),
		Name:        name,
		Slug:        slugValue,
		Website:     strings.TrimSpace(req.Website),
		Status:      status,
		Description: req.Description,
		Country:     req.Country,
		AddedAt:     now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, providerdomain.ErrSlugTaken
		}
		return nil, err
	}

	s.log.Info("provider created",
		zap.String("provider_id", entity.ID.String()),
		zap.String("slug", entity.Slug),
	)
	return entity, nil
}

func (s *Service) Get(ctx context.Context, idOrSlug string) (*providerdomain.Provider, error) {
	entity, err := s.repo.FindByIDOrSlug(ctx, s.db, strings.TrimSpace(idOrSlug))
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, providerdomain.ErrNotFound
	}
	return entity, nil
}

func (s *Service) List(ctx context.Context, filter providerdomain.ListFilter, page pagination.Page) ([]providerdomain.Provider, pagination.PageInfo, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, pagination.PageInfo{}, providerdomain.ErrInvalidStatus
	}
	items, total, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	return items, pagination.BuildPageInfo(page, total), nil
}

func (s *Service) ListByIDs(ctx context.Context, ids []snowflake.ID) ([]providerdomain.Provider, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.repo.ListByIDs(ctx, s.db, ids)
}

func (s *Service) ActiveIDs(ctx context.Context, limit int) ([]snowflake.ID, error) {
	if limit <= 0 {
		limit = 200
	}
	return s.repo.ListIDsByStatus(ctx, s.db, providerdomain.StatusActive, limit)
}

func (s *Service) Update(ctx context.Context, idOrSlug string, req providerdomain.UpdateRequest) (*providerdomain.Provider, error) {
	entity, err := s.Get(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, providerdomain.ErrNameRequired
		}
		entity.Name = name
	}
	if req.Website != nil {
		entity.Website = strings.TrimSpace(*req.Website)
	}
	if req.Description != nil {
		entity.Description = req.Description
	}
	if req.Country != nil {
		entity.Country = req.Country
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, providerdomain.ErrInvalidStatus
		}
		entity.Status = *req.Status
	}
	entity.Touch(s.clock.Now())

	if err := s.repo.Update(ctx, s.db, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) Delete(ctx context.Context, idOrSlug string) error {
	entity, err := s.Get(ctx, idOrSlug)
	if err != nil {
		return err
	}

	// Owned rows go with the provider. Kept in one transaction so no
	// reader observes a provider without its audit trail or vice versa.
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"price_histories", "provider_models", "availability_probes", "reviews"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE provider_id = ?", entity.ID).Error; err != nil {
				return err
			}
		}
		return s.repo.Delete(ctx, tx, entity.ID)
	})
}
