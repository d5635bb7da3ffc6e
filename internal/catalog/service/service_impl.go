package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/providerpulse/providerpulse/internal/catalog/domain"
	"github.com/providerpulse/providerpulse/internal/clock"
	"github.com/providerpulse/providerpulse/pkg/db"
	"github.com/providerpulse/providerpulse/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  catalogdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  catalogdomain.Repository
}

func New(p Params) catalogdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req catalogdomain.CreateRequest) (*catalogdomain.Model, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, catalogdomain.ErrNameRequired
	}

	modality := req.Modality
	if len(modality) == 0 {
		modality = []string{"text"}
	}

	now := s.clock.Now()
	entity := &catalogdomain.Model{
		ID:            s.genID.Generate(),
		Name:          name,
		DisplayName:   strings.TrimSpace(req.DisplayName),
		Family:        strings.TrimSpace(req.Family),
		Vendor:        strings.TrimSpace(req.Vendor),
		ContextWindow: req.ContextWindow,
		MaxOutput:     req.MaxOutput,
		Modality:      datatypes.NewJSONSlice(modality),
		Description:   req.Description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if entity.DisplayName == "" {
		entity.DisplayName = name
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, catalogdomain.ErrNameTaken
		}
		return nil, err
	}
	return entity, nil
}

func (s *Service) Get(ctx context.Context, idOrName string) (*catalogdomain.Model, error) {
	entity, err := s.repo.FindByIDOrName(ctx, s.db, strings.TrimSpace(idOrName))
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, catalogdomain.ErrNotFound
	}
	return entity, nil
}

func (s *Service) List(ctx context.Context, filter catalogdomain.ListFilter, page pagination.Page) ([]catalogdomain.Model, pagination.PageInfo, error) {
	items, total, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	return items, pagination.BuildPageInfo(page, total), nil
}

func (s *Service) Update(ctx context.Context, idOrName string, req catalogdomain.UpdateRequest) (*catalogdomain.Model, error) {
	entity, err := s.Get(ctx, idOrName)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		entity.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Family != nil {
		entity.Family = strings.TrimSpace(*req.Family)
	}
	if req.Vendor != nil {
		entity.Vendor = strings.TrimSpace(*req.Vendor)
	}
	if req.ContextWindow != nil {
		entity.ContextWindow = req.ContextWindow
	}
	if req.MaxOutput != nil {
		entity.MaxOutput = req.MaxOutput
	}
	if len(req.Modality) > 0 {
		entity.Modality = datatypes.NewJSONSlice(req.Modality)
	}
	if req.Description != nil {
		entity.Description = req.Description
	}
	if req.Deprecated != nil {
		entity.Deprecated = *req.Deprecated
	}
	entity.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, entity); err != nil {
		return nil, err
	}
	return entity, nil
}
