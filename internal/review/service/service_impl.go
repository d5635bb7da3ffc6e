package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/providerpulse/providerpulse/internal/clock"
	providerdomain "github.com/providerpulse/providerpulse/internal/provider/domain"
	reviewdomain "github.com/providerpulse/providerpulse/internal/review/domain"
	"github.com/providerpulse/providerpulse/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         reviewdomain.Repository
	ProviderRepo providerdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         reviewdomain.Repository
	providerRepo providerdomain.Repository
}

func New(p Params) reviewdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("review.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		providerRepo: p.ProviderRepo,
	}
}

func (s *Service) Create(ctx context.Context, req reviewdomain.CreateRequest) (*reviewdomain.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, reviewdomain.ErrInvalidRating
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, reviewdomain.ErrContentRequired
	}

	providerID, err := snowflake.ParseString(strings.TrimSpace(req.ProviderID))
	if err != nil {
		return nil, providerdomain.ErrNotFound
	}
	existing, err := s.providerRepo.FindByID(ctx, s.db, providerID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, providerdomain.ErrNotFound
	}

	now := s.clock.Now()
	entity := &reviewdomain.Review{
		ID:           s.genID.Generate(),
		ProviderID:   providerID,
		Rating:       req.Rating,
		Title:        req.Title,
		Content:      content,
		Pros:         datatypes.NewJSONSlice(orEmpty(req.Pros)),
		Cons:         datatypes.NewJSONSlice(orEmpty(req.Cons)),
		ReviewerName: req.ReviewerName,
		ReviewerRole: req.ReviewerRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) List(ctx context.Context, filter reviewdomain.ListFilter, page pagination.Page) ([]reviewdomain.Review, pagination.PageInfo, error) {
	items, total, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	return items, pagination.BuildPageInfo(page, total), nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req reviewdomain.UpdateRequest) (*reviewdomain.Review, error) {
	entity, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, reviewdomain.ErrNotFound
	}

	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			return nil, reviewdomain.ErrInvalidRating
		}
		entity.Rating = *req.Rating
	}
	if req.Title != nil {
		entity.Title = req.Title
	}
	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			return nil, reviewdomain.ErrContentRequired
		}
		entity.Content = content
	}
	if req.Pros != nil {
		entity.Pros = datatypes.NewJSONSlice(req.Pros)
	}
	if req.Cons != nil {
		entity.Cons = datatypes.NewJSONSlice(req.Cons)
	}
	if req.ReviewerName != nil {
		entity.ReviewerName = req.ReviewerName
	}
	if req.ReviewerRole != nil {
		entity.ReviewerRole = req.ReviewerRole
	}
	entity.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	entity, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if entity == nil {
		return reviewdomain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) AverageRating(ctx context.Context, providerID snowflake.ID) (*float64, error) {
	ratings, err := s.repo.AverageRatings(ctx, s.db, []snowflake.ID{providerID})
	if err != nil {
		return nil, err
	}
	if value, ok := ratings[providerID]; ok {
		return &value, nil
	}
	return nil, nil
}

func (s *Service) AverageRatings(ctx context.Context, providerIDs []snowflake.ID) (map[snowflake.ID]float64, error) {
	return s.repo.AverageRatings(ctx, s.db, providerIDs)
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
