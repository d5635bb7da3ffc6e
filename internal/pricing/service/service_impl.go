package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/providerpulse/providerpulse/internal/catalog/domain"
	"github.com/providerpulse/providerpulse/internal/clock"
	pricingdomain "github.com/providerpulse/providerpulse/internal/pricing/domain"
	providerdomain "github.com/providerpulse/providerpulse/internal/provider/domain"
	"github.com/providerpulse/providerpulse/pkg/db"
	"github.com/providerpulse/providerpulse/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultUpdateNotes = "updated via api"

const trendSampleSize = 500

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         pricingdomain.Repository
	HistoryRepo  pricingdomain.HistoryRepository
	ProviderRepo providerdomain.Repository
	CatalogRepo  catalogdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         pricingdomain.Repository
	historyRepo  pricingdomain.HistoryRepository
	providerRepo providerdomain.Repository
	catalogRepo  catalogdomain.Repository
}

func New(p Params) pricingdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("pricing.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		historyRepo:  p.HistoryRepo,
		providerRepo: p.ProviderRepo,
		catalogRepo:  p.CatalogRepo,
	}
}

func (s *Service) CreateLink(ctx context.Context, req pricingdomain.CreateLinkRequest) (*pricingdomain.ProviderModel, error) {
	providerID, err := snowflake.ParseString(strings.TrimSpace(req.ProviderID))
	if err != nil {
		return nil, providerdomain.ErrNotFound
	}
	providerRow, err := s.providerRepo.FindByID(ctx, s.db, providerID)
	if err != nil {
		return nil, err
	}
	if providerRow == nil {
		return nil, providerdomain.ErrNotFound
	}

	modelID, err := snowflake.ParseString(strings.TrimSpace(req.ModelID))
	if err != nil {
		return nil, catalogdomain.ErrNotFound
	}
	modelRow, err := s.catalogRepo.FindByID(ctx, s.db, modelID)
	if err != nil {
		return nil, err
	}
	if modelRow == nil {
		return nil, catalogdomain.ErrNotFound
	}

	if isNegative(req.InputPricePerMillion) || isNegative(req.OutputPricePerMillion) {
		return nil, pricingdomain.ErrNegativePrice
	}

	pricingType := req.PricingType
	if pricingType == "" {
		pricingType = pricingdomain.PricingTokenBased
	}
	if !pricingType.Valid() {
		return nil, pricingdomain.ErrInvalidPricingType
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	now := s.clock.Now()
	entity := &pricingdomain.ProviderModel{
		ID:                    s.genID.Generate(),
		ProviderID:            providerID,
		ModelID:               modelID,
		ProviderModelName:     strings.TrimSpace(req.ProviderModelName),
		InputPricePerMillion:  req.InputPricePerMillion,
		OutputPricePerMillion: req.OutputPricePerMillion,
		Currency:              currency,
		PricingType:           pricingType,
		IsAvailable:           true,
		Notes:                 req.Notes,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if entity.ProviderModelName == "" {
		entity.ProviderModelName = modelRow.Name
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, entity); err != nil {
			return err
		}
		if entity.InputPricePerMillion == nil {
			return nil
		}
		notes := "initial price"
		return s.historyRepo.Append(ctx, tx, &pricingdomain.PriceHistory{
			ID:                    s.genID.Generate(),
			ProviderID:            providerID,
			ProviderModelID:       entity.ID,
			InputPricePerMillion:  entity.InputPricePerMillion,
			OutputPricePerMillion: entity.OutputPricePerMillion,
			Currency:              entity.Currency,
			ChangeType:            pricingdomain.ChangeInitial,
			Notes:                 &notes,
			RecordedAt:            now,
		})
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, pricingdomain.ErrLinkExists
		}
		return nil, err
	}

	return entity, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*pricingdomain.ProviderModel, error) {
	entity, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, pricingdomain.ErrProviderModelNotFound
	}
	return entity, nil
}

func (s *Service) List(ctx context.Context, providerID, modelID snowflake.ID, page pagination.Page) ([]pricingdomain.ProviderModel, pagination.PageInfo, error) {
	items, total, err := s.repo.List(ctx, s.db, providerID, modelID, page)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	return items, pagination.BuildPageInfo(page, total), nil
}

func (s *Service) ApplyPriceUpdate(ctx context.Context, id snowflake.ID, req pricingdomain.PriceUpdateRequest) (*pricingdomain.PriceUpdateResult, error) {
	var result pricingdomain.PriceUpdateResult

	// The price-row update and the history append must be observed
	// together, so both run in one transaction.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entity, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if entity == nil {
			return pricingdomain.ErrProviderModelNotFound
		}

		prevInput := entity.InputPricePerMillion
		nextInput := prevInput
		if req.Input.Set {
			nextInput = req.Input.Value
		}
		nextOutput := entity.OutputPricePerMillion
		if req.Output.Set {
			nextOutput = req.Output.Value
		}

		changeType, changePercent := classifyChange(prevInput, nextInput)

		now := s.clock.Now()
		entity.InputPricePerMillion = nextInput
		entity.OutputPricePerMillion = nextOutput
		if req.IsAvailable != nil {
			entity.IsAvailable = *req.IsAvailable
		}
		if req.Notes != nil {
			entity.Notes = req.Notes
		}
		entity.LastCheckedAt = &now
		entity.UpdatedAt = now

		if err := s.repo.Update(ctx, tx, entity); err != nil {
			return err
		}

		if changeType != pricingdomain.ChangeNone {
			notes := req.Notes
			if notes == nil {
				value := defaultUpdateNotes
				notes = &value
			}
			entry := &pricingdomain.PriceHistory{
				ID:                    s.genID.Generate(),
				ProviderID:            entity.ProviderID,
				ProviderModelID:       entity.ID,
				InputPricePerMillion:  nextInput,
				OutputPricePerMillion: nextOutput,
				Currency:              entity.Currency,
				ChangeType:            changeType,
				ChangePercent:         changePercent,
				Notes:                 notes,
				RecordedAt:            now,
			}
			if err := s.historyRepo.Append(ctx, tx, entry); err != nil {
				return err
			}
			s.log.Info("price change recorded",
				zap.String("provider_model_id", entity.ID.String()),
				zap.String("change_type", string(changeType)),
			)
		}

		result = pricingdomain.PriceUpdateResult{
			ProviderModel: *entity,
			ChangeType:    changeType,
			ChangePercent: changePercent,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// classifyChange compares input prices only. An offering whose output price
// moves while the input price holds produces NO_CHANGE and no audit entry;
// this mirrors the behavior listings have always shown.
func classifyChange(prev, next *float64) (pricingdomain.ChangeType, *float64) {
	if prev == nil && next != nil {
		return pricingdomain.ChangeInitial, nil
	}

	prevValue := 0.0
	if prev != nil {
		prevValue = *prev
	}
	nextValue := 0.0
	if next != nil {
		nextValue = *next
	}

	switch {
	case prevValue < nextValue:
		return pricingdomain.ChangeIncrease, percentOf(prev, next)
	case prevValue > nextValue:
		return pricingdomain.ChangeDecrease, percentOf(prev, next)
	default:
		return pricingdomain.ChangeNone, nil
	}
}

func percentOf(prev, next *float64) *float64 {
	if prev == nil || next == nil || *prev == 0 {
		return nil
	}
	value := round2(((*next - *prev) / *prev) * 100)
	return &value
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *Service) ListHistory(ctx context.Context, filter pricingdomain.HistoryFilter, page pagination.Page) ([]pricingdomain.PriceHistory, pagination.PageInfo, error) {
	windowDays := filter.WindowDays
	if windowDays <= 0 {
		windowDays = 30
	}
	since := s.clock.Now().Add(-time.Duration(windowDays) * 24 * time.Hour)

	items, total, err := s.historyRepo.List(ctx, s.db, filter, since, page)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	return items, pagination.BuildPageInfo(page, total), nil
}

func (s *Service) TrendSummary(ctx context.Context, windowDays int) (*pricingdomain.TrendSummary, error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	since := s.clock.Now().Add(-time.Duration(windowDays) * 24 * time.Hour)

	items, total, err := s.historyRepo.List(ctx, s.db, pricingdomain.HistoryFilter{}, since, pagination.Page{Page: 1, PageSize: trendSampleSize})
	if err != nil {
		return nil, err
	}

	summary := &pricingdomain.TrendSummary{
		WindowDays:   windowDays,
		TotalChanges: total,
	}

	var percentSum float64
	var percentCount int
	seen := make(map[snowflake.ID]struct{})
	for _, item := range items {
		switch item.ChangeType {
		case pricingdomain.ChangeIncrease:
			summary.IncreaseCount++
		case pricingdomain.ChangeDecrease:
			summary.DecreaseCount++
		}
		if item.ChangePercent != nil {
			percentSum += math.Abs(*item.ChangePercent)
			percentCount++
		}
		if _, ok := seen[item.ProviderModelID]; !ok && len(summary.LatestSnapshots) < 20 {
			seen[item.ProviderModelID] = struct{}{}
			summary.LatestSnapshots = append(summary.LatestSnapshots, pricingdomain.TrendSnapshot{
				ProviderModelID: item.ProviderModelID,
				InputPrice:      item.InputPricePerMillion,
				Currency:        item.Currency,
				RecordedAt:      item.RecordedAt,
			})
		}
	}
	if percentCount > 0 {
		summary.AvgChangePercent = round2(percentSum / float64(percentCount))
	}

	return summary, nil
}

func (s *Service) LatestInputPrices(ctx context.Context, providerIDs []snowflake.ID) (map[snowflake.ID]float64, error) {
	latest, err := s.repo.LatestByProvider(ctx, s.db, providerIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[snowflake.ID]float64, len(latest))
	for providerID, pm := range latest {
		if pm.InputPricePerMillion != nil {
			out[providerID] = *pm.InputPricePerMillion
		}
	}
	return out, nil
}

func isNegative(v *float64) bool {
	return v != nil && *v < 0
}
