package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/providerpulse/providerpulse/internal/clock"
	"github.com/providerpulse/providerpulse/internal/probe/domain"
	providerdomain "github.com/providerpulse/providerpulse/internal/provider/domain"
	"github.com/providerpulse/providerpulse/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultWindowDays = 7

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	ProviderRepo providerdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	providerRepo providerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("probe.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		providerRepo: p.ProviderRepo,
	}
}

func (s *Service) Record(ctx context.Context, input domain.RecordInput) (*domain.AvailabilityProbe, error) {
	if !input.ProbeType.Valid() {
		return nil, domain.ErrInvalidProbeType
	}
	if !input.ProbeMethod.Valid() {
		return nil, domain.ErrInvalidMethod
	}

	providerRow, err := s.providerRepo.FindByID(ctx, s.db, input.ProviderID)
	if err != nil {
		return nil, err
	}
	if providerRow == nil {
		return nil, domain.ErrProviderNotFound
	}

	probe := &domain.AvailabilityProbe{
		ID:              s.genID.Generate(),
		ProviderID:      input.ProviderID,
		ProviderModelID: input.ProviderModelID,
		ProbeType:       input.ProbeType,
		ProbeMethod:     input.ProbeMethod,
		IsSuccess:       input.IsSuccess,
		ResponseTimeMs:  input.ResponseTimeMs,
		StatusCode:      input.StatusCode,
		ErrorMessage:    input.ErrorMessage,
		CheckedAt:       s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, probe); err != nil {
		return nil, err
	}
	return probe, nil
}

func (s *Service) Uptime(ctx context.Context, providerID snowflake.ID, windowDays int) (*domain.UptimeStats, error) {
	stats, err := s.UptimeByProvider(ctx, []snowflake.ID{providerID}, windowDays)
	if err != nil {
		return nil, err
	}
	out := stats[providerID]
	return &out, nil
}

func (s *Service) UptimeByProvider(ctx context.Context, providerIDs []snowflake.ID, windowDays int) (map[snowflake.ID]domain.UptimeStats, error) {
	windowDays = normalizeWindow(windowDays)
	since := s.since(windowDays)

	rows, err := s.repo.Aggregate(ctx, s.db, providerIDs, since)
	if err != nil {
		return nil, err
	}

	out := make(map[snowflake.ID]domain.UptimeStats, len(providerIDs))
	for _, row := range rows {
		out[row.ProviderID] = toStats(row, windowDays)
	}
	// No samples means we have no evidence of downtime.
	for _, id := range providerIDs {
		if _, ok := out[id]; !ok {
			out[id] = domain.UptimeStats{ProviderID: id, WindowDays: windowDays, Ratio: 1.0}
		}
	}
	return out, nil
}

func (s *Service) UptimeSummary(ctx context.Context, windowDays int) ([]domain.UptimeStats, error) {
	windowDays = normalizeWindow(windowDays)
	rows, err := s.repo.Aggregate(ctx, s.db, nil, s.since(windowDays))
	if err != nil {
		return nil, err
	}
	out := make([]domain.UptimeStats, 0, len(rows))
	for _, row := range rows {
		out = append(out, toStats(row, windowDays))
	}
	return out, nil
}

func (s *Service) LatencySummary(ctx context.Context, windowDays int) (*domain.LatencyStats, error) {
	windowDays = normalizeWindow(windowDays)
	stats, err := s.repo.Latency(ctx, s.db, s.since(windowDays))
	if err != nil {
		return nil, err
	}
	stats.WindowDays = windowDays
	return stats, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter, page pagination.Page) ([]domain.AvailabilityProbe, pagination.PageInfo, error) {
	windowDays := normalizeWindow(filter.WindowDays)
	items, total, err := s.repo.List(ctx, s.db, filter, s.since(windowDays), page)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	return items, pagination.BuildPageInfo(page, total), nil
}

func (s *Service) since(windowDays int) time.Time {
	return s.clock.Now().Add(-time.Duration(windowDays) * 24 * time.Hour)
}

func normalizeWindow(windowDays int) int {
	if windowDays <= 0 {
		return defaultWindowDays
	}
	return windowDays
}

func toStats(row domain.UptimeRow, windowDays int) domain.UptimeStats {
	stats := domain.UptimeStats{
		ProviderID:        row.ProviderID,
		WindowDays:        windowDays,
		Total:             row.Total,
		Success:           row.Success,
		Ratio:             1.0,
		AvgResponseTimeMs: row.AvgResponseTimeMs,
	}
	if row.Total > 0 {
		stats.Ratio = float64(row.Success) / float64(row.Total)
	}
	return stats
}
