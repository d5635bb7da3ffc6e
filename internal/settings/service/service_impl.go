package service

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync"

	"github.com/providerpulse/providerpulse/internal/clock"
	"github.com/providerpulse/providerpulse/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const weightSumTolerance = 0.001

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository

	mu             sync.Mutex
	scoringHooks   []domain.ScoringSavedHook
	schedulerHooks []domain.SchedulerSavedHook
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("settings.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) OnScoringSaved(hook domain.ScoringSavedHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scoringHooks = append(s.scoringHooks, hook)
}

func (s *Service) OnSchedulerSaved(hook domain.SchedulerSavedHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedulerHooks = append(s.schedulerHooks, hook)
}

func (s *Service) GetScoringConfig(ctx context.Context) (domain.ScoringConfig, error) {
	cfg := domain.DefaultScoringConfig()
	row, err := s.repo.Get(ctx, s.db, domain.KeyScoringConfig)
	if err != nil {
		return cfg, err
	}
	if row == nil {
		return cfg, nil
	}
	if err := json.Unmarshal(row.Value, &cfg); err != nil {
		s.log.Warn("stored scoring config unreadable, using defaults", zap.Error(err))
		return domain.DefaultScoringConfig(), nil
	}
	return cfg, nil
}

func (s *Service) SaveScoringConfig(ctx context.Context, cfg domain.ScoringConfig) (domain.ScoringConfig, error) {
	if math.Abs(cfg.Weights.Sum()-1) > weightSumTolerance {
		return domain.ScoringConfig{}, domain.ErrWeightSumInvalid
	}
	if cfg.Version <= 0 {
		cfg.Version = 1
	}
	if strings.TrimSpace(cfg.Formula) == "" {
		cfg.Formula = "weighted_sum"
	}

	value, err := json.Marshal(cfg)
	if err != nil {
		return domain.ScoringConfig{}, err
	}
	if err := s.repo.Upsert(ctx, s.db, domain.KeyScoringConfig, value, s.clock.Now()); err != nil {
		return domain.ScoringConfig{}, err
	}

	s.mu.Lock()
	hooks := append([]domain.ScoringSavedHook(nil), s.scoringHooks...)
	s.mu.Unlock()
	for _, hook := range hooks {
		hook(ctx, cfg)
	}

	s.log.Info("scoring config saved",
		zap.Float64("weight_price", cfg.Weights.Price),
		zap.Float64("weight_uptime", cfg.Weights.Uptime),
		zap.Float64("weight_review", cfg.Weights.Review),
	)
	return cfg, nil
}

func (s *Service) GetSchedulerSettings(ctx context.Context) (domain.SchedulerSettings, error) {
	settings := domain.DefaultSchedulerSettings()
	row, err := s.repo.Get(ctx, s.db, domain.KeyProbeScheduler)
	if err != nil {
		return settings, err
	}
	if row == nil {
		return settings, nil
	}
	if err := json.Unmarshal(row.Value, &settings); err != nil {
		s.log.Warn("stored scheduler settings unreadable, using defaults", zap.Error(err))
		return domain.DefaultSchedulerSettings(), nil
	}
	return settings, nil
}

func (s *Service) SaveSchedulerSettings(ctx context.Context, settings domain.SchedulerSettings) (domain.SchedulerSettings, error) {
	if settings.IntervalMinutes < 5 || settings.IntervalMinutes > 1440 {
		return domain.SchedulerSettings{}, domain.ErrIntervalOutOfRange
	}
	if settings.TimeoutMs < 1000 || settings.TimeoutMs > 120000 {
		return domain.SchedulerSettings{}, domain.ErrTimeoutOutOfRange
	}
	if settings.MaxJobsPerSweep < 1 || settings.MaxJobsPerSweep > 2000 {
		return domain.SchedulerSettings{}, domain.ErrMaxJobsOutOfRange
	}
	if strings.TrimSpace(settings.SampleModel) == "" {
		settings.SampleModel = domain.DefaultSchedulerSettings().SampleModel
	}

	value, err := json.Marshal(settings)
	if err != nil {
		return domain.SchedulerSettings{}, err
	}
	if err := s.repo.Upsert(ctx, s.db, domain.KeyProbeScheduler, value, s.clock.Now()); err != nil {
		return domain.SchedulerSettings{}, err
	}

	s.mu.Lock()
	hooks := append([]domain.SchedulerSavedHook(nil), s.schedulerHooks...)
	s.mu.Unlock()
	for _, hook := range hooks {
		if err := hook(ctx, settings); err != nil {
			s.log.Error("scheduler settings hook failed", zap.Error(err))
		}
	}

	s.log.Info("scheduler settings saved",
		zap.Bool("enabled", settings.Enabled),
		zap.Int("interval_minutes", settings.IntervalMinutes),
	)
	return settings, nil
}
