package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/providerpulse/providerpulse/internal/clock"
	"github.com/providerpulse/providerpulse/internal/settings/domain"
	"github.com/providerpulse/providerpulse/internal/settings/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Setting{}))
	require.NoError(t, db.Where("1 = 1").Delete(&domain.Setting{}).Error)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func TestGetScoringConfig_DefaultsWhenMissing(t *testing.T) {
	svc := newTestService(t)

	cfg, err := svc.GetScoringConfig(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.Weights{Price: 0.4, Uptime: 0.35, Review: 0.25}, cfg.Weights)
	assert.Equal(t, "weighted_sum", cfg.Formula)
}

func TestSaveScoringConfig_RoundTrip(t *testing.T) {
	svc := newTestService(t)

	in := domain.DefaultScoringConfig()
	in.Weights = domain.Weights{Price: 0.5, Uptime: 0.25, Review: 0.25}
	_, err := svc.SaveScoringConfig(context.Background(), in)
	require.NoError(t, err)

	out, err := svc.GetScoringConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, in.Weights, out.Weights)
}

func TestSaveScoringConfig_WeightSumValidation(t *testing.T) {
	svc := newTestService(t)

	bad := domain.DefaultScoringConfig()
	bad.Weights = domain.Weights{Price: 0.5, Uptime: 0.5, Review: 0.5}
	_, err := svc.SaveScoringConfig(context.Background(), bad)
	assert.ErrorIs(t, err, domain.ErrWeightSumInvalid)

	// Nothing was written.
	out, err := svc.GetScoringConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultWeights(), out.Weights)

	// Within tolerance passes.
	ok := domain.DefaultScoringConfig()
	ok.Weights = domain.Weights{Price: 0.4004, Uptime: 0.35, Review: 0.25}
	_, err = svc.SaveScoringConfig(context.Background(), ok)
	assert.NoError(t, err)
}

func TestSaveScoringConfig_InvokesHooks(t *testing.T) {
	svc := newTestService(t)

	var primed *domain.Weights
	svc.OnScoringSaved(func(_ context.Context, cfg domain.ScoringConfig) {
		w := cfg.Weights
		primed = &w
	})

	in := domain.DefaultScoringConfig()
	in.Weights = domain.Weights{Price: 0.3, Uptime: 0.4, Review: 0.3}
	_, err := svc.SaveScoringConfig(context.Background(), in)
	require.NoError(t, err)

	require.NotNil(t, primed)
	assert.Equal(t, 0.4, primed.Uptime)
}

func TestGetSchedulerSettings_Defaults(t *testing.T) {
	svc := newTestService(t)

	s, err := svc.GetSchedulerSettings(context.Background())
	require.NoError(t, err)

	assert.False(t, s.Enabled)
	assert.Equal(t, 30, s.IntervalMinutes)
	assert.Equal(t, 8000, s.TimeoutMs)
	assert.Equal(t, 200, s.MaxJobsPerSweep)
	assert.Equal(t, "gpt-5.2", s.SampleModel)
}

func TestSaveSchedulerSettings_RangeValidation(t *testing.T) {
	svc := newTestService(t)

	base := domain.DefaultSchedulerSettings()

	s := base
	s.IntervalMinutes = 4
	_, err := svc.SaveSchedulerSettings(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrIntervalOutOfRange)

	s = base
	s.IntervalMinutes = 1441
	_, err = svc.SaveSchedulerSettings(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrIntervalOutOfRange)

	s = base
	s.TimeoutMs = 999
	_, err = svc.SaveSchedulerSettings(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrTimeoutOutOfRange)

	s = base
	s.MaxJobsPerSweep = 0
	_, err = svc.SaveSchedulerSettings(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrMaxJobsOutOfRange)

	s = base
	s.MaxJobsPerSweep = 2001
	_, err = svc.SaveSchedulerSettings(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrMaxJobsOutOfRange)
}

func TestSaveSchedulerSettings_RoundTripAndHook(t *testing.T) {
	svc := newTestService(t)

	var seen *domain.SchedulerSettings
	svc.OnSchedulerSaved(func(_ context.Context, s domain.SchedulerSettings) error {
		seen = &s
		return nil
	})

	in := domain.SchedulerSettings{
		Enabled:         true,
		IntervalMinutes: 15,
		TimeoutMs:       5000,
		MaxJobsPerSweep: 100,
		SampleModel:     "gpt-5.2",
	}
	_, err := svc.SaveSchedulerSettings(context.Background(), in)
	require.NoError(t, err)

	out, err := svc.GetSchedulerSettings(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Enabled)
	assert.Equal(t, 15, out.IntervalMinutes)

	require.NotNil(t, seen)
	assert.True(t, seen.Enabled)
}
