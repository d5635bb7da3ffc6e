package scoring

import (
	"context"
	"sync"
	"time"

	"github.com/providerpulse/providerpulse/internal/clock"
	settingsdomain "github.com/providerpulse/providerpulse/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// weightTTL bounds how stale cached weights may get before the next use
// re-reads the settings store.
const weightTTL = 5000 * time.Millisecond

type WeightCacheParams struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	Settings settingsdomain.Service
}

// WeightCache serves scoring weights with a short TTL over the settings
// store. A failed read falls back to the last good value, and a settings
// save primes the cache directly so new weights apply without waiting
// out the TTL.
type WeightCache struct {
	log      *zap.Logger
	clock    clock.Clock
	settings settingsdomain.Service

	mu       sync.Mutex
	weights  settingsdomain.Weights
	loadedAt time.Time
}

func NewWeightCache(p WeightCacheParams) *WeightCache {
	c := &WeightCache{
		log:      p.Log.Named("scoring.weights"),
		clock:    p.Clock,
		settings: p.Settings,
		weights:  settingsdomain.DefaultWeights(),
	}
	p.Settings.OnScoringSaved(func(_ context.Context, cfg settingsdomain.ScoringConfig) {
		c.Prime(cfg.Weights)
	})
	return c
}

// Current returns the cached weights, refreshing from settings when the
// TTL has lapsed. Read errors keep serving the previous value.
func (c *WeightCache) Current(ctx context.Context) settingsdomain.Weights {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if !c.loadedAt.IsZero() && now.Sub(c.loadedAt) < weightTTL {
		return c.weights
	}

	cfg, err := c.settings.GetScoringConfig(ctx)
	if err != nil {
		c.log.Warn("weight refresh failed, keeping cached weights", zap.Error(err))
		return c.weights
	}
	c.weights = cfg.Weights
	c.loadedAt = now
	return c.weights
}

// Prime installs weights immediately and restarts the TTL.
func (c *WeightCache) Prime(w settingsdomain.Weights) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.weights = w
	c.loadedAt = c.clock.Now()
}
