package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catalogrepository "github.com/providerpulse/providerpulse/internal/catalog/repository"
	"github.com/providerpulse/providerpulse/internal/clock"
	pricingdomain "github.com/providerpulse/providerpulse/internal/pricing/domain"
	pricingrepository "github.com/providerpulse/providerpulse/internal/pricing/repository"
	pricingservice "github.com/providerpulse/providerpulse/internal/pricing/service"
	probedomain "github.com/providerpulse/providerpulse/internal/probe/domain"
	proberepository "github.com/providerpulse/providerpulse/internal/probe/repository"
	probeservice "github.com/providerpulse/providerpulse/internal/probe/service"
	providerdomain "github.com/providerpulse/providerpulse/internal/provider/domain"
	providerrepository "github.com/providerpulse/providerpulse/internal/provider/repository"
	providerservice "github.com/providerpulse/providerpulse/internal/provider/service"
	reviewdomain "github.com/providerpulse/providerpulse/internal/review/domain"
	reviewrepository "github.com/providerpulse/providerpulse/internal/review/repository"
	reviewservice "github.com/providerpulse/providerpulse/internal/review/service"
	settingsdomain "github.com/providerpulse/providerpulse/internal/settings/domain"
	settingsrepository "github.com/providerpulse/providerpulse/internal/settings/repository"
	settingsservice "github.com/providerpulse/providerpulse/internal/settings/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type engineFixture struct {
	engine *Engine
	db     *gorm.DB
	node   *snowflake.Node
	clk    *clock.FakeClock
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&providerdomain.Provider{},
		&pricingdomain.ProviderModel{},
		&pricingdomain.PriceHistory{},
		&probedomain.AvailabilityProbe{},
		&reviewdomain.Review{},
		&settingsdomain.Setting{},
	))
	require.NoError(t, db.Where("1 = 1").Delete(&providerdomain.Provider{}).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	providers := providerservice.New(providerservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		Repo: providerrepository.Provide(),
	})
	reviews := reviewservice.New(reviewservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		Repo:         reviewrepository.Provide(),
		ProviderRepo: providerrepository.Provide(),
	})
	probes := probeservice.New(probeservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		Repo:         proberepository.Provide(),
		ProviderRepo: providerrepository.Provide(),
	})
	pricing := pricingservice.New(pricingservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		Repo:         pricingrepository.Provide(),
		HistoryRepo:  pricingrepository.ProvideHistory(),
		ProviderRepo: providerrepository.Provide(),
		CatalogRepo:  catalogrepository.Provide(),
	})
	settings := settingsservice.New(settingsservice.Params{
		DB: db, Log: log, Clock: clk,
		Repo: settingsrepository.Provide(),
	})

	weights := NewWeightCache(WeightCacheParams{Log: log, Clock: clk, Settings: settings})
	engine := NewEngine(EngineParams{
		Log:       log,
		Weights:   weights,
		Providers: providers,
		Reviews:   reviews,
		Probes:    probes,
		Pricing:   pricing,
	})

	return &engineFixture{engine: engine, db: db, node: node, clk: clk}
}

func (f *engineFixture) seedProvider(t *testing.T, status providerdomain.Status) *providerdomain.Provider {
	t.Helper()
	provider := &providerdomain.Provider{
		ID:      f.node.Generate(),
		Name:    "Score Target " + f.node.Generate().String(),
		Slug:    "score-target-" + f.node.Generate().String(),
		Status:  status,
		AddedAt: f.clk.Now(),
	}
	require.NoError(t, f.db.Create(provider).Error)
	return provider
}

func (f *engineFixture) seedSignals(t *testing.T, providerID snowflake.ID, inputPrice float64, rating int, successes, failures int) {
	t.Helper()

	price := inputPrice
	link := &pricingdomain.ProviderModel{
		ID:                   f.node.Generate(),
		ProviderID:           providerID,
		ModelID:              f.node.Generate(),
		ProviderModelName:    "scored-model",
		InputPricePerMillion: &price,
		Currency:             "USD",
		PricingType:          pricingdomain.PricingTokenBased,
		IsAvailable:          true,
		CreatedAt:            f.clk.Now(),
		UpdatedAt:            f.clk.Now(),
	}
	require.NoError(t, f.db.Create(link).Error)

	review := &reviewdomain.Review{
		ID:         f.node.Generate(),
		ProviderID: providerID,
		Rating:     rating,
		Content:    "scored",
		Pros:       datatypes.NewJSONSlice([]string{}),
		Cons:       datatypes.NewJSONSlice([]string{}),
		CreatedAt:  f.clk.Now(),
		UpdatedAt:  f.clk.Now(),
	}
	require.NoError(t, f.db.Create(review).Error)

	for i := 0; i < successes+failures; i++ {
		probe := &probedomain.AvailabilityProbe{
			ID:          f.node.Generate(),
			ProviderID:  providerID,
			ProbeType:   probedomain.ProbeHealthCheck,
			ProbeMethod: probedomain.MethodScheduled,
			IsSuccess:   i < successes,
			CheckedAt:   f.clk.Now(),
		}
		require.NoError(t, f.db.Create(probe).Error)
	}
}

func TestRankings_OrdersByComposite(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	strong := f.seedProvider(t, providerdomain.StatusActive)
	f.seedSignals(t, strong.ID, 2.0, 5, 10, 0)

	bare := f.seedProvider(t, providerdomain.StatusActive)

	f.seedProvider(t, providerdomain.StatusInactive)

	scores, err := f.engine.Rankings(ctx, 7, 50)
	require.NoError(t, err)
	require.Len(t, scores, 2)

	assert.Equal(t, strong.ID, scores[0].ProviderID)
	assert.InDelta(t, 100.0, scores[0].Breakdown.Composite, 0.001)
	require.NotNil(t, scores[0].InputPrice)
	assert.InDelta(t, 2.0, *scores[0].InputPrice, 0.001)

	// No signals at all scores all-neutral with perfect assumed uptime.
	assert.Equal(t, bare.ID, scores[1].ProviderID)
	assert.InDelta(t, 81.75, scores[1].Breakdown.Composite, 0.001)
	assert.Nil(t, scores[1].AvgRating)
	assert.Nil(t, scores[1].InputPrice)
	assert.Equal(t, 1.0, scores[1].UptimeRatio)
}

func TestCompare_ScoresRequestedProviders(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	flaky := f.seedProvider(t, providerdomain.StatusActive)
	f.seedSignals(t, flaky.ID, 8.0, 3, 1, 1)

	scores, err := f.engine.Compare(ctx, []snowflake.ID{flaky.ID}, 7)
	require.NoError(t, err)
	require.Len(t, scores, 1)

	got := scores[0]
	assert.InDelta(t, 0.5, got.UptimeRatio, 0.001)
	require.NotNil(t, got.AvgRating)
	assert.InDelta(t, 3.0, *got.AvgRating, 0.001)

	// 0.4*40 + 0.35*50 + 0.25*60 with default weights.
	assert.InDelta(t, 48.5, got.Breakdown.Composite, 0.001)
}

func TestCompare_EmptyInput(t *testing.T) {
	f := newEngineFixture(t)

	scores, err := f.engine.Compare(context.Background(), nil, 7)
	require.NoError(t, err)
	assert.Empty(t, scores)
}
