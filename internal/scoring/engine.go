package scoring

import (
	"context"
	"sort"

	"github.com/bwmarrin/snowflake"
	pricingdomain "github.com/providerpulse/providerpulse/internal/pricing/domain"
	probedomain "github.com/providerpulse/providerpulse/internal/probe/domain"
	providerdomain "github.com/providerpulse/providerpulse/internal/provider/domain"
	reviewdomain "github.com/providerpulse/providerpulse/internal/review/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	defaultUptimeWindowDays = 7
	defaultRankingLimit     = 50
)

type ScoreInput struct {
	ProviderID  snowflake.ID
	UptimeRatio float64
	AvgRating   *float64
	InputPrice  *float64
}

// ProviderScore is the ranking read model: the provider, the raw signals
// it was scored on, and the per-signal breakdown.
type ProviderScore struct {
	ProviderID  snowflake.ID          `json:"provider_id"`
	Name        string                `json:"name"`
	Slug        string                `json:"slug"`
	Status      providerdomain.Status `json:"status"`
	UptimeRatio float64               `json:"uptime_ratio"`
	AvgRating   *float64              `json:"avg_rating,omitempty"`
	InputPrice  *float64              `json:"input_price_per_million,omitempty"`
	Breakdown   Breakdown             `json:"breakdown"`
}

type EngineParams struct {
	fx.In

	Log       *zap.Logger
	Weights   *WeightCache
	Providers providerdomain.Service
	Reviews   reviewdomain.Service
	Probes    probedomain.Service
	Pricing   pricingdomain.Service
}

type Engine struct {
	log       *zap.Logger
	weights   *WeightCache
	providers providerdomain.Service
	reviews   reviewdomain.Service
	probes    probedomain.Service
	pricing   pricingdomain.Service
}

func NewEngine(p EngineParams) *Engine {
	return &Engine{
		log:       p.Log.Named("scoring.engine"),
		weights:   p.Weights,
		providers: p.Providers,
		reviews:   p.Reviews,
		probes:    p.Probes,
		pricing:   p.Pricing,
	}
}

func (e *Engine) Score(ctx context.Context, input ScoreInput) Breakdown {
	w := e.weights.Current(ctx)
	return Composite(w, input.UptimeRatio, input.AvgRating, input.InputPrice)
}

// ScoreBatch scores every input against one weight snapshot, so a
// concurrent settings save cannot split a batch across two weight sets.
func (e *Engine) ScoreBatch(ctx context.Context, inputs []ScoreInput) []Breakdown {
	w := e.weights.Current(ctx)
	out := make([]Breakdown, len(inputs))
	for i, input := range inputs {
		out[i] = Composite(w, input.UptimeRatio, input.AvgRating, input.InputPrice)
	}
	return out
}

func (e *Engine) Rankings(ctx context.Context, windowDays, limit int) ([]ProviderScore, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultRankingLimit
	}
	ids, err := e.providers.ActiveIDs(ctx, 0)
	if err != nil {
		return nil, err
	}
	scores, err := e.scoreProviders(ctx, ids, windowDays)
	if err != nil {
		return nil, err
	}
	if len(scores) > limit {
		scores = scores[:limit]
	}
	return scores, nil
}

func (e *Engine) Compare(ctx context.Context, providerIDs []snowflake.ID, windowDays int) ([]ProviderScore, error) {
	return e.scoreProviders(ctx, providerIDs, windowDays)
}

func (e *Engine) scoreProviders(ctx context.Context, ids []snowflake.ID, windowDays int) ([]ProviderScore, error) {
	if windowDays <= 0 {
		windowDays = defaultUptimeWindowDays
	}
	if len(ids) == 0 {
		return []ProviderScore{}, nil
	}

	providers, err := e.providers.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	ratings, err := e.reviews.AverageRatings(ctx, ids)
	if err != nil {
		return nil, err
	}
	uptime, err := e.probes.UptimeByProvider(ctx, ids, windowDays)
	if err != nil {
		return nil, err
	}
	prices, err := e.pricing.LatestInputPrices(ctx, ids)
	if err != nil {
		return nil, err
	}

	w := e.weights.Current(ctx)
	out := make([]ProviderScore, 0, len(providers))
	for _, p := range providers {
		score := ProviderScore{
			ProviderID:  p.ID,
			Name:        p.Name,
			Slug:        p.Slug,
			Status:      p.Status,
			UptimeRatio: 1.0,
		}
		if stats, ok := uptime[p.ID]; ok {
			score.UptimeRatio = stats.Ratio
		}
		if rating, ok := ratings[p.ID]; ok {
			value := rating
			score.AvgRating = &value
		}
		if price, ok := prices[p.ID]; ok {
			value := price
			score.InputPrice = &value
		}
		score.Breakdown = Composite(w, score.UptimeRatio, score.AvgRating, score.InputPrice)
		out = append(out, score)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Breakdown.Composite > out[j].Breakdown.Composite
	})
	return out, nil
}
