package scoring

import (
	"math"

	settingsdomain "github.com/providerpulse/providerpulse/internal/settings/domain"
)

// Neutral signal scores used when a provider has no price or no reviews.
// These sit deliberately above the midpoint so missing data neither sinks
// nor crowns a provider.
const (
	NeutralPriceScore  = 70.0
	NeutralReviewScore = 75.0
)

// Breakdown carries the per-signal scores behind a composite.
type Breakdown struct {
	PriceScore  float64 `json:"price_score"`
	UptimeScore float64 `json:"uptime_score"`
	ReviewScore float64 `json:"review_score"`
	Composite   float64 `json:"composite"`
}

// PriceScore maps an input price (USD per million tokens) onto [0,100].
// A $2 price scores 100, a $12 price scores 0. Unknown prices take the
// neutral score.
func PriceScore(inputPrice *float64) float64 {
	if inputPrice == nil {
		return NeutralPriceScore
	}
	return clamp(120-*inputPrice*10, 0, 100)
}

// ReviewScore maps a 1..5 mean rating onto [20,100]. Providers without
// reviews take the neutral score.
func ReviewScore(avgRating *float64) float64 {
	if avgRating == nil {
		return NeutralReviewScore
	}
	return clamp(*avgRating*20, 0, 100)
}

func UptimeScore(ratio float64) float64 {
	return clamp(ratio*100, 0, 100)
}

// Composite blends the three signals by weight and rounds to 2dp.
func Composite(w settingsdomain.Weights, uptimeRatio float64, avgRating, inputPrice *float64) Breakdown {
	b := Breakdown{
		PriceScore:  PriceScore(inputPrice),
		UptimeScore: UptimeScore(uptimeRatio),
		ReviewScore: ReviewScore(avgRating),
	}
	b.Composite = round2(b.PriceScore*w.Price + b.UptimeScore*w.Uptime + b.ReviewScore*w.Review)
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
