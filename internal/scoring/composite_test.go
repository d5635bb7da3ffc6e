package scoring

import (
	"testing"

	settingsdomain "github.com/providerpulse/providerpulse/internal/settings/domain"
	"github.com/stretchr/testify/assert"
)

func fptr(v float64) *float64 { return &v }

func TestPriceScore(t *testing.T) {
	assert.Equal(t, NeutralPriceScore, PriceScore(nil))
	assert.Equal(t, 100.0, PriceScore(fptr(2)))
	assert.Equal(t, 70.0, PriceScore(fptr(5)))
	assert.Equal(t, 0.0, PriceScore(fptr(12)))
	// Clamped at both ends.
	assert.Equal(t, 100.0, PriceScore(fptr(0)))
	assert.Equal(t, 0.0, PriceScore(fptr(50)))
}

func TestReviewScore(t *testing.T) {
	assert.Equal(t, NeutralReviewScore, ReviewScore(nil))
	assert.Equal(t, 100.0, ReviewScore(fptr(5)))
	assert.Equal(t, 60.0, ReviewScore(fptr(3)))
	assert.Equal(t, 20.0, ReviewScore(fptr(1)))
}

func TestUptimeScore(t *testing.T) {
	assert.Equal(t, 100.0, UptimeScore(1))
	assert.Equal(t, 75.0, UptimeScore(0.75))
	assert.Equal(t, 0.0, UptimeScore(0))
	assert.Equal(t, 100.0, UptimeScore(1.2))
	assert.Equal(t, 0.0, UptimeScore(-0.5))
}

func TestComposite_DefaultWeights(t *testing.T) {
	w := settingsdomain.DefaultWeights()

	// price 5 -> 70, uptime 0.9 -> 90, rating 4.5 -> 90
	// 70*0.4 + 90*0.35 + 90*0.25 = 28 + 31.5 + 22.5 = 82
	b := Composite(w, 0.9, fptr(4.5), fptr(5))
	assert.Equal(t, 82.0, b.Composite)

	// All signals missing except uptime; neutral price and review apply.
	// 70*0.4 + 100*0.35 + 75*0.25 = 28 + 35 + 18.75 = 81.75
	b = Composite(w, 1.0, nil, nil)
	assert.Equal(t, 81.75, b.Composite)
	assert.Equal(t, NeutralPriceScore, b.PriceScore)
	assert.Equal(t, NeutralReviewScore, b.ReviewScore)
}

func TestComposite_RoundsToTwoDecimals(t *testing.T) {
	w := settingsdomain.Weights{Price: 1.0 / 3, Uptime: 1.0 / 3, Review: 1.0 / 3}
	b := Composite(w, 1.0, fptr(5), fptr(5))
	// (70 + 100 + 100) / 3 = 90.0 exactly after rounding
	assert.Equal(t, 90.0, b.Composite)

	// (70 + 100 + 75) / 3 = 81.666... -> 81.67
	b = Composite(w, 1.0, nil, fptr(5))
	assert.Equal(t, 81.67, b.Composite)
}
