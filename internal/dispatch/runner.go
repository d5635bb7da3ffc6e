package dispatch

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/providerpulse/providerpulse/internal/clock"
)

// Target is what a runner probes: one provider and the per-job timeout.
type Target struct {
	ProviderID snowflake.ID
	Website    string
	TimeoutMs  int
}

// Outcome is the raw probe observation before it becomes a stored row.
// ResponseTimeMs is nil when the run never reached the point of timing a
// request, so the stored row keeps a null latency instead of a fake zero.
type Outcome struct {
	Success        bool
	ResponseTimeMs *float64
	StatusCode     *int
	ErrorMessage   *string
}

type Runner interface {
	Probe(ctx context.Context, target Target) Outcome
}

// HealthCheckRunner issues a GET against the provider's website under the
// job timeout. Any response counts as reachable; 5xx counts as down.
type HealthCheckRunner struct {
	clock  clock.Clock
	client *http.Client
}

func NewHealthCheckRunner(clk clock.Clock) *HealthCheckRunner {
	return &HealthCheckRunner{
		clock: clk,
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

func (r *HealthCheckRunner) Probe(ctx context.Context, target Target) Outcome {
	website := strings.TrimSpace(target.Website)
	if website == "" {
		msg := "provider has no website configured"
		return Outcome{Success: false, ErrorMessage: &msg}
	}
	if !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
		website = "https://" + website
	}

	timeout := time.Duration(target.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := r.clock.Now()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, website, nil)
	if err != nil {
		msg := err.Error()
		return Outcome{Success: false, ErrorMessage: &msg}
	}

	resp, err := r.client.Do(req)
	elapsed := float64(r.clock.Now().Sub(start)) / float64(time.Millisecond)
	if err != nil {
		msg := err.Error()
		return Outcome{Success: false, ResponseTimeMs: &elapsed, ErrorMessage: &msg}
	}
	defer resp.Body.Close()

	outcome := Outcome{
		Success:        resp.StatusCode < 500,
		ResponseTimeMs: &elapsed,
		StatusCode:     &resp.StatusCode,
	}
	if !outcome.Success {
		msg := fmt.Sprintf("unexpected status %d", resp.StatusCode)
		outcome.ErrorMessage = &msg
	}
	return outcome
}

// SimulatedRunner stands in for real provider API checks until per-provider
// credentials exist. It fails roughly one probe in ten and reports a
// plausible latency.
type SimulatedRunner struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedRunner(seed int64) *SimulatedRunner {
	return &SimulatedRunner{rng: rand.New(rand.NewSource(seed))}
}

func (r *SimulatedRunner) Probe(_ context.Context, _ Target) Outcome {
	r.mu.Lock()
	fail := r.rng.Float64() < 0.1
	latency := 100 + r.rng.Float64()*600
	r.mu.Unlock()

	if fail {
		status := http.StatusInternalServerError
		msg := "fallback probe failed"
		return Outcome{Success: false, ResponseTimeMs: &latency, StatusCode: &status, ErrorMessage: &msg}
	}
	status := http.StatusOK
	return Outcome{Success: true, ResponseTimeMs: &latency, StatusCode: &status}
}
