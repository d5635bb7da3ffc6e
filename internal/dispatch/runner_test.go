package dispatch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/providerpulse/providerpulse/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheckRunner_StatusBelow500IsUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	runner := NewHealthCheckRunner(clk)

	outcome := runner.Probe(context.Background(), Target{Website: srv.URL, TimeoutMs: 2000})
	assert.True(t, outcome.Success)
	require.NotNil(t, outcome.StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, *outcome.StatusCode)
	assert.Nil(t, outcome.ErrorMessage)
}

func TestHealthCheckRunner_ServerErrorIsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	runner := NewHealthCheckRunner(clk)

	outcome := runner.Probe(context.Background(), Target{Website: srv.URL, TimeoutMs: 2000})
	assert.False(t, outcome.Success)
	require.NotNil(t, outcome.StatusCode)
	assert.Equal(t, http.StatusInternalServerError, *outcome.StatusCode)
	require.NotNil(t, outcome.ErrorMessage)
	assert.Contains(t, *outcome.ErrorMessage, "500")
}

func TestHealthCheckRunner_MissingWebsite(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	runner := NewHealthCheckRunner(clk)

	outcome := runner.Probe(context.Background(), Target{Website: "  "})
	assert.False(t, outcome.Success)
	assert.Nil(t, outcome.StatusCode)
	// Nothing was timed, so no latency is reported either.
	assert.Nil(t, outcome.ResponseTimeMs)
	require.NotNil(t, outcome.ErrorMessage)
}

func TestSimulatedRunner_PlausibleOutcomes(t *testing.T) {
	runner := NewSimulatedRunner(42)

	failures := 0
	for i := 0; i < 200; i++ {
		outcome := runner.Probe(context.Background(), Target{})
		require.NotNil(t, outcome.ResponseTimeMs)
		assert.GreaterOrEqual(t, *outcome.ResponseTimeMs, 100.0)
		assert.Less(t, *outcome.ResponseTimeMs, 700.0)
		require.NotNil(t, outcome.StatusCode)
		if !outcome.Success {
			failures++
			require.NotNil(t, outcome.ErrorMessage)
			assert.Equal(t, "fallback probe failed", *outcome.ErrorMessage)
		}
	}
	// Roughly one in ten fails.
	assert.Greater(t, failures, 5)
	assert.Less(t, failures, 50)
}
