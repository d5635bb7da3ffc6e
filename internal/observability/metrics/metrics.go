package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch holds probe dispatcher and sweep instrumentation.
type Dispatch struct {
	jobsQueued     *prometheus.CounterVec
	probesCreated  *prometheus.CounterVec
	sweepRuns      prometheus.Counter
	sweepErrors    prometheus.Counter
	sweepDuration  prometheus.Histogram
	retriesTotal   *prometheus.CounterVec
	dispatchErrors prometheus.Counter
}

func NewDispatch(reg prometheus.Registerer) *Dispatch {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Dispatch{
		jobsQueued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "providerpulse_probe_jobs_queued_total",
			Help: "Probe jobs enqueued to the async backend.",
		}, []string{"queue"}),
		probesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "providerpulse_probes_created_total",
			Help: "Availability probes written, by method.",
		}, []string{"method"}),
		sweepRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "providerpulse_sweep_runs_total",
			Help: "Recurring sweep firings.",
		}),
		sweepErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "providerpulse_sweep_errors_total",
			Help: "Recurring sweep firings that returned an error.",
		}),
		sweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "providerpulse_sweep_duration_seconds",
			Help:    "Duration of one sweep firing.",
			Buckets: prometheus.DefBuckets,
		}),
		retriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "providerpulse_probe_job_retries_total",
			Help: "Probe job retry requests, by outcome.",
		}, []string{"outcome"}),
		dispatchErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "providerpulse_dispatch_errors_total",
			Help: "DispatchOnce calls that returned an error.",
		}),
	}
}

func (m *Dispatch) AddQueued(queue string, n int) {
	if m == nil {
		return
	}
	m.jobsQueued.WithLabelValues(queue).Add(float64(n))
}

func (m *Dispatch) AddProbesCreated(method string, n int) {
	if m == nil {
		return
	}
	m.probesCreated.WithLabelValues(method).Add(float64(n))
}

func (m *Dispatch) ObserveSweep(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.sweepRuns.Inc()
	m.sweepDuration.Observe(d.Seconds())
	if err != nil {
		m.sweepErrors.Inc()
	}
}

func (m *Dispatch) IncRetry(outcome string) {
	if m == nil {
		return
	}
	m.retriesTotal.WithLabelValues(outcome).Inc()
}

func (m *Dispatch) IncDispatchError() {
	if m == nil {
		return
	}
	m.dispatchErrors.Inc()
}
