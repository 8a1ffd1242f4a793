package anyvrp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsLogger is a Logger which exports rollout
// statistics as Prometheus metrics.
type MetricsLogger struct {
	steps    prometheus.Counter
	improve  prometheus.Observer
	worsen   prometheus.Observer
	entropy  prometheus.Gauge
	windows  prometheus.Counter
	samples  prometheus.Counter
	meanCost prometheus.Gauge
	bestCost prometheus.Gauge
}

// NewMetricsLogger creates a MetricsLogger and registers
// its metrics with reg.
//
// If reg is nil, the metrics are not registered.
func NewMetricsLogger(reg prometheus.Registerer) *MetricsLogger {
	f := promauto.With(reg)
	rewards := f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "anyvrp_step_reward",
		Help:    "Magnitude of each per-episode step reward, split by sign.",
		Buckets: prometheus.ExponentialBucketsRange(0.01, 10000, 12),
	}, []string{"direction"})
	m := &MetricsLogger{
		steps: f.NewCounter(prometheus.CounterOpts{
			Name: "anyvrp_rollout_steps_total",
			Help: "Batched environment steps taken during rollouts.",
		}),
		entropy: f.NewGauge(prometheus.GaugeOpts{
			Name: "anyvrp_policy_entropy",
			Help: "Mean policy entropy of the latest step.",
		}),
		windows: f.NewCounter(prometheus.CounterOpts{
			Name: "anyvrp_rollout_windows_total",
			Help: "Completed rollout windows.",
		}),
		samples: f.NewCounter(prometheus.CounterOpts{
			Name: "anyvrp_samples_total",
			Help: "Training samples produced by rollouts.",
		}),
		meanCost: f.NewGauge(prometheus.GaugeOpts{
			Name: "anyvrp_mean_cost",
			Help: "Mean episode cost at the end of the latest rollout.",
		}),
		bestCost: f.NewGauge(prometheus.GaugeOpts{
			Name: "anyvrp_mean_best_cost",
			Help: "Mean best episode cost at the end of the latest rollout.",
		}),
	}
	m.improve = rewards.WithLabelValues("improve")
	m.worsen = rewards.WithLabelValues("worsen")
	return m
}

// LogStep records a step.
//
// Cost decreases (including no change) are recorded
// under direction="improve" and cost increases under
// direction="worsen", both as positive magnitudes.
func (m *MetricsLogger) LogStep(step int, rewards []float64, entropy float64) {
	m.steps.Inc()
	for _, r := range rewards {
		if r < 0 {
			m.worsen.Observe(-r)
		} else {
			m.improve.Observe(r)
		}
	}
	m.entropy.Set(entropy)
}

// LogWindow records a finished rollout.
func (m *MetricsLogger) LogWindow(r *RolloutResult) {
	m.windows.Inc()
	m.samples.Add(float64(len(r.Samples)))
	m.meanCost.Set(r.MeanCost())
	m.bestCost.Set(r.MeanBestCost())
}
