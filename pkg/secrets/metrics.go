package secrets

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/systmms/kstack/pkg/stack"
)

var (
	resolutionsTotal *prometheus.CounterVec
	resolvedKeys     prometheus.Counter
	exportedTotal    prometheus.Counter

	// Registration guard
	metricsOnce sync.Once
)

// initMetrics registers the package's counters on first use, exactly once
// per process even across registry instances.
func initMetrics() {
	metricsOnce.Do(func() {
		resolutionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kstack_secrets_resolutions_total",
				Help: "Total number of secret resolutions performed",
			},
			[]string{"layer", "environment"},
		)

		resolvedKeys = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "kstack_secrets_resolved_keys",
				Help: "Total number of keys produced by resolutions",
			},
		)

		exportedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "kstack_secrets_exported_total",
				Help: "Total number of environment variables set by export",
			},
		)
	})
}

func observeResolution(layer stack.Layer, env stack.Environment, keys int) {
	initMetrics()
	resolutionsTotal.WithLabelValues(layer.Short(), string(env)).Inc()
	resolvedKeys.Add(float64(keys))
}

func observeExport(set int) {
	initMetrics()
	exportedTotal.Add(float64(set))
}
