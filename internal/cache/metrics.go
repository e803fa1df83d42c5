package cache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsMu          sync.Mutex
	metricsInitialized bool
	metricsError       error

	hitCounter      *prometheus.CounterVec
	missCounter     *prometheus.CounterVec
	fallbackCounter prometheus.Counter
)

// SetupMetrics registers the Prometheus metrics observing the tagged cache.
// The registration is performed once and subsequent calls are ignored.
func SetupMetrics(reg prometheus.Registerer) error {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	if metricsInitialized {
		return metricsError
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	hitCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ncrtrack_cache_hits_total",
		Help: "Number of cache hits, by backend serving the hit.",
	}, []string{"backend"})
	missCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ncrtrack_cache_miss_total",
		Help: "Number of cache misses.",
	}, []string{"backend"})
	fallbackCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ncrtrack_cache_fallback_total",
		Help: "Number of operations that degraded to the in-process store.",
	})

	for _, collector := range []prometheus.Collector{hitCounter, missCounter, fallbackCounter} {
		if err := reg.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				switch c := already.ExistingCollector.(type) {
				case *prometheus.CounterVec:
					if collector == hitCounter {
						hitCounter = c
					} else {
						missCounter = c
					}
				case prometheus.Counter:
					fallbackCounter = c
				default:
					metricsError = fmt.Errorf("cache metrics: unexpected collector type %T", c)
				}
				continue
			}
			metricsError = err
			hitCounter = nil
			missCounter = nil
			fallbackCounter = nil
			break
		}
	}

	metricsInitialized = true
	return metricsError
}

func recordHit(backend string) {
	if hitCounter != nil {
		hitCounter.WithLabelValues(backend).Inc()
	}
}

func recordMiss(backend string) {
	if missCounter != nil {
		missCounter.WithLabelValues(backend).Inc()
	}
}

func recordFallback() {
	if fallbackCounter != nil {
		fallbackCounter.Inc()
	}
}
