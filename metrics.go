package oram

// metrics.go defines a metricsSink interface, a noop implementation used
// when the caller never supplies a registry, and a Prometheus-backed
// implementation used when they do. The engine is a single sequential
// instance, so none of these carry labels.
//
// ┌────────────────────────────────────────────┬───────┐
// │ Metric                                      │ Type  │
// ├──────────────────────────────────────────────┼───────┤
// │ oram_accesses_total                         │ Ctr   │
// │ oram_shelter_scans_total                    │ Ctr   │
// │ oram_maintenance_cycles_total                │ Ctr   │
// │ oram_epoch_position                         │ Gge   │
// │ oram_prefix_sort_duration_seconds           │ Hist  │
// └──────────────────────────────────────────────┴───────┘
//
// © 2025 sqrtoram authors. MIT License.

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metricsSink interface {
	incAccess()
	incShelterScan()
	incMaintenanceCycle()
	setEpochPosition(v int)
	observePrefixSort(d time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) incAccess()                        {}
func (noopMetrics) incShelterScan()                   {}
func (noopMetrics) incMaintenanceCycle()               {}
func (noopMetrics) setEpochPosition(int)               {}
func (noopMetrics) observePrefixSort(time.Duration)    {}

type promMetrics struct {
	accesses           prometheus.Counter
	shelterScans       prometheus.Counter
	maintenanceCycles  prometheus.Counter
	epochPosition      prometheus.Gauge
	prefixSortDuration prometheus.Histogram
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	pm := &promMetrics{
		accesses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oram",
			Name:      "accesses_total",
			Help:      "Number of Get/Put calls served.",
		}),
		shelterScans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oram",
			Name:      "shelter_scans_total",
			Help:      "Number of full shelter scans performed.",
		}),
		maintenanceCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oram",
			Name:      "maintenance_cycles_total",
			Help:      "Number of rearrange/rehash/shuffle cycles run.",
		}),
		epochPosition: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "oram",
			Name:      "epoch_position",
			Help:      "Number of accesses served since the last maintenance cycle.",
		}),
		prefixSortDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "oram",
			Name:      "prefix_sort_duration_seconds",
			Help:      "Time spent in the oblivious sort during a maintenance cycle.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(pm.accesses, pm.shelterScans, pm.maintenanceCycles, pm.epochPosition, pm.prefixSortDuration)
	return pm
}

func (m *promMetrics) incAccess()                     { m.accesses.Inc() }
func (m *promMetrics) incShelterScan()                { m.shelterScans.Inc() }
func (m *promMetrics) incMaintenanceCycle()            { m.maintenanceCycles.Inc() }
func (m *promMetrics) setEpochPosition(v int)          { m.epochPosition.Set(float64(v)) }
func (m *promMetrics) observePrefixSort(d time.Duration) {
	m.prefixSortDuration.Observe(d.Seconds())
}

func newMetricsSink(reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(reg)
}
