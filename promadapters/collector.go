package promadapters

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/openshelf/circulation-engine-go/circulation"
)

const (
	helpDuration = "Duration observations recorded by the circulation engine"
	helpCounter  = "Event counts recorded by the circulation engine"
	helpValue    = "Point-in-time values recorded by the circulation engine"
)

// Compile-time check that the collector satisfies the engine interface.
var _ circulation.MetricsCollector = (*Collector)(nil)

// Collector implements circulation.MetricsCollector on top of prometheus.
//
// Vectors are registered lazily keyed by metric name. Prometheus requires a
// fixed label-key set per vector, so the keys seen on the first observation
// of a metric define its schema: later observations missing a key report an
// empty value for it, and unknown keys are dropped.
type Collector struct {
	registerer prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]counterEntry
	histograms map[string]histogramEntry
	gauges     map[string]gaugeEntry
}

type counterEntry struct {
	keys []string
	vec  *prometheus.CounterVec
}

type histogramEntry struct {
	keys []string
	vec  *prometheus.HistogramVec
}

type gaugeEntry struct {
	keys []string
	vec  *prometheus.GaugeVec
}

// Option defines a functional option for configuring a Collector.
type Option func(*Collector)

// WithRegisterer sets the prometheus registerer the collector registers its
// vectors with. Defaults to prometheus.DefaultRegisterer.
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(c *Collector) {
		c.registerer = registerer
	}
}

// NewCollector creates a Collector registering against the default prometheus
// registerer unless overridden with WithRegisterer.
func NewCollector(opts ...Option) *Collector {
	collector := &Collector{
		registerer: prometheus.DefaultRegisterer,
		counters:   make(map[string]counterEntry),
		histograms: make(map[string]histogramEntry),
		gauges:     make(map[string]gaugeEntry),
	}

	for _, opt := range opts {
		opt(collector)
	}

	return collector
}

// RecordDuration observes the duration in seconds on a histogram vector.
func (c *Collector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	entry := c.histogramFor(metric, labels)
	entry.vec.With(paddedLabels(entry.keys, labels)).Observe(duration.Seconds())
}

// IncrementCounter increments a counter vector by one.
func (c *Collector) IncrementCounter(metric string, labels map[string]string) {
	entry := c.counterFor(metric, labels)
	entry.vec.With(paddedLabels(entry.keys, labels)).Inc()
}

// RecordValue sets a gauge vector to the given value.
func (c *Collector) RecordValue(metric string, value float64, labels map[string]string) {
	entry := c.gaugeFor(metric, labels)
	entry.vec.With(paddedLabels(entry.keys, labels)).Set(value)
}

func (c *Collector) histogramFor(metric string, labels map[string]string) histogramEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.histograms[metric]; ok {
		return entry
	}

	keys := sortedKeys(labels)
	vec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    metric,
			Help:    helpDuration,
			Buckets: prometheus.DefBuckets,
		},
		keys,
	)
	c.registerer.MustRegister(vec)

	entry := histogramEntry{keys: keys, vec: vec}
	c.histograms[metric] = entry

	return entry
}

func (c *Collector) counterFor(metric string, labels map[string]string) counterEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.counters[metric]; ok {
		return entry
	}

	keys := sortedKeys(labels)
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metric,
			Help: helpCounter,
		},
		keys,
	)
	c.registerer.MustRegister(vec)

	entry := counterEntry{keys: keys, vec: vec}
	c.counters[metric] = entry

	return entry
}

func (c *Collector) gaugeFor(metric string, labels map[string]string) gaugeEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.gauges[metric]; ok {
		return entry
	}

	keys := sortedKeys(labels)
	vec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: metric,
			Help: helpValue,
		},
		keys,
	)
	c.registerer.MustRegister(vec)

	entry := gaugeEntry{keys: keys, vec: vec}
	c.gauges[metric] = entry

	return entry
}

func sortedKeys(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for key := range labels {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}

// paddedLabels builds the full label set a vector expects, reporting an empty
// value for schema keys absent from the observation.
func paddedLabels(keys []string, labels map[string]string) prometheus.Labels {
	padded := make(prometheus.Labels, len(keys))
	for _, key := range keys {
		padded[key] = labels[key]
	}

	return padded
}
