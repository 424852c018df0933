package metrics

import (
	"sync"
	"sync/atomic"
)

// Collector collects and aggregates metrics for the application.
type Collector struct {
	// Authorization decision metrics
	decisionsPassed sync.Map // map[string]*uint64 - permission -> passed count
	decisionsFailed sync.Map // map[string]*uint64 - permission -> failed count

	// Scope construction metrics
	scopesRestricted sync.Map // map[string]*uint64 - entity kind -> restricted scope count
	scopesAdmin      sync.Map // map[string]*uint64 - entity kind -> unrestricted scope count

	// Optional Prometheus exporter, forwarded to when set
	exporter *PrometheusExporter
}

// DecisionMetrics holds permission decision metrics.
type DecisionMetrics struct {
	PassedCounts map[string]uint64
	FailedCounts map[string]uint64
}

// ScopeMetrics holds scope construction metrics.
type ScopeMetrics struct {
	RestrictedCounts map[string]uint64
	AdminCounts      map[string]uint64
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{}
}

// SetExporter sets the Prometheus exporter to forward recordings to.
func (c *Collector) SetExporter(exporter *PrometheusExporter) {
	c.exporter = exporter
}

// RecordDecision records the outcome of a permission check.
func (c *Collector) RecordDecision(permission string, passed bool) {
	if passed {
		counter := c.getOrCreateCounter(&c.decisionsPassed, permission)
		atomic.AddUint64(counter, 1)
	} else {
		counter := c.getOrCreateCounter(&c.decisionsFailed, permission)
		atomic.AddUint64(counter, 1)
	}
	if c.exporter != nil {
		c.exporter.RecordDecision(permission, passed)
	}
}

// RecordScope records the construction of a visibility scope.
func (c *Collector) RecordScope(kind string, admin bool) {
	if admin {
		counter := c.getOrCreateCounter(&c.scopesAdmin, kind)
		atomic.AddUint64(counter, 1)
	} else {
		counter := c.getOrCreateCounter(&c.scopesRestricted, kind)
		atomic.AddUint64(counter, 1)
	}
	if c.exporter != nil {
		c.exporter.RecordScope(kind, admin)
	}
}

// GetDecisionMetrics returns current permission decision metrics.
func (c *Collector) GetDecisionMetrics() *DecisionMetrics {
	result := &DecisionMetrics{
		PassedCounts: make(map[string]uint64),
		FailedCounts: make(map[string]uint64),
	}

	c.decisionsPassed.Range(func(key, value interface{}) bool {
		result.PassedCounts[key.(string)] = atomic.LoadUint64(value.(*uint64))
		return true
	})

	c.decisionsFailed.Range(func(key, value interface{}) bool {
		result.FailedCounts[key.(string)] = atomic.LoadUint64(value.(*uint64))
		return true
	})

	return result
}

// GetScopeMetrics returns current scope construction metrics.
func (c *Collector) GetScopeMetrics() *ScopeMetrics {
	result := &ScopeMetrics{
		RestrictedCounts: make(map[string]uint64),
		AdminCounts:      make(map[string]uint64),
	}

	c.scopesRestricted.Range(func(key, value interface{}) bool {
		result.RestrictedCounts[key.(string)] = atomic.LoadUint64(value.(*uint64))
		return true
	})

	c.scopesAdmin.Range(func(key, value interface{}) bool {
		result.AdminCounts[key.(string)] = atomic.LoadUint64(value.(*uint64))
		return true
	})

	return result
}

// getOrCreateCounter gets or creates an atomic counter for the given key.
func (c *Collector) getOrCreateCounter(m *sync.Map, key string) *uint64 {
	val, _ := m.LoadOrStore(key, new(uint64))
	return val.(*uint64)
}
