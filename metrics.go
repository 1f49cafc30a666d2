package cqm

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks evaluation performance using lock-free atomic operations.
// All methods are safe for concurrent use, so one Metrics instance can be
// shared by every worker in a batch run.
type Metrics struct {
	// Evaluation counts
	evaluationsTotal atomic.Uint64
	notApplicable    atomic.Uint64
	due              atomic.Uint64
	satisfied        atomic.Uint64

	// Timing (stored as nanoseconds)
	evalTimeTotal atomic.Uint64
	evalTimeMin   atomic.Uint64
	evalTimeMax   atomic.Uint64

	// Exclusion counts
	exclusionsTotal atomic.Uint64

	// Per-rule timing
	ruleTiming sync.Map // map[string]*ruleMetrics
}

// ruleMetrics tracks metrics for a single exclusion rule.
type ruleMetrics struct {
	invocations atomic.Uint64
	totalTime   atomic.Uint64 // nanoseconds
	matches     atomic.Uint64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	// Initialize min to max uint64 so first value becomes the minimum
	m.evalTimeMin.Store(^uint64(0))
	return m
}

// RecordEvaluation records a completed evaluation.
func (m *Metrics) RecordEvaluation(duration time.Duration, status Status) {
	m.evaluationsTotal.Add(1)
	switch status {
	case StatusNotApplicable:
		m.notApplicable.Add(1)
	case StatusDue:
		m.due.Add(1)
	case StatusSatisfied:
		m.satisfied.Add(1)
	}

	ns := uint64(duration.Nanoseconds())
	m.evalTimeTotal.Add(ns)

	// Update min (CAS loop)
	for {
		old := m.evalTimeMin.Load()
		if ns >= old {
			break
		}
		if m.evalTimeMin.CompareAndSwap(old, ns) {
			break
		}
	}

	// Update max (CAS loop)
	for {
		old := m.evalTimeMax.Load()
		if ns <= old {
			break
		}
		if m.evalTimeMax.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordRule records one exclusion-rule invocation.
func (m *Metrics) RecordRule(name string, duration time.Duration, matched bool) {
	v, _ := m.ruleTiming.LoadOrStore(name, &ruleMetrics{})
	rm := v.(*ruleMetrics)
	rm.invocations.Add(1)
	rm.totalTime.Add(uint64(duration.Nanoseconds()))
	if matched {
		rm.matches.Add(1)
		m.exclusionsTotal.Add(1)
	}
}

// Snapshot is a point-in-time copy of the metrics.
type Snapshot struct {
	Evaluations   uint64         `json:"evaluations"`
	NotApplicable uint64         `json:"notApplicable"`
	Due           uint64         `json:"due"`
	Satisfied     uint64         `json:"satisfied"`
	Exclusions    uint64         `json:"exclusions"`
	AvgTime       time.Duration  `json:"avgTime"`
	MinTime       time.Duration  `json:"minTime"`
	MaxTime       time.Duration  `json:"maxTime"`
	Rules         []RuleSnapshot `json:"rules,omitempty"`
}

// RuleSnapshot is a point-in-time copy of one rule's metrics.
type RuleSnapshot struct {
	Name        string        `json:"name"`
	Invocations uint64        `json:"invocations"`
	Matches     uint64        `json:"matches"`
	AvgTime     time.Duration `json:"avgTime"`
}

// Snapshot returns a consistent-enough copy of the current metrics.
func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		Evaluations:   m.evaluationsTotal.Load(),
		NotApplicable: m.notApplicable.Load(),
		Due:           m.due.Load(),
		Satisfied:     m.satisfied.Load(),
		Exclusions:    m.exclusionsTotal.Load(),
	}

	if s.Evaluations > 0 {
		s.AvgTime = time.Duration(m.evalTimeTotal.Load() / s.Evaluations)
	}
	if min := m.evalTimeMin.Load(); min != ^uint64(0) {
		s.MinTime = time.Duration(min)
	}
	s.MaxTime = time.Duration(m.evalTimeMax.Load())

	m.ruleTiming.Range(func(key, value any) bool {
		rm := value.(*ruleMetrics)
		rs := RuleSnapshot{
			Name:        key.(string),
			Invocations: rm.invocations.Load(),
			Matches:     rm.matches.Load(),
		}
		if rs.Invocations > 0 {
			rs.AvgTime = time.Duration(rm.totalTime.Load() / rs.Invocations)
		}
		s.Rules = append(s.Rules, rs)
		return true
	})

	return s
}

// Reset zeroes all metrics.
func (m *Metrics) Reset() {
	m.evaluationsTotal.Store(0)
	m.notApplicable.Store(0)
	m.due.Store(0)
	m.satisfied.Store(0)
	m.exclusionsTotal.Store(0)
	m.evalTimeTotal.Store(0)
	m.evalTimeMin.Store(^uint64(0))
	m.evalTimeMax.Store(0)
	m.ruleTiming.Range(func(key, _ any) bool {
		m.ruleTiming.Delete(key)
		return true
	})
}
