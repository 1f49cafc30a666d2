package cqm

import (
	"runtime"
	"time"
)

// Option configures an evaluation engine.
type Option func(*Options)

// Options holds all engine configuration.
type Options struct {
	// Now supplies the evaluation clock. Pinning it makes every
	// evaluation deterministic and reproducible, which the tests rely on.
	Now func() time.Time

	// LookbackMonths overrides the measure's standard numerator lookback
	// when > 0. Zero means use the measure definition's value.
	LookbackMonths int

	// WorkerCount is the parallelism used for batch evaluation.
	WorkerCount int

	// AttachRecommendations controls whether the measure's opaque
	// recommendation payload is attached to StatusDue results.
	AttachRecommendations bool

	// CollectMetrics enables per-evaluation and per-rule metric recording.
	CollectMetrics bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		Now:                   time.Now,
		LookbackMonths:        0, // measure default
		WorkerCount:           runtime.NumCPU(),
		AttachRecommendations: true,
		CollectMetrics:        true,
	}
}

// WithClock pins the evaluation clock.
// Batch callers and tests use this to make results reproducible.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.Now = now
		}
	}
}

// WithFixedNow pins the evaluation clock to a single instant.
func WithFixedNow(now time.Time) Option {
	return func(o *Options) {
		o.Now = func() time.Time { return now }
	}
}

// WithLookbackMonths overrides the measure's numerator lookback.
func WithLookbackMonths(months int) Option {
	return func(o *Options) {
		if months > 0 {
			o.LookbackMonths = months
		}
	}
}

// WithWorkerCount sets the batch evaluation parallelism.
// Defaults to runtime.NumCPU().
func WithWorkerCount(count int) Option {
	return func(o *Options) {
		if count > 0 {
			o.WorkerCount = count
		}
	}
}

// WithRecommendations enables or disables recommendation payloads on
// StatusDue results.
func WithRecommendations(enable bool) Option {
	return func(o *Options) {
		o.AttachRecommendations = enable
	}
}

// WithMetrics enables or disables metric collection.
func WithMetrics(enable bool) Option {
	return func(o *Options) {
		o.CollectMetrics = enable
	}
}
