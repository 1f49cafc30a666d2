// Package override carries clinician-entered screening-cycle adjustments.
//
// An override pins a subject to a custom screening cadence: the next due
// date is computed from the override's cycle length instead of the standard
// interval, and while the cycle is still running evidence is searched within
// the measurement period itself rather than the lookback window. An override
// whose cycle has elapsed keeps driving the due-date math; only the narrowed
// evidence window reverts.
package override

import (
	"context"
	"errors"
	"time"
)

// ErrConflictingOverrides reports more than one active, well-formed override
// for the same subject and measure. The engine cannot choose between them,
// so evaluation surfaces the conflict instead of guessing.
var ErrConflictingOverrides = errors.New("override: conflicting active overrides")

// Override adjusts the screening cadence for one subject under one measure.
type Override struct {
	SubjectID     string    `json:"subjectId"`
	MeasureKey    string    `json:"measureKey"`
	ReferenceDate time.Time `json:"referenceDate"`
	CycleDays     int       `json:"cycleDays"`
}

// Malformed reports whether the override is missing the fields needed to
// compute a cycle. Malformed overrides are treated as absent, never as
// errors.
func (o Override) Malformed() bool {
	return o.CycleDays <= 0 || o.ReferenceDate.IsZero()
}

// WithinCycle reports whether the override's cycle is still running at now.
func (o Override) WithinCycle(now time.Time) bool {
	if o.Malformed() {
		return false
	}
	elapsed := int(now.Sub(o.ReferenceDate) / (24 * time.Hour))
	return elapsed <= o.CycleDays
}

// NextDue returns the date the screening falls due under this override.
func (o Override) NextDue() time.Time {
	return o.ReferenceDate.AddDate(0, 0, o.CycleDays)
}

// Store retrieves the overrides recorded for a subject under a measure.
type Store interface {
	// ActiveOverrides returns every stored override for the subject and
	// measure, well-formed or not. Absence is an empty slice, not an error.
	ActiveOverrides(ctx context.Context, subjectID, measureKey string) ([]Override, error)
}

// Resolver narrows a store's overrides down to the single one, if any, that
// should drive evaluation.
type Resolver struct {
	store Store
}

// NewResolver creates a resolver over the given store. A nil store resolves
// to no override for every subject.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Active returns the single well-formed override stored for the subject, or
// nil when there is none. Malformed overrides are skipped. An elapsed cycle
// does not deactivate an override; callers consult WithinCycle when the
// distinction matters. More than one candidate yields
// ErrConflictingOverrides.
func (r *Resolver) Active(ctx context.Context, subjectID, measureKey string) (*Override, error) {
	if r == nil || r.store == nil {
		return nil, nil
	}
	overrides, err := r.store.ActiveOverrides(ctx, subjectID, measureKey)
	if err != nil {
		return nil, err
	}
	var active *Override
	for i := range overrides {
		o := overrides[i]
		if o.Malformed() {
			continue
		}
		if active != nil {
			return nil, ErrConflictingOverrides
		}
		active = &o
	}
	return active, nil
}
