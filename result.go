package cqm

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the outcome of evaluating one subject against one measure.
// Exactly one status is emitted per evaluation; statuses are terminal and
// never resumable across calls.
type Status string

const (
	// StatusNotApplicable means the subject is outside the initial
	// population, or is a population member removed by an exclusion.
	StatusNotApplicable Status = "not_applicable"

	// StatusDue means the subject is a denominator member with no
	// qualifying evidence in the search window.
	StatusDue Status = "due"

	// StatusSatisfied means qualifying evidence was found.
	StatusSatisfied Status = "satisfied"
)

// String returns the status string.
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if this is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusNotApplicable, StatusDue, StatusSatisfied:
		return true
	default:
		return false
	}
}

// Result is the structured outcome of one evaluation.
// It is created fresh per evaluation and never mutated after construction;
// the engine holds no reference to it across calls.
type Result struct {
	// SubjectID identifies the evaluated subject.
	SubjectID string `json:"subjectId"`

	// MeasureKey identifies the measure the subject was evaluated against.
	MeasureKey string `json:"measureKey"`

	// Status is the three-state outcome.
	Status Status `json:"status"`

	// DueInDays is the day count until the next required action.
	// Negative means overdue (-1 for a due screening). Nil when no due
	// date applies (e.g. silently excluded subjects).
	DueInDays *int `json:"dueInDays,omitempty"`

	// Stratum is the denominator reporting bucket. Set whenever
	// denominator membership was established (StatusDue and
	// StatusSatisfied), nil for StatusNotApplicable.
	Stratum *int `json:"stratum,omitempty"`

	// EvidenceDate is the effective date of the most recent qualifying
	// evidence. Only set for StatusSatisfied.
	EvidenceDate *time.Time `json:"evidenceDate,omitempty"`

	// Narrative is human-readable text describing the outcome.
	Narrative string `json:"narrative,omitempty"`

	// Recommendation is an opaque payload attached when the measure is
	// due. It is produced by an external collaborator (the measure
	// definition carries it verbatim); the engine merely attaches it.
	Recommendation json.RawMessage `json:"recommendation,omitempty"`
}

// InDenominator reports whether denominator membership was established.
func (r *Result) InDenominator() bool {
	return r.Status == StatusDue || r.Status == StatusSatisfied
}

// Satisfied reports whether qualifying evidence was found.
func (r *Result) Satisfied() bool {
	return r.Status == StatusSatisfied
}

// String returns a one-line summary, useful in logs and CLI output.
func (r *Result) String() string {
	s := fmt.Sprintf("%s %s: %s", r.MeasureKey, r.SubjectID, r.Status)
	if r.DueInDays != nil {
		s += fmt.Sprintf(" (due in %d days)", *r.DueInDays)
	}
	if r.Stratum != nil {
		s += fmt.Sprintf(" [stratum %d]", *r.Stratum)
	}
	return s
}

// Clone returns a deep copy of the result.
func (r *Result) Clone() *Result {
	clone := *r
	if r.DueInDays != nil {
		v := *r.DueInDays
		clone.DueInDays = &v
	}
	if r.Stratum != nil {
		v := *r.Stratum
		clone.Stratum = &v
	}
	if r.EvidenceDate != nil {
		v := *r.EvidenceDate
		clone.EvidenceDate = &v
	}
	if r.Recommendation != nil {
		clone.Recommendation = append(json.RawMessage(nil), r.Recommendation...)
	}
	return &clone
}
