// Package gateway defines the read-only clinical-record interfaces the
// evaluation engine consumes, the record shapes they return, and an
// in-memory implementation used by tests and the CLI.
//
// Persistence is an external collaborator: production deployments implement
// EntityGateway over their own store. Absence of data is never an error;
// transient lookup failures surface as UnavailableError and are propagated
// unchanged by the engine, which fails closed rather than resolving an
// unanswered exclusion query to "not excluded".
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofhir/cqm/timeframe"
	"github.com/gofhir/cqm/valueset"
)

// ErrSubjectNotFound is returned when a subject cannot be resolved.
// Batch callers skip the subject and record the error, never abort the run.
var ErrSubjectNotFound = errors.New("gateway: subject not found")

// UnavailableError wraps a transient lookup failure. The engine never
// retries; batch callers retry with backoff or skip-and-report.
type UnavailableError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *UnavailableError) Error() string {
	return fmt.Sprintf("gateway: %s unavailable: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Unavailable wraps err as a transient failure of op.
func Unavailable(op string, err error) error {
	return &UnavailableError{Op: op, Err: err}
}

// Sex is a subject's sex at birth.
type Sex string

// Sex-at-birth values.
const (
	SexFemale Sex = "F"
	SexMale   Sex = "M"
)

// Subject is the read-only demographic snapshot an evaluation runs against.
type Subject struct {
	ID         string    `json:"id"`
	SexAtBirth Sex       `json:"sexAtBirth"`
	BirthDate  time.Time `json:"birthDate"`
}

// AgeAt returns the subject's age in whole years at the given instant.
func (s Subject) AgeAt(at time.Time) int {
	age := at.Year() - s.BirthDate.Year()
	// Birthday not yet reached this year
	anniversary := s.BirthDate.AddDate(age, 0, 0)
	if anniversary.After(at) {
		age--
	}
	return age
}

// RecordKind distinguishes the clinical record sources the engine queries.
type RecordKind string

// Record kinds.
const (
	KindCondition             RecordKind = "condition"
	KindBilling               RecordKind = "billing"
	KindMedication            RecordKind = "medication"
	KindImaging               RecordKind = "imaging"
	KindQuestionnaireResponse RecordKind = "questionnaire-response"
)

// ClinicalRecord is the generic shape covering conditions, billing line
// items, medications, imaging reports, and questionnaire responses.
//
// EffectiveEnd == nil means "still active / unresolved". Point-in-time
// events (billing services, imaging studies) carry EffectiveEnd equal to
// EffectiveStart.
type ClinicalRecord struct {
	SubjectID      string          `json:"subjectId"`
	Kind           RecordKind      `json:"kind"`
	Codes          []valueset.Code `json:"codes"`
	EffectiveStart time.Time       `json:"effectiveStart"`
	EffectiveEnd   *time.Time      `json:"effectiveEnd,omitempty"`

	// Payload optionally carries the raw source resource (e.g. a FHIR
	// QuestionnaireResponse as JSON) for expression-based matching.
	Payload []byte `json:"payload,omitempty"`
}

// Overlaps implements the prevalence-period overlap rule: a record overlaps
// a window iff effectiveStart <= window.End and (effectiveEnd is nil or
// effectiveEnd >= window.Start). Both comparisons are inclusive.
func (r ClinicalRecord) Overlaps(tf timeframe.Timeframe) bool {
	if r.EffectiveStart.After(tf.End()) {
		return false
	}
	return r.EffectiveEnd == nil || !r.EffectiveEnd.Before(tf.Start())
}

// MatchesSet reports whether any of the record's codes is in the set.
func (r ClinicalRecord) MatchesSet(set *valueset.CodeSet) bool {
	return set != nil && set.ContainsAny(r.Codes)
}

// MatchesLookup reports whether any code value is in the flat lookup,
// regardless of coding system.
func (r ClinicalRecord) MatchesLookup(lookup valueset.Lookup) bool {
	for _, c := range r.Codes {
		if lookup.Contains(c.Value) {
			return true
		}
	}
	return false
}

// Coverage is one insurance coverage row.
type Coverage struct {
	SubjectID string     `json:"subjectId"`
	TypeCode  string     `json:"typeCode"`
	PlanName  string     `json:"planName,omitempty"`
	Start     time.Time  `json:"start"`
	End       *time.Time `json:"end,omitempty"`
}

// ActiveAt reports whether the coverage is active as of the instant.
func (c Coverage) ActiveAt(at time.Time) bool {
	if c.Start.After(at) {
		return false
	}
	return c.End == nil || !c.End.Before(at)
}

// EntityGateway is the read-only lookup surface for clinical records.
// All record-returning methods yield sequences ordered by relevance (most
// recent effective date first) and may be empty; absence of data is not an
// error. Every call is individually cancellable through ctx.
type EntityGateway interface {
	// FindSubject resolves a subject snapshot, or ErrSubjectNotFound.
	FindSubject(ctx context.Context, subjectID string) (*Subject, error)

	// FindRecordsOverlapping returns records of one kind whose codes
	// match the set and whose effective period overlaps the timeframe
	// under the prevalence-period overlap rule.
	FindRecordsOverlapping(ctx context.Context, subjectID string, kind RecordKind, set *valueset.CodeSet, tf timeframe.Timeframe) ([]ClinicalRecord, error)

	// FindBillingWithCodes returns billing records whose service date
	// falls inside the timeframe and whose code value is in the lookup.
	FindBillingWithCodes(ctx context.Context, subjectID string, codes valueset.Lookup, tf timeframe.Timeframe) ([]ClinicalRecord, error)

	// FindQuestionnaireResponses returns questionnaire responses whose
	// codes match the set, most recent first, across all time.
	FindQuestionnaireResponses(ctx context.Context, subjectID string, set *valueset.CodeSet) ([]ClinicalRecord, error)

	// FindCoverage returns coverage rows active as of the instant.
	FindCoverage(ctx context.Context, subjectID string, asOf time.Time) ([]Coverage, error)
}
