// Package event defines the change notifications that trigger re-evaluation.
//
// Each clinical change arrives as a typed payload implementing Event. A
// single dispatch point, SubjectID, maps any event to the subject whose
// results it may affect; unknown event types are an error there rather than
// a silent no-op.
package event

import (
	"errors"
	"fmt"
)

// ErrUnknownEvent reports an event type the dispatcher does not recognize.
var ErrUnknownEvent = errors.New("event: unknown event type")

// Kind identifies an event's payload type.
type Kind string

const (
	KindConditionChanged     Kind = "condition_changed"
	KindMedicationChanged    Kind = "medication_changed"
	KindObservationChanged   Kind = "observation_changed"
	KindEncounterChanged     Kind = "encounter_changed"
	KindClaimChanged         Kind = "claim_changed"
	KindCoverageChanged      Kind = "coverage_changed"
	KindQuestionnaireChanged Kind = "questionnaire_response_changed"
	KindSubjectChanged       Kind = "subject_changed"
	KindOverrideChanged      Kind = "override_changed"
)

// Event is a clinical change notification.
type Event interface {
	Kind() Kind
}

// ConditionChanged signals a created or updated diagnosis.
type ConditionChanged struct {
	Subject     string
	ConditionID string
}

func (ConditionChanged) Kind() Kind { return KindConditionChanged }

// MedicationChanged signals a created or updated medication statement.
type MedicationChanged struct {
	Subject      string
	MedicationID string
}

func (MedicationChanged) Kind() Kind { return KindMedicationChanged }

// ObservationChanged signals a created or updated observation, including
// imaging reports.
type ObservationChanged struct {
	Subject       string
	ObservationID string
}

func (ObservationChanged) Kind() Kind { return KindObservationChanged }

// EncounterChanged signals a created or updated encounter.
type EncounterChanged struct {
	Subject     string
	EncounterID string
}

func (EncounterChanged) Kind() Kind { return KindEncounterChanged }

// ClaimChanged signals a created or updated billing line item.
type ClaimChanged struct {
	Subject string
	ClaimID string
}

func (ClaimChanged) Kind() Kind { return KindClaimChanged }

// CoverageChanged signals a created or updated insurance coverage.
type CoverageChanged struct {
	Subject    string
	CoverageID string
}

func (CoverageChanged) Kind() Kind { return KindCoverageChanged }

// QuestionnaireChanged signals a created or updated questionnaire response.
type QuestionnaireChanged struct {
	Subject    string
	ResponseID string
}

func (QuestionnaireChanged) Kind() Kind { return KindQuestionnaireChanged }

// SubjectChanged signals a demographic update on the subject itself.
type SubjectChanged struct {
	Subject string
}

func (SubjectChanged) Kind() Kind { return KindSubjectChanged }

// OverrideChanged signals a created, updated, or removed cadence override.
type OverrideChanged struct {
	Subject    string
	MeasureKey string
}

func (OverrideChanged) Kind() Kind { return KindOverrideChanged }

// SubjectID maps an event to the subject it concerns. Adding a new event
// type without extending this switch yields ErrUnknownEvent at runtime, so
// the mapping can never drift silently.
func SubjectID(ev Event) (string, error) {
	switch e := ev.(type) {
	case ConditionChanged:
		return e.Subject, nil
	case MedicationChanged:
		return e.Subject, nil
	case ObservationChanged:
		return e.Subject, nil
	case EncounterChanged:
		return e.Subject, nil
	case ClaimChanged:
		return e.Subject, nil
	case CoverageChanged:
		return e.Subject, nil
	case QuestionnaireChanged:
		return e.Subject, nil
	case SubjectChanged:
		return e.Subject, nil
	case OverrideChanged:
		return e.Subject, nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
}
