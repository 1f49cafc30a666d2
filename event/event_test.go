package event

import (
	"errors"
	"testing"
)

func TestSubjectID(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{"condition", ConditionChanged{Subject: "p1", ConditionID: "c1"}, "p1"},
		{"medication", MedicationChanged{Subject: "p2"}, "p2"},
		{"observation", ObservationChanged{Subject: "p3"}, "p3"},
		{"encounter", EncounterChanged{Subject: "p4"}, "p4"},
		{"claim", ClaimChanged{Subject: "p5"}, "p5"},
		{"coverage", CoverageChanged{Subject: "p6"}, "p6"},
		{"questionnaire", QuestionnaireChanged{Subject: "p7"}, "p7"},
		{"subject", SubjectChanged{Subject: "p8"}, "p8"},
		{"override", OverrideChanged{Subject: "p9", MeasureKey: "m"}, "p9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SubjectID(tt.ev)
			if err != nil {
				t.Fatalf("SubjectID() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SubjectID() = %q, want %q", got, tt.want)
			}
		})
	}
}

type unknownEvent struct{}

func (unknownEvent) Kind() Kind { return Kind("unknown") }

func TestSubjectIDUnknownEvent(t *testing.T) {
	_, err := SubjectID(unknownEvent{})
	if !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("SubjectID() error = %v, want ErrUnknownEvent", err)
	}
}

func TestKinds(t *testing.T) {
	if (ConditionChanged{}).Kind() != KindConditionChanged {
		t.Error("ConditionChanged kind mismatch")
	}
	if (OverrideChanged{}).Kind() != KindOverrideChanged {
		t.Error("OverrideChanged kind mismatch")
	}
}
