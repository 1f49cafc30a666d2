package cqm

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestStatusIsValid(t *testing.T) {
	for _, s := range []Status{StatusNotApplicable, StatusDue, StatusSatisfied} {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Status("pending").IsValid() {
		t.Error("unknown status should be invalid")
	}
}

func TestResultPredicates(t *testing.T) {
	tests := []struct {
		status      Status
		denominator bool
		satisfied   bool
	}{
		{StatusNotApplicable, false, false},
		{StatusDue, true, false},
		{StatusSatisfied, true, true},
	}

	for _, tt := range tests {
		r := &Result{Status: tt.status}
		if r.InDenominator() != tt.denominator {
			t.Errorf("%s: InDenominator() = %v", tt.status, r.InDenominator())
		}
		if r.Satisfied() != tt.satisfied {
			t.Errorf("%s: Satisfied() = %v", tt.status, r.Satisfied())
		}
	}
}

func TestResultString(t *testing.T) {
	due := -1
	stratum := 2
	r := &Result{
		SubjectID:  "p1",
		MeasureKey: "breast-cancer-screening",
		Status:     StatusDue,
		DueInDays:  &due,
		Stratum:    &stratum,
	}

	s := r.String()
	for _, want := range []string{"p1", "due", "-1", "stratum 2"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}

func TestResultClone(t *testing.T) {
	due := 410
	stratum := 1
	evidence := time.Date(2025, time.November, 15, 0, 0, 0, 0, time.UTC)
	r := &Result{
		SubjectID:      "p1",
		Status:         StatusSatisfied,
		DueInDays:      &due,
		Stratum:        &stratum,
		EvidenceDate:   &evidence,
		Recommendation: json.RawMessage(`{"title":"x"}`),
	}

	clone := r.Clone()

	*clone.DueInDays = 99
	*clone.Stratum = 9
	clone.Recommendation[0] = '['

	if *r.DueInDays != 410 || *r.Stratum != 1 {
		t.Error("Clone() shares pointer fields with the original")
	}
	if r.Recommendation[0] != '{' {
		t.Error("Clone() shares the recommendation buffer")
	}
}

func TestResultJSONOmitsEmpty(t *testing.T) {
	r := &Result{SubjectID: "p1", MeasureKey: "m", Status: StatusNotApplicable}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, forbidden := range []string{"dueInDays", "stratum", "evidenceDate", "narrative", "recommendation"} {
		if strings.Contains(string(data), forbidden) {
			t.Errorf("marshalled silent result contains %q: %s", forbidden, data)
		}
	}
}
