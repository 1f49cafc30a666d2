package override

import (
	"context"
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMalformed(t *testing.T) {
	tests := []struct {
		name string
		o    Override
		want bool
	}{
		{"well formed", Override{ReferenceDate: date(2026, time.January, 1), CycleDays: 365}, false},
		{"zero cycle", Override{ReferenceDate: date(2026, time.January, 1), CycleDays: 0}, true},
		{"negative cycle", Override{ReferenceDate: date(2026, time.January, 1), CycleDays: -10}, true},
		{"zero reference date", Override{CycleDays: 365}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.o.Malformed(); got != tt.want {
				t.Errorf("Malformed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithinCycle(t *testing.T) {
	o := Override{ReferenceDate: date(2026, time.January, 1), CycleDays: 400}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"at reference date", date(2026, time.January, 1), true},
		{"well within", date(2026, time.June, 1), true},
		{"on day 400", date(2026, time.January, 1).AddDate(0, 0, 400), true},
		{"on day 401", date(2026, time.January, 1).AddDate(0, 0, 401), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := o.WithinCycle(tt.now); got != tt.want {
				t.Errorf("WithinCycle(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestNextDue(t *testing.T) {
	o := Override{ReferenceDate: date(2026, time.January, 1), CycleDays: 400}
	want := date(2027, time.February, 5)
	if got := o.NextDue(); !got.Equal(want) {
		t.Errorf("NextDue() = %v, want %v", got, want)
	}
}

func TestResolverActive(t *testing.T) {
	t.Run("no store", func(t *testing.T) {
		r := NewResolver(nil)
		o, err := r.Active(context.Background(), "p1", "m")
		if err != nil || o != nil {
			t.Errorf("Active() = %v, %v; want nil, nil", o, err)
		}
	})

	t.Run("single active override", func(t *testing.T) {
		store := NewMemoryStore()
		store.Add(Override{SubjectID: "p1", MeasureKey: "m", ReferenceDate: date(2026, time.January, 1), CycleDays: 400})

		o, err := NewResolver(store).Active(context.Background(), "p1", "m")
		if err != nil {
			t.Fatalf("Active() error = %v", err)
		}
		if o == nil || o.CycleDays != 400 {
			t.Errorf("Active() = %+v", o)
		}
	})

	t.Run("malformed treated as absent", func(t *testing.T) {
		store := NewMemoryStore()
		store.Add(Override{SubjectID: "p1", MeasureKey: "m", CycleDays: 400})
		store.Add(Override{SubjectID: "p1", MeasureKey: "m", ReferenceDate: date(2026, time.January, 1)})

		o, err := NewResolver(store).Active(context.Background(), "p1", "m")
		if err != nil {
			t.Fatalf("Active() error = %v", err)
		}
		if o != nil {
			t.Errorf("Active() = %+v, want nil", o)
		}
	})

	t.Run("elapsed cycle stays active", func(t *testing.T) {
		store := NewMemoryStore()
		store.Add(Override{SubjectID: "p1", MeasureKey: "m", ReferenceDate: date(2024, time.January, 1), CycleDays: 100})

		o, err := NewResolver(store).Active(context.Background(), "p1", "m")
		if err != nil {
			t.Fatalf("Active() error = %v", err)
		}
		if o == nil || o.CycleDays != 100 {
			t.Fatalf("Active() = %+v, want the stored override", o)
		}
		if o.WithinCycle(date(2026, time.June, 1)) {
			t.Error("WithinCycle() = true for a long-elapsed cycle")
		}
	})

	t.Run("conflicting overrides", func(t *testing.T) {
		store := NewMemoryStore()
		store.Add(Override{SubjectID: "p1", MeasureKey: "m", ReferenceDate: date(2026, time.January, 1), CycleDays: 400})
		store.Add(Override{SubjectID: "p1", MeasureKey: "m", ReferenceDate: date(2026, time.February, 1), CycleDays: 200})

		_, err := NewResolver(store).Active(context.Background(), "p1", "m")
		if !errors.Is(err, ErrConflictingOverrides) {
			t.Errorf("Active() error = %v, want ErrConflictingOverrides", err)
		}
	})

	t.Run("conflict survives one elapsed cycle", func(t *testing.T) {
		store := NewMemoryStore()
		store.Add(Override{SubjectID: "p1", MeasureKey: "m", ReferenceDate: date(2024, time.January, 1), CycleDays: 100})
		store.Add(Override{SubjectID: "p1", MeasureKey: "m", ReferenceDate: date(2026, time.February, 1), CycleDays: 200})

		_, err := NewResolver(store).Active(context.Background(), "p1", "m")
		if !errors.Is(err, ErrConflictingOverrides) {
			t.Errorf("Active() error = %v, want ErrConflictingOverrides", err)
		}
	})

	t.Run("other measure not consulted", func(t *testing.T) {
		store := NewMemoryStore()
		store.Add(Override{SubjectID: "p1", MeasureKey: "other", ReferenceDate: date(2026, time.January, 1), CycleDays: 400})

		o, err := NewResolver(store).Active(context.Background(), "p1", "m")
		if err != nil || o != nil {
			t.Errorf("Active() = %v, %v; want nil, nil", o, err)
		}
	})
}
