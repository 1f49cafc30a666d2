// Package timeframe provides the immutable reporting period that measure
// compliance is evaluated over.
package timeframe

import (
	"fmt"
	"time"
)

// InvalidTimeframeError is returned when a timeframe's start instant is
// after its end instant. It is fatal to the call that constructed it.
type InvalidTimeframeError struct {
	Start time.Time
	End   time.Time
}

// Error implements error.
func (e *InvalidTimeframeError) Error() string {
	return fmt.Sprintf("timeframe: start %s is after end %s",
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// Timeframe is an immutable start/end instant pair with start <= end.
// Both bounds are inclusive. The zero value is a degenerate empty period at
// the zero instant; callers should construct via New.
type Timeframe struct {
	start time.Time
	end   time.Time
}

// New creates a Timeframe, rejecting start > end with InvalidTimeframeError.
func New(start, end time.Time) (Timeframe, error) {
	if start.After(end) {
		return Timeframe{}, &InvalidTimeframeError{Start: start, End: end}
	}
	return Timeframe{start: start, end: end}, nil
}

// MustNew is New for statically-known-valid bounds; it panics on error.
func MustNew(start, end time.Time) Timeframe {
	tf, err := New(start, end)
	if err != nil {
		panic(err)
	}
	return tf
}

// UpTo returns a timeframe with no lower bound (the zero instant) ending at
// end. Permanent-state queries (e.g. a structural exclusion that is true
// forever once true) search all time up to the period's end.
func UpTo(end time.Time) Timeframe {
	return Timeframe{end: end}
}

// Start returns the inclusive start instant.
func (t Timeframe) Start() time.Time {
	return t.start
}

// End returns the inclusive end instant.
func (t Timeframe) End() time.Time {
	return t.end
}

// DurationDays returns end - start in whole days.
func (t Timeframe) DurationDays() int {
	return int(t.end.Sub(t.start) / (24 * time.Hour))
}

// Contains reports whether instant falls inside the period, bounds included.
func (t Timeframe) Contains(instant time.Time) bool {
	return !instant.Before(t.start) && !instant.After(t.end)
}

// ShiftDays returns a new Timeframe with both bounds advanced by the same
// signed day offset.
func (t Timeframe) ShiftDays(days int) Timeframe {
	return Timeframe{
		start: t.start.AddDate(0, 0, days),
		end:   t.end.AddDate(0, 0, days),
	}
}

// ShiftMonths returns a new Timeframe with both bounds advanced by the same
// signed month offset.
func (t Timeframe) ShiftMonths(months int) Timeframe {
	return Timeframe{
		start: t.start.AddDate(0, months, 0),
		end:   t.end.AddDate(0, months, 0),
	}
}

// ShiftYears returns a new Timeframe with both bounds advanced by the same
// signed year offset.
func (t Timeframe) ShiftYears(years int) Timeframe {
	return Timeframe{
		start: t.start.AddDate(years, 0, 0),
		end:   t.end.AddDate(years, 0, 0),
	}
}

// ShiftStartDays returns a new Timeframe with only the start advanced by a
// signed day offset. Shifting the start past the end panics via MustNew.
func (t Timeframe) ShiftStartDays(days int) Timeframe {
	return MustNew(t.start.AddDate(0, 0, days), t.end)
}

// ShiftStartMonths returns a new Timeframe with only the start advanced by a
// signed month offset.
func (t Timeframe) ShiftStartMonths(months int) Timeframe {
	return MustNew(t.start.AddDate(0, months, 0), t.end)
}

// ShiftStartYears returns a new Timeframe with only the start advanced by a
// signed year offset.
func (t Timeframe) ShiftStartYears(years int) Timeframe {
	return MustNew(t.start.AddDate(years, 0, 0), t.end)
}

// ShiftEndDays returns a new Timeframe with only the end advanced by a
// signed day offset.
func (t Timeframe) ShiftEndDays(days int) Timeframe {
	return MustNew(t.start, t.end.AddDate(0, 0, days))
}

// ShiftEndMonths returns a new Timeframe with only the end advanced by a
// signed month offset.
func (t Timeframe) ShiftEndMonths(months int) Timeframe {
	return MustNew(t.start, t.end.AddDate(0, months, 0))
}

// ShiftEndYears returns a new Timeframe with only the end advanced by a
// signed year offset.
func (t Timeframe) ShiftEndYears(years int) Timeframe {
	return MustNew(t.start, t.end.AddDate(years, 0, 0))
}

// String returns "start..end" in RFC 3339.
func (t Timeframe) String() string {
	return t.start.Format(time.RFC3339) + ".." + t.end.Format(time.RFC3339)
}
