package engine

import (
	"context"
	"time"

	"github.com/gofhir/cqm/gateway"
	"github.com/gofhir/cqm/timeframe"
)

// findEvidence searches for the most recent qualifying screening evidence
// and returns its effective date, or nil when none exists.
//
// Under the standard cadence the window is the measurement period extended
// backwards by the lookback. A cadence override whose cycle is still running
// narrows the search to the unshifted period; an elapsed cycle restores the
// standard window while still governing the due-date math.
//
// Billing records are authoritative and checked first; imaging reports are
// the fallback for screenings performed outside the billing system. Imaging
// evidence must start inside the window, so an open-ended report from years
// back cannot satisfy the measure.
func (e *Evaluator) findEvidence(ctx context.Context, ec *evalContext) (*time.Time, error) {
	window := e.evidenceWindow(ec)

	billed, err := e.gw.FindBillingWithCodes(ctx, ec.subject.ID, e.screeningCodes, window)
	if err != nil {
		return nil, err
	}
	if len(billed) > 0 {
		d := billed[0].EffectiveStart
		return &d, nil
	}

	imaging, err := e.gw.FindRecordsOverlapping(ctx, ec.subject.ID, gateway.KindImaging, e.imagingSet, window)
	if err != nil {
		return nil, err
	}
	for _, rec := range imaging {
		if window.Contains(rec.EffectiveStart) {
			d := rec.EffectiveStart
			return &d, nil
		}
	}
	return nil, nil
}

func (e *Evaluator) evidenceWindow(ec *evalContext) timeframe.Timeframe {
	if ec.override != nil && ec.override.WithinCycle(ec.now) {
		return ec.tf
	}
	return ec.tf.ShiftStartMonths(-e.lookbackMonths())
}
