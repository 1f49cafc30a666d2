package engine

import (
	"context"
)

// inPopulation reports whether the subject belongs to the measure's initial
// population: inside the age band at the period end, of the required sex,
// with at least one qualifying encounter billed during the period.
func (e *Evaluator) inPopulation(ctx context.Context, ec *evalContext) (bool, error) {
	if ec.age < e.def.AgeMin || ec.age > e.def.AgeMax {
		return false, nil
	}
	if e.def.RequiredSex != "" && string(ec.subject.SexAtBirth) != e.def.RequiredSex {
		return false, nil
	}

	visits, err := e.gw.FindBillingWithCodes(ctx, ec.subject.ID, e.encounterCodes, ec.tf)
	if err != nil {
		return false, err
	}
	return len(visits) > 0, nil
}
