// Package engine evaluates subjects against declarative quality measures.
//
// An Evaluator is built once per measure definition and reused across any
// number of subjects and goroutines. Evaluation is pure: all clinical state
// comes in through the gateway, all time comes from the configured clock,
// and the only output is the returned Result.
package engine

import (
	"context"
	"fmt"
	"time"

	cqm "github.com/gofhir/cqm"
	"github.com/gofhir/cqm/event"
	"github.com/gofhir/cqm/gateway"
	"github.com/gofhir/cqm/measure"
	"github.com/gofhir/cqm/override"
	"github.com/gofhir/cqm/timeframe"
	"github.com/gofhir/cqm/valueset"
)

// Evaluator evaluates subjects against one measure definition.
type Evaluator struct {
	def       *measure.Definition
	gw        gateway.EntityGateway
	overrides *override.Resolver
	options   *cqm.Options
	metrics   *cqm.Metrics

	// Bindings resolved against the registry at construction time.
	encounterCodes valueset.Lookup
	screeningCodes valueset.Lookup
	imagingSet     *valueset.CodeSet

	rules   []exclusionRule
	matcher *responseMatcher
}

// New creates an Evaluator for the definition, resolving every value-set
// binding against the registry. An invalid definition or an unregistered
// binding fails here, never at evaluation time.
func New(def *measure.Definition, gw gateway.EntityGateway, overrides *override.Resolver, registry *valueset.Registry, opts ...cqm.Option) (*Evaluator, error) {
	if def == nil {
		return nil, fmt.Errorf("engine: nil measure definition")
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if gw == nil {
		return nil, fmt.Errorf("engine: nil gateway")
	}
	if registry == nil {
		return nil, fmt.Errorf("engine: nil value-set registry")
	}

	options := cqm.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	e := &Evaluator{
		def:       def,
		gw:        gw,
		overrides: overrides,
		options:   options,
		metrics:   cqm.NewMetrics(),
		matcher:   newResponseMatcher(),
	}

	var err error
	if e.encounterCodes, err = e.lookupFor(measure.RoleQualifyingEncounter, registry); err != nil {
		return nil, err
	}
	if e.screeningCodes, err = e.lookupFor(measure.RoleScreeningProcedure, registry); err != nil {
		return nil, err
	}
	if e.imagingSet, err = e.mergedSet(measure.RoleScreeningImaging, registry); err != nil {
		return nil, err
	}

	if err := e.buildExclusionRules(registry); err != nil {
		return nil, err
	}
	return e, nil
}

// lookupFor resolves a role's bindings into a flat code-value lookup
// spanning every coding system in the bound sets.
func (e *Evaluator) lookupFor(role measure.Role, registry *valueset.Registry) (valueset.Lookup, error) {
	sets, err := e.resolveRole(role, registry)
	if err != nil {
		return nil, err
	}
	lookup := make(valueset.Lookup)
	for _, s := range sets {
		for _, sys := range s.Systems() {
			for _, v := range s.Codes(sys) {
				lookup.Add(v)
			}
		}
	}
	return lookup, nil
}

// mergedSet resolves a role's bindings into one combined code set.
func (e *Evaluator) mergedSet(role measure.Role, registry *valueset.Registry) (*valueset.CodeSet, error) {
	sets, err := e.resolveRole(role, registry)
	if err != nil {
		return nil, err
	}
	return valueset.Merge(string(role), sets...), nil
}

func (e *Evaluator) resolveRole(role measure.Role, registry *valueset.Registry) ([]*valueset.CodeSet, error) {
	names, ok := e.def.Bindings[role]
	if !ok {
		return nil, fmt.Errorf("engine: measure %s has no binding for role %s", e.def.Key, role)
	}
	sets, err := registry.Resolve(names...)
	if err != nil {
		return nil, fmt.Errorf("engine: role %s: %w", role, err)
	}
	return sets, nil
}

// evalContext carries the per-evaluation state through the population,
// exclusion, and numerator steps.
type evalContext struct {
	subject  *gateway.Subject
	age      int
	tf       timeframe.Timeframe
	now      time.Time
	override *override.Override
}

// Evaluate runs the full classification for one subject over one
// measurement period. It never mutates the subject or any gateway state;
// calling it twice with the same inputs yields identical results.
func (e *Evaluator) Evaluate(ctx context.Context, subject *gateway.Subject, tf timeframe.Timeframe) (*cqm.Result, error) {
	if subject == nil {
		return nil, fmt.Errorf("engine: nil subject")
	}
	start := time.Now()

	ec := &evalContext{
		subject: subject,
		age:     subject.AgeAt(tf.End()),
		tf:      tf,
		now:     e.options.Now(),
	}

	result, err := e.evaluate(ctx, ec)
	if err != nil {
		return nil, err
	}
	if e.options.CollectMetrics {
		e.metrics.RecordEvaluation(time.Since(start), result.Status)
	}
	return result, nil
}

func (e *Evaluator) evaluate(ctx context.Context, ec *evalContext) (*cqm.Result, error) {
	result := &cqm.Result{
		SubjectID:  ec.subject.ID,
		MeasureKey: e.def.Key,
		Status:     cqm.StatusNotApplicable,
	}

	member, err := e.inPopulation(ctx, ec)
	if err != nil {
		return nil, err
	}
	if !member {
		if err := e.attachEligibilityCountdown(ctx, ec, result); err != nil {
			return nil, err
		}
		return result, nil
	}

	excluded, err := e.excluded(ctx, ec)
	if err != nil {
		return nil, err
	}
	if excluded {
		// Excluded subjects leave the measure silently: no due date, no
		// narrative, nothing for a clinician to act on.
		return result, nil
	}

	if stratum := e.def.StratumOf(ec.age); stratum > 0 {
		result.Stratum = &stratum
	}

	ov, err := e.overrides.Active(ctx, ec.subject.ID, e.def.Key)
	if err != nil {
		return nil, err
	}
	ec.override = ov

	evidence, err := e.findEvidence(ctx, ec)
	if err != nil {
		return nil, err
	}

	if evidence != nil {
		e.composeSatisfied(ec, result, *evidence)
	} else {
		e.composeDue(result)
	}
	return result, nil
}

// composeSatisfied fills a satisfied result: the evidence date plus one full
// screening cycle gives the next due date, reported as days from now.
func (e *Evaluator) composeSatisfied(ec *evalContext, result *cqm.Result, evidence time.Time) {
	result.Status = cqm.StatusSatisfied
	result.EvidenceDate = &evidence

	var dueDate time.Time
	if ec.override != nil {
		dueDate = evidence.AddDate(0, 0, ec.override.CycleDays)
	} else {
		dueDate = evidence.AddDate(0, e.lookbackMonths(), ec.tf.DurationDays())
	}
	dueIn := daysBetween(ec.now, dueDate)
	result.DueInDays = &dueIn
	result.Narrative = fmt.Sprintf("%s satisfied on %s; next due in %d days.",
		e.def.Title, evidence.Format("2006-01-02"), dueIn)
}

// composeDue fills an unsatisfied denominator result.
func (e *Evaluator) composeDue(result *cqm.Result) {
	result.Status = cqm.StatusDue
	dueIn := -1
	result.DueInDays = &dueIn
	result.Narrative = e.def.DueNarrative
	if e.options.AttachRecommendations {
		result.Recommendation = e.def.Recommendation
	}
}

// attachEligibilityCountdown adds a forward-looking due count for subjects
// below the measure's age floor who will age into it: the days from the
// period end until the qualifying birthday. Subjects already past the age
// ceiling, of a non-qualifying sex, or structurally excluded get nothing.
func (e *Evaluator) attachEligibilityCountdown(ctx context.Context, ec *evalContext, result *cqm.Result) error {
	if ec.age >= e.def.AgeMin {
		return nil
	}
	if e.def.RequiredSex != "" && string(ec.subject.SexAtBirth) != e.def.RequiredSex {
		return nil
	}
	for _, rule := range e.rules {
		if !rule.Structural() {
			continue
		}
		excluded, err := rule.Excluded(ctx, ec)
		if err != nil {
			return err
		}
		if excluded {
			return nil
		}
	}
	eligible := ec.subject.BirthDate.AddDate(e.def.AgeMin, 0, 0)
	days := daysBetween(ec.tf.End(), eligible)
	if days > 0 {
		result.DueInDays = &days
	}
	return nil
}

// EvaluateSubject resolves a subject through the gateway and evaluates it.
func (e *Evaluator) EvaluateSubject(ctx context.Context, subjectID string, tf timeframe.Timeframe) (*cqm.Result, error) {
	subject, err := e.gw.FindSubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return e.Evaluate(ctx, subject, tf)
}

// EvaluateEvent maps a change event to its subject and re-evaluates.
func (e *Evaluator) EvaluateEvent(ctx context.Context, ev event.Event, tf timeframe.Timeframe) (*cqm.Result, error) {
	subjectID, err := event.SubjectID(ev)
	if err != nil {
		return nil, err
	}
	return e.EvaluateSubject(ctx, subjectID, tf)
}

// Definition returns the measure definition the evaluator was built for.
func (e *Evaluator) Definition() *measure.Definition {
	return e.def
}

// Options returns the evaluator's configuration.
func (e *Evaluator) Options() *cqm.Options {
	return e.options
}

// Metrics returns the evaluator's metrics.
func (e *Evaluator) Metrics() *cqm.Metrics {
	return e.metrics
}

// lookbackMonths returns the effective numerator lookback.
func (e *Evaluator) lookbackMonths() int {
	if e.options.LookbackMonths > 0 {
		return e.options.LookbackMonths
	}
	return e.def.LookbackMonths
}

// daysBetween returns the whole days from a to b, negative when b is before a.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
