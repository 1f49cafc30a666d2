package engine

import (
	"context"
	"strings"
	"time"

	"github.com/gofhir/cqm/gateway"
	"github.com/gofhir/cqm/measure"
	"github.com/gofhir/cqm/timeframe"
	"github.com/gofhir/cqm/valueset"
)

// exclusionRule removes a population member from the denominator. Rules are
// evaluated in registration order and short-circuit on the first match; a
// rule that cannot answer returns its error and the whole evaluation fails,
// never defaulting to "not excluded".
type exclusionRule interface {
	Name() string

	// Structural reports whether a match reflects permanent subject state
	// (anatomy) rather than current care circumstances. Structural rules
	// also gate the eligibility countdown for subjects below the age floor.
	Structural() bool

	Excluded(ctx context.Context, ec *evalContext) (bool, error)
}

// excluded runs the exclusion chain, recording per-rule timing.
func (e *Evaluator) excluded(ctx context.Context, ec *evalContext) (bool, error) {
	for _, rule := range e.rules {
		start := time.Now()
		matched, err := rule.Excluded(ctx, ec)
		if err != nil {
			return false, err
		}
		if e.options.CollectMetrics {
			e.metrics.RecordRule(rule.Name(), time.Since(start), matched)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

// buildExclusionRules resolves the exclusion bindings and assembles the
// rule chain. Order follows clinical precedence: anatomy first, then end of
// life care, then the age-gated frailty and institutional exclusions.
func (e *Evaluator) buildExclusionRules(registry *valueset.Registry) error {
	bilateral, err := e.mergedSet(measure.RoleMastectomyBilateral, registry)
	if err != nil {
		return err
	}
	left, err := e.mergedSet(measure.RoleMastectomyLeft, registry)
	if err != nil {
		return err
	}
	right, err := e.mergedSet(measure.RoleMastectomyRight, registry)
	if err != nil {
		return err
	}
	statusPostLeft, err := e.mergedSet(measure.RoleStatusPostLeft, registry)
	if err != nil {
		return err
	}
	statusPostRight, err := e.mergedSet(measure.RoleStatusPostRight, registry)
	if err != nil {
		return err
	}
	unspecified, err := e.mergedSet(measure.RoleMastectomyUnspecified, registry)
	if err != nil {
		return err
	}

	hospiceBilling, err := e.lookupFor(measure.RoleHospiceBilling, registry)
	if err != nil {
		return err
	}
	hospiceDiagnosis, err := e.mergedSet(measure.RoleHospiceDiagnosis, registry)
	if err != nil {
		return err
	}
	endOfLifeQuestionnaire, err := e.mergedSet(measure.RoleEndOfLifeQuestionnaire, registry)
	if err != nil {
		return err
	}
	palliativeDiagnosis, err := e.mergedSet(measure.RolePalliativeDiagnosis, registry)
	if err != nil {
		return err
	}
	palliativeBilling, err := e.lookupFor(measure.RolePalliativeBilling, registry)
	if err != nil {
		return err
	}

	frailtyDiagnosis, err := e.mergedSet(measure.RoleFrailtyDiagnosis, registry)
	if err != nil {
		return err
	}
	frailtySymptom, err := e.mergedSet(measure.RoleFrailtySymptom, registry)
	if err != nil {
		return err
	}
	frailtyBilling, err := e.lookupFor(measure.RoleFrailtyBilling, registry)
	if err != nil {
		return err
	}
	frailtyDevice, err := e.mergedSet(measure.RoleFrailtyDeviceQuestion, registry)
	if err != nil {
		return err
	}
	advancedIllness, err := e.mergedSet(measure.RoleAdvancedIllness, registry)
	if err != nil {
		return err
	}
	longTermMedication, err := e.mergedSet(measure.RoleLongTermMedication, registry)
	if err != nil {
		return err
	}

	ltcCoverage, err := e.lookupFor(measure.RoleLTCCoverage, registry)
	if err != nil {
		return err
	}
	nursingHomeQuestionnaire, err := e.mergedSet(measure.RoleNursingHomeQuestion, registry)
	if err != nil {
		return err
	}

	keywords := make([]string, len(e.def.NursingHomeKeywords))
	for i, k := range e.def.NursingHomeKeywords {
		keywords[i] = strings.ToLower(k)
	}

	e.rules = []exclusionRule{
		&mastectomyRule{
			gw:              e.gw,
			bilateral:       bilateral,
			left:            left,
			right:           right,
			statusPostLeft:  statusPostLeft,
			statusPostRight: statusPostRight,
			unspecified:     unspecified,
		},
		&endOfLifeRule{
			gw:                  e.gw,
			hospiceBilling:      hospiceBilling,
			hospiceDiagnosis:    hospiceDiagnosis,
			questionnaire:       endOfLifeQuestionnaire,
			questionnaireExpr:   e.def.ResponseExpressions[measure.RoleEndOfLifeQuestionnaire],
			palliativeDiagnosis: palliativeDiagnosis,
			palliativeBilling:   palliativeBilling,
			matcher:             e.matcher,
		},
		&frailtyRule{
			gw:         e.gw,
			ageGate:    e.def.ExclusionAgeGate,
			diagnosis:  frailtyDiagnosis,
			symptom:    frailtySymptom,
			billing:    frailtyBilling,
			device:     frailtyDevice,
			deviceExpr: e.def.ResponseExpressions[measure.RoleFrailtyDeviceQuestion],
			advanced:   advancedIllness,
			medication: longTermMedication,
			matcher:    e.matcher,
		},
		&institutionalRule{
			gw:            e.gw,
			ageGate:       e.def.ExclusionAgeGate,
			coverageTypes: ltcCoverage,
			keywords:      keywords,
			questionnaire: nursingHomeQuestionnaire,
			questionExpr:  e.def.ResponseExpressions[measure.RoleNursingHomeQuestion],
			matcher:       e.matcher,
		},
	}
	return nil
}

// mastectomyRule excludes subjects whose breast anatomy makes screening
// inapplicable. Mastectomy history is permanent state, so the rule searches
// all time up to the period end rather than the period itself.
type mastectomyRule struct {
	gw              gateway.EntityGateway
	bilateral       *valueset.CodeSet
	left            *valueset.CodeSet
	right           *valueset.CodeSet
	statusPostLeft  *valueset.CodeSet
	statusPostRight *valueset.CodeSet
	unspecified     *valueset.CodeSet
}

func (r *mastectomyRule) Name() string     { return "mastectomy" }
func (r *mastectomyRule) Structural() bool { return true }

func (r *mastectomyRule) Excluded(ctx context.Context, ec *evalContext) (bool, error) {
	window := timeframe.UpTo(ec.tf.End())

	anyIn := func(set *valueset.CodeSet) (bool, error) {
		records, err := r.gw.FindRecordsOverlapping(ctx, ec.subject.ID, gateway.KindCondition, set, window)
		if err != nil {
			return false, err
		}
		return len(records) > 0, nil
	}

	bilateral, err := anyIn(r.bilateral)
	if err != nil {
		return false, err
	}
	if bilateral {
		return true, nil
	}

	leftProc, err := anyIn(r.left)
	if err != nil {
		return false, err
	}
	statusLeft, err := anyIn(r.statusPostLeft)
	if err != nil {
		return false, err
	}
	rightProc, err := anyIn(r.right)
	if err != nil {
		return false, err
	}
	statusRight, err := anyIn(r.statusPostRight)
	if err != nil {
		return false, err
	}

	leftAbsent := leftProc || statusLeft
	rightAbsent := rightProc || statusRight
	if leftAbsent && rightAbsent {
		return true, nil
	}

	return r.assumeBilateralFromUnspecified(ctx, ec, window, leftAbsent || rightAbsent)
}

// assumeBilateralFromUnspecified treats two or more distinct mastectomy
// diagnoses without recorded laterality as evidence both breasts were
// removed, and one unspecified diagnosis alongside a known unilateral one
// as evidence for the opposite side. A single unspecified diagnosis alone
// is not enough to exclude.
func (r *mastectomyRule) assumeBilateralFromUnspecified(ctx context.Context, ec *evalContext, window timeframe.Timeframe, oneSideKnown bool) (bool, error) {
	records, err := r.gw.FindRecordsOverlapping(ctx, ec.subject.ID, gateway.KindCondition, r.unspecified, window)
	if err != nil {
		return false, err
	}
	if oneSideKnown {
		return len(records) >= 1, nil
	}
	return len(records) >= 2, nil
}

// endOfLifeRule excludes subjects in hospice or palliative care during the
// measurement period.
type endOfLifeRule struct {
	gw                  gateway.EntityGateway
	hospiceBilling      valueset.Lookup
	hospiceDiagnosis    *valueset.CodeSet
	questionnaire       *valueset.CodeSet
	questionnaireExpr   string
	palliativeDiagnosis *valueset.CodeSet
	palliativeBilling   valueset.Lookup
	matcher             *responseMatcher
}

func (r *endOfLifeRule) Name() string     { return "end_of_life" }
func (r *endOfLifeRule) Structural() bool { return false }

func (r *endOfLifeRule) Excluded(ctx context.Context, ec *evalContext) (bool, error) {
	billed, err := r.gw.FindBillingWithCodes(ctx, ec.subject.ID, r.hospiceBilling, ec.tf)
	if err != nil {
		return false, err
	}
	if len(billed) > 0 {
		return true, nil
	}

	diagnoses, err := r.gw.FindRecordsOverlapping(ctx, ec.subject.ID, gateway.KindCondition, r.hospiceDiagnosis, ec.tf)
	if err != nil {
		return false, err
	}
	if len(diagnoses) > 0 {
		return true, nil
	}

	affirmed, err := affirmativeResponse(ctx, r.gw, r.matcher, ec.subject.ID, r.questionnaire, r.questionnaireExpr)
	if err != nil {
		return false, err
	}
	if affirmed {
		return true, nil
	}

	palliative, err := r.gw.FindRecordsOverlapping(ctx, ec.subject.ID, gateway.KindCondition, r.palliativeDiagnosis, ec.tf)
	if err != nil {
		return false, err
	}
	if len(palliative) > 0 {
		return true, nil
	}

	palliativeBilled, err := r.gw.FindBillingWithCodes(ctx, ec.subject.ID, r.palliativeBilling, ec.tf)
	if err != nil {
		return false, err
	}
	return len(palliativeBilled) > 0, nil
}

// frailtyRule excludes subjects at or past the exclusion age gate who show
// frailty during the period together with advanced illness or long-term
// dementia medication in the period extended one year back.
type frailtyRule struct {
	gw         gateway.EntityGateway
	ageGate    int
	diagnosis  *valueset.CodeSet
	symptom    *valueset.CodeSet
	billing    valueset.Lookup
	device     *valueset.CodeSet
	deviceExpr string
	advanced   *valueset.CodeSet
	medication *valueset.CodeSet
	matcher    *responseMatcher
}

func (r *frailtyRule) Name() string     { return "frailty" }
func (r *frailtyRule) Structural() bool { return false }

func (r *frailtyRule) Excluded(ctx context.Context, ec *evalContext) (bool, error) {
	if ec.age < r.ageGate {
		return false, nil
	}

	frail, err := r.frailtyIndicator(ctx, ec)
	if err != nil {
		return false, err
	}
	if !frail {
		return false, nil
	}

	extended := ec.tf.ShiftStartYears(-1)

	advanced, err := r.gw.FindRecordsOverlapping(ctx, ec.subject.ID, gateway.KindCondition, r.advanced, extended)
	if err != nil {
		return false, err
	}
	if len(advanced) > 0 {
		return true, nil
	}

	medicated, err := r.gw.FindRecordsOverlapping(ctx, ec.subject.ID, gateway.KindMedication, r.medication, extended)
	if err != nil {
		return false, err
	}
	return len(medicated) > 0, nil
}

func (r *frailtyRule) frailtyIndicator(ctx context.Context, ec *evalContext) (bool, error) {
	diagnosed, err := r.gw.FindRecordsOverlapping(ctx, ec.subject.ID, gateway.KindCondition, r.diagnosis, ec.tf)
	if err != nil {
		return false, err
	}
	if len(diagnosed) > 0 {
		return true, nil
	}

	symptomatic, err := r.gw.FindRecordsOverlapping(ctx, ec.subject.ID, gateway.KindCondition, r.symptom, ec.tf)
	if err != nil {
		return false, err
	}
	if len(symptomatic) > 0 {
		return true, nil
	}

	billed, err := r.gw.FindBillingWithCodes(ctx, ec.subject.ID, r.billing, ec.tf)
	if err != nil {
		return false, err
	}
	if len(billed) > 0 {
		return true, nil
	}

	return affirmativeResponse(ctx, r.gw, r.matcher, ec.subject.ID, r.device, r.deviceExpr)
}

// institutionalRule excludes subjects at or past the exclusion age gate who
// live in long-term care, detected through structured coverage type, plan
// name keywords, or an affirmative residency questionnaire.
type institutionalRule struct {
	gw            gateway.EntityGateway
	ageGate       int
	coverageTypes valueset.Lookup
	keywords      []string
	questionnaire *valueset.CodeSet
	questionExpr  string
	matcher       *responseMatcher
}

func (r *institutionalRule) Name() string     { return "institutional" }
func (r *institutionalRule) Structural() bool { return false }

func (r *institutionalRule) Excluded(ctx context.Context, ec *evalContext) (bool, error) {
	if ec.age < r.ageGate {
		return false, nil
	}

	coverages, err := r.gw.FindCoverage(ctx, ec.subject.ID, ec.tf.End())
	if err != nil {
		return false, err
	}
	for _, c := range coverages {
		if r.coverageTypes.Contains(c.TypeCode) {
			return true, nil
		}
		plan := strings.ToLower(c.PlanName)
		for _, kw := range r.keywords {
			if kw != "" && strings.Contains(plan, kw) {
				return true, nil
			}
		}
	}

	return affirmativeResponse(ctx, r.gw, r.matcher, ec.subject.ID, r.questionnaire, r.questionExpr)
}

// affirmativeResponse reports whether the subject has a questionnaire
// response matching the set whose payload satisfies the expression. A
// matching response with no payload counts as affirmative; only the most
// recent matching response is consulted.
func affirmativeResponse(ctx context.Context, gw gateway.EntityGateway, matcher *responseMatcher, subjectID string, set *valueset.CodeSet, expr string) (bool, error) {
	responses, err := gw.FindQuestionnaireResponses(ctx, subjectID, set)
	if err != nil {
		return false, err
	}
	if len(responses) == 0 {
		return false, nil
	}
	return matcher.Match(responses[0].Payload, expr)
}
