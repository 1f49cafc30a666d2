// Package measure declares quality measures as data.
//
// A Definition binds the generic evaluation machinery to one measure: age
// band, required sex, lookback, stratification, and the value-set names each
// clinical role draws on. The engine resolves the names against a value-set
// registry at construction time, so a definition that references an
// unregistered set fails fast rather than at evaluation time.
package measure

import (
	"encoding/json"
	"fmt"
)

// Role names the clinical purpose a bound value set serves within a measure.
type Role string

const (
	RoleQualifyingEncounter Role = "qualifying_encounter"
	RoleScreeningProcedure  Role = "screening_procedure"
	RoleScreeningImaging    Role = "screening_imaging"

	RoleHospiceBilling          Role = "hospice_billing"
	RoleHospiceDiagnosis        Role = "hospice_diagnosis"
	RoleEndOfLifeQuestionnaire  Role = "end_of_life_questionnaire"
	RolePalliativeDiagnosis     Role = "palliative_diagnosis"
	RolePalliativeBilling       Role = "palliative_billing"
	RoleFrailtyDiagnosis        Role = "frailty_diagnosis"
	RoleFrailtySymptom          Role = "frailty_symptom"
	RoleFrailtyBilling          Role = "frailty_billing"
	RoleFrailtyDeviceQuestion   Role = "frailty_device_questionnaire"
	RoleAdvancedIllness         Role = "advanced_illness"
	RoleLongTermMedication      Role = "long_term_medication"
	RoleMastectomyBilateral     Role = "mastectomy_bilateral"
	RoleMastectomyLeft          Role = "mastectomy_left"
	RoleMastectomyRight         Role = "mastectomy_right"
	RoleStatusPostLeft          Role = "status_post_left_mastectomy"
	RoleStatusPostRight         Role = "status_post_right_mastectomy"
	RoleMastectomyUnspecified   Role = "mastectomy_unspecified"
	RoleLTCCoverage             Role = "long_term_care_coverage"
	RoleNursingHomeQuestion     Role = "nursing_home_questionnaire"
)

// AgeBand is an inclusive age range used for result stratification.
type AgeBand struct {
	Min int
	Max int
}

// Contains reports whether age falls within the band.
func (b AgeBand) Contains(age int) bool {
	return age >= b.Min && age <= b.Max
}

// Definition describes one quality measure declaratively.
type Definition struct {
	// Key identifies the measure in results and override lookups.
	Key string
	// Title is the human-readable measure name.
	Title string

	// AgeMin and AgeMax bound the initial population, inclusive, measured
	// at the end of the measurement period.
	AgeMin int
	AgeMax int
	// RequiredSex restricts the population by sex at birth; empty means no
	// restriction.
	RequiredSex string

	// LookbackMonths extends the evidence window before the measurement
	// period start under the standard cadence.
	LookbackMonths int
	// ExclusionAgeGate is the minimum age for the frailty and
	// institutional exclusions.
	ExclusionAgeGate int

	// Strata partitions the denominator by age for reporting.
	Strata []AgeBand

	// NursingHomeKeywords match, case-insensitively, against coverage plan
	// names when no structured coverage type is available.
	NursingHomeKeywords []string

	// Bindings maps each role to the names of the value sets it draws on.
	Bindings map[Role][]string

	// ResponseExpressions holds the path expression evaluated against a
	// questionnaire response payload for roles that require an affirmative
	// answer, not just a matching code.
	ResponseExpressions map[Role]string

	// DueNarrative explains an unsatisfied result to a clinician.
	DueNarrative string
	// Recommendation is an opaque payload attached to due results when the
	// caller opts in.
	Recommendation json.RawMessage

	// VocabularyYear records which code-system release the builtin
	// bindings were drawn from.
	VocabularyYear string
}

// Validate checks the definition for structural problems. It does not check
// that bound value-set names resolve; the engine does that against its
// registry.
func (d *Definition) Validate() error {
	if d.Key == "" {
		return fmt.Errorf("measure: definition missing key")
	}
	if d.AgeMin < 0 || d.AgeMax < d.AgeMin {
		return fmt.Errorf("measure %s: invalid age range %d-%d", d.Key, d.AgeMin, d.AgeMax)
	}
	if d.LookbackMonths < 0 {
		return fmt.Errorf("measure %s: negative lookback", d.Key)
	}
	for i, band := range d.Strata {
		if band.Max < band.Min {
			return fmt.Errorf("measure %s: stratum %d inverted (%d-%d)", d.Key, i+1, band.Min, band.Max)
		}
	}
	for role, names := range d.Bindings {
		if len(names) == 0 {
			return fmt.Errorf("measure %s: role %s bound to no value sets", d.Key, role)
		}
	}
	return nil
}

// StratumOf returns the 1-based stratum containing age, or 0 when no band
// matches.
func (d *Definition) StratumOf(age int) int {
	for i, band := range d.Strata {
		if band.Contains(age) {
			return i + 1
		}
	}
	return 0
}
