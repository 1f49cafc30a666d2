package measure

import (
	"encoding/json"

	"github.com/gofhir/cqm/valueset"
)

// KeyBreastCancerScreening identifies the breast cancer screening measure.
const KeyBreastCancerScreening = "breast-cancer-screening"

// BreastCancerScreening returns the breast cancer screening measure: women
// 42 through 74 with a qualifying encounter during the measurement period
// are expected to have a mammogram within the period or the fifteen months
// before it starts.
func BreastCancerScreening() *Definition {
	return &Definition{
		Key:   KeyBreastCancerScreening,
		Title: "Breast Cancer Screening",

		AgeMin:      42,
		AgeMax:      74,
		RequiredSex: "F",

		LookbackMonths:   15,
		ExclusionAgeGate: 66,

		Strata: []AgeBand{
			{Min: 42, Max: 51},
			{Min: 52, Max: 74},
		},

		NursingHomeKeywords: []string{
			"long term care",
			"long-term care",
			"nursing home",
			"nursing facility",
			"skilled nursing",
		},

		Bindings: map[Role][]string{
			RoleQualifyingEncounter: {
				valueset.SetOfficeVisit,
				valueset.SetAnnualWellnessVisit,
				valueset.SetPreventiveCareInitial,
				valueset.SetPreventiveCareEstablished,
				valueset.SetHomeHealthcareServices,
			},
			RoleScreeningProcedure: {
				valueset.SetMammography,
				valueset.SetTomosynthesis,
			},
			RoleScreeningImaging: {
				valueset.SetMammography,
				valueset.SetTomosynthesis,
			},
			RoleHospiceBilling: {
				valueset.SetHospiceCareAmbulatory,
				valueset.SetHospiceEncounter,
			},
			RoleHospiceDiagnosis: {
				valueset.SetHospiceDiagnosis,
			},
			RoleEndOfLifeQuestionnaire: {
				valueset.SetEndOfLifeQuestionnaire,
			},
			RolePalliativeDiagnosis: {
				valueset.SetPalliativeCareDiagnosis,
			},
			RolePalliativeBilling: {
				valueset.SetPalliativeCareEncounter,
				valueset.SetPalliativeCareIntervention,
			},
			RoleFrailtyDiagnosis: {
				valueset.SetFrailtyDiagnosis,
			},
			RoleFrailtySymptom: {
				valueset.SetFrailtySymptom,
			},
			RoleFrailtyBilling: {
				valueset.SetFrailtyEncounter,
			},
			RoleFrailtyDeviceQuestion: {
				valueset.SetFrailtyDeviceQuestionnaire,
			},
			RoleAdvancedIllness: {
				valueset.SetAdvancedIllness,
			},
			RoleLongTermMedication: {
				valueset.SetDementiaMedications,
			},
			RoleMastectomyBilateral: {
				valueset.SetBilateralMastectomy,
				valueset.SetHistoryBilateralMastectomy,
			},
			RoleMastectomyLeft: {
				valueset.SetUnilateralMastectomyLeft,
			},
			RoleMastectomyRight: {
				valueset.SetUnilateralMastectomyRight,
			},
			RoleStatusPostLeft: {
				valueset.SetStatusPostLeftMastectomy,
			},
			RoleStatusPostRight: {
				valueset.SetStatusPostRightMastectomy,
			},
			RoleMastectomyUnspecified: {
				valueset.SetMastectomyUnspecifiedSide,
			},
			RoleLTCCoverage: {
				valueset.SetLongTermCareCoverage,
			},
			RoleNursingHomeQuestion: {
				valueset.SetNursingHomeQuestionnaire,
			},
		},

		ResponseExpressions: map[Role]string{
			RoleEndOfLifeQuestionnaire: "item.answer.exists()",
			RoleFrailtyDeviceQuestion:  "item.answer.exists()",
			RoleNursingHomeQuestion:    "item.answer.valueBoolean = true",
		},

		DueNarrative: "No breast cancer screening found within the expected interval.",
		Recommendation: json.RawMessage(`{"title":"Order mammography","coding":{"system":"http://www.ama-assn.org/go/cpt","code":"77067"}}`),

		VocabularyYear: "2026",
	}
}
