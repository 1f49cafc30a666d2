package valueset

// Built-in vocabulary names. Measure definitions bind roles to these names;
// deployments with licensed full vocabularies replace them via
// Registry.LoadDir with the published ValueSet resources.
const (
	SetMammography                  = "Mammography"
	SetTomosynthesis                = "Tomosynthesis"
	SetOfficeVisit                  = "OfficeVisit"
	SetAnnualWellnessVisit          = "AnnualWellnessVisit"
	SetPreventiveCareInitial        = "PreventiveCareServicesInitialOfficeVisit18AndUp"
	SetPreventiveCareEstablished    = "PreventiveCareServicesEstablishedOfficeVisit18AndUp"
	SetHomeHealthcareServices       = "HomeHealthcareServices"
	SetHospiceCareAmbulatory        = "HospiceCareAmbulatory"
	SetHospiceEncounter             = "HospiceEncounter"
	SetHospiceDiagnosis             = "HospiceDiagnosis"
	SetEndOfLifeQuestionnaire       = "EndOfLifeQuestionnaire"
	SetPalliativeCareDiagnosis      = "PalliativeCareDiagnosis"
	SetPalliativeCareEncounter      = "PalliativeCareEncounter"
	SetPalliativeCareIntervention   = "PalliativeCareIntervention"
	SetFrailtyDiagnosis             = "FrailtyDiagnosis"
	SetFrailtySymptom               = "FrailtySymptom"
	SetFrailtyEncounter             = "FrailtyEncounter"
	SetFrailtyDeviceQuestionnaire   = "FrailtyDeviceQuestionnaire"
	SetAdvancedIllness              = "AdvancedIllness"
	SetDementiaMedications          = "DementiaMedications"
	SetBilateralMastectomy          = "BilateralMastectomy"
	SetHistoryBilateralMastectomy   = "HistoryOfBilateralMastectomy"
	SetUnilateralMastectomyLeft     = "UnilateralMastectomyLeft"
	SetUnilateralMastectomyRight    = "UnilateralMastectomyRight"
	SetStatusPostLeftMastectomy     = "StatusPostLeftMastectomy"
	SetStatusPostRightMastectomy    = "StatusPostRightMastectomy"
	SetMastectomyUnspecifiedSide    = "UnilateralMastectomyUnspecifiedLaterality"
	SetLongTermCareCoverage         = "LongTermCareCoverage"
	SetNursingHomeQuestionnaire     = "NursingHomeResidencyQuestionnaire"
)

// Builtin returns a registry pre-loaded with representative codes for every
// vocabulary the breast-cancer-screening measure binds (2026 publication).
// The sets are intentionally small; they carry the codes the tests and the
// CLI fixtures exercise, not the full licensed expansions.
func Builtin() *Registry {
	r := NewRegistry()
	for _, set := range builtinSets() {
		// Names are unique within this file, so Register cannot fail.
		_ = r.Register(set)
	}
	return r
}

func builtinSets() []*CodeSet {
	return []*CodeSet{
		NewCodeSet(SetMammography,
			Code{SystemCPT, "77065"},
			Code{SystemCPT, "77066"},
			Code{SystemCPT, "77067"},
			Code{SystemSNOMED, "24623002"},
		),
		NewCodeSet(SetTomosynthesis,
			Code{SystemCPT, "77061"},
			Code{SystemCPT, "77062"},
			Code{SystemCPT, "77063"},
		),
		NewCodeSet(SetOfficeVisit,
			Code{SystemCPT, "99202"},
			Code{SystemCPT, "99203"},
			Code{SystemCPT, "99204"},
			Code{SystemCPT, "99205"},
			Code{SystemCPT, "99212"},
			Code{SystemCPT, "99213"},
			Code{SystemCPT, "99214"},
			Code{SystemCPT, "99215"},
		),
		NewCodeSet(SetAnnualWellnessVisit,
			Code{SystemHCPCS, "G0438"},
			Code{SystemHCPCS, "G0439"},
		),
		NewCodeSet(SetPreventiveCareInitial,
			Code{SystemCPT, "99385"},
			Code{SystemCPT, "99386"},
			Code{SystemCPT, "99387"},
		),
		NewCodeSet(SetPreventiveCareEstablished,
			Code{SystemCPT, "99395"},
			Code{SystemCPT, "99396"},
			Code{SystemCPT, "99397"},
		),
		NewCodeSet(SetHomeHealthcareServices,
			Code{SystemCPT, "99341"},
			Code{SystemCPT, "99342"},
			Code{SystemCPT, "99344"},
			Code{SystemCPT, "99345"},
			Code{SystemCPT, "99347"},
			Code{SystemCPT, "99348"},
			Code{SystemCPT, "99349"},
			Code{SystemCPT, "99350"},
		),
		NewCodeSet(SetHospiceCareAmbulatory,
			Code{SystemCPT, "99377"},
			Code{SystemCPT, "99378"},
			Code{SystemHCPCS, "G0182"},
			Code{SystemSNOMED, "385763009"},
		),
		NewCodeSet(SetHospiceEncounter,
			Code{SystemHCPCS, "Q5003"},
			Code{SystemHCPCS, "Q5004"},
			Code{SystemHCPCS, "Q5005"},
			Code{SystemHCPCS, "Q5006"},
			Code{SystemSNOMED, "183919006"},
			Code{SystemSNOMED, "183920000"},
			Code{SystemSNOMED, "183921001"},
		),
		NewCodeSet(SetHospiceDiagnosis,
			Code{SystemSNOMED, "428361000124107"},
			Code{SystemSNOMED, "428371000124100"},
		),
		NewCodeSet(SetEndOfLifeQuestionnaire,
			Code{SystemLOINC, "45755-6"},
			Code{SystemLOINC, "81641-9"},
		),
		NewCodeSet(SetPalliativeCareDiagnosis,
			Code{SystemICD10CM, "Z51.5"},
			Code{SystemSNOMED, "103735009"},
		),
		NewCodeSet(SetPalliativeCareEncounter,
			Code{SystemSNOMED, "305686008"},
			Code{SystemHCPCS, "G9054"},
		),
		NewCodeSet(SetPalliativeCareIntervention,
			Code{SystemSNOMED, "443761007"},
		),
		NewCodeSet(SetFrailtyDiagnosis,
			Code{SystemICD10CM, "M62.84"},
			Code{SystemICD10CM, "R54"},
			Code{SystemICD10CM, "R26.2"},
			Code{SystemICD10CM, "R53.1"},
			Code{SystemICD10CM, "R53.81"},
			Code{SystemICD10CM, "Z74.01"},
		),
		NewCodeSet(SetFrailtySymptom,
			Code{SystemSNOMED, "162236007"},
			Code{SystemSNOMED, "267032009"},
			Code{SystemSNOMED, "271795006"},
		),
		NewCodeSet(SetFrailtyEncounter,
			Code{SystemCPT, "99509"},
			Code{SystemHCPCS, "T1019"},
			Code{SystemHCPCS, "T1020"},
			Code{SystemHCPCS, "S5125"},
		),
		NewCodeSet(SetFrailtyDeviceQuestionnaire,
			Code{SystemHCPCS, "E0100"},
			Code{SystemHCPCS, "E0130"},
			Code{SystemHCPCS, "E0143"},
			Code{SystemHCPCS, "E0260"},
			Code{SystemHCPCS, "E1130"},
			Code{SystemLOINC, "83254-3"},
		),
		NewCodeSet(SetAdvancedIllness,
			Code{SystemICD10CM, "G30.9"},
			Code{SystemICD10CM, "F01.50"},
			Code{SystemICD10CM, "F03.90"},
			Code{SystemICD10CM, "C79.31"},
			Code{SystemICD10CM, "K70.30"},
			Code{SystemICD10CM, "N18.6"},
		),
		NewCodeSet(SetDementiaMedications,
			Code{SystemRxNorm, "197604"},
			Code{SystemRxNorm, "996571"},
			Code{SystemRxNorm, "860695"},
			Code{SystemRxNorm, "312017"},
		),
		NewCodeSet(SetBilateralMastectomy,
			Code{SystemSNOMED, "27865001"},
		),
		NewCodeSet(SetHistoryBilateralMastectomy,
			Code{SystemICD10CM, "Z90.13"},
			Code{SystemSNOMED, "136071000119101"},
		),
		NewCodeSet(SetUnilateralMastectomyLeft,
			Code{SystemSNOMED, "428571003"},
		),
		NewCodeSet(SetUnilateralMastectomyRight,
			Code{SystemSNOMED, "429400009"},
		),
		NewCodeSet(SetStatusPostLeftMastectomy,
			Code{SystemICD10CM, "Z90.12"},
		),
		NewCodeSet(SetStatusPostRightMastectomy,
			Code{SystemICD10CM, "Z90.11"},
		),
		NewCodeSet(SetMastectomyUnspecifiedSide,
			Code{SystemSNOMED, "172043006"},
			Code{SystemICD10CM, "Z90.10"},
		),
		NewCodeSet(SetLongTermCareCoverage,
			Code{SystemSOP, "3113"},
			Code{SystemInternal, "LTC"},
		),
		NewCodeSet(SetNursingHomeQuestionnaire,
			Code{SystemSNOMED, "160734000"},
			Code{SystemLOINC, "71802-3"},
		),
	}
}
