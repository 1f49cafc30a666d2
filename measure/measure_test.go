package measure

import "testing"

func TestValidate(t *testing.T) {
	valid := func() *Definition {
		return &Definition{
			Key:    "test",
			AgeMin: 42,
			AgeMax: 74,
			Strata: []AgeBand{{Min: 42, Max: 51}, {Min: 52, Max: 74}},
			Bindings: map[Role][]string{
				RoleQualifyingEncounter: {"OfficeVisit"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Definition)
		wantErr bool
	}{
		{"valid", func(*Definition) {}, false},
		{"missing key", func(d *Definition) { d.Key = "" }, true},
		{"inverted age range", func(d *Definition) { d.AgeMax = 40 }, true},
		{"negative lookback", func(d *Definition) { d.LookbackMonths = -1 }, true},
		{"inverted stratum", func(d *Definition) { d.Strata[0] = AgeBand{Min: 51, Max: 42} }, true},
		{"empty binding", func(d *Definition) { d.Bindings[RoleScreeningProcedure] = nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			tt.mutate(d)
			if err := d.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStratumOf(t *testing.T) {
	d := BreastCancerScreening()

	tests := []struct {
		age  int
		want int
	}{
		{41, 0},
		{42, 1},
		{51, 1},
		{52, 2},
		{74, 2},
		{75, 0},
	}

	for _, tt := range tests {
		if got := d.StratumOf(tt.age); got != tt.want {
			t.Errorf("StratumOf(%d) = %d, want %d", tt.age, got, tt.want)
		}
	}
}

func TestBreastCancerScreening(t *testing.T) {
	d := BreastCancerScreening()

	if err := d.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if d.Key != KeyBreastCancerScreening {
		t.Errorf("Key = %q", d.Key)
	}
	if d.AgeMin != 42 || d.AgeMax != 74 {
		t.Errorf("age band = %d-%d, want 42-74", d.AgeMin, d.AgeMax)
	}
	if d.RequiredSex != "F" {
		t.Errorf("RequiredSex = %q, want F", d.RequiredSex)
	}
	if d.LookbackMonths != 15 {
		t.Errorf("LookbackMonths = %d, want 15", d.LookbackMonths)
	}
	if d.ExclusionAgeGate != 66 {
		t.Errorf("ExclusionAgeGate = %d, want 66", d.ExclusionAgeGate)
	}

	// Every exclusion role the engine wires must be bound.
	required := []Role{
		RoleQualifyingEncounter,
		RoleScreeningProcedure,
		RoleScreeningImaging,
		RoleHospiceBilling,
		RoleHospiceDiagnosis,
		RoleEndOfLifeQuestionnaire,
		RolePalliativeDiagnosis,
		RolePalliativeBilling,
		RoleFrailtyDiagnosis,
		RoleFrailtySymptom,
		RoleFrailtyBilling,
		RoleFrailtyDeviceQuestion,
		RoleAdvancedIllness,
		RoleLongTermMedication,
		RoleMastectomyBilateral,
		RoleMastectomyLeft,
		RoleMastectomyRight,
		RoleStatusPostLeft,
		RoleStatusPostRight,
		RoleMastectomyUnspecified,
		RoleLTCCoverage,
		RoleNursingHomeQuestion,
	}
	for _, role := range required {
		if len(d.Bindings[role]) == 0 {
			t.Errorf("role %s has no binding", role)
		}
	}

	if len(d.NursingHomeKeywords) == 0 {
		t.Error("no nursing home keywords")
	}
	if d.DueNarrative == "" {
		t.Error("no due narrative")
	}
}
