package valueset

import (
	"testing"

	"github.com/gofhir/fhir/r4"
)

func TestRegistryRegisterAndResolve(t *testing.T) {
	r := NewRegistry()

	set := NewCodeSet("Mammography", Code{System: SystemCPT, Value: "77067"})
	if err := r.Register(set); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := r.Register(set); err == nil {
		t.Error("Register() duplicate name should fail")
	}

	got, ok := r.Get("Mammography")
	if !ok || got != set {
		t.Error("Get() did not return the registered set")
	}

	sets, err := r.Resolve("Mammography")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(sets) != 1 || sets[0] != set {
		t.Error("Resolve() returned wrong sets")
	}

	if _, err := r.Resolve("Mammography", "Nope"); err == nil {
		t.Error("Resolve() with unknown name should fail")
	}
}

func TestRegistryUnionOf(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewCodeSet("A", Code{System: SystemCPT, Value: "77067"})); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(NewCodeSet("B", Code{System: SystemCPT, Value: "77063"})); err != nil {
		t.Fatal(err)
	}

	lookup, err := r.UnionOf(SystemCPT, "A", "B")
	if err != nil {
		t.Fatalf("UnionOf() error = %v", err)
	}
	if !lookup.Contains("77067") || !lookup.Contains("77063") {
		t.Error("UnionOf() missing expected codes")
	}
}

func TestLoadR4ValueSetFromExpansion(t *testing.T) {
	system := "http://www.ama-assn.org/go/cpt"
	code1 := "77065"
	code2 := "77066"
	name := "Mammography"

	vs := &r4.ValueSet{
		Name: &name,
		Expansion: &r4.ValueSetExpansion{
			Contains: []r4.ValueSetExpansionContains{
				{System: &system, Code: &code1},
				{System: &system, Code: &code2},
			},
		},
	}

	r := NewRegistry()
	if err := r.LoadR4ValueSet(vs, ""); err != nil {
		t.Fatalf("LoadR4ValueSet() error = %v", err)
	}

	set, ok := r.Get("Mammography")
	if !ok {
		t.Fatal("loaded set not registered under resource name")
	}
	if !set.Contains(Code{System: SystemCPT, Value: "77065"}) {
		t.Error("loaded set missing expansion code")
	}
}

func TestLoadR4ValueSetFromCompose(t *testing.T) {
	system := "http://snomed.info/sct"
	code := "428361000124107"

	vs := &r4.ValueSet{
		Compose: &r4.ValueSetCompose{
			Include: []r4.ValueSetComposeInclude{
				{
					System:  &system,
					Concept: []r4.ValueSetComposeIncludeConcept{{Code: &code}},
				},
			},
		},
	}

	r := NewRegistry()
	if err := r.LoadR4ValueSet(vs, "HospiceDiagnosis"); err != nil {
		t.Fatalf("LoadR4ValueSet() error = %v", err)
	}

	set, _ := r.Get("HospiceDiagnosis")
	if set == nil || !set.Contains(Code{System: SystemSNOMED, Value: code}) {
		t.Error("loaded set missing compose concept")
	}
}

func TestLoadR4ValueSetErrors(t *testing.T) {
	r := NewRegistry()

	if err := r.LoadR4ValueSet(nil, "x"); err == nil {
		t.Error("nil resource should fail")
	}
	if err := r.LoadR4ValueSet(&r4.ValueSet{}, ""); err == nil {
		t.Error("resource with no name or url should fail")
	}

	name := "Empty"
	if err := r.LoadR4ValueSet(&r4.ValueSet{Name: &name}, ""); err == nil {
		t.Error("resource with no enumerated codes should fail")
	}
}

func TestBuiltin(t *testing.T) {
	r := Builtin()

	required := []string{
		SetMammography,
		SetOfficeVisit,
		SetHospiceCareAmbulatory,
		SetFrailtyDeviceQuestionnaire,
		SetBilateralMastectomy,
		SetMastectomyUnspecifiedSide,
		SetLongTermCareCoverage,
		SetNursingHomeQuestionnaire,
	}
	for _, name := range required {
		set, ok := r.Get(name)
		if !ok {
			t.Errorf("builtin registry missing %s", name)
			continue
		}
		if set.Size() == 0 {
			t.Errorf("builtin set %s is empty", name)
		}
	}

	mammography, _ := r.Get(SetMammography)
	if !mammography.Contains(Code{System: SystemCPT, Value: "77067"}) {
		t.Error("mammography set missing CPT 77067")
	}
}
