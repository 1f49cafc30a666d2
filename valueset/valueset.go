// Package valueset provides named collections of clinical codes grouped by
// coding system, with set union across collections.
//
// Code sets are immutable after construction and loaded once at process
// start, either from the built-in vocabularies or from FHIR R4 ValueSet
// resources via Registry.LoadR4ValueSet.
package valueset

import (
	"sort"
)

// CodingSystem is the canonical URI of a code system.
type CodingSystem string

// Common coding systems used by measure vocabularies.
const (
	SystemCPT      CodingSystem = "http://www.ama-assn.org/go/cpt"
	SystemHCPCS    CodingSystem = "http://www.cms.gov/Medicare/Coding/HCPCSReleaseCodeSets"
	SystemSNOMED   CodingSystem = "http://snomed.info/sct"
	SystemICD10CM  CodingSystem = "http://hl7.org/fhir/sid/icd-10-cm"
	SystemLOINC    CodingSystem = "http://loinc.org"
	SystemRxNorm   CodingSystem = "http://www.nlm.nih.gov/research/umls/rxnorm"
	SystemSOP      CodingSystem = "https://nahdo.org/sopt"
	SystemInternal CodingSystem = "internal"
)

// Code is one code in one coding system.
type Code struct {
	System CodingSystem `json:"system"`
	Value  string       `json:"code"`
}

// Lookup is a flat set of code values used for membership tests against a
// single combined vocabulary (e.g. billing CPT lookups).
type Lookup map[string]struct{}

// Contains reports whether value is in the lookup.
func (l Lookup) Contains(value string) bool {
	_, ok := l[value]
	return ok
}

// Add inserts value into the lookup.
func (l Lookup) Add(value string) {
	l[value] = struct{}{}
}

// MergeLookups combines several lookups into one.
func MergeLookups(lookups ...Lookup) Lookup {
	merged := make(Lookup)
	for _, l := range lookups {
		for v := range l {
			merged[v] = struct{}{}
		}
	}
	return merged
}

// CodeSet is a named collection of codes grouped by coding system.
// It is immutable once constructed.
type CodeSet struct {
	name  string
	codes map[CodingSystem]map[string]struct{}
}

// NewCodeSet creates a CodeSet from individual codes.
func NewCodeSet(name string, codes ...Code) *CodeSet {
	s := &CodeSet{
		name:  name,
		codes: make(map[CodingSystem]map[string]struct{}),
	}
	for _, c := range codes {
		s.add(c)
	}
	return s
}

func (s *CodeSet) add(c Code) {
	if c.Value == "" {
		return
	}
	m, ok := s.codes[c.System]
	if !ok {
		m = make(map[string]struct{})
		s.codes[c.System] = m
	}
	m[c.Value] = struct{}{}
}

// Name returns the set's name.
func (s *CodeSet) Name() string {
	return s.name
}

// Contains reports whether the set holds the code.
func (s *CodeSet) Contains(c Code) bool {
	m, ok := s.codes[c.System]
	if !ok {
		return false
	}
	_, ok = m[c.Value]
	return ok
}

// ContainsAny reports whether any of the codes is in the set.
func (s *CodeSet) ContainsAny(codes []Code) bool {
	for _, c := range codes {
		if s.Contains(c) {
			return true
		}
	}
	return false
}

// Systems returns the coding systems present in the set, sorted.
func (s *CodeSet) Systems() []CodingSystem {
	systems := make([]CodingSystem, 0, len(s.codes))
	for sys := range s.codes {
		systems = append(systems, sys)
	}
	sort.Slice(systems, func(i, j int) bool { return systems[i] < systems[j] })
	return systems
}

// Codes returns the sorted code values for one coding system.
func (s *CodeSet) Codes(system CodingSystem) []string {
	m, ok := s.codes[system]
	if !ok {
		return nil
	}
	values := make([]string, 0, len(m))
	for v := range m {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// Size returns the total number of codes across all systems.
func (s *CodeSet) Size() int {
	n := 0
	for _, m := range s.codes {
		n += len(m)
	}
	return n
}

// Union combines multiple code sets into one flat lookup, restricted to a
// single coding system per call. It is a pure function.
func Union(system CodingSystem, sets ...*CodeSet) Lookup {
	lookup := make(Lookup)
	for _, s := range sets {
		if s == nil {
			continue
		}
		for v := range s.codes[system] {
			lookup[v] = struct{}{}
		}
	}
	return lookup
}

// Merge combines multiple code sets into a new named set; the result is the
// union of the same-system code sets of every input.
func Merge(name string, sets ...*CodeSet) *CodeSet {
	merged := NewCodeSet(name)
	for _, s := range sets {
		if s == nil {
			continue
		}
		for sys, m := range s.codes {
			for v := range m {
				merged.add(Code{System: sys, Value: v})
			}
		}
	}
	return merged
}
