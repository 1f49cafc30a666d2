package gateway

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gofhir/cqm/timeframe"
	"github.com/gofhir/cqm/valueset"
)

// Memory implements EntityGateway over in-process storage. It backs the
// package tests and the CLI fixture loader; it is also a faithful reference
// for the ordering and overlap semantics production gateways must provide.
type Memory struct {
	mu        sync.RWMutex
	subjects  map[string]Subject
	records   map[string][]ClinicalRecord // by subject ID
	coverages map[string][]Coverage       // by subject ID
}

// NewMemory creates an empty in-memory gateway.
func NewMemory() *Memory {
	return &Memory{
		subjects:  make(map[string]Subject),
		records:   make(map[string][]ClinicalRecord),
		coverages: make(map[string][]Coverage),
	}
}

// AddSubject stores a subject snapshot.
func (m *Memory) AddSubject(s Subject) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects[s.ID] = s
}

// AddRecord stores a clinical record.
func (m *Memory) AddRecord(r ClinicalRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.SubjectID] = append(m.records[r.SubjectID], r)
}

// AddCoverage stores a coverage row.
func (m *Memory) AddCoverage(c Coverage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coverages[c.SubjectID] = append(m.coverages[c.SubjectID], c)
}

// SubjectIDs returns all stored subject IDs, sorted.
func (m *Memory) SubjectIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.subjects))
	for id := range m.subjects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FindSubject implements EntityGateway.
func (m *Memory) FindSubject(ctx context.Context, subjectID string) (*Subject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.subjects[subjectID]
	if !ok {
		return nil, ErrSubjectNotFound
	}
	return &s, nil
}

// FindRecordsOverlapping implements EntityGateway.
func (m *Memory) FindRecordsOverlapping(ctx context.Context, subjectID string, kind RecordKind, set *valueset.CodeSet, tf timeframe.Timeframe) ([]ClinicalRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ClinicalRecord
	for _, r := range m.records[subjectID] {
		if r.Kind != kind {
			continue
		}
		if !r.MatchesSet(set) {
			continue
		}
		if !r.Overlaps(tf) {
			continue
		}
		out = append(out, r)
	}
	sortByEffectiveDesc(out)
	return out, nil
}

// FindBillingWithCodes implements EntityGateway. Billing matches on the
// service date (effectiveStart) falling inside the timeframe, mirroring
// how claims are dated, rather than the prevalence-period overlap rule.
func (m *Memory) FindBillingWithCodes(ctx context.Context, subjectID string, codes valueset.Lookup, tf timeframe.Timeframe) ([]ClinicalRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ClinicalRecord
	for _, r := range m.records[subjectID] {
		if r.Kind != KindBilling {
			continue
		}
		if !r.MatchesLookup(codes) {
			continue
		}
		if !tf.Contains(r.EffectiveStart) {
			continue
		}
		out = append(out, r)
	}
	sortByEffectiveDesc(out)
	return out, nil
}

// FindQuestionnaireResponses implements EntityGateway.
func (m *Memory) FindQuestionnaireResponses(ctx context.Context, subjectID string, set *valueset.CodeSet) ([]ClinicalRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ClinicalRecord
	for _, r := range m.records[subjectID] {
		if r.Kind != KindQuestionnaireResponse {
			continue
		}
		if !r.MatchesSet(set) {
			continue
		}
		out = append(out, r)
	}
	sortByEffectiveDesc(out)
	return out, nil
}

// FindCoverage implements EntityGateway.
func (m *Memory) FindCoverage(ctx context.Context, subjectID string, asOf time.Time) ([]Coverage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Coverage
	for _, c := range m.coverages[subjectID] {
		if c.ActiveAt(asOf) {
			out = append(out, c)
		}
	}
	return out, nil
}

// sortByEffectiveDesc orders records most recent effective date first;
// the stable sort keeps insertion order as the tiebreak.
func sortByEffectiveDesc(records []ClinicalRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].EffectiveStart.After(records[j].EffectiveStart)
	})
}

var _ EntityGateway = (*Memory)(nil)
