package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/gofhir/cqm/timeframe"
	"github.com/gofhir/cqm/valueset"
)

// Chain implements EntityGateway over several sources tried in order.
// Subject resolution takes the first source that knows the subject; record
// queries union the answers from every source, preserving the most-recent-
// first ordering. A transient failure in any source fails the whole call,
// keeping exclusion evaluation closed.
type Chain struct {
	sources []EntityGateway
}

// NewChain creates a chain over the given sources.
func NewChain(sources ...EntityGateway) *Chain {
	return &Chain{sources: sources}
}

// Add appends a source to the chain.
func (c *Chain) Add(source EntityGateway) {
	c.sources = append(c.sources, source)
}

// FindSubject implements EntityGateway.
func (c *Chain) FindSubject(ctx context.Context, subjectID string) (*Subject, error) {
	for _, src := range c.sources {
		s, err := src.FindSubject(ctx, subjectID)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, ErrSubjectNotFound) {
			return nil, err
		}
	}
	return nil, ErrSubjectNotFound
}

// FindRecordsOverlapping implements EntityGateway.
func (c *Chain) FindRecordsOverlapping(ctx context.Context, subjectID string, kind RecordKind, set *valueset.CodeSet, tf timeframe.Timeframe) ([]ClinicalRecord, error) {
	var out []ClinicalRecord
	for _, src := range c.sources {
		records, err := src.FindRecordsOverlapping(ctx, subjectID, kind, set, tf)
		if err != nil {
			return nil, err
		}
		out = append(out, records...)
	}
	sortByEffectiveDesc(out)
	return out, nil
}

// FindBillingWithCodes implements EntityGateway.
func (c *Chain) FindBillingWithCodes(ctx context.Context, subjectID string, codes valueset.Lookup, tf timeframe.Timeframe) ([]ClinicalRecord, error) {
	var out []ClinicalRecord
	for _, src := range c.sources {
		records, err := src.FindBillingWithCodes(ctx, subjectID, codes, tf)
		if err != nil {
			return nil, err
		}
		out = append(out, records...)
	}
	sortByEffectiveDesc(out)
	return out, nil
}

// FindQuestionnaireResponses implements EntityGateway.
func (c *Chain) FindQuestionnaireResponses(ctx context.Context, subjectID string, set *valueset.CodeSet) ([]ClinicalRecord, error) {
	var out []ClinicalRecord
	for _, src := range c.sources {
		records, err := src.FindQuestionnaireResponses(ctx, subjectID, set)
		if err != nil {
			return nil, err
		}
		out = append(out, records...)
	}
	sortByEffectiveDesc(out)
	return out, nil
}

// FindCoverage implements EntityGateway.
func (c *Chain) FindCoverage(ctx context.Context, subjectID string, asOf time.Time) ([]Coverage, error) {
	var out []Coverage
	for _, src := range c.sources {
		coverages, err := src.FindCoverage(ctx, subjectID, asOf)
		if err != nil {
			return nil, err
		}
		out = append(out, coverages...)
	}
	return out, nil
}

var _ EntityGateway = (*Chain)(nil)
