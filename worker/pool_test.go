package worker

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	cqm "github.com/gofhir/cqm"
	"github.com/gofhir/cqm/gateway"
	"github.com/gofhir/cqm/pkg/logger"
	"github.com/gofhir/cqm/timeframe"
)

// stubEvaluator returns canned statuses per subject and errors for the rest.
type stubEvaluator struct {
	mu       sync.Mutex
	statuses map[string]cqm.Status
	errs     map[string]error
	calls    int
}

func (s *stubEvaluator) EvaluateSubject(ctx context.Context, subjectID string, tf timeframe.Timeframe) (*cqm.Result, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if err, ok := s.errs[subjectID]; ok {
		return nil, err
	}
	status, ok := s.statuses[subjectID]
	if !ok {
		return nil, gateway.ErrSubjectNotFound
	}
	return &cqm.Result{SubjectID: subjectID, MeasureKey: "test", Status: status}, nil
}

func testTimeframe() timeframe.Timeframe {
	return timeframe.MustNew(
		time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
	)
}

func quietBatch(eval Evaluator, workers int) *BatchEvaluator {
	be := NewBatchEvaluator(eval, workers)
	be.SetLogger(logger.New(io.Discard, logger.LevelNone))
	return be
}

func TestPoolEvaluatesAllJobs(t *testing.T) {
	eval := &stubEvaluator{statuses: map[string]cqm.Status{
		"p1": cqm.StatusSatisfied,
		"p2": cqm.StatusDue,
		"p3": cqm.StatusNotApplicable,
	}}

	pool := NewPool(eval, 2)
	for _, id := range []string{"p1", "p2", "p3"} {
		if !pool.Submit(Job{SubjectID: id, Period: testTimeframe()}) {
			t.Fatalf("Submit(%s) refused", id)
		}
	}

	br := pool.CloseAndWait()

	if br.Total != 3 || br.Completed != 3 || br.Failed != 0 {
		t.Errorf("Total=%d Completed=%d Failed=%d, want 3/3/0", br.Total, br.Completed, br.Failed)
	}
	if len(br.Results) != 3 {
		t.Fatalf("len(Results) = %d, want 3", len(br.Results))
	}

	ids := make([]string, 0, 3)
	for _, r := range br.Results {
		ids = append(ids, r.SubjectID)
	}
	sort.Strings(ids)
	if ids[0] != "p1" || ids[1] != "p2" || ids[2] != "p3" {
		t.Errorf("unexpected subjects: %v", ids)
	}
}

func TestPoolRecordsFailures(t *testing.T) {
	eval := &stubEvaluator{
		statuses: map[string]cqm.Status{"p1": cqm.StatusDue},
		errs:     map[string]error{"p2": errors.New("store down")},
	}

	pool := NewPool(eval, 2)
	pool.Submit(Job{SubjectID: "p1", Period: testTimeframe()})
	pool.Submit(Job{SubjectID: "p2", Period: testTimeframe()})

	br := pool.CloseAndWait()

	if len(br.Results) != 1 || len(br.Errors) != 1 {
		t.Fatalf("Results=%d Errors=%d, want 1/1", len(br.Results), len(br.Errors))
	}
	if br.Errors[0].SubjectID != "p2" {
		t.Errorf("failed subject = %s, want p2", br.Errors[0].SubjectID)
	}
	if br.Failed != 1 {
		t.Errorf("Failed = %d, want 1", br.Failed)
	}
}

func TestPoolSubmitAfterClose(t *testing.T) {
	pool := NewPool(&stubEvaluator{}, 1)
	pool.Close()

	if pool.Submit(Job{SubjectID: "p1", Period: testTimeframe()}) {
		t.Error("Submit() after Close() should refuse")
	}
}

func TestPoolNoEvaluator(t *testing.T) {
	pool := NewPool(nil, 1)
	pool.Submit(Job{SubjectID: "p1", Period: testTimeframe()})

	br := pool.CloseAndWait()
	if len(br.Errors) != 1 || !errors.Is(br.Errors[0].Err, ErrNoEvaluator) {
		t.Errorf("Errors = %v, want ErrNoEvaluator", br.Errors)
	}
}

func TestBatchEvaluatorSequentialPath(t *testing.T) {
	eval := &stubEvaluator{statuses: map[string]cqm.Status{
		"p1": cqm.StatusSatisfied,
		"p2": cqm.StatusDue,
	}}

	br := quietBatch(eval, 4).EvaluateBatch(context.Background(), []string{"p1", "p2"}, testTimeframe())

	if br.Total != 2 || br.Completed != 2 {
		t.Errorf("Total=%d Completed=%d, want 2/2", br.Total, br.Completed)
	}
	// Panel order preserved.
	if br.Results[0].SubjectID != "p1" || br.Results[1].SubjectID != "p2" {
		t.Errorf("order not preserved: %v, %v", br.Results[0].SubjectID, br.Results[1].SubjectID)
	}
}

func TestBatchEvaluatorSkipsUnknownSubjects(t *testing.T) {
	eval := &stubEvaluator{statuses: map[string]cqm.Status{
		"p1": cqm.StatusSatisfied,
		"p3": cqm.StatusDue,
		"p4": cqm.StatusDue,
	}}

	br := quietBatch(eval, 2).EvaluateBatch(context.Background(),
		[]string{"p1", "p2", "p3", "p4"}, testTimeframe())

	if br.Total != 4 || br.Completed != 4 || br.Failed != 1 {
		t.Errorf("Total=%d Completed=%d Failed=%d, want 4/4/1", br.Total, br.Completed, br.Failed)
	}
	if len(br.Results) != 3 {
		t.Errorf("len(Results) = %d, want 3", len(br.Results))
	}
	if len(br.Errors) != 1 || br.Errors[0].SubjectID != "p2" {
		t.Fatalf("Errors = %v, want p2", br.Errors)
	}
	if !errors.Is(br.Errors[0].Err, gateway.ErrSubjectNotFound) {
		t.Errorf("Err = %v, want ErrSubjectNotFound", br.Errors[0].Err)
	}

	// Panel order preserved in the parallel path too.
	if br.Results[0].SubjectID != "p1" || br.Results[1].SubjectID != "p3" || br.Results[2].SubjectID != "p4" {
		t.Errorf("order not preserved: %+v", br.Results)
	}
}

func TestBatchEvaluatorEmptyPanel(t *testing.T) {
	br := quietBatch(&stubEvaluator{}, 2).EvaluateBatch(context.Background(), nil, testTimeframe())
	if br.Total != 0 || len(br.Results) != 0 || len(br.Errors) != 0 {
		t.Errorf("empty panel: %+v", br)
	}
}

func TestCountByStatus(t *testing.T) {
	br := &BatchResult{Results: []*cqm.Result{
		{Status: cqm.StatusDue},
		{Status: cqm.StatusDue},
		{Status: cqm.StatusSatisfied},
	}}

	if got := br.CountByStatus(cqm.StatusDue); got != 2 {
		t.Errorf("CountByStatus(due) = %d, want 2", got)
	}
	if got := br.CountByStatus(cqm.StatusNotApplicable); got != 0 {
		t.Errorf("CountByStatus(not_applicable) = %d, want 0", got)
	}
}

func TestSubjectErrorUnwrap(t *testing.T) {
	cause := gateway.ErrSubjectNotFound
	se := SubjectError{SubjectID: "p1", Err: cause}
	if !errors.Is(se, cause) {
		t.Error("SubjectError should unwrap to its cause")
	}
}
