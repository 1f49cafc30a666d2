package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	cqm "github.com/gofhir/cqm"
	"github.com/gofhir/cqm/gateway"
	"github.com/gofhir/cqm/pkg/logger"
	"github.com/gofhir/cqm/timeframe"
)

// BatchEvaluator evaluates a panel of subjects over one measurement period.
type BatchEvaluator struct {
	evaluator Evaluator
	workers   int
	log       *logger.Logger
}

// NewBatchEvaluator creates a batch evaluator.
// If workers <= 0, it defaults to runtime.NumCPU().
func NewBatchEvaluator(evaluator Evaluator, workers int) *BatchEvaluator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &BatchEvaluator{
		evaluator: evaluator,
		workers:   workers,
		log:       logger.Default(),
	}
}

// SetLogger replaces the logger used for skip-and-report warnings.
func (be *BatchEvaluator) SetLogger(log *logger.Logger) {
	if log != nil {
		be.log = log
	}
}

// EvaluateBatch evaluates every subject in the panel. Subjects the gateway
// does not know are skipped with a warning and recorded in Errors; any
// other failure is recorded the same way. The panel order is preserved in
// Results.
func (be *BatchEvaluator) EvaluateBatch(ctx context.Context, subjectIDs []string, period timeframe.Timeframe) *BatchResult {
	if len(subjectIDs) == 0 {
		return &BatchResult{}
	}

	// Small panels are not worth the goroutine overhead.
	if len(subjectIDs) <= 2 {
		return be.evaluateSequential(ctx, subjectIDs, period)
	}
	return be.evaluateParallel(ctx, subjectIDs, period)
}

func (be *BatchEvaluator) evaluateSequential(ctx context.Context, subjectIDs []string, period timeframe.Timeframe) *BatchResult {
	br := &BatchResult{Total: len(subjectIDs)}

	for _, id := range subjectIDs {
		select {
		case <-ctx.Done():
			return br
		default:
		}

		start := time.Now()
		result, err := be.evaluator.EvaluateSubject(ctx, id, period)
		br.Completed++
		br.TotalDuration += time.Since(start)
		be.record(br, id, result, err)
	}
	return br
}

func (be *BatchEvaluator) evaluateParallel(ctx context.Context, subjectIDs []string, period timeframe.Timeframe) *BatchResult {
	numWorkers := be.workers
	if numWorkers > len(subjectIDs) {
		numWorkers = len(subjectIDs)
	}

	jobs := make(chan int, len(subjectIDs))
	done := make(chan *indexedOutcome, len(subjectIDs))

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				start := time.Now()
				result, err := be.evaluator.EvaluateSubject(ctx, subjectIDs[idx], period)
				done <- &indexedOutcome{
					index:    idx,
					result:   result,
					err:      err,
					duration: time.Since(start),
				}
			}
		}()
	}

	for i := range subjectIDs {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(done)
	}()

	// Collect, then replay in panel order so output is deterministic.
	outcomes := make([]*indexedOutcome, len(subjectIDs))
	br := &BatchResult{Total: len(subjectIDs)}
	for out := range done {
		outcomes[out.index] = out
	}
	for i, out := range outcomes {
		if out == nil {
			continue // cancelled before this subject ran
		}
		br.Completed++
		br.TotalDuration += out.duration
		be.record(br, subjectIDs[i], out.result, out.err)
	}
	return br
}

// record files one outcome into the batch result.
func (be *BatchEvaluator) record(br *BatchResult, subjectID string, result *cqm.Result, err error) {
	if err != nil {
		if errors.Is(err, gateway.ErrSubjectNotFound) {
			be.log.Warn("subject %s not found, skipping", subjectID)
		} else {
			be.log.Error("subject %s: %v", subjectID, err)
		}
		br.Failed++
		br.Errors = append(br.Errors, SubjectError{SubjectID: subjectID, Err: err})
		return
	}
	br.Results = append(br.Results, result)
}

type indexedOutcome struct {
	index    int
	result   *cqm.Result
	err      error
	duration time.Duration
}
