package worker

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	cqm "github.com/gofhir/cqm"
	"github.com/gofhir/cqm/timeframe"
)

// Evaluator is the evaluation surface the pool drives. It is satisfied by
// engine.Evaluator.
type Evaluator interface {
	EvaluateSubject(ctx context.Context, subjectID string, tf timeframe.Timeframe) (*cqm.Result, error)
}

// ErrNoEvaluator is returned on jobs processed by a pool with no evaluator.
var ErrNoEvaluator = poolError("no evaluator configured")

type poolError string

func (e poolError) Error() string {
	return string(e)
}

// Pool manages a pool of worker goroutines evaluating subjects in parallel.
type Pool struct {
	workers    int
	jobsChan   chan Job
	resultChan chan *JobResult
	evaluator  Evaluator
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	closed     atomic.Bool

	// Metrics
	jobsSubmitted atomic.Uint64
	jobsCompleted atomic.Uint64
	totalDuration atomic.Uint64
}

// NewPool creates a worker pool with the specified number of workers.
// If workers <= 0, it defaults to runtime.NumCPU().
func NewPool(evaluator Evaluator, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Pool{
		workers:    workers,
		jobsChan:   make(chan Job, workers*2),
		resultChan: make(chan *JobResult, workers*2),
		evaluator:  evaluator,
		ctx:        ctx,
		cancel:     cancel,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return p
}

// Submit submits a job to the pool, blocking if the queue is full.
// It returns false once the pool is closed.
func (p *Pool) Submit(job Job) bool {
	if p.closed.Load() {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobsChan <- job:
		p.jobsSubmitted.Add(1)
		return true
	}
}

// Results returns the channel job results are delivered on.
func (p *Pool) Results() <-chan *JobResult {
	return p.resultChan
}

// Close shuts down the pool, discarding undelivered results.
func (p *Pool) Close() {
	if p.closed.Swap(true) {
		return
	}

	p.cancel()
	close(p.jobsChan)

	done := make(chan struct{})
	go func() {
		for range p.resultChan {
		}
		close(done)
	}()

	p.wg.Wait()
	close(p.resultChan)
	<-done
}

// CloseAndWait stops accepting jobs, waits for the in-flight ones, and
// aggregates everything delivered so far into a BatchResult.
func (p *Pool) CloseAndWait() *BatchResult {
	if p.closed.Swap(true) {
		return &BatchResult{}
	}

	close(p.jobsChan)

	go func() {
		p.wg.Wait()
		close(p.resultChan)
	}()

	br := &BatchResult{}
	for result := range p.resultChan {
		br.Completed++
		br.TotalDuration += result.Duration
		if result.Err != nil {
			br.Failed++
			br.Errors = append(br.Errors, SubjectError{SubjectID: result.SubjectID, Err: result.Err})
			continue
		}
		br.Results = append(br.Results, result.Result)
	}
	br.Total = int(p.jobsSubmitted.Load())

	p.cancel()
	return br
}

// Stats returns current pool statistics.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Workers:       p.workers,
		JobsSubmitted: p.jobsSubmitted.Load(),
		JobsCompleted: p.jobsCompleted.Load(),
		AvgDuration:   p.averageDuration(),
	}
}

// PoolStats contains pool statistics.
type PoolStats struct {
	Workers       int
	JobsSubmitted uint64
	JobsCompleted uint64
	AvgDuration   time.Duration
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for job := range p.jobsChan {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		result := p.processJob(job)
		p.jobsCompleted.Add(1)
		p.totalDuration.Add(uint64(result.Duration))

		select {
		case <-p.ctx.Done():
			return
		case p.resultChan <- result:
		}
	}
}

func (p *Pool) processJob(job Job) *JobResult {
	start := time.Now()

	result := &JobResult{SubjectID: job.SubjectID}

	if p.evaluator == nil {
		result.Err = ErrNoEvaluator
		result.Duration = time.Since(start)
		return result
	}

	result.Result, result.Err = p.evaluator.EvaluateSubject(p.ctx, job.SubjectID, job.Period)
	result.Duration = time.Since(start)
	return result
}

func (p *Pool) averageDuration() time.Duration {
	completed := p.jobsCompleted.Load()
	if completed == 0 {
		return 0
	}
	return time.Duration(p.totalDuration.Load() / completed)
}
