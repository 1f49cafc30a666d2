// Package worker runs measure evaluations for many subjects in parallel.
//
// A batch run never aborts on a single bad subject: unknown subjects and
// transient gateway failures are recorded per subject in the batch result's
// error list while the rest of the panel completes.
//
// Example usage:
//
//	pool := worker.NewPool(evaluator, 4)
//
//	for _, id := range panel {
//	    pool.Submit(worker.Job{SubjectID: id, Period: period})
//	}
//
//	batch := pool.CloseAndWait()
//	for _, se := range batch.Errors {
//	    log.Printf("subject %s: %v", se.SubjectID, se.Err)
//	}
package worker
