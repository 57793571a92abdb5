// Package worker provides worker pools for examining many patients.
//
// BatchExaminer handles a known batch and keeps results in input order.
// Pool accepts jobs over time:
//
//	pool := worker.NewPool(definition.Apply, 4)
//
//	for _, p := range patients {
//	    pool.Submit(worker.NewJob(p))
//	}
//
//	batch := pool.CloseAndWait()
//	for _, r := range batch.Faults() {
//	    // Handle r.Error
//	}
package worker
