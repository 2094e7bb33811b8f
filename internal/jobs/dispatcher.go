// Package jobs runs batch evaluations in the background behind a bounded
// worker pool.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sevigo/testward/internal/core"
)

// Dispatcher implements core.JobDispatcher and manages a pool of worker
// goroutines processing queued evaluation requests.
type Dispatcher struct {
	job        core.Job                     // Job implementation executed by each worker.
	jobQueue   chan *core.EvaluationRequest // Queue of incoming batch requests.
	maxWorkers int                          // Number of concurrent workers.
	wg         sync.WaitGroup               // Tracks active workers for graceful shutdown.
	mu         sync.Mutex                   // Guards stopped and the queue close.
	stopped    bool
	logger     *slog.Logger
}

// NewDispatcher initializes a dispatcher with a worker pool.
// If maxWorkers is 0 or negative, it defaults to 1.
func NewDispatcher(job core.Job, maxWorkers int, logger *slog.Logger) *Dispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	d := &Dispatcher{
		job:        job,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan *core.EvaluationRequest, 100),
		logger:     logger,
	}
	d.startWorkers()
	return d
}

// startWorkers launches maxWorkers goroutines to process jobs from the queue.
func (d *Dispatcher) startWorkers() {
	for i := range d.maxWorkers {
		d.wg.Add(1)
		go d.startWorker(i)
	}
}

// startWorker processes requests from the queue until it's closed.
func (d *Dispatcher) startWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Info("starting evaluation worker", "id", workerID)

	for req := range d.jobQueue {
		d.processRequest(workerID, req)
	}

	d.logger.Info("shutting down evaluation worker", "id", workerID)
}

func (d *Dispatcher) processRequest(workerID int, req *core.EvaluationRequest) {
	d.logger.Info("worker processing batch",
		"worker_id", workerID,
		"batch", req.BatchID,
		"files", len(req.Candidates),
	)

	if err := d.job.Run(context.Background(), req); err != nil {
		d.logger.Error("evaluation job failed",
			"batch", req.BatchID,
			"error", err,
		)
	}
}

// Dispatch queues an evaluation request for processing by a worker. The
// stopped check and the send share the mutex with Stop so a late Dispatch
// gets an error instead of a send on a closed queue.
func (d *Dispatcher) Dispatch(_ context.Context, req *core.EvaluationRequest) error {
	d.logger.Info("queuing evaluation job", "batch", req.BatchID, "files", len(req.Candidates))

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return fmt.Errorf("dispatcher is stopped, cannot accept new evaluation")
	}

	select {
	case d.jobQueue <- req:
		return nil
	default:
		return fmt.Errorf("job queue is full, cannot accept new evaluation")
	}
}

// Stop gracefully shuts down the dispatcher, waiting for all workers to
// finish. Calling Stop more than once is safe.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.jobQueue)
	d.mu.Unlock()

	d.logger.Info("stopping dispatcher and waiting for jobs to finish")
	d.wg.Wait()
	d.logger.Info("all evaluation jobs have finished")
}
