// Package jobs runs fire-and-forget background work on a bounded queue.
package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/tradenavi/orchestrator/internal/observability"
)

// jobTimeout bounds each job run. Jobs run on a detached context so a
// client disconnect does not cancel persistence work.
const jobTimeout = 60 * time.Second

// Job is a named unit of background work.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scheduler executes jobs sequentially on a single worker goroutine.
type Scheduler struct {
	queue   chan Job
	metrics *observability.Metrics

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewScheduler creates a scheduler with the given queue capacity and
// starts its worker. Metrics may be nil.
func NewScheduler(queueSize int, metrics *observability.Metrics) *Scheduler {
	if queueSize <= 0 {
		queueSize = 1
	}
	s := &Scheduler{
		queue:   make(chan Job, queueSize),
		metrics: metrics,
	}
	s.wg.Add(1)
	go s.worker()
	return s
}

// Submit enqueues a job without blocking. Returns false if the queue is
// full or the scheduler is stopped; the job is dropped in that case.
func (s *Scheduler) Submit(job Job) (ok bool) {
	defer func() {
		// Submit after Stop sends on a closed channel.
		if r := recover(); r != nil {
			ok = false
		}
		if !ok {
			log.Printf("WARN: dropping background job %s: queue full or scheduler stopped", job.Name)
			s.countJob(job.Name, "dropped")
		}
	}()

	select {
	case s.queue <- job:
		return true
	default:
		return false
	}
}

// Stop closes the queue and waits for queued jobs to drain, or until
// ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		close(s.queue)
	})

	drained := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for job := range s.queue {
		s.run(job)
	}
}

func (s *Scheduler) run(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := job.Run(ctx); err != nil {
		log.Printf("ERROR: background job %s failed: %v", job.Name, err)
		s.countJob(job.Name, "error")
		return
	}
	s.countJob(job.Name, "ok")
}

func (s *Scheduler) countJob(name, status string) {
	if s.metrics == nil {
		return
	}
	s.metrics.JobsTotal.WithLabelValues(name, status).Inc()
}
