package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/instructor-directory-api/pkg/jobs"
)

// PrioritySweepJob is the job type that clears expired priority slots.
const PrioritySweepJob = "priority_sweep"

type priorityRemover interface {
	RemovePriorities(ctx context.Context) (int64, error)
}

// PrioritySweeper periodically expires priority slots through a job queue.
type PrioritySweeper struct {
	directory priorityRemover
	queue     *jobs.Queue
	interval  time.Duration
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPrioritySweeper constructs a sweeper running every interval (default one hour).
func NewPrioritySweeper(directory priorityRemover, interval time.Duration, logger *zap.Logger) *PrioritySweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	s := &PrioritySweeper{directory: directory, interval: interval, logger: logger}
	s.queue = jobs.NewQueue(PrioritySweepJob, s.handle, jobs.QueueConfig{
		Workers:    1,
		MaxRetries: 3,
		RetryDelay: 30 * time.Second,
		Logger:     logger,
	})
	return s
}

// SweepNow clears expired slots synchronously.
func (s *PrioritySweeper) SweepNow(ctx context.Context) (int64, error) {
	return s.directory.RemovePriorities(ctx)
}

// Start launches the queue worker and the ticker.
func (s *PrioritySweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.queue.Start(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.queue.Every(ctx, s.interval, PrioritySweepJob)
	}()
}

// Stop halts the ticker and waits for the worker.
func (s *PrioritySweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.queue.Stop()
}

func (s *PrioritySweeper) handle(ctx context.Context, job jobs.Job) error {
	cleared, err := s.directory.RemovePriorities(ctx)
	if err != nil {
		return err
	}
	s.logger.Debug("priority sweep finished", zap.String("job_id", job.ID), zap.Int64("cleared", cleared))
	return nil
}
