// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/bookverse/bookverse/internal/config"
	"github.com/bookverse/bookverse/internal/tasks"
)

// TaskEnqueuer enqueues background tasks.
type TaskEnqueuer interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// RatingReconcileScheduler periodically enqueues a full rating recount to
// repair aggregate drift.
type RatingReconcileScheduler struct {
	queue TaskEnqueuer
	cfg   config.Reconcile

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewRatingReconcileScheduler creates a new scheduler instance.
func NewRatingReconcileScheduler(queue TaskEnqueuer, cfg config.Reconcile) *RatingReconcileScheduler {
	return &RatingReconcileScheduler{
		queue: queue,
		cfg:   cfg,
		cron:  cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if reconciliation is enabled.
func (s *RatingReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Printf("Rating reconcile scheduler: disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		if _, err := s.queue.Add(tasks.RecountRatingsTask{}).Ctx(ctx).Save(); err != nil {
			log.Printf("Rating reconcile scheduler: failed to enqueue recount: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", s.cfg.Schedule, err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true
	log.Printf("Rating reconcile scheduler: started with schedule %q", s.cfg.Schedule)
	return nil
}

// Stop halts the scheduler, waiting for a running job to finish.
func (s *RatingReconcileScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.isRunning = false
	log.Printf("Rating reconcile scheduler: stopped")
}
