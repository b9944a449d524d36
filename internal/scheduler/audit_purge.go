package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bookverse/bookverse/internal/config"
)

// AuditEventPurger removes audit events older than a cutoff time.
type AuditEventPurger interface {
	DeleteOldEvents(olderThan time.Time) (int64, error)
}

// AuditPurgeScheduler periodically deletes audit events past their
// retention window.
type AuditPurgeScheduler struct {
	purger AuditEventPurger
	cfg    config.Audit

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewAuditPurgeScheduler creates a new scheduler instance.
func NewAuditPurgeScheduler(purger AuditEventPurger, cfg config.Audit) *AuditPurgeScheduler {
	return &AuditPurgeScheduler{
		purger: purger,
		cfg:    cfg,
		cron:   cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if the audit trail is enabled.
func (s *AuditPurgeScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled || s.cfg.RetentionDays <= 0 {
		log.Printf("Audit purge scheduler: disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.cfg.PurgeSchedule, func() {
		cutoff := time.Now().AddDate(0, 0, -s.cfg.RetentionDays)
		deleted, err := s.purger.DeleteOldEvents(cutoff)
		if err != nil {
			log.Printf("Audit purge scheduler: purge failed: %v", err)
			return
		}
		if deleted > 0 {
			log.Printf("Audit purge scheduler: removed %d events older than %s", deleted, cutoff.Format(time.DateOnly))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid audit purge schedule %q: %w", s.cfg.PurgeSchedule, err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true
	log.Printf("Audit purge scheduler: started with schedule %q", s.cfg.PurgeSchedule)
	return nil
}

// Stop halts the scheduler, waiting for a running job to finish.
func (s *AuditPurgeScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.isRunning = false
	log.Printf("Audit purge scheduler: stopped")
}
