package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// RatingRecounter recomputes book rating aggregates from their reviews.
type RatingRecounter interface {
	RecountBookRatings(ctx context.Context) (int, error)
}

// RecountRatingsTask rebuilds every book's rating average and count.
// Review mutations keep aggregates current synchronously; this task repairs
// any drift left behind by concurrent last-writer-wins updates.
type RecountRatingsTask struct{}

// Config returns the queue configuration for rating recount tasks.
func (t RecountRatingsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "recount_ratings",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RecountRatingsProcessor creates a processor function for RecountRatingsTask.
func RecountRatingsProcessor(recounter RatingRecounter) backlite.QueueProcessor[RecountRatingsTask] {
	return func(ctx context.Context, task RecountRatingsTask) error {
		if recounter == nil {
			return fmt.Errorf("rating recounter not configured")
		}

		books, err := recounter.RecountBookRatings(ctx)
		if err != nil {
			return fmt.Errorf("recount ratings: %w", err)
		}

		log.Printf("[TASK] Recounted ratings for %d books", books)
		return nil
	}
}

// NewRecountRatingsQueue creates a backlite queue for rating recount tasks.
func NewRecountRatingsQueue(recounter RatingRecounter) backlite.Queue {
	return backlite.NewQueue(RecountRatingsProcessor(recounter))
}
