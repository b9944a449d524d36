package scheduler

import (
	"context"
	"testing"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookverse/bookverse/internal/config"
)

type fakeEnqueuer struct{}

func (f *fakeEnqueuer) Add(tasks ...backlite.Task) *backlite.TaskAddOp {
	return nil
}

func TestRatingReconcileScheduler_StartStop(t *testing.T) {
	cfg := config.Reconcile{
		Enabled:  true,
		Schedule: "0 4 * * *",
	}
	s := NewRatingReconcileScheduler(&fakeEnqueuer{}, cfg)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.isRunning)

	// Second start is a no-op.
	require.NoError(t, s.Start(context.Background()))

	s.Stop()
	assert.False(t, s.isRunning)
}

func TestRatingReconcileScheduler_Disabled(t *testing.T) {
	s := NewRatingReconcileScheduler(&fakeEnqueuer{}, config.Reconcile{Enabled: false})
	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.isRunning)
}

func TestRatingReconcileScheduler_InvalidSchedule(t *testing.T) {
	cfg := config.Reconcile{
		Enabled:  true,
		Schedule: "bogus",
	}
	s := NewRatingReconcileScheduler(&fakeEnqueuer{}, cfg)
	err := s.Start(context.Background())
	require.Error(t, err)
	assert.False(t, s.isRunning)
}
