package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxtech-lab/argo-arena/internal/logger"
	"github.com/rxtech-lab/argo-arena/internal/simulation"
	"github.com/rxtech-lab/argo-arena/internal/types"
)

const schedulerConfigYAML = `
simulations:
  - id: fast
    mode: simulated
    tickers: [AAPL]
    tick_interval: 5ms
    agents:
      - id: A1
        name: Momentum Mike
        cash: 10000
`

type recordingArchive struct {
	mu     sync.Mutex
	rounds []string
}

func (a *recordingArchive) Save(_ string, snap *types.SimulationSnapshot) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.rounds = append(a.rounds, snap.Round().Key())

	return nil
}

func (a *recordingArchive) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.rounds)
}

func newSchedulerManager(t *testing.T) (*simulation.Manager, *logger.Logger) {
	t.Helper()

	log, err := logger.NewLogger()
	require.NoError(t, err)

	cfg, err := simulation.ParseConfig([]byte(schedulerConfigYAML))
	require.NoError(t, err)

	manager, err := simulation.NewManager(cfg, log)
	require.NoError(t, err)

	return manager, log
}

func TestSchedulerAdvancesOnTick(t *testing.T) {
	manager, log := newSchedulerManager(t)
	archive := &recordingArchive{}
	scheduler := NewScheduler(manager, archive, log)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	scheduler.Run(ctx)

	store, err := manager.GetSimulation("fast")
	require.NoError(t, err)

	snap := store.Snapshot()
	assert.NotEqual(t, "0-0.000", snap.Round().Key(), "expected at least one round advance")
	assert.Greater(t, archive.count(), 0, "expected archived rounds")
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	manager, log := newSchedulerManager(t)
	scheduler := NewScheduler(manager, nil, log)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})

	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
}

func TestSchedulerStopsWhenComplete(t *testing.T) {
	manager, log := newSchedulerManager(t)

	store, err := manager.GetSimulation("fast")
	require.NoError(t, err)

	// A snapshot already marked complete stops the loop on the next tick.
	_, err = store.Update(func(next *types.SimulationSnapshot) error {
		next.Complete = true

		return nil
	})
	require.NoError(t, err)

	scheduler := NewScheduler(manager, nil, log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan struct{})

	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop for a complete simulation")
	}

	assert.Equal(t, 0, store.Snapshot().Day)
}
