package server

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-arena/internal/logger"
	"github.com/rxtech-lab/argo-arena/internal/simulation"
	"github.com/rxtech-lab/argo-arena/internal/types"
)

// Scheduler advances every registered simulation on its own tick interval.
// Each store gets one goroutine; a failed advance is logged and retried on
// the next tick, since the store keeps the prior round on failure.
type Scheduler struct {
	manager *simulation.Manager
	archive snapshotArchiver
	logger  *logger.Logger

	wg sync.WaitGroup
}

type snapshotArchiver interface {
	Save(simulationID string, snap *types.SimulationSnapshot) error
}

// NewScheduler creates a scheduler over the registry. archive may be nil.
func NewScheduler(manager *simulation.Manager, archive snapshotArchiver, log *logger.Logger) *Scheduler {
	return &Scheduler{
		manager: manager,
		archive: archive,
		logger:  log,
	}
}

// Run ticks every simulation until ctx is cancelled, then waits for the
// per-store loops to drain.
func (s *Scheduler) Run(ctx context.Context) {
	for _, store := range s.manager.Stores() {
		s.wg.Add(1)

		go func(store *simulation.Store) {
			defer s.wg.Done()
			s.runStore(ctx, store)
		}(store)
	}

	s.wg.Wait()
}

func (s *Scheduler) runStore(ctx context.Context, store *simulation.Store) {
	id := store.Definition().ID
	kind := store.AdvanceKindFor()

	ticker := time.NewTicker(store.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if store.Snapshot().Complete {
				s.logger.Info("simulation complete, stopping scheduler", zap.String("simulation", id))

				return
			}

			snap, err := store.AdvanceRound(ctx, kind)
			if err != nil {
				s.logger.Warn("scheduled advance failed",
					zap.String("simulation", id),
					zap.Error(err),
				)

				continue
			}

			s.logger.Debug("round advanced",
				zap.String("simulation", id),
				zap.String("round", snap.Round().Key()),
				zap.Bool("trading_window", snap.TradingWindowOpen),
			)

			if s.archive != nil {
				if err := s.archive.Save(id, snap); err != nil {
					s.logger.Warn("failed to archive snapshot",
						zap.String("simulation", id),
						zap.Error(err),
					)
				}
			}
		}
	}
}
