// Package simulation owns per-instance snapshot state and the registry that
// routes operations to the correct simulation.
package simulation

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-arena/internal/chat"
	"github.com/rxtech-lab/argo-arena/internal/logger"
	"github.com/rxtech-lab/argo-arena/internal/market"
	"github.com/rxtech-lab/argo-arena/internal/types"
)

// Store holds one simulation's full mutable snapshot. Updates are serialized
// by a per-store mutex and published as whole immutable values through an
// atomic pointer, so concurrent readers always observe the last committed
// snapshot without locks and never a half-applied one.
type Store struct {
	def     Definition
	tick    time.Duration
	gen     market.Generator
	chat    *chat.Manager
	chatCfg types.ChatConfig
	log     *logger.Logger

	mu   sync.Mutex
	snap atomic.Pointer[types.SimulationSnapshot]
}

// NewStore creates a store for one simulation definition. The snapshot itself
// is seeded lazily on first access.
func NewStore(def Definition, gen market.Generator, log *logger.Logger) *Store {
	tick, err := def.TickDuration()
	if err != nil {
		tick = defaultTickInterval
	}

	return &Store{
		def:     def,
		tick:    tick,
		gen:     gen,
		chat:    chat.NewManager(log),
		chatCfg: def.ChatConfig(),
		log:     log,
	}
}

// Definition returns the configuration this store was built from.
func (s *Store) Definition() Definition {
	return s.def
}

// TickInterval returns the round-advance cadence for this simulation.
func (s *Store) TickInterval() time.Duration {
	return s.tick
}

// Snapshot returns the last committed snapshot, initializing the simulation
// on first access.
func (s *Store) Snapshot() *types.SimulationSnapshot {
	if snap := s.snap.Load(); snap != nil {
		return snap
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.initLocked()
}

// initLocked seeds the first snapshot: configured agents, cold-start market
// data for the definition's tickers, and an empty chat log. Callers must hold
// s.mu.
func (s *Store) initLocked() *types.SimulationSnapshot {
	if snap := s.snap.Load(); snap != nil {
		return snap
	}

	agents := make([]types.Agent, len(s.def.Agents))
	for i, seed := range s.def.Agents {
		agents[i] = types.Agent{
			ID:        seed.ID,
			Name:      seed.Name,
			Cash:      decimal.NewFromFloat(seed.Cash),
			Positions: make(map[string]types.Position),
		}
	}

	snap := &types.SimulationSnapshot{
		Day:          0,
		IntradayHour: 0,
		Mode:         s.def.Mode,
		Agents:       agents,
		MarketData:   s.gen.Seed(s.def.Tickers),
		Chat:         types.ChatState{},
		UpdatedAt:    time.Now(),
	}

	s.snap.Store(snap)
	s.log.Info("simulation initialized",
		zap.String("simulation", s.def.ID),
		zap.String("mode", string(s.def.Mode)),
		zap.Int("tickers", len(s.def.Tickers)),
		zap.Int("agents", len(agents)),
	)

	return snap
}

// Update runs fn against a deep copy of the current snapshot and publishes
// the result atomically. On error nothing is published and the prior snapshot
// stays current; there are no partial commits.
func (s *Store) Update(fn func(next *types.SimulationSnapshot) error) (*types.SimulationSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.initLocked().Clone()

	if err := fn(next); err != nil {
		return nil, err
	}

	next.UpdatedAt = time.Now()
	s.snap.Store(next)

	return next, nil
}

// SnapshotPatch names the snapshot fields to merge-replace. Absent fields are
// left untouched.
type SnapshotPatch struct {
	Day          optional.Option[int]
	IntradayHour optional.Option[float64]
	Agents       optional.Option[[]types.Agent]
	MarketData   optional.Option[map[string]types.MarketDataPoint]
	Chat         optional.Option[types.ChatState]
}

// Apply merge-replaces the named fields as one atomic snapshot update.
func (s *Store) Apply(patch SnapshotPatch) (*types.SimulationSnapshot, error) {
	return s.Update(func(next *types.SimulationSnapshot) error {
		if patch.Day.IsSome() {
			next.Day = patch.Day.Unwrap()
		}

		if patch.IntradayHour.IsSome() {
			next.IntradayHour = patch.IntradayHour.Unwrap()
		}

		if patch.Agents.IsSome() {
			next.Agents = patch.Agents.Unwrap()
		}

		if patch.MarketData.IsSome() {
			next.MarketData = patch.MarketData.Unwrap()
		}

		if patch.Chat.IsSome() {
			next.Chat = patch.Chat.Unwrap()
		}

		return nil
	})
}
