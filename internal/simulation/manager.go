package simulation

import (
	"time"

	"github.com/rxtech-lab/argo-arena/internal/logger"
	"github.com/rxtech-lab/argo-arena/internal/market"
	"github.com/rxtech-lab/argo-arena/internal/types"
	"github.com/rxtech-lab/argo-arena/pkg/errors"
)

// Manager is the registry of named simulation stores. Each simulation type
// maps to exactly one store; distinct simulations share no mutable state. The
// registry itself is immutable after construction, so lookups need no
// locking.
type Manager struct {
	stores map[string]*Store
	order  []string
	log    *logger.Logger
}

// NewManager builds one isolated store per configured simulation definition.
func NewManager(cfg *Config, log *logger.Logger) (*Manager, error) {
	m := &Manager{
		stores: make(map[string]*Store, len(cfg.Simulations)),
		order:  make([]string, 0, len(cfg.Simulations)),
		log:    log,
	}

	for _, def := range cfg.Simulations {
		if _, exists := m.stores[def.ID]; exists {
			return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "duplicate simulation id %s", def.ID)
		}

		gen, err := market.NewGenerator(def.Mode, market.Options{
			PolygonAPIKey:    cfg.PolygonAPIKey,
			HistoricalAnchor: historicalAnchor(def, cfg),
		}, log)
		if err != nil {
			return nil, err
		}

		m.stores[def.ID] = NewStore(def, gen, log)
		m.order = append(m.order, def.ID)
	}

	return m, nil
}

// GetSimulation returns the store for a simulation identifier, or a not-found
// error for unknown ids.
func (m *Manager) GetSimulation(id string) (*Store, error) {
	store, ok := m.stores[id]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeSimulationNotFound, "no simulation with id %s", id)
	}

	return store, nil
}

// Stores returns every store in configuration order.
func (m *Manager) Stores() []*Store {
	stores := make([]*Store, 0, len(m.order))
	for _, id := range m.order {
		stores = append(stores, m.stores[id])
	}

	return stores
}

// historicalAnchor resolves the week anchor for one definition: its own
// start date first, then the environment-wide one.
func historicalAnchor(def Definition, cfg *Config) time.Time {
	if def.HistoricalStartDate != "" {
		if parsed, err := time.Parse("2006-01-02", def.HistoricalStartDate); err == nil {
			return parsed
		}
	}

	return cfg.HistoricalAnchor
}

// AdvanceKindFor returns the round transition a scheduler should apply for
// the store's mode. Real-time and historical modes have no intraday
// granularity; they advance a full day per tick.
func (s *Store) AdvanceKindFor() AdvanceKind {
	if s.def.Mode == types.ModeRealTime || s.def.Mode == types.ModeHistorical {
		return AdvanceKindDay
	}

	return AdvanceKindIntraday
}
