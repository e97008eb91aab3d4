// Package market produces per-ticker price points for each round. Three modes
// exist: a simulated random walk, live retrieval through relay chains, and
// historical replay. The mode is selected once at startup and fixed for the
// simulation's lifetime.
package market

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-arena/internal/logger"
	"github.com/rxtech-lab/argo-arena/internal/types"
	"github.com/rxtech-lab/argo-arena/pkg/errors"
)

// Generator is the per-round market data entry point. NextRound must return a
// mapping with exactly the same key set as prev: tickers are never dropped or
// added mid-run.
type Generator interface {
	// Seed produces the cold-start price set for the given tickers.
	Seed(tickers []string) map[string]types.MarketDataPoint
	// NextRound computes the next round's full price mapping from the
	// previous round's. dayStep marks a full-day transition as opposed to an
	// intraday sub-step.
	NextRound(ctx context.Context, prev map[string]types.MarketDataPoint, dayStep bool) (map[string]types.MarketDataPoint, error)
}

// Options configures generator construction.
type Options struct {
	// Seed drives the simulated random walk. Zero means time-derived.
	Seed int64
	// PolygonAPIKey enables the Polygon relay when set.
	PolygonAPIKey string
	// HistoricalAnchor is the calendar date the historical week is derived
	// from. Zero value means today.
	HistoricalAnchor time.Time
	// RelayTimeout bounds each live retrieval attempt. Zero means the
	// default.
	RelayTimeout time.Duration
	// Relays overrides the default relay chain; used by tests to inject
	// stub retrieval strategies.
	Relays []Relay
}

// NewGenerator builds the generator for the given mode.
func NewGenerator(mode types.SimulationMode, opts Options, log *logger.Logger) (Generator, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	switch mode {
	case types.ModeSimulated:
		return NewSimulatedGenerator(seed), nil
	case types.ModeRealTime:
		return NewRealTimeGenerator(defaultRelays(opts), seed, opts.RelayTimeout, log), nil
	case types.ModeHistorical:
		anchor := opts.HistoricalAnchor
		if anchor.IsZero() {
			anchor = time.Now()
		}

		return NewHistoricalGenerator(anchor, defaultRelays(opts), seed, opts.RelayTimeout, log), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidMode, "unsupported simulation mode %q", mode)
	}
}

func defaultRelays(opts Options) []Relay {
	if opts.Relays != nil {
		return opts.Relays
	}

	var relays []Relay

	if opts.PolygonAPIKey != "" {
		if relay, err := NewPolygonRelay(opts.PolygonAPIKey); err == nil {
			relays = append(relays, relay)
		}
	}

	relays = append(relays, NewBinanceRelay())

	return relays
}
