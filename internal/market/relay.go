package market

import (
	"context"
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-arena/internal/types"
)

// DefaultRelayTimeout bounds one live retrieval attempt so a stalled network
// call cannot delay a round advance indefinitely.
const DefaultRelayTimeout = 5 * time.Second

// Quote is a single live price observation for one ticker.
type Quote struct {
	Ticker        string
	Price         float64
	Change        float64
	ChangePercent float64
	Fundamentals  optional.Option[types.Fundamentals]
}

// Relay is one retrieval strategy for reaching a market-data provider.
// Strategies are tried in order; any error or unusable payload moves the
// chain to the next relay.
type Relay interface {
	// Name identifies the relay in logs.
	Name() string
	// Quote fetches the current observation for a ticker. Implementations
	// must honor ctx cancellation; the chain applies a bounded per-attempt
	// timeout.
	Quote(ctx context.Context, ticker string) (Quote, error)
}
