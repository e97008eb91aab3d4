package market

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-arena/internal/logger"
	"github.com/rxtech-lab/argo-arena/internal/types"
	"github.com/rxtech-lab/argo-arena/pkg/errors"
)

// RealTimeGenerator retrieves live prices through an ordered relay chain.
// Relays are tried in order under a bounded per-attempt timeout; when every
// relay fails for a ticker the generator falls back to a freshly drawn
// simulated price with zero change, so a bad network egress never halts the
// simulation. One ticker's failure never aborts the remaining tickers.
type RealTimeGenerator struct {
	relays   []Relay
	timeout  time.Duration
	fallback *SimulatedGenerator
	log      *logger.Logger
}

// NewRealTimeGenerator builds the live generator. seed drives the fallback
// price draws.
func NewRealTimeGenerator(relays []Relay, seed int64, timeout time.Duration, log *logger.Logger) *RealTimeGenerator {
	if timeout <= 0 {
		timeout = DefaultRelayTimeout
	}

	return &RealTimeGenerator{
		relays:   relays,
		timeout:  timeout,
		fallback: NewSimulatedGenerator(seed),
		log:      log,
	}
}

// Seed implements Generator. Cold-start prices are simulated; live values
// replace them on the first round advance.
func (g *RealTimeGenerator) Seed(tickers []string) map[string]types.MarketDataPoint {
	return g.fallback.Seed(tickers)
}

// NextRound implements Generator.
func (g *RealTimeGenerator) NextRound(ctx context.Context, prev map[string]types.MarketDataPoint, _ bool) (map[string]types.MarketDataPoint, error) {
	next := make(map[string]types.MarketDataPoint, len(prev))

	for ticker := range prev {
		quote, err := g.fetch(ctx, ticker)
		if err != nil {
			// Recovered locally; logged for observability only.
			g.log.Warn("all relays failed, falling back to simulated price",
				zap.String("ticker", ticker),
				zap.Error(err),
			)

			next[ticker] = g.fallback.FreshPoint(ticker)

			continue
		}

		price := quote.Price
		if price < MinPrice {
			price = MinPrice
		}

		next[ticker] = types.MarketDataPoint{
			Ticker:             ticker,
			Price:              price,
			DailyChange:        quote.Change,
			DailyChangePercent: quote.ChangePercent,
			Fundamentals:       quote.Fundamentals,
		}
	}

	return next, nil
}

// fetch walks the relay chain for a single ticker.
func (g *RealTimeGenerator) fetch(ctx context.Context, ticker string) (Quote, error) {
	var lastErr error

	for _, relay := range g.relays {
		attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
		quote, err := relay.Quote(attemptCtx, ticker)

		cancel()

		if err != nil {
			g.log.Warn("relay attempt failed",
				zap.String("relay", relay.Name()),
				zap.String("ticker", ticker),
				zap.Error(err),
			)

			lastErr = err

			continue
		}

		if quote.Price <= 0 {
			g.log.Warn("relay returned unusable price",
				zap.String("relay", relay.Name()),
				zap.String("ticker", ticker),
				zap.Float64("price", quote.Price),
			)

			lastErr = errors.Newf(errors.ErrCodeMarketDataParseFailed, "relay %s returned non-positive price for %s", relay.Name(), ticker)

			continue
		}

		return quote, nil
	}

	if lastErr == nil {
		lastErr = errors.New(errors.ErrCodeRelayUnavailable, "no relays configured")
	}

	return Quote{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, lastErr, "no relay produced a usable quote for %s", ticker)
}
