package market

import (
	"context"
	"math/rand"

	"github.com/rxtech-lab/argo-arena/internal/types"
)

const (
	// MinPrice floors every generated price so it can never go non-positive.
	MinPrice = 1.0

	// Cold-start prices are drawn uniformly in [SeedPriceMin, SeedPriceMax].
	SeedPriceMin = 50.0
	SeedPriceMax = 300.0

	// Expected long-run drift per step.
	trendPerDay      = 0.001
	trendPerIntraday = 0.0005

	// Symmetric uniform noise magnitude per step.
	volatilityPerDay      = 0.035
	volatilityPerIntraday = 0.01
)

// SimulatedGenerator advances prices with a drifting random walk:
// price × (1 + trend + noise), noise uniform in [-volatility, +volatility].
type SimulatedGenerator struct {
	rng *rand.Rand
}

// NewSimulatedGenerator creates a generator with the given seed. Use a fixed
// seed for reproducible sequences in tests.
func NewSimulatedGenerator(seed int64) *SimulatedGenerator {
	return &SimulatedGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Seed implements Generator.
func (g *SimulatedGenerator) Seed(tickers []string) map[string]types.MarketDataPoint {
	points := make(map[string]types.MarketDataPoint, len(tickers))

	for _, ticker := range tickers {
		points[ticker] = g.FreshPoint(ticker)
	}

	return points
}

// FreshPoint draws a brand-new price in the seed range with zero change. The
// real-time generator uses it as the per-ticker fallback when every relay
// fails.
func (g *SimulatedGenerator) FreshPoint(ticker string) types.MarketDataPoint {
	return types.MarketDataPoint{
		Ticker:             ticker,
		Price:              SeedPriceMin + g.rng.Float64()*(SeedPriceMax-SeedPriceMin),
		DailyChange:        0,
		DailyChangePercent: 0,
	}
}

// NextRound implements Generator.
func (g *SimulatedGenerator) NextRound(_ context.Context, prev map[string]types.MarketDataPoint, dayStep bool) (map[string]types.MarketDataPoint, error) {
	trend := trendPerIntraday
	volatility := volatilityPerIntraday

	if dayStep {
		trend = trendPerDay
		volatility = volatilityPerDay
	}

	next := make(map[string]types.MarketDataPoint, len(prev))

	for ticker, point := range prev {
		noise := (g.rng.Float64()*2 - 1) * volatility

		price := point.Price * (1 + trend + noise)
		if price < MinPrice {
			price = MinPrice
		}

		// Intraday moves accumulate against the previous full-day close; a
		// day step closes the book and measures against yesterday's price.
		baseline := point.PreviousDayClose()
		if dayStep {
			baseline = point.Price
		}

		change := price - baseline

		percent := 0.0
		if baseline != 0 {
			percent = change / baseline * 100
		}

		next[ticker] = types.MarketDataPoint{
			Ticker:             ticker,
			Price:              price,
			DailyChange:        change,
			DailyChangePercent: percent,
		}
	}

	return next, nil
}
