package market

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-arena/internal/logger"
	"github.com/rxtech-lab/argo-arena/internal/types"
)

// stubRelay is an injectable retrieval strategy for tests.
type stubRelay struct {
	name   string
	quotes map[string]Quote
	err    error
	calls  int
	delay  time.Duration
}

func (s *stubRelay) Name() string {
	return s.name
}

func (s *stubRelay) Quote(ctx context.Context, ticker string) (Quote, error) {
	s.calls++

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Quote{}, ctx.Err()
		}
	}

	if s.err != nil {
		return Quote{}, s.err
	}

	quote, ok := s.quotes[ticker]
	if !ok {
		return Quote{}, fmt.Errorf("no quote for %s", ticker)
	}

	return quote, nil
}

type RealTimeGeneratorTestSuite struct {
	suite.Suite

	log *logger.Logger
}

func TestRealTimeGeneratorSuite(t *testing.T) {
	suite.Run(t, new(RealTimeGeneratorTestSuite))
}

func (suite *RealTimeGeneratorTestSuite) SetupTest() {
	log, err := logger.NewLogger()
	suite.Require().NoError(err)
	suite.log = log
}

func (suite *RealTimeGeneratorTestSuite) TestFirstRelayWins() {
	primary := &stubRelay{
		name:   "primary",
		quotes: map[string]Quote{"AAPL": {Ticker: "AAPL", Price: 187.5, Change: 1.2, ChangePercent: 0.64}},
	}
	secondary := &stubRelay{name: "secondary"}

	g := NewRealTimeGenerator([]Relay{primary, secondary}, 1, 0, suite.log)

	prev := map[string]types.MarketDataPoint{"AAPL": {Ticker: "AAPL", Price: 180}}
	next, err := g.NextRound(context.Background(), prev, false)
	suite.Require().NoError(err)

	suite.InDelta(187.5, next["AAPL"].Price, 1e-9)
	suite.InDelta(1.2, next["AAPL"].DailyChange, 1e-9)
	suite.Equal(1, primary.calls)
	suite.Equal(0, secondary.calls)
}

func (suite *RealTimeGeneratorTestSuite) TestFailoverToNextRelay() {
	broken := &stubRelay{name: "broken", err: fmt.Errorf("connection refused")}
	working := &stubRelay{
		name:   "working",
		quotes: map[string]Quote{"AAPL": {Ticker: "AAPL", Price: 190}},
	}

	g := NewRealTimeGenerator([]Relay{broken, working}, 1, 0, suite.log)

	prev := map[string]types.MarketDataPoint{"AAPL": {Ticker: "AAPL", Price: 180}}
	next, err := g.NextRound(context.Background(), prev, false)
	suite.Require().NoError(err)

	suite.InDelta(190.0, next["AAPL"].Price, 1e-9)
	suite.Equal(1, broken.calls)
	suite.Equal(1, working.calls)
}

func (suite *RealTimeGeneratorTestSuite) TestUnusablePriceMovesToNextRelay() {
	zero := &stubRelay{
		name:   "zero",
		quotes: map[string]Quote{"AAPL": {Ticker: "AAPL", Price: 0}},
	}
	working := &stubRelay{
		name:   "working",
		quotes: map[string]Quote{"AAPL": {Ticker: "AAPL", Price: 190}},
	}

	g := NewRealTimeGenerator([]Relay{zero, working}, 1, 0, suite.log)

	prev := map[string]types.MarketDataPoint{"AAPL": {Ticker: "AAPL", Price: 180}}
	next, err := g.NextRound(context.Background(), prev, false)
	suite.Require().NoError(err)

	suite.InDelta(190.0, next["AAPL"].Price, 1e-9)
}

func (suite *RealTimeGeneratorTestSuite) TestAllRelaysFailFallsBackToSimulated() {
	down := &stubRelay{name: "down", err: fmt.Errorf("dns failure")}
	alsoDown := &stubRelay{name: "also-down", err: fmt.Errorf("timeout")}

	g := NewRealTimeGenerator([]Relay{down, alsoDown}, 1, 0, suite.log)

	prev := map[string]types.MarketDataPoint{"XYZ": {Ticker: "XYZ", Price: 123}}
	next, err := g.NextRound(context.Background(), prev, false)
	suite.Require().NoError(err)

	point := next["XYZ"]
	suite.Zero(point.DailyChange)
	suite.Zero(point.DailyChangePercent)
	suite.GreaterOrEqual(point.Price, SeedPriceMin)
	suite.LessOrEqual(point.Price, SeedPriceMax)
}

func (suite *RealTimeGeneratorTestSuite) TestPerTickerIsolation() {
	partial := &stubRelay{
		name:   "partial",
		quotes: map[string]Quote{"AAPL": {Ticker: "AAPL", Price: 200}},
	}

	g := NewRealTimeGenerator([]Relay{partial}, 1, 0, suite.log)

	prev := map[string]types.MarketDataPoint{
		"AAPL": {Ticker: "AAPL", Price: 180},
		"XYZ":  {Ticker: "XYZ", Price: 100},
	}

	next, err := g.NextRound(context.Background(), prev, false)
	suite.Require().NoError(err)
	suite.Require().Len(next, 2)

	// AAPL resolved live; XYZ fell back without aborting the round.
	suite.InDelta(200.0, next["AAPL"].Price, 1e-9)
	suite.Zero(next["XYZ"].DailyChange)
}

func (suite *RealTimeGeneratorTestSuite) TestStalledRelayIsTimedOut() {
	stalled := &stubRelay{
		name:   "stalled",
		delay:  500 * time.Millisecond,
		quotes: map[string]Quote{"AAPL": {Ticker: "AAPL", Price: 200}},
	}
	working := &stubRelay{
		name:   "working",
		quotes: map[string]Quote{"AAPL": {Ticker: "AAPL", Price: 195}},
	}

	g := NewRealTimeGenerator([]Relay{stalled, working}, 1, 20*time.Millisecond, suite.log)

	prev := map[string]types.MarketDataPoint{"AAPL": {Ticker: "AAPL", Price: 180}}

	start := time.Now()
	next, err := g.NextRound(context.Background(), prev, false)
	suite.Require().NoError(err)

	suite.InDelta(195.0, next["AAPL"].Price, 1e-9)
	suite.Less(time.Since(start), 400*time.Millisecond)
}

func TestGeneratorFactory(t *testing.T) {
	log, err := logger.NewLogger()
	require.NoError(t, err)

	g, err := NewGenerator(types.ModeSimulated, Options{Seed: 1}, log)
	require.NoError(t, err)
	assert.IsType(t, &SimulatedGenerator{}, g)

	g, err = NewGenerator(types.ModeRealTime, Options{Seed: 1, Relays: []Relay{&stubRelay{name: "stub"}}}, log)
	require.NoError(t, err)
	assert.IsType(t, &RealTimeGenerator{}, g)

	g, err = NewGenerator(types.ModeHistorical, Options{Seed: 1, Relays: []Relay{&stubRelay{name: "stub"}}}, log)
	require.NoError(t, err)
	assert.IsType(t, &HistoricalGenerator{}, g)

	_, err = NewGenerator(types.SimulationMode("bogus"), Options{}, log)
	assert.Error(t, err)
}
