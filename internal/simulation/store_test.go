package simulation

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-arena/internal/logger"
	"github.com/rxtech-lab/argo-arena/internal/types"
)

// stubGenerator is a deterministic market generator for store tests.
type stubGenerator struct {
	failNext bool
	rounds   int
}

func (g *stubGenerator) Seed(tickers []string) map[string]types.MarketDataPoint {
	points := make(map[string]types.MarketDataPoint, len(tickers))
	for _, ticker := range tickers {
		points[ticker] = types.MarketDataPoint{Ticker: ticker, Price: 100}
	}

	return points
}

func (g *stubGenerator) NextRound(_ context.Context, prev map[string]types.MarketDataPoint, _ bool) (map[string]types.MarketDataPoint, error) {
	if g.failNext {
		return nil, fmt.Errorf("provider exploded")
	}

	g.rounds++

	next := make(map[string]types.MarketDataPoint, len(prev))
	for ticker, point := range prev {
		point.Price++
		next[ticker] = point
	}

	return next, nil
}

func testDefinition() Definition {
	return Definition{
		ID:           "default",
		Mode:         types.ModeSimulated,
		Tickers:      []string{"AAPL", "MSFT"},
		TickInterval: "30s",
		ChatEnabled:  true,
		Chat: types.ChatConfig{
			MaxMessageLength:    280,
			MaxMessagesPerUser:  2,
			MaxMessagesPerAgent: 3,
		},
		Agents: []AgentSeed{
			{ID: "A1", Name: "Momentum Mike", Cash: 10000},
			{ID: "A2", Name: "Value Vera", Cash: 10000},
		},
	}
}

type StoreTestSuite struct {
	suite.Suite

	log *logger.Logger
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (suite *StoreTestSuite) SetupTest() {
	log, err := logger.NewLogger()
	suite.Require().NoError(err)
	suite.log = log
}

func (suite *StoreTestSuite) newStore(gen *stubGenerator) *Store {
	return NewStore(testDefinition(), gen, suite.log)
}

func (suite *StoreTestSuite) TestLazyInitialization() {
	store := suite.newStore(&stubGenerator{})

	snap := store.Snapshot()
	suite.Equal(0, snap.Day)
	suite.Zero(snap.IntradayHour)
	suite.Equal(types.ModeSimulated, snap.Mode)
	suite.Len(snap.Agents, 2)
	suite.Len(snap.MarketData, 2)
	suite.Empty(snap.Chat.Messages)
	suite.Equal("Momentum Mike", snap.Agents[0].Name)
	suite.Empty(snap.Agents[0].Positions)

	// Second access returns the same committed snapshot.
	suite.Same(snap, store.Snapshot())
}

func (suite *StoreTestSuite) TestUpdatePublishesNewSnapshot() {
	store := suite.newStore(&stubGenerator{})
	before := store.Snapshot()

	after, err := store.Update(func(next *types.SimulationSnapshot) error {
		next.Day = 3

		return nil
	})
	suite.Require().NoError(err)

	suite.Equal(3, after.Day)
	suite.Equal(0, before.Day)
	suite.Same(after, store.Snapshot())
}

func (suite *StoreTestSuite) TestFailedUpdateLeavesPriorSnapshot() {
	store := suite.newStore(&stubGenerator{})
	before := store.Snapshot()

	_, err := store.Update(func(next *types.SimulationSnapshot) error {
		next.Day = 99

		return fmt.Errorf("nope")
	})
	suite.Require().Error(err)

	suite.Same(before, store.Snapshot())
	suite.Equal(0, store.Snapshot().Day)
}

func (suite *StoreTestSuite) TestApplyMergeReplacesNamedFields() {
	store := suite.newStore(&stubGenerator{})
	original := store.Snapshot()

	chatState := types.ChatState{
		Messages: []types.ChatMessage{{ID: "m1", Sender: "alice", SenderType: types.SenderTypeUser, Status: types.MessageStatusPending}},
	}

	after, err := store.Apply(SnapshotPatch{
		Chat: optional.Some(chatState),
	})
	suite.Require().NoError(err)

	// Only chat was replaced; everything else is untouched.
	suite.Len(after.Chat.Messages, 1)
	suite.Equal(original.Day, after.Day)
	suite.Equal(original.MarketData, after.MarketData)
	suite.Len(after.Agents, len(original.Agents))
}

func (suite *StoreTestSuite) TestConcurrentReadersAndWriter() {
	store := suite.newStore(&stubGenerator{})
	store.Snapshot()

	var wg sync.WaitGroup

	// One writer advancing the day, many readers. Readers must always see a
	// fully formed snapshot value.
	wg.Add(1)

	go func() {
		defer wg.Done()

		for i := 0; i < 100; i++ {
			_, err := store.Update(func(next *types.SimulationSnapshot) error {
				next.Day++

				return nil
			})
			suite.NoError(err)
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := 0; i < 200; i++ {
				snap := store.Snapshot()
				suite.NotNil(snap)
				suite.Len(snap.Agents, 2)
				suite.GreaterOrEqual(snap.Day, 0)
				suite.LessOrEqual(snap.Day, 100)
			}
		}()
	}

	wg.Wait()
	suite.Equal(100, store.Snapshot().Day)
}

func (suite *StoreTestSuite) TestUpdateDoesNotAliasPublishedSnapshot() {
	store := suite.newStore(&stubGenerator{})
	before := store.Snapshot()

	_, err := store.Update(func(next *types.SimulationSnapshot) error {
		next.MarketData["AAPL"] = types.MarketDataPoint{Ticker: "AAPL", Price: 1}

		return nil
	})
	suite.Require().NoError(err)

	suite.InDelta(100.0, before.MarketData["AAPL"].Price, 1e-9)
}
