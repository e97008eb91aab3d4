package types

import (
	"time"
)

// SimulationMode selects how market data advances. It is fixed for the
// lifetime of a simulation instance.
type SimulationMode string

const (
	ModeSimulated  SimulationMode = "simulated"
	ModeRealTime   SimulationMode = "real-time"
	ModeHistorical SimulationMode = "historical"
)

// SimulationSnapshot is the complete mutable state of one simulation
// instance. Updates replace the whole snapshot atomically; readers always see
// the last committed value.
type SimulationSnapshot struct {
	Day          int            `yaml:"day" json:"day" validate:"gte=0"`
	IntradayHour float64        `yaml:"intraday_hour" json:"intradayHour" validate:"gte=0,lt=6.5"`
	Mode         SimulationMode `yaml:"mode" json:"mode" validate:"required,oneof=simulated real-time historical"`

	Agents     []Agent                    `yaml:"agents" json:"agents"`
	MarketData map[string]MarketDataPoint `yaml:"market_data" json:"marketData"`
	Chat       ChatState                  `yaml:"chat" json:"chat"`

	// LastTradingHour is the most recent whole hour that granted a trading
	// window this day. Per-instance so concurrent simulations never share a
	// trading-hour cursor.
	LastTradingHour int `yaml:"last_trading_hour" json:"lastTradingHour"`
	// TradingWindowOpen reports whether the last round advance granted a
	// trading window for this tick.
	TradingWindowOpen bool `yaml:"trading_window_open" json:"tradingWindowOpen"`
	// Complete is set when a historical simulation has replayed its full
	// trading week (days 0-4).
	Complete bool `yaml:"complete" json:"complete"`

	UpdatedAt time.Time `yaml:"updated_at" json:"updatedAt"`
}

// Round returns the round identifier for the snapshot's current (day, hour).
func (s *SimulationSnapshot) Round() Round {
	return Round{Day: s.Day, IntradayHour: s.IntradayHour}
}

// Clone returns a deep copy of the snapshot. Update paths mutate the copy and
// publish it wholesale, leaving the prior value untouched for readers.
func (s *SimulationSnapshot) Clone() *SimulationSnapshot {
	next := *s

	if s.Agents != nil {
		next.Agents = make([]Agent, len(s.Agents))

		for i, a := range s.Agents {
			agent := a
			if a.Positions != nil {
				agent.Positions = make(map[string]Position, len(a.Positions))
				for ticker, pos := range a.Positions {
					agent.Positions[ticker] = pos
				}
			}

			next.Agents[i] = agent
		}
	}

	if s.MarketData != nil {
		next.MarketData = make(map[string]MarketDataPoint, len(s.MarketData))
		for ticker, point := range s.MarketData {
			next.MarketData[ticker] = point
		}
	}

	next.Chat = s.Chat.Clone()

	return &next
}
