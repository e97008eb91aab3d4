// Package clock implements the round/time model: a simulated day of intraday
// half-hour ticks, rolling into the next day at the session close.
package clock

import (
	"github.com/rxtech-lab/argo-arena/internal/types"
)

const (
	// IntradayStep is the fixed intraday increment per tick, in hours.
	IntradayStep = 0.5
	// SessionClose is the intraday hour at which the day rolls over.
	// The intraday hour always lies in [0, SessionClose).
	SessionClose = 6.5
	// historicalFinalDay emulates a 5-day trading week, days 0-4.
	historicalFinalDay = 4
)

// Clock tracks one simulation instance's position in simulated time. All
// state is per-instance; nothing here is shared between simulations.
type Clock struct {
	Day          int
	IntradayHour float64
}

// AdvanceIntraday moves the clock forward one intraday step. When the step
// reaches the session close, the hour resets to 0, the day increments and the
// return value signals the rollover so callers can reset per-day counters.
func (c *Clock) AdvanceIntraday() (dayAdvanced bool) {
	c.IntradayHour += IntradayStep
	if c.IntradayHour >= SessionClose {
		c.IntradayHour = 0
		c.Day++

		return true
	}

	return false
}

// AdvanceDay performs a full-day transition, used by modes that do not need
// intraday granularity.
func (c *Clock) AdvanceDay() {
	c.IntradayHour = 0
	c.Day++
}

// CurrentRound returns the round identifier for the present (day, hour).
func (c Clock) CurrentRound() types.Round {
	return types.Round{Day: c.Day, IntradayHour: c.IntradayHour}
}

// HistoricalComplete reports whether a historical-replay simulation has
// finished its trading week.
func (c Clock) HistoricalComplete() bool {
	return c.Day > historicalFinalDay
}
