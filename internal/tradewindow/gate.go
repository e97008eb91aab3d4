// Package tradewindow decides when agents may submit trading actions within a
// simulated day.
package tradewindow

import (
	"math"
)

// lastGrantableHour is the latest whole hour that can open a window. Together
// with the even-hour rule this yields at most 4 windows per day, at hours
// 0, 2, 4 and 6.
const lastGrantableHour = 6

// Gate grants at most one trading window per eligible whole hour. The cursor
// is per-instance state; it is persisted on the owning snapshot between
// ticks, never held in a package-level variable.
type Gate struct {
	// LastTradingHour is the whole hour that most recently granted a window.
	LastTradingHour int
}

// Allow reports whether trading is permitted at the given intraday hour.
// A window opens when the whole hour is even, within the session, and has not
// already granted this day. Granting moves the cursor so the same hour cannot
// grant twice; the hour-0 window of a new day opens because the cursor still
// points at the prior day's hour-6 grant.
func (g *Gate) Allow(intradayHour float64) bool {
	hour := int(math.Floor(intradayHour))

	if hour%2 != 0 || hour > lastGrantableHour || hour == g.LastTradingHour {
		return false
	}

	g.LastTradingHour = hour

	return true
}

// Reset clears the cursor for a full-day transition that skips the intraday
// tick sequence entirely.
func (g *Gate) Reset() {
	g.LastTradingHour = 0
}
