package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvanceIntraday(t *testing.T) {
	c := Clock{}

	dayAdvanced := c.AdvanceIntraday()
	assert.False(t, dayAdvanced)
	assert.Equal(t, 0, c.Day)
	assert.InDelta(t, 0.5, c.IntradayHour, 1e-9)
}

func TestAdvanceIntradayRollover(t *testing.T) {
	c := Clock{Day: 0, IntradayHour: 6.0}

	dayAdvanced := c.AdvanceIntraday()
	assert.True(t, dayAdvanced)
	assert.Equal(t, 1, c.Day)
	assert.InDelta(t, 0, c.IntradayHour, 1e-9)
}

func TestIntradayHourStaysInRange(t *testing.T) {
	c := Clock{}

	for i := 0; i < 100; i++ {
		c.AdvanceIntraday()
		assert.GreaterOrEqual(t, c.IntradayHour, 0.0)
		assert.Less(t, c.IntradayHour, SessionClose)
	}

	// 13 ticks per day: 100 ticks land in day 7.
	assert.Equal(t, 7, c.Day)
}

func TestRoundsNonDecreasing(t *testing.T) {
	c := Clock{}
	prev := c.CurrentRound()

	for i := 0; i < 50; i++ {
		if i%7 == 0 {
			c.AdvanceDay()
		} else {
			c.AdvanceIntraday()
		}

		current := c.CurrentRound()
		assert.False(t, current.Before(prev), "round %s went backwards from %s", current.Key(), prev.Key())
		prev = current
	}
}

func TestAdvanceDay(t *testing.T) {
	c := Clock{Day: 2, IntradayHour: 3.5}

	c.AdvanceDay()
	assert.Equal(t, 3, c.Day)
	assert.InDelta(t, 0, c.IntradayHour, 1e-9)
	assert.Equal(t, "3-0.000", c.CurrentRound().Key())
}

func TestHistoricalComplete(t *testing.T) {
	tests := []struct {
		day      int
		complete bool
	}{
		{day: 0, complete: false},
		{day: 4, complete: false},
		{day: 5, complete: true},
		{day: 10, complete: true},
	}

	for _, tc := range tests {
		c := Clock{Day: tc.day}
		assert.Equal(t, tc.complete, c.HistoricalComplete(), "day %d", tc.day)
	}
}
