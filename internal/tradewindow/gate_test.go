package tradewindow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rxtech-lab/argo-arena/internal/clock"
)

func TestAllowEvenHoursOnly(t *testing.T) {
	g := &Gate{LastTradingHour: -1}

	assert.True(t, g.Allow(0))
	assert.False(t, g.Allow(1.0))
	assert.False(t, g.Allow(1.5))
	assert.True(t, g.Allow(2.0))
	assert.False(t, g.Allow(3.0))
	assert.True(t, g.Allow(4.5))
	assert.True(t, g.Allow(6.0))
}

func TestAllowGrantsHourOnce(t *testing.T) {
	g := &Gate{}

	assert.True(t, g.Allow(2.0))
	// The same whole hour cannot grant twice, even at a later fraction.
	assert.False(t, g.Allow(2.0))
	assert.False(t, g.Allow(2.5))
	assert.Equal(t, 2, g.LastTradingHour)
}

func TestFullDayYieldsFourWindows(t *testing.T) {
	c := clock.Clock{}
	g := &Gate{}

	grants := 0

	for i := 0; i < 13; i++ {
		c.AdvanceIntraday()

		if g.Allow(c.IntradayHour) {
			grants++
		}
	}

	// Hours 2, 4, 6 of day 0 plus hour 0 of the next day.
	assert.Equal(t, 4, grants)
	assert.Equal(t, 1, c.Day)
}

func TestSteadyStateFourWindowsPerDay(t *testing.T) {
	c := clock.Clock{}
	g := &Gate{}

	perDay := make(map[int]int)

	for i := 0; i < 13*5; i++ {
		c.AdvanceIntraday()

		if g.Allow(c.IntradayHour) {
			perDay[c.Day]++
		}
	}

	// Every fully covered day settles at exactly 4 windows.
	for day := 1; day < 5; day++ {
		assert.Equal(t, 4, perDay[day], "day %d", day)
	}
}

func TestReset(t *testing.T) {
	g := &Gate{}
	g.Allow(4.0)

	g.Reset()
	assert.Equal(t, 0, g.LastTradingHour)
}
