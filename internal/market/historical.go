package market

import (
	"time"

	"github.com/rxtech-lab/argo-arena/internal/logger"
)

// HistoricalGenerator replays a calendar trading week anchored at a Monday.
// Historical closes are not separately sourced: prices come through the same
// relay chain as real-time mode, with simulated fallback. Callers must not
// assume genuinely historical values are returned.
type HistoricalGenerator struct {
	*RealTimeGenerator

	weekStart time.Time
}

// NewHistoricalGenerator builds the historical generator. The week starts at
// the next Monday on or after the anchor date, at midnight.
func NewHistoricalGenerator(anchor time.Time, relays []Relay, seed int64, timeout time.Duration, log *logger.Logger) *HistoricalGenerator {
	return &HistoricalGenerator{
		RealTimeGenerator: NewRealTimeGenerator(relays, seed, timeout, log),
		weekStart:         NextMonday(anchor),
	}
}

// WeekStart returns the Monday midnight the replayed week is anchored at.
func (g *HistoricalGenerator) WeekStart() time.Time {
	return g.weekStart
}

// NextMonday rounds a date forward to the next Monday at midnight, or uses it
// unchanged (at midnight) if it already is a Monday.
func NextMonday(anchor time.Time) time.Time {
	midnight := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())

	offset := (int(time.Monday) - int(midnight.Weekday()) + 7) % 7

	return midnight.AddDate(0, 0, offset)
}
