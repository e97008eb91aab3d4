package types

import (
	"fmt"

	"github.com/rxtech-lab/argo-arena/pkg/errors"
)

// Round identifies one discrete unit of simulated time within a simulation
// instance. The key is derived deterministically from (day, intraday hour)
// and is monotonically non-decreasing as the clock advances.
type Round struct {
	Day          int     `json:"day"`
	IntradayHour float64 `json:"intradayHour"`
}

// Key returns the canonical string form of the round, e.g. "0-0.500".
func (r Round) Key() string {
	return fmt.Sprintf("%d-%.3f", r.Day, r.IntradayHour)
}

// Before reports whether r is strictly earlier than other.
func (r Round) Before(other Round) bool {
	if r.Day != other.Day {
		return r.Day < other.Day
	}

	return r.IntradayHour < other.IntradayHour
}

// Equal reports whether two rounds identify the same point in simulated time.
func (r Round) Equal(other Round) bool {
	return r.Day == other.Day && r.Key() == other.Key()
}

// ParseRoundKey parses a canonical round key back into a Round.
func ParseRoundKey(key string) (Round, error) {
	var (
		day  int
		hour float64
	)

	if _, err := fmt.Sscanf(key, "%d-%f", &day, &hour); err != nil {
		return Round{}, errors.Wrapf(errors.ErrCodeRoundParseFailed, err, "malformed round key %q", key)
	}

	return Round{Day: day, IntradayHour: hour}, nil
}
