package types

import (
	"github.com/shopspring/decimal"
)

// Position is one agent's holding in a single ticker.
type Position struct {
	Quantity float64         `yaml:"quantity" json:"quantity"`
	AvgCost  decimal.Decimal `yaml:"avg_cost" json:"avgCost"`
}

// Agent is an autonomous trading participant. Decision-making lives outside
// the core; the snapshot only tracks identity, cash and holdings.
type Agent struct {
	ID        string              `yaml:"id" json:"id" validate:"required"`
	Name      string              `yaml:"name" json:"name" validate:"required"`
	Cash      decimal.Decimal     `yaml:"cash" json:"cash"`
	Positions map[string]Position `yaml:"positions" json:"positions"`
}

// FindAgent returns the agent with the given id, or false when absent.
func FindAgent(agents []Agent, id string) (Agent, bool) {
	for _, a := range agents {
		if a.ID == id {
			return a, true
		}
	}

	return Agent{}, false
}
