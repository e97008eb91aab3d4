package types

import (
	"github.com/moznion/go-optional"
)

// Fundamentals carries the provider-sourced reference data for a ticker.
// Only real-data mode ever populates it; simulated prices have no fundamentals.
type Fundamentals struct {
	PERatio   float64 `yaml:"pe_ratio" json:"peRatio"`
	Beta      float64 `yaml:"beta" json:"beta"`
	MarketCap float64 `yaml:"market_cap" json:"marketCap"`
	Sector    string  `yaml:"sector" json:"sector"`
}

// MarketDataPoint is the per-ticker price state for one round.
type MarketDataPoint struct {
	Ticker             string  `yaml:"ticker" json:"ticker" validate:"required"`
	Price              float64 `yaml:"price" json:"price" validate:"gt=0"`
	DailyChange        float64 `yaml:"daily_change" json:"dailyChange"`
	DailyChangePercent float64 `yaml:"daily_change_percent" json:"dailyChangePercent"`
	// Fundamentals is present only when a live provider supplied it.
	Fundamentals optional.Option[Fundamentals] `yaml:"fundamentals" json:"fundamentals,omitempty"`
}

// PreviousDayClose reconstructs the last full-day close this point's daily
// change was measured against. Intraday moves accumulate against this
// baseline instead of resetting every tick.
func (p MarketDataPoint) PreviousDayClose() float64 {
	return p.Price - p.DailyChange
}
