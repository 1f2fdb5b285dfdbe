package models

import "time"

// MarketContext carries the pricing inputs for one symbol at evaluation time.
type MarketContext struct {
	Symbol       string
	Spot         float64
	ImpliedVol   float64
	RiskFreeRate float64
	Expiration   time.Time
	AsOf         time.Time
}

// YearsToExpiry returns the time to expiration in years, floored at zero.
func (m MarketContext) YearsToExpiry() float64 {
	t := m.Expiration.Sub(m.AsOf).Hours() / (24 * 365)
	if t < 0 {
		return 0
	}
	return t
}

// OptionQuote represents a single simulated option contract on the chain.
type OptionQuote struct {
	Symbol string
	Type   OptionType
	Strike float64
	IV     float64
}

// OptionChain represents the simulated chain for one underlying.
type OptionChain struct {
	Symbol      string
	SpotPrice   float64
	Expirations []time.Time
	Calls       []OptionQuote
	Puts        []OptionQuote
}
