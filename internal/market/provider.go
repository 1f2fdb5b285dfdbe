// Package market provides spot quotes and the simulated options chain.
package market

import (
	"context"
	"fmt"
	"time"

	"options-signals/internal/errors"
	"options-signals/internal/models"
)

// DataProvider supplies the market context the signal engine consumes.
type DataProvider interface {
	// Spot returns the current underlying price for a symbol.
	Spot(ctx context.Context, symbol string) (float64, error)

	// Chain builds the option chain for a symbol at the given spot price.
	Chain(ctx context.Context, symbol string, spot float64) (*models.OptionChain, error)
}

// SimulatedProvider derives a synthetic options chain from reference spot
// prices. Strikes are placed at fixed percentage offsets from spot and each
// rung carries its own implied volatility assumption.
type SimulatedProvider struct {
	spotPrices     map[string]float64
	callOffsets    []float64
	putOffsets     []float64
	callIVs        []float64
	putIVs         []float64
	expiryStep     time.Duration
	expiryHorizon  time.Duration
	now            func() time.Time
}

// SimulatedProviderOption customizes a SimulatedProvider.
type SimulatedProviderOption func(*SimulatedProvider)

// WithClock overrides the provider clock, used in tests.
func WithClock(now func() time.Time) SimulatedProviderOption {
	return func(p *SimulatedProvider) { p.now = now }
}

// WithSpotPrices overrides the reference spot prices.
func WithSpotPrices(prices map[string]float64) SimulatedProviderOption {
	return func(p *SimulatedProvider) { p.spotPrices = prices }
}

// WithStrikeOffsets overrides the OTM strike ladder offsets.
func WithStrikeOffsets(calls, puts []float64) SimulatedProviderOption {
	return func(p *SimulatedProvider) {
		p.callOffsets = calls
		p.putOffsets = puts
	}
}

// NewSimulatedProvider creates a provider with the default reference prices
// and strike ladder.
func NewSimulatedProvider(opts ...SimulatedProviderOption) *SimulatedProvider {
	p := &SimulatedProvider{
		spotPrices: map[string]float64{
			"BTC": 20000,
			"ETH": 1500,
			"SOL": 40,
		},
		callOffsets:   []float64{0.10, 0.15},
		putOffsets:    []float64{0.10, 0.15},
		callIVs:       []float64{0.60, 0.55},
		putIVs:        []float64{0.65, 0.70},
		expiryStep:    7 * 24 * time.Hour,
		expiryHorizon: 180 * 24 * time.Hour,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Spot returns the reference spot price for the symbol.
func (p *SimulatedProvider) Spot(ctx context.Context, symbol string) (float64, error) {
	price, ok := p.spotPrices[symbol]
	if !ok {
		return 0, errors.Wrapf(errors.ErrNoQuote, "symbol %s", symbol)
	}
	return price, nil
}

// Chain builds the synthetic chain: weekly expirations from one week out to
// the horizon, calls above spot and puts below spot on the offset ladder.
func (p *SimulatedProvider) Chain(ctx context.Context, symbol string, spot float64) (*models.OptionChain, error) {
	if spot <= 0 {
		return nil, errors.NewParameterError("spot", spot, "must be positive")
	}

	now := p.now()
	var expirations []time.Time
	for d := p.expiryStep; d <= p.expiryHorizon; d += p.expiryStep {
		expirations = append(expirations, now.Add(d).Truncate(24*time.Hour))
	}

	chain := &models.OptionChain{
		Symbol:      symbol,
		SpotPrice:   spot,
		Expirations: expirations,
	}

	for i, off := range p.callOffsets {
		iv := p.callIVs[min(i, len(p.callIVs)-1)]
		chain.Calls = append(chain.Calls, models.OptionQuote{
			Symbol: fmt.Sprintf("%s_CALL_OTM%d", symbol, i+1),
			Type:   models.OptionCall,
			Strike: spot * (1 + off),
			IV:     iv,
		})
	}
	for i, off := range p.putOffsets {
		iv := p.putIVs[min(i, len(p.putIVs)-1)]
		chain.Puts = append(chain.Puts, models.OptionQuote{
			Symbol: fmt.Sprintf("%s_PUT_OTM%d", symbol, i+1),
			Type:   models.OptionPut,
			Strike: spot * (1 - off),
			IV:     iv,
		})
	}

	return chain, nil
}
