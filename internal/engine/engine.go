// Package engine generates multi-leg option strategy signals.
package engine

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"options-signals/internal/config"
	"options-signals/internal/errors"
	"options-signals/internal/models"
	"options-signals/internal/pricing"
)

// Engine assembles strategy signals from a market context and option chain.
// It holds no mutable state between calls.
type Engine struct {
	pricer pricing.Pricer
	cfg    config.EngineConfig
	logger zerolog.Logger
}

// New creates a new strategy engine.
func New(pricer pricing.Pricer, cfg config.EngineConfig, logger zerolog.Logger) *Engine {
	return &Engine{
		pricer: pricer,
		cfg:    cfg,
		logger: logger,
	}
}

// GenerateAll produces one candidate signal per strategy for the given
// context. Failures are collected per strategy; one strategy failing never
// suppresses its siblings.
func (e *Engine) GenerateAll(mctx models.MarketContext, chain *models.OptionChain) ([]*models.Signal, []error) {
	var signals []*models.Signal
	var errs []error

	for _, strategy := range models.AllStrategies {
		signal, err := e.Generate(mctx, chain, strategy)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		signals = append(signals, signal)
	}

	return signals, errs
}

// Generate produces a signal for one strategy. The returned signal is Active,
// carries exactly two legs ordered short leg first, and is priced at
// mctx.AsOf; its legs are never repriced afterwards.
func (e *Engine) Generate(mctx models.MarketContext, chain *models.OptionChain, strategy models.Strategy) (*models.Signal, error) {
	var (
		legs []models.OptionLeg
		err  error
	)

	switch strategy {
	case models.StrategyShortStrangle:
		legs, err = e.shortStrangleLegs(mctx, chain)
	case models.StrategyBullCallSpread:
		legs, err = e.bullCallSpreadLegs(mctx, chain)
	case models.StrategyBearPutSpread:
		legs, err = e.bearPutSpreadLegs(mctx, chain)
	default:
		err = errors.Wrapf(errors.ErrNoQuote, "unknown strategy %s", strategy)
	}
	if err != nil {
		return nil, errors.NewSignalError(mctx.Symbol, strategy, err)
	}

	signal := &models.Signal{
		Symbol:         mctx.Symbol,
		Strategy:       strategy,
		CreatedAt:      mctx.AsOf,
		Expiration:     mctx.Expiration,
		SpotAtCreation: mctx.Spot,
		NetPremium:     netPremium(legs),
		Legs:           legs,
		Status:         models.StatusActive,
	}

	return signal, nil
}

// shortStrangleLegs sells the nearest OTM call and the nearest OTM put.
func (e *Engine) shortStrangleLegs(mctx models.MarketContext, chain *models.OptionChain) ([]models.OptionLeg, error) {
	call, ok := nearestOTMCall(chain.Calls, mctx.Spot)
	if !ok {
		return nil, errors.Wrap(errors.ErrNoQuote, "no OTM call available")
	}
	put, ok := nearestOTMPut(chain.Puts, mctx.Spot)
	if !ok {
		return nil, errors.Wrap(errors.ErrNoQuote, "no OTM put available")
	}

	callPremium, err := e.priceQuote(mctx, call)
	if err != nil {
		return nil, err
	}
	putPremium, err := e.priceQuote(mctx, put)
	if err != nil {
		return nil, err
	}

	callQty, putQty := e.adjustQuantities(callPremium, putPremium)

	return []models.OptionLeg{
		{Type: models.OptionCall, Side: models.SideShort, Strike: call.Strike, Premium: callPremium, Quantity: callQty},
		{Type: models.OptionPut, Side: models.SideShort, Strike: put.Strike, Premium: putPremium, Quantity: putQty},
	}, nil
}

// bullCallSpreadLegs sells the nearest OTM call and buys the next higher
// strike for protection.
func (e *Engine) bullCallSpreadLegs(mctx models.MarketContext, chain *models.OptionChain) ([]models.OptionLeg, error) {
	calls := sortedByStrike(chain.Calls, false)
	soldIdx := -1
	for i, q := range calls {
		if q.Strike > mctx.Spot {
			soldIdx = i
			break
		}
	}
	if soldIdx < 0 {
		return nil, errors.Wrap(errors.ErrNoQuote, "no OTM call available")
	}
	if soldIdx+1 >= len(calls) {
		return nil, errors.Wrap(errors.ErrNoQuote, "no protective call available")
	}
	sold, bought := calls[soldIdx], calls[soldIdx+1]

	soldPremium, err := e.priceQuote(mctx, sold)
	if err != nil {
		return nil, err
	}
	boughtPremium, err := e.priceQuote(mctx, bought)
	if err != nil {
		return nil, err
	}

	soldQty, boughtQty := e.adjustQuantities(soldPremium, boughtPremium)

	return []models.OptionLeg{
		{Type: models.OptionCall, Side: models.SideShort, Strike: sold.Strike, Premium: soldPremium, Quantity: soldQty},
		{Type: models.OptionCall, Side: models.SideLong, Strike: bought.Strike, Premium: boughtPremium, Quantity: boughtQty},
	}, nil
}

// bearPutSpreadLegs sells the nearest OTM put and buys the next lower strike
// for protection.
func (e *Engine) bearPutSpreadLegs(mctx models.MarketContext, chain *models.OptionChain) ([]models.OptionLeg, error) {
	puts := sortedByStrike(chain.Puts, true)
	soldIdx := -1
	for i, q := range puts {
		if q.Strike < mctx.Spot {
			soldIdx = i
			break
		}
	}
	if soldIdx < 0 {
		return nil, errors.Wrap(errors.ErrNoQuote, "no OTM put available")
	}
	if soldIdx+1 >= len(puts) {
		return nil, errors.Wrap(errors.ErrNoQuote, "no protective put available")
	}
	sold, bought := puts[soldIdx], puts[soldIdx+1]

	soldPremium, err := e.priceQuote(mctx, sold)
	if err != nil {
		return nil, err
	}
	boughtPremium, err := e.priceQuote(mctx, bought)
	if err != nil {
		return nil, err
	}

	soldQty, boughtQty := e.adjustQuantities(soldPremium, boughtPremium)

	return []models.OptionLeg{
		{Type: models.OptionPut, Side: models.SideShort, Strike: sold.Strike, Premium: soldPremium, Quantity: soldQty},
		{Type: models.OptionPut, Side: models.SideLong, Strike: bought.Strike, Premium: boughtPremium, Quantity: boughtQty},
	}, nil
}

// priceQuote values one chain quote at the context's time to expiration.
// The quote's per-rung IV wins over the context-level assumption.
func (e *Engine) priceQuote(mctx models.MarketContext, q models.OptionQuote) (float64, error) {
	iv := q.IV
	if iv <= 0 {
		iv = mctx.ImpliedVol
	}
	return e.pricer.Price(mctx.Spot, q.Strike, mctx.YearsToExpiry(), mctx.RiskFreeRate, iv, q.Type)
}

// adjustQuantities applies the premium-imbalance rule: both legs start at the
// base quantity; when the relative premium difference reaches the threshold,
// the smaller-premium leg's quantity is scaled up to balance exposure.
func (e *Engine) adjustQuantities(p1, p2 float64) (q1, q2 float64) {
	q1, q2 = e.cfg.BaseQuantity, e.cfg.BaseQuantity

	larger := math.Max(p1, p2)
	if larger <= 0 {
		return q1, q2
	}
	if math.Abs(p1-p2)/larger < e.cfg.ImbalanceThreshold {
		return q1, q2
	}

	if p1 < p2 {
		q1 *= e.cfg.ImbalanceFactor
	} else {
		q2 *= e.cfg.ImbalanceFactor
	}
	return q1, q2
}

// netPremium computes the signed net premium of the assembled legs: short
// legs contribute credit, long legs debit, each weighted by quantity.
func netPremium(legs []models.OptionLeg) float64 {
	var net float64
	for _, leg := range legs {
		weighted := leg.Premium * leg.Quantity
		if leg.Side == models.SideShort {
			net += weighted
		} else {
			net -= weighted
		}
	}
	return net
}

// SpreadNetPremium computes the net credit (or debit, when negative) of a
// two-leg spread with explicit quantities.
func SpreadNetPremium(shortPremium, shortQty, longPremium, longQty float64) float64 {
	return shortPremium*shortQty - longPremium*longQty
}

// nearestOTMCall returns the lowest-strike call above spot.
func nearestOTMCall(quotes []models.OptionQuote, spot float64) (models.OptionQuote, bool) {
	best := models.OptionQuote{}
	found := false
	for _, q := range quotes {
		if q.Strike > spot && (!found || q.Strike < best.Strike) {
			best = q
			found = true
		}
	}
	return best, found
}

// nearestOTMPut returns the highest-strike put below spot.
func nearestOTMPut(quotes []models.OptionQuote, spot float64) (models.OptionQuote, bool) {
	best := models.OptionQuote{}
	found := false
	for _, q := range quotes {
		if q.Strike < spot && (!found || q.Strike > best.Strike) {
			best = q
			found = true
		}
	}
	return best, found
}

// sortedByStrike returns a copy of the quotes ordered by strike.
func sortedByStrike(quotes []models.OptionQuote, descending bool) []models.OptionQuote {
	out := make([]models.OptionQuote, len(quotes))
	copy(out, quotes)
	sort.Slice(out, func(i, j int) bool {
		if descending {
			return out[i].Strike > out[j].Strike
		}
		return out[i].Strike < out[j].Strike
	})
	return out
}
