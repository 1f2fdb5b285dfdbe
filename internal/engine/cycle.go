package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"options-signals/internal/errors"
	"options-signals/internal/logging"
	"options-signals/internal/market"
	"options-signals/internal/models"
	"options-signals/internal/store"
)

// CycleResult summarizes one evaluation cycle.
type CycleResult struct {
	Symbols    int
	Generated  int
	Inserted   int
	Duplicates int
	Failures   int
	Signals    []*models.Signal
}

// Cycle runs one synchronous evaluation pass over the configured symbols.
// Symbols are processed sequentially with a single store writer; there is no
// shared mutable state between cycles outside the store.
type Cycle struct {
	provider market.DataProvider
	engine   *Engine
	store    store.SignalStore
	symbols  []string
	window   time.Duration
	logger   zerolog.Logger
}

// NewCycle creates a new evaluation cycle runner.
func NewCycle(provider market.DataProvider, eng *Engine, st store.SignalStore, symbols []string, expiryWindowDays int, logger zerolog.Logger) *Cycle {
	return &Cycle{
		provider: provider,
		engine:   eng,
		store:    st,
		symbols:  symbols,
		window:   time.Duration(expiryWindowDays) * 24 * time.Hour,
		logger:   logger,
	}
}

// Run evaluates every symbol, strategy and eligible expiration once.
//
// Error discipline per the cycle model: pricing and generation failures are
// logged and skipped (the batch continues), duplicates are silently
// discarded, and a store failure aborts the cycle so the next one retries.
func (c *Cycle) Run(ctx context.Context, asOf time.Time) (*CycleResult, error) {
	result := &CycleResult{Symbols: len(c.symbols)}

	for _, symbol := range c.symbols {
		logger := logging.WithSymbol(c.logger, symbol)

		spot, err := c.provider.Spot(ctx, symbol)
		if err != nil {
			logger.Warn().Err(err).Msg("No spot quote, skipping symbol")
			result.Failures++
			continue
		}

		chain, err := c.provider.Chain(ctx, symbol, spot)
		if err != nil {
			logger.Warn().Err(err).Msg("No option chain, skipping symbol")
			result.Failures++
			continue
		}

		for _, expiration := range chain.Expirations {
			until := expiration.Sub(asOf)
			if until < 0 || until > c.window {
				continue
			}

			mctx := models.MarketContext{
				Symbol:       symbol,
				Spot:         spot,
				ImpliedVol:   c.engine.cfg.ImpliedVol,
				RiskFreeRate: c.engine.cfg.RiskFreeRate,
				Expiration:   expiration,
				AsOf:         asOf,
			}

			signals, errs := c.engine.GenerateAll(mctx, chain)
			for _, genErr := range errs {
				logger.Warn().Err(genErr).Msg("Signal generation failed")
				result.Failures++
			}

			for _, signal := range signals {
				result.Generated++
				inserted, err := c.persist(ctx, signal)
				if err != nil {
					return result, err
				}
				if inserted {
					result.Inserted++
					result.Signals = append(result.Signals, signal)
					logging.LogSignal(logger, signal)
				} else {
					result.Duplicates++
				}
			}
		}
	}

	return result, nil
}

// persist writes a signal unless an equivalent Active one exists. A rejected
// duplicate is not an error; repeated cycles are idempotent.
func (c *Cycle) persist(ctx context.Context, signal *models.Signal) (bool, error) {
	exists, err := c.store.Exists(ctx, signal.Symbol, signal.Strategy, signal.Expiration, signal.StrikeSet())
	if err != nil {
		return false, errors.Wrap(err, "duplicate check")
	}
	if exists {
		return false, nil
	}

	if _, err := c.store.Insert(ctx, signal); err != nil {
		return false, errors.Wrap(err, "insert signal")
	}
	return true, nil
}
