// Package monitor evaluates active signals for roll recommendations.
package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"options-signals/internal/config"
	"options-signals/internal/errors"
	"options-signals/internal/logging"
	"options-signals/internal/models"
	"options-signals/internal/notify"
	"options-signals/internal/store"
)

// RollMonitor checks active signals against time-based roll triggers and
// transitions them to RollRecommended.
//
// The lifecycle per signal is Active -> RollRecommended -> Closed. Only
// Active signals are evaluated, so re-running the monitor over an unchanged
// store is idempotent: an already-recommended signal is never re-reported.
type RollMonitor struct {
	store    store.SignalStore
	notifier notify.Notifier
	cfg      config.MonitorConfig
	logger   zerolog.Logger
}

// New creates a new roll monitor.
func New(st store.SignalStore, notifier notify.Notifier, cfg config.MonitorConfig, logger zerolog.Logger) *RollMonitor {
	if notifier == nil {
		notifier = notify.NewNoOpNotifier()
	}
	return &RollMonitor{
		store:    st,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// Evaluate checks every active signal as of the given time and returns the
// triggers fired. Triggered signals are transitioned before notification so
// a notification failure cannot cause a duplicate recommendation.
func (m *RollMonitor) Evaluate(ctx context.Context, asOf time.Time) ([]models.RollTrigger, error) {
	signals, err := m.store.ListActive(ctx, asOf)
	if err != nil {
		return nil, errors.Wrap(err, "listing active signals")
	}

	var triggers []models.RollTrigger
	for i := range signals {
		signal := &signals[i]

		trigger, fired := m.check(signal, asOf)
		if !fired {
			continue
		}

		if err := m.store.UpdateStatus(ctx, signal.ID, models.StatusRollRecommended); err != nil {
			return triggers, errors.Wrapf(err, "transitioning signal %d", signal.ID)
		}

		triggers = append(triggers, trigger)
		logging.LogRoll(m.logger, trigger)

		if err := m.notifier.SendRoll(ctx, trigger, signal); err != nil {
			// Notification transport is best effort; the transition stands.
			m.logger.Warn().Err(err).Int64("signal_id", signal.ID).Msg("Roll notification failed")
		}
	}

	return triggers, nil
}

// Check evaluates the roll triggers for a single signal without touching the
// store. Both reasons may fire on the same evaluation.
func (m *RollMonitor) Check(signal *models.Signal, asOf time.Time) (models.RollTrigger, bool) {
	return m.check(signal, asOf)
}

func (m *RollMonitor) check(signal *models.Signal, asOf time.Time) (models.RollTrigger, bool) {
	var reasons []models.RollReason

	if signal.TimeToExpiry(asOf) <= m.cfg.RollWindow {
		reasons = append(reasons, models.RollNearExpiration)
	}
	if fraction := signal.ElapsedFraction(asOf); fraction >= m.cfg.ProfitTimeFraction {
		reasons = append(reasons, models.RollMaxProfitLikely)
	}

	if len(reasons) == 0 {
		return models.RollTrigger{}, false
	}

	return models.RollTrigger{
		SignalID: signal.ID,
		Symbol:   signal.Symbol,
		Strategy: signal.Strategy,
		Reasons:  reasons,
		AsOf:     asOf,
	}, true
}
