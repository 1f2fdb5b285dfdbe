// Package models defines the core domain types for signal generation.
package models

import (
	"fmt"
	"strings"
	"time"
)

// OptionType represents the type of an option contract.
type OptionType string

const (
	OptionCall OptionType = "CALL"
	OptionPut  OptionType = "PUT"
)

// Side represents the direction of an option leg.
type Side string

const (
	SideShort Side = "SHORT"
	SideLong  Side = "LONG"
)

// Strategy represents a multi-leg option strategy.
type Strategy string

const (
	StrategyShortStrangle  Strategy = "SHORT_STRANGLE"
	StrategyBullCallSpread Strategy = "BULL_CALL_SPREAD"
	StrategyBearPutSpread  Strategy = "BEAR_PUT_SPREAD"
)

// AllStrategies lists every supported strategy in evaluation order.
var AllStrategies = []Strategy{
	StrategyShortStrangle,
	StrategyBullCallSpread,
	StrategyBearPutSpread,
}

// SignalStatus represents the lifecycle state of a signal.
type SignalStatus string

const (
	StatusActive          SignalStatus = "ACTIVE"
	StatusRollRecommended SignalStatus = "ROLL_RECOMMENDED"
	StatusClosed          SignalStatus = "CLOSED"
)

// RollReason represents why a roll is being recommended.
type RollReason string

const (
	RollNearExpiration  RollReason = "NEAR_EXPIRATION"
	RollMaxProfitLikely RollReason = "MAX_PROFIT_LIKELY"
)

// OptionLeg represents one leg of a multi-leg strategy. Premium is the
// theoretical price at signal creation and is never repriced afterwards.
type OptionLeg struct {
	Type     OptionType
	Side     Side
	Strike   float64
	Premium  float64
	Quantity float64
}

// Signal represents a generated strategy signal with its two legs.
// Legs are ordered short leg first for deterministic persistence.
type Signal struct {
	ID             int64
	Symbol         string
	Strategy       Strategy
	CreatedAt      time.Time
	Expiration     time.Time
	SpotAtCreation float64
	NetPremium     float64 // positive = net credit, negative = net debit
	Legs           []OptionLeg
	Status         SignalStatus
}

// StrikeSet renders the ordered leg strikes as a stable string key.
// Together with symbol, strategy and expiration it identifies an
// equivalent signal for duplicate suppression.
func (s *Signal) StrikeSet() string {
	parts := make([]string, len(s.Legs))
	for i, leg := range s.Legs {
		parts[i] = fmt.Sprintf("%.8f", leg.Strike)
	}
	return strings.Join(parts, "|")
}

// ShortLeg returns the short leg of the signal.
func (s *Signal) ShortLeg() *OptionLeg {
	for i := range s.Legs {
		if s.Legs[i].Side == SideShort {
			return &s.Legs[i]
		}
	}
	return nil
}

// TimeToExpiry returns the remaining time to expiration as of the given time.
func (s *Signal) TimeToExpiry(asOf time.Time) time.Duration {
	return s.Expiration.Sub(asOf)
}

// ElapsedFraction returns elapsed time since creation as a fraction of the
// total duration between creation and expiration. Returns 0 when the total
// duration is not positive.
func (s *Signal) ElapsedFraction(asOf time.Time) float64 {
	total := s.Expiration.Sub(s.CreatedAt)
	if total <= 0 {
		return 0
	}
	return float64(asOf.Sub(s.CreatedAt)) / float64(total)
}

// RollTrigger is a transient roll recommendation computed by the monitor.
// It is derived from a signal's timestamps and never stored.
type RollTrigger struct {
	SignalID int64
	Symbol   string
	Strategy Strategy
	Reasons  []RollReason
	AsOf     time.Time
}

// HasReason reports whether the trigger carries the given reason.
func (t RollTrigger) HasReason(r RollReason) bool {
	for _, reason := range t.Reasons {
		if reason == r {
			return true
		}
	}
	return false
}
