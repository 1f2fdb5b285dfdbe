package market

import (
	"context"
	"math"
	"testing"
	"time"

	"options-signals/internal/errors"
	"options-signals/internal/models"
)

func TestSpotKnownSymbols(t *testing.T) {
	p := NewSimulatedProvider()
	ctx := context.Background()

	tests := []struct {
		symbol string
		want   float64
	}{
		{"BTC", 20000},
		{"ETH", 1500},
		{"SOL", 40},
	}

	for _, tt := range tests {
		got, err := p.Spot(ctx, tt.symbol)
		if err != nil {
			t.Fatalf("Spot(%s) failed: %v", tt.symbol, err)
		}
		if got != tt.want {
			t.Errorf("Spot(%s) = %v, want %v", tt.symbol, got, tt.want)
		}
	}
}

func TestSpotUnknownSymbol(t *testing.T) {
	p := NewSimulatedProvider()

	_, err := p.Spot(context.Background(), "DOGE")
	if err == nil {
		t.Fatal("expected error for unknown symbol")
	}
	if !errors.Is(err, errors.ErrNoQuote) {
		t.Errorf("expected ErrNoQuote, got %v", err)
	}
}

func TestChainStrikeLadder(t *testing.T) {
	p := NewSimulatedProvider()

	chain, err := p.Chain(context.Background(), "BTC", 20000)
	if err != nil {
		t.Fatalf("Chain failed: %v", err)
	}

	if len(chain.Calls) != 2 || len(chain.Puts) != 2 {
		t.Fatalf("got %d calls / %d puts, want 2 / 2", len(chain.Calls), len(chain.Puts))
	}

	wantCalls := []float64{22000, 23000}
	for i, q := range chain.Calls {
		if math.Abs(q.Strike-wantCalls[i]) > 1e-9 {
			t.Errorf("call strike[%d] = %v, want %v", i, q.Strike, wantCalls[i])
		}
		if q.Type != models.OptionCall {
			t.Errorf("call quote has type %s", q.Type)
		}
		if q.Strike <= chain.SpotPrice {
			t.Errorf("call strike %v not above spot %v", q.Strike, chain.SpotPrice)
		}
	}

	wantPuts := []float64{18000, 17000}
	for i, q := range chain.Puts {
		if math.Abs(q.Strike-wantPuts[i]) > 1e-9 {
			t.Errorf("put strike[%d] = %v, want %v", i, q.Strike, wantPuts[i])
		}
		if q.Type != models.OptionPut {
			t.Errorf("put quote has type %s", q.Type)
		}
		if q.Strike >= chain.SpotPrice {
			t.Errorf("put strike %v not below spot %v", q.Strike, chain.SpotPrice)
		}
	}

	// Each rung carries its own volatility assumption.
	if chain.Calls[0].IV != 0.60 || chain.Calls[1].IV != 0.55 {
		t.Errorf("call IVs = %v, %v", chain.Calls[0].IV, chain.Calls[1].IV)
	}
	if chain.Puts[0].IV != 0.65 || chain.Puts[1].IV != 0.70 {
		t.Errorf("put IVs = %v, %v", chain.Puts[0].IV, chain.Puts[1].IV)
	}
}

func TestChainWeeklyExpirations(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p := NewSimulatedProvider(WithClock(func() time.Time { return now }))

	chain, err := p.Chain(context.Background(), "ETH", 1500)
	if err != nil {
		t.Fatalf("Chain failed: %v", err)
	}

	// Weekly steps from one week out to the 180 day horizon.
	if len(chain.Expirations) != 25 {
		t.Fatalf("got %d expirations, want 25", len(chain.Expirations))
	}
	for i, exp := range chain.Expirations {
		if !exp.After(now.Truncate(24 * time.Hour)) {
			t.Errorf("expiration[%d] %v not in the future", i, exp)
		}
		if exp != exp.Truncate(24*time.Hour) {
			t.Errorf("expiration[%d] %v not truncated to day", i, exp)
		}
		if i > 0 {
			if got := exp.Sub(chain.Expirations[i-1]); got != 7*24*time.Hour {
				t.Errorf("gap between expirations %d and %d is %v", i-1, i, got)
			}
		}
	}
}

func TestChainInvalidSpot(t *testing.T) {
	p := NewSimulatedProvider()

	for _, spot := range []float64{0, -100} {
		if _, err := p.Chain(context.Background(), "BTC", spot); err == nil {
			t.Errorf("expected error for spot %v", spot)
		}
	}
}

func TestProviderOverrides(t *testing.T) {
	p := NewSimulatedProvider(
		WithSpotPrices(map[string]float64{"XRP": 2.5}),
		WithStrikeOffsets([]float64{0.05}, []float64{0.05}),
	)
	ctx := context.Background()

	if _, err := p.Spot(ctx, "BTC"); err == nil {
		t.Error("default symbols should be replaced by override")
	}

	spot, err := p.Spot(ctx, "XRP")
	if err != nil {
		t.Fatalf("Spot failed: %v", err)
	}

	chain, err := p.Chain(ctx, "XRP", spot)
	if err != nil {
		t.Fatalf("Chain failed: %v", err)
	}
	if len(chain.Calls) != 1 || len(chain.Puts) != 1 {
		t.Fatalf("got %d calls / %d puts, want 1 / 1", len(chain.Calls), len(chain.Puts))
	}
	if math.Abs(chain.Calls[0].Strike-2.625) > 1e-9 {
		t.Errorf("call strike = %v, want 2.625", chain.Calls[0].Strike)
	}
	if math.Abs(chain.Puts[0].Strike-2.375) > 1e-9 {
		t.Errorf("put strike = %v, want 2.375", chain.Puts[0].Strike)
	}
}
