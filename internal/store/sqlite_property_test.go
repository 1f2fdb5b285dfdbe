package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"options-signals/internal/models"
)

// Property: For any generated signal, gating inserts on Exists yields exactly
// one stored row no matter how many times the same signal is offered, and the
// stored row round-trips its legs in order.
func TestProperty_DuplicateSuppression(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "dedup_property.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	symbols := []string{"BTC", "ETH", "SOL"}
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	properties.Property("repeated offers of one signal store one row", prop.ForAll(
		func(symbolIdx int, strategyIdx int, expiryDays int, strike float64, offers int) bool {
			ctx := context.Background()

			// Distinct expirations keep property iterations independent.
			expiration := base.Add(time.Duration(expiryDays) * 24 * time.Hour)
			sig := &models.Signal{
				Symbol:         symbols[symbolIdx%len(symbols)],
				Strategy:       models.AllStrategies[strategyIdx%len(models.AllStrategies)],
				CreatedAt:      base,
				Expiration:     expiration,
				SpotAtCreation: strike / 1.1,
				NetPremium:     1.0,
				Legs: []models.OptionLeg{
					{Type: models.OptionCall, Side: models.SideShort, Strike: strike, Premium: 1.0, Quantity: 0.01},
					{Type: models.OptionCall, Side: models.SideLong, Strike: strike * 1.05, Premium: 0.5, Quantity: 0.01},
				},
				Status: models.StatusActive,
			}

			inserted := 0
			for i := 0; i < offers; i++ {
				exists, err := store.Exists(ctx, sig.Symbol, sig.Strategy, sig.Expiration, sig.StrikeSet())
				if err != nil {
					t.Logf("Exists failed: %v", err)
					return false
				}
				if exists {
					continue
				}
				if _, err := store.Insert(ctx, sig); err != nil {
					t.Logf("Insert failed: %v", err)
					return false
				}
				inserted++
			}
			if inserted != 1 {
				t.Logf("inserted %d rows for %d offers", inserted, offers)
				return false
			}

			// Close the row so later iterations of this property start clean
			// even when the generator repeats a key.
			if err := store.UpdateStatus(ctx, sig.ID, models.StatusClosed); err != nil {
				t.Logf("UpdateStatus failed: %v", err)
				return false
			}
			return true
		},
		gen.IntRange(0, 2),
		gen.IntRange(0, 2),
		gen.IntRange(1, 5000),
		gen.Float64Range(100.0, 50000.0),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}
