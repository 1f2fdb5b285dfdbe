package monitor

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"options-signals/internal/config"
	"options-signals/internal/models"
	"options-signals/internal/store"
)

// captureNotifier records every roll it is handed.
type captureNotifier struct {
	rolls []models.RollTrigger
	fail  bool
}

func (n *captureNotifier) SendSignal(ctx context.Context, signal *models.Signal) error {
	return nil
}

func (n *captureNotifier) SendRoll(ctx context.Context, trigger models.RollTrigger, signal *models.Signal) error {
	n.rolls = append(n.rolls, trigger)
	if n.fail {
		return context.DeadlineExceeded
	}
	return nil
}

func (n *captureNotifier) SendError(ctx context.Context, err error, errContext string) error {
	return nil
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "monitor_test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func testMonitorConfig() config.MonitorConfig {
	return config.MonitorConfig{
		RollWindow:         48 * time.Hour,
		ProfitTimeFraction: 0.75,
	}
}

// insertSignal stores a 30-day strangle created at the given time.
func insertSignal(t *testing.T, st *store.SQLiteStore, symbol string, created time.Time) *models.Signal {
	t.Helper()
	sig := &models.Signal{
		Symbol:         symbol,
		Strategy:       models.StrategyShortStrangle,
		CreatedAt:      created,
		Expiration:     created.Add(30 * 24 * time.Hour),
		SpotAtCreation: 20000,
		NetPremium:     2.15,
		Legs: []models.OptionLeg{
			{Type: models.OptionCall, Side: models.SideShort, Strike: 22000, Premium: 1.0, Quantity: 0.015},
			{Type: models.OptionPut, Side: models.SideShort, Strike: 18000, Premium: 1.15, Quantity: 0.01},
		},
		Status: models.StatusActive,
	}
	if _, err := st.Insert(context.Background(), sig); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	return sig
}

func TestNearExpirationTrigger(t *testing.T) {
	st := newTestStore(t)
	notifier := &captureNotifier{}
	m := New(st, notifier, testMonitorConfig(), zerolog.Nop())

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sig := insertSignal(t, st, "BTC", created)

	// Day 29 of 30: inside the 48h roll window.
	asOf := created.Add(29 * 24 * time.Hour)
	triggers, err := m.Evaluate(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(triggers) != 1 {
		t.Fatalf("got %d triggers, want 1", len(triggers))
	}

	trig := triggers[0]
	if trig.SignalID != sig.ID {
		t.Errorf("trigger signal id = %d, want %d", trig.SignalID, sig.ID)
	}
	if !trig.HasReason(models.RollNearExpiration) {
		t.Errorf("expected NearExpiration reason, got %v", trig.Reasons)
	}
	if len(notifier.rolls) != 1 {
		t.Errorf("notifier received %d rolls, want 1", len(notifier.rolls))
	}
}

func TestNoTriggerMidLife(t *testing.T) {
	st := newTestStore(t)
	m := New(st, &captureNotifier{}, testMonitorConfig(), zerolog.Nop())

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	insertSignal(t, st, "BTC", created)

	// Day 10 of 30: 20 days left and a third of the life elapsed.
	asOf := created.Add(10 * 24 * time.Hour)
	triggers, err := m.Evaluate(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(triggers) != 0 {
		t.Errorf("got %d triggers, want 0: %+v", len(triggers), triggers)
	}

	// The signal stays active.
	signals, err := st.ListActive(context.Background(), asOf)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(signals) != 1 {
		t.Errorf("got %d active signals, want 1", len(signals))
	}
}

func TestMaxProfitLikelyTrigger(t *testing.T) {
	st := newTestStore(t)
	m := New(st, &captureNotifier{}, testMonitorConfig(), zerolog.Nop())

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	insertSignal(t, st, "ETH", created)

	// Day 23 of 30: fraction ~0.767 crosses 0.75, yet 7 days remain so the
	// expiration window has not fired.
	asOf := created.Add(23 * 24 * time.Hour)
	triggers, err := m.Evaluate(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(triggers) != 1 {
		t.Fatalf("got %d triggers, want 1", len(triggers))
	}
	trig := triggers[0]
	if !trig.HasReason(models.RollMaxProfitLikely) {
		t.Errorf("expected MaxProfitLikely reason, got %v", trig.Reasons)
	}
	if trig.HasReason(models.RollNearExpiration) {
		t.Errorf("did not expect NearExpiration at day 23, got %v", trig.Reasons)
	}
}

func TestBothReasonsFire(t *testing.T) {
	st := newTestStore(t)
	m := New(st, &captureNotifier{}, testMonitorConfig(), zerolog.Nop())

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	insertSignal(t, st, "SOL", created)

	// Day 29: 86.7% elapsed and 24h remaining, both triggers apply.
	asOf := created.Add(29 * 24 * time.Hour)
	triggers, err := m.Evaluate(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(triggers) != 1 {
		t.Fatalf("got %d triggers, want 1", len(triggers))
	}
	trig := triggers[0]
	if !trig.HasReason(models.RollNearExpiration) || !trig.HasReason(models.RollMaxProfitLikely) {
		t.Errorf("expected both reasons, got %v", trig.Reasons)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	notifier := &captureNotifier{}
	m := New(st, notifier, testMonitorConfig(), zerolog.Nop())

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	insertSignal(t, st, "BTC", created)

	asOf := created.Add(29 * 24 * time.Hour)
	first, err := m.Evaluate(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("got %d triggers on first pass, want 1", len(first))
	}

	// The signal is now RollRecommended and leaves the active set, so the
	// second pass over the unchanged store reports nothing.
	second, err := m.Evaluate(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("got %d triggers on second pass, want 0", len(second))
	}
	if len(notifier.rolls) != 1 {
		t.Errorf("notifier received %d rolls, want 1", len(notifier.rolls))
	}
}

func TestNotificationFailureDoesNotBlockTransition(t *testing.T) {
	st := newTestStore(t)
	notifier := &captureNotifier{fail: true}
	m := New(st, notifier, testMonitorConfig(), zerolog.Nop())

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	insertSignal(t, st, "BTC", created)

	asOf := created.Add(29 * 24 * time.Hour)
	triggers, err := m.Evaluate(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(triggers) != 1 {
		t.Fatalf("got %d triggers, want 1", len(triggers))
	}

	// Transition happened despite the failed notification.
	signals, err := st.ListActive(context.Background(), asOf)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(signals) != 0 {
		t.Errorf("got %d active signals after trigger, want 0", len(signals))
	}
}

func TestCheckOnExpiredSignal(t *testing.T) {
	m := New(nil, &captureNotifier{}, testMonitorConfig(), zerolog.Nop())

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sig := &models.Signal{
		ID:         1,
		Symbol:     "BTC",
		Strategy:   models.StrategyShortStrangle,
		CreatedAt:  created,
		Expiration: created.Add(30 * 24 * time.Hour),
		Status:     models.StatusActive,
	}

	// Past expiration the window trigger still fires rather than panicking
	// or going silent.
	trig, fired := m.Check(sig, sig.Expiration.Add(24*time.Hour))
	if !fired {
		t.Fatal("expected trigger past expiration")
	}
	if !trig.HasReason(models.RollNearExpiration) {
		t.Errorf("expected NearExpiration, got %v", trig.Reasons)
	}
}
