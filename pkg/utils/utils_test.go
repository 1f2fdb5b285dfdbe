package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      10 * time.Millisecond,
		BackoffFactor: 2.0,
	}

	calls := 0
	err := Retry(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry returned error: %v", err)
	}
	if calls != 3 {
		t.Errorf("got %d calls, want 3", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:   2,
		InitialDelay:  time.Millisecond,
		MaxDelay:      10 * time.Millisecond,
		BackoffFactor: 2.0,
	}

	sentinel := errors.New("still down")
	calls := 0
	err := Retry(context.Background(), cfg, func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("expected last error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("got %d calls, want 2", calls)
	}
}

func TestRetryRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, DefaultRetryConfig(), func() error {
		return errors.New("failing")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFormatPremium(t *testing.T) {
	tests := []struct {
		premium float64
		want    string
	}{
		{1.2, "1.2000 cr"},
		{0, "0.0000 cr"},
		{-0.35, "0.3500 dr"},
	}
	for _, tt := range tests {
		if got := FormatPremium(tt.premium); got != tt.want {
			t.Errorf("FormatPremium(%v) = %q, want %q", tt.premium, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Hour, "1d6h"},
		{5 * time.Hour, "5h"},
		{-26 * time.Hour, "1d2h"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatExpiry(t *testing.T) {
	exp := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)
	if got := FormatExpiry(exp); got != "2025-07-01" {
		t.Errorf("FormatExpiry() = %q, want 2025-07-01", got)
	}
}
