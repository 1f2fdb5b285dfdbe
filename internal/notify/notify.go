// Package notify delivers signal and roll notifications.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"options-signals/internal/config"
	"options-signals/internal/models"
)

// Notifier is the notification sink the core emits into. Transport failures
// never fail the evaluation cycle.
type Notifier interface {
	SendSignal(ctx context.Context, signal *models.Signal) error
	SendRoll(ctx context.Context, trigger models.RollTrigger, signal *models.Signal) error
	SendError(ctx context.Context, err error, errContext string) error
}

// Channel is one concrete notification transport.
type Channel interface {
	Name() string
	Send(ctx context.Context, n Notification) error
	IsEnabled() bool
}

// Notification represents a notification message.
type Notification struct {
	Type      NotificationType
	Title     string
	Message   string
	Data      map[string]interface{}
	Timestamp time.Time
}

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationSignal NotificationType = "signal"
	NotificationRoll   NotificationType = "roll"
	NotificationError  NotificationType = "error"
)

// Level filters which notification types are delivered.
type Level string

const (
	LevelAll        Level = "all"
	LevelRollsOnly  Level = "rolls_only"
	LevelErrorsOnly Level = "errors_only"
)

// MultiNotifier fans notifications out to every enabled channel.
type MultiNotifier struct {
	channels []Channel
	level    Level
}

// NewMultiNotifier creates a MultiNotifier from the notification config.
func NewMultiNotifier(cfg *config.NotificationConfig) *MultiNotifier {
	mn := &MultiNotifier{level: Level(cfg.Level)}
	if mn.level == "" {
		mn.level = LevelAll
	}

	if cfg.Webhook.Enabled {
		mn.channels = append(mn.channels, NewWebhookChannel(cfg.Webhook))
	}
	if cfg.Telegram.Enabled {
		mn.channels = append(mn.channels, NewTelegramChannel(cfg.Telegram))
	}

	return mn
}

// AddChannel adds a notification channel.
func (mn *MultiNotifier) AddChannel(ch Channel) {
	mn.channels = append(mn.channels, ch)
}

func (mn *MultiNotifier) shouldSend(t NotificationType) bool {
	switch mn.level {
	case LevelRollsOnly:
		return t == NotificationRoll
	case LevelErrorsOnly:
		return t == NotificationError
	default:
		return true
	}
}

// Send delivers a notification to all enabled channels.
func (mn *MultiNotifier) Send(ctx context.Context, n Notification) error {
	if !mn.shouldSend(n.Type) {
		return nil
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	var errs []string
	for _, ch := range mn.channels {
		if !ch.IsEnabled() {
			continue
		}
		if err := ch.Send(ctx, n); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", ch.Name(), err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// SendSignal sends a new-signal notification.
func (mn *MultiNotifier) SendSignal(ctx context.Context, signal *models.Signal) error {
	title := fmt.Sprintf("New Signal: %s %s", signal.Symbol, signal.Strategy)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Symbol: %s\nStrategy: %s\nExpiration: %s\nSpot: %.2f\nNet premium: %s\n",
		signal.Symbol, signal.Strategy, signal.Expiration.Format("2006-01-02"),
		signal.SpotAtCreation, formatPremium(signal.NetPremium)))
	for _, leg := range signal.Legs {
		sb.WriteString(fmt.Sprintf("  %s %s strike %.2f premium %.4f qty %.4f\n",
			leg.Side, leg.Type, leg.Strike, leg.Premium, leg.Quantity))
	}

	return mn.Send(ctx, Notification{
		Type:    NotificationSignal,
		Title:   title,
		Message: sb.String(),
		Data: map[string]interface{}{
			"symbol":      signal.Symbol,
			"strategy":    signal.Strategy,
			"expiration":  signal.Expiration.Format(time.RFC3339),
			"spot":        signal.SpotAtCreation,
			"net_premium": signal.NetPremium,
		},
	})
}

// SendRoll sends a roll recommendation notification.
func (mn *MultiNotifier) SendRoll(ctx context.Context, trigger models.RollTrigger, signal *models.Signal) error {
	reasons := make([]string, len(trigger.Reasons))
	for i, r := range trigger.Reasons {
		reasons[i] = string(r)
	}

	title := fmt.Sprintf("Roll Recommended: %s %s", trigger.Symbol, trigger.Strategy)
	message := fmt.Sprintf(
		"Signal #%d (%s %s) expiring %s should be rolled.\nReasons: %s\nInstruction: %s",
		trigger.SignalID, trigger.Symbol, trigger.Strategy,
		signal.Expiration.Format("2006-01-02"),
		strings.Join(reasons, ", "),
		rollInstruction(trigger.Strategy),
	)

	return mn.Send(ctx, Notification{
		Type:    NotificationRoll,
		Title:   title,
		Message: message,
		Data: map[string]interface{}{
			"signal_id": trigger.SignalID,
			"symbol":    trigger.Symbol,
			"strategy":  trigger.Strategy,
			"reasons":   reasons,
		},
	})
}

// SendError sends an error notification.
func (mn *MultiNotifier) SendError(ctx context.Context, err error, errContext string) error {
	return mn.Send(ctx, Notification{
		Type:    NotificationError,
		Title:   "Error Occurred",
		Message: fmt.Sprintf("Context: %s\nError: %v", errContext, err),
		Data: map[string]interface{}{
			"context": errContext,
			"error":   err.Error(),
		},
	})
}

// rollInstruction returns the close-and-reopen instruction per strategy.
func rollInstruction(strategy models.Strategy) string {
	switch strategy {
	case models.StrategyShortStrangle:
		return "Close both legs and open a new short strangle at the next expiration."
	case models.StrategyBullCallSpread:
		return "Close the call spread and open a new spread at the next expiration."
	case models.StrategyBearPutSpread:
		return "Close the put spread and open a new spread at the next expiration."
	default:
		return "Close the position and reopen at the next expiration."
	}
}

func formatPremium(p float64) string {
	if p >= 0 {
		return fmt.Sprintf("%.4f credit", p)
	}
	return fmt.Sprintf("%.4f debit", -p)
}

// NoOpNotifier is a notifier that does nothing, for tests and disabled
// notifications.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// SendSignal does nothing.
func (n *NoOpNotifier) SendSignal(ctx context.Context, signal *models.Signal) error {
	return nil
}

// SendRoll does nothing.
func (n *NoOpNotifier) SendRoll(ctx context.Context, trigger models.RollTrigger, signal *models.Signal) error {
	return nil
}

// SendError does nothing.
func (n *NoOpNotifier) SendError(ctx context.Context, err error, errContext string) error {
	return nil
}
