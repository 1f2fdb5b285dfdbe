package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"options-signals/internal/errors"
	"options-signals/pkg/utils"
)

func newRunCmd(app *App) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scan and monitor loop",
		Long: `Run executes scan and monitor cycles on a fixed interval until
interrupted. Cycles are serialized: a new cycle never starts before the
previous one finishes, preserving the single-writer store model. A cycle
that fails on a store error is retried with backoff before the loop moves
on; signal-level failures never abort a cycle.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Store == nil {
				return fmt.Errorf("signal store unavailable")
			}
			if interval <= 0 {
				interval = app.Config.Scan.Interval
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app.Logger.Info().Dur("interval", interval).Msg("Starting evaluation loop")

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			// Run the first cycle immediately, then on every tick.
			runCycle(ctx, app)
			for {
				select {
				case <-ctx.Done():
					app.Logger.Info().Msg("Shutting down")
					return nil
				case <-ticker.C:
					runCycle(ctx, app)
				}
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "cycle interval (default from config)")
	return cmd
}

// runCycle executes one scan plus one monitor pass. Store-unavailable
// failures are retried with backoff inside the loop iteration; anything
// still failing is logged and left for the next cycle.
func runCycle(ctx context.Context, app *App) {
	asOf := time.Now()

	err := utils.Retry(ctx, utils.DefaultRetryConfig(), func() error {
		_, err := runScan(ctx, app, asOf)
		if err != nil && !errors.Is(err, errors.ErrStoreUnavailable) {
			app.Logger.Error().Err(err).Msg("Scan cycle failed")
			return nil
		}
		return err
	})
	if err != nil {
		app.Logger.Error().Err(err).Msg("Scan cycle aborted, will retry next cycle")
		return
	}

	if _, err := app.Monitor.Evaluate(ctx, asOf); err != nil {
		app.Logger.Error().Err(err).Msg("Roll evaluation failed, will retry next cycle")
	}
}
