package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"options-signals/internal/engine"
	"options-signals/internal/models"
	"options-signals/pkg/utils"
)

func newScanCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run one signal evaluation cycle",
		Long: `Scan evaluates every configured symbol once: fetches the spot price,
builds the simulated option chain, prices each strategy and persists new
signals. Duplicate signals are silently skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("signal store unavailable")
			}

			result, err := runScan(cmd.Context(), app, time.Now())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(result)
			}
			printCycleResult(output, result)
			return nil
		},
	}
}

// runScan executes one evaluation cycle and notifies on inserted signals.
func runScan(ctx context.Context, app *App, asOf time.Time) (*engine.CycleResult, error) {
	cycle := engine.NewCycle(app.Provider, app.Engine, app.Store,
		app.Config.Engine.Symbols, app.Config.Engine.ExpiryWindowDays, app.Logger)

	result, err := cycle.Run(ctx, asOf)
	if err != nil {
		return nil, err
	}

	for _, signal := range result.Signals {
		if err := app.Notifier.SendSignal(ctx, signal); err != nil {
			app.Logger.Warn().Err(err).Msg("Signal notification failed")
		}
	}

	return result, nil
}

func printCycleResult(output *Output, result *engine.CycleResult) {
	output.Bold("Scan complete")
	output.Printf("  Symbols:    %d\n", result.Symbols)
	output.Printf("  Generated:  %d\n", result.Generated)
	output.Printf("  Inserted:   %d\n", result.Inserted)
	output.Printf("  Duplicates: %d\n", result.Duplicates)
	if result.Failures > 0 {
		output.Warning("  Failures:   %d", result.Failures)
	}

	for _, signal := range result.Signals {
		printSignal(output, signal)
	}
}

func printSignal(output *Output, signal *models.Signal) {
	output.Println()
	output.Info("%s %s exp %s", signal.Symbol, signal.Strategy, utils.FormatExpiry(signal.Expiration))
	output.Printf("  Spot: %.2f  Net premium: %s\n", signal.SpotAtCreation, utils.FormatPremium(signal.NetPremium))
	for _, leg := range signal.Legs {
		output.Printf("  %-5s %-4s strike %.2f premium %.4f qty %.4f\n",
			leg.Side, leg.Type, leg.Strike, leg.Premium, leg.Quantity)
	}
}
