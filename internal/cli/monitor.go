package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"options-signals/internal/models"
)

func newMonitorCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Evaluate active signals for roll recommendations",
		Long: `Monitor checks every active signal against the roll triggers: near
expiration (within the roll window) and elapsed-time fraction (a proxy for
most extrinsic value having decayed). Triggered signals transition to
ROLL_RECOMMENDED and are reported once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Monitor == nil {
				return fmt.Errorf("signal store unavailable")
			}

			triggers, err := app.Monitor.Evaluate(cmd.Context(), time.Now())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(triggers)
			}
			printTriggers(output, triggers)
			return nil
		},
	}
}

func printTriggers(output *Output, triggers []models.RollTrigger) {
	if len(triggers) == 0 {
		output.Dim("No roll recommendations")
		return
	}

	output.Bold("Roll recommendations")
	for _, t := range triggers {
		reasons := make([]string, len(t.Reasons))
		for i, r := range t.Reasons {
			reasons[i] = string(r)
		}
		output.Warning("  #%d %s %s: %s", t.SignalID, t.Symbol, t.Strategy, strings.Join(reasons, ", "))
	}
}
