package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"options-signals/internal/models"
)

func newSignalsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signals",
		Short: "Inspect stored signals",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List active signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("signal store unavailable")
			}

			signals, err := app.Store.ListActive(cmd.Context(), time.Now())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(signals)
			}

			if len(signals) == 0 {
				output.Dim("No active signals")
				return nil
			}
			output.Bold("Active signals")
			for i := range signals {
				printSignal(output, &signals[i])
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "close <id>",
		Short: "Close a signal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("signal store unavailable")
			}

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid signal id %q", args[0])
			}

			if err := app.Store.UpdateStatus(cmd.Context(), id, models.StatusClosed); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"id": id, "status": models.StatusClosed})
			}
			output.Success("Signal #%d closed", id)
			return nil
		},
	})

	return cmd
}
