package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"options-signals/internal/config"
	"options-signals/internal/engine"
	"options-signals/internal/logging"
	"options-signals/internal/market"
	"options-signals/internal/monitor"
	"options-signals/internal/notify"
	"options-signals/internal/pricing"
	"options-signals/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Provider market.DataProvider
	Store    store.SignalStore
	Engine   *engine.Engine
	Monitor  *monitor.RollMonitor
	Notifier notify.Notifier
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	app.Provider = market.NewSimulatedProvider(
		market.WithStrikeOffsets(cfg.Engine.CallOTMOffsets, cfg.Engine.PutOTMOffsets),
	)
	app.Engine = engine.New(pricing.NewBlackScholes(), cfg.Engine, logger)

	mn := notify.NewMultiNotifier(&cfg.Notifications)
	if cfg.Notifications.Enabled {
		mn.AddChannel(notify.NewTerminalChannel())
	}
	app.Notifier = mn

	dataStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, scan and monitor are unavailable")
	} else {
		app.Store = dataStore
		app.Monitor = monitor.New(dataStore, app.Notifier, cfg.Monitor, logger)
		logger.Debug().Str("path", cfg.Store.Path).Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "options-signals",
		Short: "Option strategy signal engine",
		Long: `options-signals prices multi-leg option strategies on a simulated chain,
generates trade signals for short strangles and vertical spreads, persists
them with per-leg detail, and monitors open signals for roll recommendations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/options-signals)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newScanCmd(app))
	rootCmd.AddCommand(newMonitorCmd(app))
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newSignalsCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("options-signals v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Engine")
	output.Printf("  Symbols:             %v\n", cfg.Engine.Symbols)
	output.Printf("  Implied vol:         %.2f\n", cfg.Engine.ImpliedVol)
	output.Printf("  Risk-free rate:      %.4f\n", cfg.Engine.RiskFreeRate)
	output.Printf("  Base quantity:       %.4f\n", cfg.Engine.BaseQuantity)
	output.Printf("  Imbalance threshold: %.2f\n", cfg.Engine.ImbalanceThreshold)
	output.Printf("  Imbalance factor:    %.2f\n", cfg.Engine.ImbalanceFactor)
	output.Printf("  Call OTM offsets:    %v\n", cfg.Engine.CallOTMOffsets)
	output.Printf("  Put OTM offsets:     %v\n", cfg.Engine.PutOTMOffsets)
	output.Println()

	output.Bold("Monitor")
	output.Printf("  Roll window:          %s\n", cfg.Monitor.RollWindow)
	output.Printf("  Profit time fraction: %.2f\n", cfg.Monitor.ProfitTimeFraction)
	output.Println()

	output.Bold("Store")
	output.Printf("  Path: %s\n", cfg.Store.Path)
	output.Println()

	output.Bold("Notifications")
	output.Printf("  Enabled:  %v\n", cfg.Notifications.Enabled)
	output.Printf("  Level:    %s\n", cfg.Notifications.Level)
	output.Printf("  Webhook:  %v\n", cfg.Notifications.Webhook.Enabled)
	output.Printf("  Telegram: %v\n", cfg.Notifications.Telegram.Enabled)

	return nil
}
