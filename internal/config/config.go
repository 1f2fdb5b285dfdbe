// Package config provides configuration management for the signal engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Engine        EngineConfig       `mapstructure:"engine"`
	Monitor       MonitorConfig      `mapstructure:"monitor"`
	Store         StoreConfig        `mapstructure:"store"`
	Scan          ScanConfig         `mapstructure:"scan"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Notifications NotificationConfig `mapstructure:"notifications"`
}

// EngineConfig holds signal generation parameters.
type EngineConfig struct {
	Symbols            []string `mapstructure:"symbols"`
	ImpliedVol         float64  `mapstructure:"implied_vol"`
	RiskFreeRate       float64  `mapstructure:"risk_free_rate"`
	BaseQuantity       float64  `mapstructure:"base_quantity"`
	ImbalanceThreshold float64  `mapstructure:"imbalance_threshold"`
	ImbalanceFactor    float64  `mapstructure:"imbalance_factor"`
	CallOTMOffsets     []float64 `mapstructure:"call_otm_offsets"`
	PutOTMOffsets      []float64 `mapstructure:"put_otm_offsets"`
	ExpiryWindowDays   int      `mapstructure:"expiry_window_days"`
}

// MonitorConfig holds roll monitoring parameters.
type MonitorConfig struct {
	RollWindow         time.Duration `mapstructure:"roll_window"`
	ProfitTimeFraction float64       `mapstructure:"profit_time_fraction"`
}

// StoreConfig holds persistence configuration.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// ScanConfig holds scheduling configuration for the run loop.
type ScanConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// NotificationConfig holds notification configuration.
type NotificationConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Level    string         `mapstructure:"level"` // all, rolls_only, errors_only
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// WebhookConfig holds webhook notification configuration.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/options-signals"
	}
	return filepath.Join(home, ".config", "options-signals")
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Symbols:            []string{"BTC", "ETH", "SOL"},
			ImpliedVol:         0.60,
			RiskFreeRate:       0.01,
			BaseQuantity:       0.01,
			ImbalanceThreshold: 0.10,
			ImbalanceFactor:    1.5,
			CallOTMOffsets:     []float64{0.10, 0.15},
			PutOTMOffsets:      []float64{0.10, 0.15},
			ExpiryWindowDays:   180,
		},
		Monitor: MonitorConfig{
			RollWindow:         48 * time.Hour,
			ProfitTimeFraction: 0.75,
		},
		Store: StoreConfig{
			Path: filepath.Join(DefaultConfigDir(), "signals.db"),
		},
		Scan: ScanConfig{
			Interval: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			File:    true,
		},
		Notifications: NotificationConfig{
			Enabled: true,
			Level:   "all",
		},
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		// Config file not found, write the template for next time.
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("creating config template: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Unmarshal keeps a pre-populated slice field when the file sets an
	// explicitly empty array, so slice keys present in the file are read back
	// directly. An empty list must reach Validate and be rejected rather than
	// silently reverting to the defaults.
	if v.InConfig("engine.symbols") {
		cfg.Engine.Symbols = v.GetStringSlice("engine.symbols")
	}
	if v.InConfig("engine.call_otm_offsets") {
		cfg.Engine.CallOTMOffsets = floatSlice(v.Get("engine.call_otm_offsets"))
	}
	if v.InConfig("engine.put_otm_offsets") {
		cfg.Engine.PutOTMOffsets = floatSlice(v.Get("engine.put_otm_offsets"))
	}

	applyEnvOverrides(cfg)

	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(configDir, "signals.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("engine.symbols", cfg.Engine.Symbols)
	v.SetDefault("engine.implied_vol", cfg.Engine.ImpliedVol)
	v.SetDefault("engine.risk_free_rate", cfg.Engine.RiskFreeRate)
	v.SetDefault("engine.base_quantity", cfg.Engine.BaseQuantity)
	v.SetDefault("engine.imbalance_threshold", cfg.Engine.ImbalanceThreshold)
	v.SetDefault("engine.imbalance_factor", cfg.Engine.ImbalanceFactor)
	v.SetDefault("engine.call_otm_offsets", cfg.Engine.CallOTMOffsets)
	v.SetDefault("engine.put_otm_offsets", cfg.Engine.PutOTMOffsets)
	v.SetDefault("engine.expiry_window_days", cfg.Engine.ExpiryWindowDays)
	v.SetDefault("monitor.roll_window", cfg.Monitor.RollWindow)
	v.SetDefault("monitor.profit_time_fraction", cfg.Monitor.ProfitTimeFraction)
	v.SetDefault("store.path", cfg.Store.Path)
	v.SetDefault("scan.interval", cfg.Scan.Interval)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.console", cfg.Logging.Console)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("notifications.enabled", cfg.Notifications.Enabled)
	v.SetDefault("notifications.level", cfg.Notifications.Level)
}

// floatSlice converts a decoded TOML array to floats. Integer literals in the
// file are accepted alongside floats.
func floatSlice(value interface{}) []float64 {
	items, ok := value.([]interface{})
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		switch n := item.(type) {
		case float64:
			out = append(out, n)
		case int64:
			out = append(out, float64(n))
		case int:
			out = append(out, float64(n))
		}
	}
	return out
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SIGNALS_SYMBOLS"); v != "" {
		cfg.Engine.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("SIGNALS_DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("SIGNALS_WEBHOOK_URL"); v != "" {
		cfg.Notifications.Webhook.URL = v
		cfg.Notifications.Webhook.Enabled = true
	}
	if v := os.Getenv("SIGNALS_TELEGRAM_TOKEN"); v != "" {
		cfg.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv("SIGNALS_TELEGRAM_CHAT_ID"); v != "" {
		cfg.Notifications.Telegram.ChatID = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Engine.Symbols) == 0 {
		return fmt.Errorf("engine.symbols must not be empty")
	}
	if c.Engine.ImpliedVol <= 0 {
		return fmt.Errorf("engine.implied_vol must be positive")
	}
	if c.Engine.BaseQuantity <= 0 {
		return fmt.Errorf("engine.base_quantity must be positive")
	}
	if c.Engine.ImbalanceThreshold < 0 || c.Engine.ImbalanceThreshold > 1 {
		return fmt.Errorf("engine.imbalance_threshold must be between 0 and 1")
	}
	if c.Engine.ImbalanceFactor < 1 {
		return fmt.Errorf("engine.imbalance_factor must be at least 1")
	}
	if len(c.Engine.CallOTMOffsets) == 0 || len(c.Engine.PutOTMOffsets) == 0 {
		return fmt.Errorf("engine OTM offsets must not be empty")
	}
	for _, off := range append(append([]float64{}, c.Engine.CallOTMOffsets...), c.Engine.PutOTMOffsets...) {
		if off <= 0 || off >= 1 {
			return fmt.Errorf("OTM offsets must be between 0 and 1, got %v", off)
		}
	}
	if c.Monitor.RollWindow <= 0 {
		return fmt.Errorf("monitor.roll_window must be positive")
	}
	if c.Monitor.ProfitTimeFraction <= 0 || c.Monitor.ProfitTimeFraction > 1 {
		return fmt.Errorf("monitor.profit_time_fraction must be between 0 and 1")
	}
	if c.Scan.Interval <= 0 {
		return fmt.Errorf("scan.interval must be positive")
	}
	switch c.Notifications.Level {
	case "", "all", "rolls_only", "errors_only":
	default:
		return fmt.Errorf("invalid notifications.level: %s", c.Notifications.Level)
	}
	return nil
}
