package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Options Signal Engine Configuration

[engine]
# Underlyings scanned each cycle
symbols = ["BTC", "ETH", "SOL"]
# Fixed implied volatility assumption for the synthetic chain
implied_vol = 0.60
# Annual risk-free rate (decimal)
risk_free_rate = 0.01
# Base quantity per leg before imbalance adjustment
base_quantity = 0.01
# Relative premium difference that triggers quantity rebalancing
imbalance_threshold = 0.10
# Multiplier applied to the smaller-premium leg on imbalance
imbalance_factor = 1.5
# OTM strike offsets as fractions of spot (first rung sold, second protective)
call_otm_offsets = [0.10, 0.15]
put_otm_offsets = [0.10, 0.15]
# Maximum days to expiration considered
expiry_window_days = 180

[monitor]
# Roll when expiration is within this window (e.g., "48h")
roll_window = "48h"
# Roll when this fraction of the time to expiration has elapsed
profit_time_fraction = 0.75

[store]
# SQLite database path (empty = default config dir)
path = ""

[scan]
# Evaluation cycle interval for the run loop (e.g., "5m")
interval = "5m"

[logging]
# Log level: debug, info, warn, error
level = "info"
console = true
file = true

[notifications]
# Enable notifications
enabled = true
# Notification level: all, rolls_only, errors_only
level = "all"

[notifications.webhook]
enabled = false
url = ""

[notifications.telegram]
enabled = false
bot_token = ""
chat_id = ""
`

// createTemplateConfig writes the default config template to the config directory.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
