package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# PnF Scanner Configuration

[pnf]
# Boxes of adverse movement needed to reverse a column
reversal_amount = 3.0
# Box size; 0 derives it from the last close of each symbol
box_size = 0.0
# Widest look-ahead (in columns) for spread triple patterns
spread_trigger_width = 15
# Composite cleanup: "symmetric" or "ascending_only"
dedup_mode = "symmetric"

[data]
# Directory holding <SYMBOL>.csv price files
dir = "data"
# Whitespace separated list of symbols scanned by default
tickers_file = "tickers.txt"
# SQLite bar cache; empty disables caching
database = "pnf.db"
# Analysis range (YYYY-MM-DD); empty means unbounded
start_date = "2021-01-01"
end_date = ""

[report]
# Only report triggers completed in the last N days; 0 reports all
last_n_days = 0
# Symbols analysed in parallel
workers = 4

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "2006-01-02"

[log]
# debug, info, warn, error
level = "info"
# Write a rotating log file next to this config
file = true
`

func createTemplateConfig(configDir string) (string, error) {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, configName+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return "", fmt.Errorf("writing config template: %w", err)
	}

	return path, nil
}
