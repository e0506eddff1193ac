// Package config provides configuration management for the scanner.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"pnf-scanner/internal/errors"
	"pnf-scanner/internal/pnf"
)

const (
	configName = "config"
	dateLayout = "2006-01-02"
)

// Config holds all application configuration.
type Config struct {
	PnF    PnFConfig    `mapstructure:"pnf"`
	Data   DataConfig   `mapstructure:"data"`
	Report ReportConfig `mapstructure:"report"`
	UI     UIConfig     `mapstructure:"ui"`
	Log    LogConfig    `mapstructure:"log"`

	// Dir is the directory the configuration was loaded from.
	Dir string `mapstructure:"-"`
}

// PnFConfig holds chart construction parameters.
type PnFConfig struct {
	ReversalAmount     float64 `mapstructure:"reversal_amount"`
	BoxSize            float64 `mapstructure:"box_size"` // 0 = derive from last close
	SpreadTriggerWidth int     `mapstructure:"spread_trigger_width"`
	DedupMode          string  `mapstructure:"dedup_mode"`
}

// DataConfig holds price data locations and the analysis range.
type DataConfig struct {
	Dir         string `mapstructure:"dir"`
	TickersFile string `mapstructure:"tickers_file"`
	Database    string `mapstructure:"database"`
	StartDate   string `mapstructure:"start_date"`
	EndDate     string `mapstructure:"end_date"`
}

// ReportConfig holds trigger report settings.
type ReportConfig struct {
	LastNDays int `mapstructure:"last_n_days"`
	Workers   int `mapstructure:"workers"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  bool   `mapstructure:"file"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/pnf-scanner"
	}
	return filepath.Join(home, ".config", "pnf-scanner")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pnf.reversal_amount", float64(pnf.DefaultReversalAmount))
	v.SetDefault("pnf.box_size", 0.0)
	v.SetDefault("pnf.spread_trigger_width", pnf.DefaultSpreadTriggerWidth)
	v.SetDefault("pnf.dedup_mode", string(pnf.DedupSymmetric))
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.tickers_file", "tickers.txt")
	v.SetDefault("data.database", "pnf.db")
	v.SetDefault("data.start_date", "")
	v.SetDefault("data.end_date", "")
	v.SetDefault("report.last_n_days", 0)
	v.SetDefault("report.workers", 4)
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", dateLayout)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", true)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{Dir: DefaultConfigDir()}
	// Defaults always decode.
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A commented
// template is written when no config file exists yet.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if _, err := createTemplateConfig(configDir); err != nil {
			return nil, err
		}
	}

	cfg := &Config{Dir: configDir}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config.toml: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PNF_REVERSAL_AMOUNT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.NewValidationError("PNF_REVERSAL_AMOUNT", v, "not a number")
		}
		cfg.PnF.ReversalAmount = f
	}
	if v := os.Getenv("PNF_BOX_SIZE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.NewValidationError("PNF_BOX_SIZE", v, "not a number")
		}
		cfg.PnF.BoxSize = f
	}
	if v := os.Getenv("PNF_SPREAD_TRIGGER_WIDTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.NewValidationError("PNF_SPREAD_TRIGGER_WIDTH", v, "not an integer")
		}
		cfg.PnF.SpreadTriggerWidth = n
	}
	if v := os.Getenv("PNF_DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.PnFParams().Validate(); err != nil {
		return errors.Wrap(errors.ErrConfigInvalid, err.Error())
	}

	start, err := parseDate(c.Data.StartDate)
	if err != nil {
		return fmt.Errorf("%w: start_date %q must be YYYY-MM-DD", errors.ErrConfigInvalid, c.Data.StartDate)
	}
	end, err := parseDate(c.Data.EndDate)
	if err != nil {
		return fmt.Errorf("%w: end_date %q must be YYYY-MM-DD", errors.ErrConfigInvalid, c.Data.EndDate)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("%w: end_date is before start_date", errors.ErrConfigInvalid)
	}

	if c.Report.LastNDays < 0 {
		return fmt.Errorf("%w: last_n_days must be non-negative", errors.ErrConfigInvalid)
	}
	if c.Report.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative", errors.ErrConfigInvalid)
	}

	return nil
}

// PnFParams converts the [pnf] section into run parameters.
func (c *Config) PnFParams() pnf.Params {
	return pnf.Params{
		BoxSize:            c.PnF.BoxSize,
		ReversalAmount:     c.PnF.ReversalAmount,
		SpreadTriggerWidth: c.PnF.SpreadTriggerWidth,
		DedupMode:          pnf.DedupMode(c.PnF.DedupMode),
	}
}

// Range returns the configured analysis range. Zero values are open bounds.
func (c *Config) Range() (time.Time, time.Time) {
	start, _ := parseDate(c.Data.StartDate)
	end, _ := parseDate(c.Data.EndDate)
	return start, end
}

// ResolvePath makes p absolute relative to the config directory.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// LogFilePath returns the rotating log file location.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Dir, "logs", "pnf.log")
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}
