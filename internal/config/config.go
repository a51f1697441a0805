package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level roiwatch configuration.
type Config struct {
	// ClaudeHome is the Claude Code data directory holding transcripts.
	ClaudeHome string `mapstructure:"claude_home"`

	// Repos are additional repository paths to include beyond those
	// discovered from session working directories.
	Repos []string `mapstructure:"repos"`

	// AuthorEmail identifies the user's commits. Empty means all commits
	// count as the user's.
	AuthorEmail string `mapstructure:"author_email"`

	// Days is the look-back window for sessions and commits.
	Days int `mapstructure:"days"`

	// PricingVintage is "versioned" or "flat".
	PricingVintage string `mapstructure:"pricing_vintage"`

	Correlation Correlation `mapstructure:"correlation"`
	Output      Output      `mapstructure:"output"`
}

// Correlation tunes the commit-to-session matching.
type Correlation struct {
	// BufferWindowHours extends a session's match window past its end.
	BufferWindowHours int `mapstructure:"buffer_window_hours"`

	// OrphanThreshold is the message count above which a zero-commit
	// session counts as orphaned.
	OrphanThreshold int `mapstructure:"orphan_threshold"`

	// ChurnWindowHours is the survival estimator's churn window.
	ChurnWindowHours int `mapstructure:"churn_window_hours"`

	// Strategy is "nearest" (two-phase, deterministic) or "greedy"
	// (legacy order-dependent scan).
	Strategy string `mapstructure:"strategy"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Set defaults.
	v.SetDefault("claude_home", DefaultClaudeHome)
	v.SetDefault("days", DefaultDays)
	v.SetDefault("pricing_vintage", DefaultPricingVintage)
	v.SetDefault("correlation.buffer_window_hours", DefaultCorrelation.BufferWindowHours)
	v.SetDefault("correlation.orphan_threshold", DefaultCorrelation.OrphanThreshold)
	v.SetDefault("correlation.churn_window_hours", DefaultCorrelation.ChurnWindowHours)
	v.SetDefault("correlation.strategy", DefaultCorrelation.Strategy)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		configDir := expandPath(DefaultConfigDir)
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Expand paths.
	cfg.ClaudeHome = expandPath(cfg.ClaudeHome)
	for i, p := range cfg.Repos {
		cfg.Repos[i] = expandPath(p)
	}

	return &cfg, nil
}

// DBPath returns the full path to the SQLite parse cache.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
