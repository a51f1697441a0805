// Package config provides configuration loading and defaults for roiwatch.
package config

// DefaultClaudeHome is the default location of Claude Code's data directory.
const DefaultClaudeHome = "~/.claude"

// DefaultConfigDir is the default location for roiwatch configuration.
const DefaultConfigDir = "~/.config/roiwatch"

// DefaultDBName is the filename for the SQLite parse cache.
const DefaultDBName = "roiwatch.db"

// DefaultDays is the default look-back window in days.
const DefaultDays = 30

// DefaultCorrelation holds the default correlation tuning.
var DefaultCorrelation = Correlation{
	BufferWindowHours: 2,
	OrphanThreshold:   10,
	ChurnWindowHours:  24,
	Strategy:          "nearest",
}

// DefaultPricingVintage selects the newer per-version tier tables.
const DefaultPricingVintage = "versioned"

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}
