// Package config loads hicolink settings through viper and validates them.
package config

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/viper"

	"github.com/hicognition/hicolink/internal/logging"
	"github.com/hicognition/hicolink/internal/palette"
)

// Config represents the complete hicolink configuration
type Config struct {
	Palette    PaletteConfig    `mapstructure:"palette" yaml:"palette"`
	Sorting    SortingConfig    `mapstructure:"sorting" yaml:"sorting"`
	ValueScale ValueScaleConfig `mapstructure:"value_scale" yaml:"value_scale"`
	Data       DataConfig       `mapstructure:"data" yaml:"data"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Binning    BinningConfig    `mapstructure:"binning" yaml:"binning"`
}

// PaletteConfig lists the indicator colors, in allocation order.
type PaletteConfig struct {
	Colors []string `mapstructure:"colors" yaml:"colors"`
}

// SortingConfig sets how a widget orders its rows before it shares anything.
type SortingConfig struct {
	// DefaultMode is one of ValidSortModes
	DefaultMode string `mapstructure:"default_mode" yaml:"default_mode"`
	Ascending   bool   `mapstructure:"ascending" yaml:"ascending"`
}

// ValueScaleConfig controls a widget's own color scale domain.
type ValueScaleConfig struct {
	// LowerPerMil and UpperPerMil pick the scale bounds as per-mil ranks of
	// the widget's finite values (0 to 1000).
	LowerPerMil float64 `mapstructure:"lower_permil" yaml:"lower_permil"`
	UpperPerMil float64 `mapstructure:"upper_permil" yaml:"upper_permil"`
	// Colormaps maps widget type to its default colormap id
	Colormaps map[string]string `mapstructure:"colormaps" yaml:"colormaps"`
}

// DataConfig locates pileup files on disk.
type DataConfig struct {
	Dir     string `mapstructure:"dir" yaml:"dir"`
	Pattern string `mapstructure:"pattern" yaml:"pattern"`
	// Log2 treats zeros as missing, the way log-ratio pileups are stored
	Log2  bool `mapstructure:"log2" yaml:"log2"`
	Watch bool `mapstructure:"watch" yaml:"watch"`
}

// LoggingConfig controls debug logging
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	// Dir receives hicolink.log; empty logs to stderr
	Dir        string `mapstructure:"dir" yaml:"dir"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated log files
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// Rotation returns the rotation settings for the log writer.
func (c LoggingConfig) Rotation() logging.RotationConfig {
	return logging.RotationConfig{
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		Compress:   c.Compress,
	}
}

// BinningConfig holds the rectBin defaults used by the bin command.
type BinningConfig struct {
	Size        int    `mapstructure:"size" yaml:"size"`
	Aggregation string `mapstructure:"aggregation" yaml:"aggregation"`
}

// Sort modes accepted by sorting.default_mode.
const (
	SortModeCenterColumn  = "center column"
	SortModeRegion        = "region"
	SortModeLeftBoundary  = "left boundary"
	SortModeRightBoundary = "right boundary"
)

// ValidSortModes returns the sort modes a widget can compute on its own.
func ValidSortModes() []string {
	return []string{SortModeCenterColumn, SortModeRegion, SortModeLeftBoundary, SortModeRightBoundary}
}

// IsValidSortMode checks if the given mode is valid
func IsValidSortMode(mode string) bool {
	return slices.Contains(ValidSortModes(), mode)
}

// ValidAggregations returns the rectBin aggregation names.
func ValidAggregations() []string {
	return []string{"sum", "mean"}
}

// Default returns a Config with sensible default values
func Default() *Config {
	rotation := logging.DefaultRotationConfig()
	return &Config{
		Palette: PaletteConfig{
			Colors: slices.Clone(palette.DefaultColors),
		},
		Sorting: SortingConfig{
			DefaultMode: SortModeCenterColumn,
			Ascending:   false,
		},
		ValueScale: ValueScaleConfig{
			LowerPerMil: 10,
			UpperPerMil: 990,
			Colormaps: map[string]string{
				"pileup":  "fall",
				"stackup": "red",
			},
		},
		Data: DataConfig{
			Dir:     "",
			Pattern: "*.json",
			Log2:    false,
			Watch:   false,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Dir:        "",
			MaxSizeMB:  rotation.MaxSizeMB,
			MaxBackups: rotation.MaxBackups,
			Compress:   rotation.Compress,
		},
		Binning: BinningConfig{
			Size:        50,
			Aggregation: "sum",
		},
	}
}

// Colormap returns the default colormap for a widget type, or "" if none is
// configured.
func (c *ValueScaleConfig) Colormap(widgetType string) string {
	return c.Colormaps[widgetType]
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("palette.colors", defaults.Palette.Colors)

	viper.SetDefault("sorting.default_mode", defaults.Sorting.DefaultMode)
	viper.SetDefault("sorting.ascending", defaults.Sorting.Ascending)

	viper.SetDefault("value_scale.lower_permil", defaults.ValueScale.LowerPerMil)
	viper.SetDefault("value_scale.upper_permil", defaults.ValueScale.UpperPerMil)
	viper.SetDefault("value_scale.colormaps", defaults.ValueScale.Colormaps)

	viper.SetDefault("data.dir", defaults.Data.Dir)
	viper.SetDefault("data.pattern", defaults.Data.Pattern)
	viper.SetDefault("data.log2", defaults.Data.Log2)
	viper.SetDefault("data.watch", defaults.Data.Watch)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)

	viper.SetDefault("binning.size", defaults.Binning.Size)
	viper.SetDefault("binning.aggregation", defaults.Binning.Aggregation)
}

// Load reads the configuration from viper and validates it
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom unmarshals and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults when it
// does not load.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hicolink")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hicolink"
	}
	return filepath.Join(home, ".config", "hicolink")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
