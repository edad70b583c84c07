package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the complete cuml configuration
type Config struct {
	Version     int    `json:"version" mapstructure:"version"`
	ProjectName string `json:"projectName" mapstructure:"projectName"`

	// StrictMode disables synthesis of owned ends: only relationships backed
	// by real fields on both sides become associations.
	StrictMode bool `json:"strictMode" mapstructure:"strictMode"`
	// OwnershipAnnotations controls the ownership-marking annotation placed
	// on associations that carry synthesized ends.
	OwnershipAnnotations bool `json:"ownershipAnnotations" mapstructure:"ownershipAnnotations"`
	// PlaceholderStubs controls synthesis of stand-in datatype elements for
	// referenced-but-undefined external types. When disabled, references fall
	// back to the plain unresolved type name string.
	PlaceholderStubs bool `json:"placeholderStubs" mapstructure:"placeholderStubs"`

	// ProfilePath points at a YAML type-vocabulary profile; empty uses the
	// built-in defaults.
	ProfilePath string `json:"profilePath" mapstructure:"profilePath"`

	Layout  LayoutConfig  `json:"layout" mapstructure:"layout"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// LayoutConfig contains diagram grid layout configuration
type LayoutConfig struct {
	RowWrap int `json:"rowWrap" mapstructure:"rowWrap"`
	StepX   int `json:"stepX" mapstructure:"stepX"`
	StepY   int `json:"stepY" mapstructure:"stepY"`
	Width   int `json:"width" mapstructure:"width"`
	Height  int `json:"height" mapstructure:"height"`
	MarginX int `json:"marginX" mapstructure:"marginX"`
	MarginY int `json:"marginY" mapstructure:"marginY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:              1,
		ProjectName:          "GeneratedUML",
		StrictMode:           false,
		OwnershipAnnotations: true,
		PlaceholderStubs:     true,
		Layout: LayoutConfig{
			RowWrap: 10,
			StepX:   300,
			StepY:   200,
			Width:   180,
			Height:  100,
			MarginX: 40,
			MarginY: 40,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the given file, falling back to defaults for
// anything unset. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	v := viper.New()
	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("projectName", def.ProjectName)
	v.SetDefault("strictMode", def.StrictMode)
	v.SetDefault("ownershipAnnotations", def.OwnershipAnnotations)
	v.SetDefault("placeholderStubs", def.PlaceholderStubs)
	v.SetDefault("layout.rowWrap", def.Layout.RowWrap)
	v.SetDefault("layout.stepX", def.Layout.StepX)
	v.SetDefault("layout.stepY", def.Layout.StepY)
	v.SetDefault("layout.width", def.Layout.Width)
	v.SetDefault("layout.height", def.Layout.Height)
	v.SetDefault("layout.marginX", def.Layout.MarginX)
	v.SetDefault("layout.marginY", def.Layout.MarginY)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Layout.RowWrap <= 0 {
		return fmt.Errorf("layout.rowWrap must be positive, got %d", c.Layout.RowWrap)
	}
	if c.Layout.StepX <= 0 || c.Layout.StepY <= 0 {
		return fmt.Errorf("layout steps must be positive")
	}
	if c.Layout.Width <= 0 || c.Layout.Height <= 0 {
		return fmt.Errorf("layout dimensions must be positive")
	}
	return nil
}

// Position calculates the x, y diagram position for the element at the given
// index under the grid layout. A non-positive RowWrap is treated as 1 so a
// zero-value layout still yields a usable (single-column) grid.
func (l LayoutConfig) Position(index int) (int, int) {
	wrap := l.RowWrap
	if wrap < 1 {
		wrap = 1
	}
	x := l.MarginX + (index%wrap)*l.StepX
	y := l.MarginY + (index/wrap)*l.StepY
	return x, y
}
