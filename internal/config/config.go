// Package config provides configuration types and defaults for mindmap.
package config

import (
	"fmt"
	"time"
)

// Config holds all configuration for mindmap.
type Config struct {
	Layout      LayoutConfig      `yaml:"layout" mapstructure:"layout"`
	TUI         TUIConfig         `yaml:"tui" mapstructure:"tui"`
	Export      ExportConfig      `yaml:"export" mapstructure:"export"`
	Backend     BackendConfig     `yaml:"backend" mapstructure:"backend"`
	Serve       ServeConfig       `yaml:"serve" mapstructure:"serve"`
	Source      SourceConfig      `yaml:"source" mapstructure:"source"`
	Paths       PathsConfig       `yaml:"paths" mapstructure:"paths"`
	LogRotation LogRotationConfig `yaml:"log_rotation" mapstructure:"log_rotation"`
}

// LayoutConfig holds settings for the layered layout engine used by
// exports and the HTTP service. Sizes are in pixels.
type LayoutConfig struct {
	Direction  string  `yaml:"direction" mapstructure:"direction"` // "TB" or "LR"
	NodeWidth  float64 `yaml:"node_width" mapstructure:"node_width"`
	NodeHeight float64 `yaml:"node_height" mapstructure:"node_height"`
	RankSep    float64 `yaml:"rank_sep" mapstructure:"rank_sep"`
	NodeSep    float64 `yaml:"node_sep" mapstructure:"node_sep"`
	CacheSize  int     `yaml:"cache_size" mapstructure:"cache_size"` // Memoized layouts per session (0 = disabled)
}

// TUIConfig holds settings for the terminal viewer. Sizes are in cells.
type TUIConfig struct {
	NodeWidth  int           `yaml:"node_width" mapstructure:"node_width"`
	NodeHeight int           `yaml:"node_height" mapstructure:"node_height"`
	RankSep    int           `yaml:"rank_sep" mapstructure:"rank_sep"`
	NodeSep    int           `yaml:"node_sep" mapstructure:"node_sep"`
	Mouse      bool          `yaml:"mouse" mapstructure:"mouse"`
	FitDelay   time.Duration `yaml:"fit_delay" mapstructure:"fit_delay"` // Delay before a fit request is applied
	Fullscreen bool          `yaml:"fullscreen" mapstructure:"fullscreen"`
}

// ExportConfig holds PNG/SVG export settings.
type ExportConfig struct {
	Format     string  `yaml:"format" mapstructure:"format"` // "png" or "svg"
	PixelRatio float64 `yaml:"pixel_ratio" mapstructure:"pixel_ratio"`
	Padding    float64 `yaml:"padding" mapstructure:"padding"`
	FontSize   float64 `yaml:"font_size" mapstructure:"font_size"`
	Dir        string  `yaml:"dir" mapstructure:"dir"`
}

// BackendConfig holds settings for the learning-content backend.
type BackendConfig struct {
	BaseURL string            `yaml:"base_url" mapstructure:"base_url"`
	Token   string            `yaml:"token" mapstructure:"token"`
	Timeout time.Duration     `yaml:"timeout" mapstructure:"timeout"`
	Profile map[string]string `yaml:"profile" mapstructure:"profile"` // Sent as user_profile
}

// ServeConfig holds settings for the HTTP render service.
type ServeConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins" mapstructure:"cors_origins"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// SourceConfig holds settings for loading mind-map data.
type SourceConfig struct {
	Strict         bool          `yaml:"strict" mapstructure:"strict"`   // Reject data that fails schema validation
	Command        []string      `yaml:"command" mapstructure:"command"` // Generator command; stdout is mind-map JSON
	CommandTimeout time.Duration `yaml:"command_timeout" mapstructure:"command_timeout"`
}

// PathsConfig holds file paths for state and logs.
type PathsConfig struct {
	State  string `yaml:"state" mapstructure:"state"`   // Viewer preferences
	Events string `yaml:"events" mapstructure:"events"` // JSONL session event log ("" = disabled)
	Log    string `yaml:"log" mapstructure:"log"`       // Debug log written while the TUI owns the terminal
}

// LogRotationConfig holds settings for log file rotation.
// Used for the TUI debug log (lumberjack-based automatic rotation).
type LogRotationConfig struct {
	MaxSizeMB  int  `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool `yaml:"compress" mapstructure:"compress"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			Direction:  "TB",
			NodeWidth:  200,
			NodeHeight: 60,
			RankSep:    60,
			NodeSep:    24,
			CacheSize:  64,
		},
		TUI: TUIConfig{
			NodeWidth:  22,
			NodeHeight: 3,
			RankSep:    2,
			NodeSep:    2,
			Mouse:      true,
			FitDelay:   50 * time.Millisecond,
		},
		Export: ExportConfig{
			Format:     "png",
			PixelRatio: 3,
			Padding:    24,
			FontSize:   13,
			Dir:        ".",
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:5000/api",
			Timeout: 2 * time.Minute,
			Profile: map[string]string{},
		},
		Serve: ServeConfig{
			Addr:            "127.0.0.1:8088",
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			MaxBodyBytes:    4 << 20,
		},
		Source: SourceConfig{
			Strict:         false,
			Command:        []string{},
			CommandTimeout: 2 * time.Minute,
		},
		Paths: PathsConfig{
			State:  ".mindmap/state.json",
			Events: "",
			Log:    ".mindmap/mindmap-debug.log",
		},
		LogRotation: LogRotationConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	switch c.Layout.Direction {
	case "TB", "LR":
	default:
		return fmt.Errorf("layout.direction must be TB or LR, got %q", c.Layout.Direction)
	}
	if c.Layout.NodeWidth <= 0 || c.Layout.NodeHeight <= 0 {
		return fmt.Errorf("layout node size must be positive, got %vx%v", c.Layout.NodeWidth, c.Layout.NodeHeight)
	}
	if c.TUI.NodeWidth < 5 || c.TUI.NodeHeight < 3 {
		return fmt.Errorf("tui node size must be at least 5x3 cells, got %dx%d", c.TUI.NodeWidth, c.TUI.NodeHeight)
	}
	switch c.Export.Format {
	case "png", "svg":
	default:
		return fmt.Errorf("export.format must be png or svg, got %q", c.Export.Format)
	}
	if c.Export.PixelRatio <= 0 {
		return fmt.Errorf("export.pixel_ratio must be positive, got %v", c.Export.PixelRatio)
	}
	return nil
}
