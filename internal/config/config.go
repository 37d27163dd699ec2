package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/multierr"

	"github.com/tujuhre12/recycler/internal/recycler"
)

const (
	appName              = "recycler"
	defaultDataDirectory = ".recycler"
	defaultLogLevel      = "info"
)

// EngineOptions configure the recycling engine. Distances are in terminal
// lines (or columns for a horizontal list).
type EngineOptions struct {
	Axis      string  `json:"axis,omitempty"`
	SizeMode  string  `json:"size_mode,omitempty"`
	FixedSize float64 `json:"fixed_size,omitempty"` // Zero measures every item
	Spacing   float64 `json:"spacing"`
	PadNear   float64 `json:"padding_near"`
	PadFar    float64 `json:"padding_far"`
	Addon     int     `json:"addon_views"`

	LabelOffset float64 `json:"label_offset"`
	PullRelease float64 `json:"pull_release"`
	PullNear    bool    `json:"pull_near"`
	PullFar     bool    `json:"pull_far"`
	PullText    string  `json:"pull_text,omitempty"`
	ReleaseText string  `json:"release_text,omitempty"`

	Snap           bool    `json:"snap,omitempty"`
	SnapAnchor     float64 `json:"snap_anchor"`
	SnapAlign      string  `json:"snap_align,omitempty"`
	SnapElasticity float64 `json:"snap_elasticity"`
	SlowVelocity   float64 `json:"slow_velocity"`
	JumpVelocity   float64 `json:"jump_velocity"`
}

type TUIOptions struct {
	FrameRate    int     `json:"frame_rate"`
	Deceleration float64 `json:"deceleration"`
	ReturnTime   float64 `json:"return_time"`
	// Items generated per pull when no file is followed.
	LoadBatch int  `json:"load_batch"`
	Wrap      bool `json:"wrap,omitempty"`
}

type Options struct {
	Debug         bool   `json:"debug,omitempty"`
	LogLevel      string `json:"log_level,omitempty"`
	DataDirectory string `json:"data_directory,omitempty"` // Relative to the cwd
}

// Config holds the configuration for recycler.
type Config struct {
	Engine  EngineOptions `json:"engine"`
	TUI     TUIOptions    `json:"tui"`
	Options Options       `json:"options"`

	// Internal
	workingDir     string `json:"-"`
	dataConfigPath string `json:"-"`
}

// Default returns the configuration used when no file overrides a field.
func Default() *Config {
	return &Config{
		Engine: EngineOptions{
			Axis:           "vertical",
			SizeMode:       "auto",
			Spacing:        1,
			Addon:          4,
			LabelOffset:    2,
			PullRelease:    1.5,
			PullNear:       true,
			PullFar:        true,
			PullText:       recycler.DefaultPullText,
			ReleaseText:    recycler.DefaultReleaseText,
			SnapAnchor:     0.5,
			SnapAlign:      "middle",
			SnapElasticity: 0.1,
			SlowVelocity:   8,
			JumpVelocity:   10,
		},
		TUI: TUIOptions{
			FrameRate:    60,
			Deceleration: 0.135,
			ReturnTime:   0.1,
			LoadBatch:    20,
			Wrap:         true,
		},
		Options: Options{
			LogLevel:      defaultLogLevel,
			DataDirectory: defaultDataDirectory,
		},
	}
}

func (c *Config) WorkingDir() string {
	return c.workingDir
}

// LogFile is where the debug log is written.
func (c *Config) LogFile() string {
	dir := c.Options.DataDirectory
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.workingDir, dir)
	}
	return filepath.Join(dir, "logs", appName+".log")
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var err error
	e := c.Engine
	if _, ok := parseAxis(e.Axis); !ok {
		err = multierr.Append(err, fmt.Errorf("engine.axis: unknown axis %q", e.Axis))
	}
	if _, ok := parseSizeMode(e.SizeMode); !ok {
		err = multierr.Append(err, fmt.Errorf("engine.size_mode: unknown mode %q", e.SizeMode))
	}
	if _, ok := parseAlignment(e.SnapAlign); !ok {
		err = multierr.Append(err, fmt.Errorf("engine.snap_align: unknown alignment %q", e.SnapAlign))
	}
	if e.FixedSize < 0 {
		err = multierr.Append(err, fmt.Errorf("engine.fixed_size: must not be negative, got %v", e.FixedSize))
	}
	if e.Spacing < 0 {
		err = multierr.Append(err, fmt.Errorf("engine.spacing: must not be negative, got %v", e.Spacing))
	}
	if e.Addon < 0 {
		err = multierr.Append(err, fmt.Errorf("engine.addon_views: must not be negative, got %d", e.Addon))
	}
	if e.LabelOffset <= 0 {
		err = multierr.Append(err, fmt.Errorf("engine.label_offset: must be positive, got %v", e.LabelOffset))
	}
	if e.PullRelease < 1 {
		err = multierr.Append(err, fmt.Errorf("engine.pull_release: must be at least 1, got %v", e.PullRelease))
	}
	if e.SnapAnchor < 0 || e.SnapAnchor > 1 {
		err = multierr.Append(err, fmt.Errorf("engine.snap_anchor: must be within [0, 1], got %v", e.SnapAnchor))
	}
	if e.SnapElasticity < 0 {
		err = multierr.Append(err, fmt.Errorf("engine.snap_elasticity: must not be negative, got %v", e.SnapElasticity))
	}
	if c.TUI.FrameRate <= 0 {
		err = multierr.Append(err, fmt.Errorf("tui.frame_rate: must be positive, got %d", c.TUI.FrameRate))
	}
	if c.TUI.Deceleration < 0 || c.TUI.Deceleration > 1 {
		err = multierr.Append(err, fmt.Errorf("tui.deceleration: must be within [0, 1], got %v", c.TUI.Deceleration))
	}
	if c.TUI.LoadBatch < 0 {
		err = multierr.Append(err, fmt.Errorf("tui.load_batch: must not be negative, got %d", c.TUI.LoadBatch))
	}
	return err
}

// ToOptions maps the configuration to engine options. The config must be
// valid.
func (c *Config) ToOptions() []recycler.Option {
	e := c.Engine
	axis, _ := parseAxis(e.Axis)
	mode, _ := parseSizeMode(e.SizeMode)
	align, _ := parseAlignment(e.SnapAlign)

	opts := []recycler.Option{
		recycler.WithAxis(axis),
		recycler.WithSizeMode(mode),
		recycler.WithSpacing(e.Spacing),
		recycler.WithPadding(e.PadNear, e.PadFar),
		recycler.WithAddonViews(e.Addon),
		recycler.WithPullThresholds(e.LabelOffset, e.PullRelease),
		recycler.WithPullEdges(e.PullNear, e.PullFar),
		recycler.WithNearLabels(e.PullText, e.ReleaseText),
		recycler.WithFarLabels(e.PullText, e.ReleaseText),
		recycler.WithSnapElasticity(e.SnapElasticity),
		recycler.WithSlowVelocity(e.SlowVelocity),
		recycler.WithJumpVelocity(e.JumpVelocity),
	}
	if e.FixedSize > 0 {
		opts = append(opts, recycler.WithFixedSize(e.FixedSize))
	} else {
		opts = append(opts, recycler.WithDynamicSize(1))
	}
	if e.Snap {
		opts = append(opts, recycler.WithSnap(e.SnapAnchor, align))
	} else {
		opts = append(opts, recycler.WithoutSnap())
	}
	return opts
}

// Alignment returns the parsed snap alignment.
func (e EngineOptions) Alignment() recycler.Alignment {
	align, _ := parseAlignment(e.SnapAlign)
	return align
}

func parseAxis(s string) (recycler.Axis, bool) {
	switch strings.ToLower(s) {
	case "", "vertical":
		return recycler.Vertical, true
	case "horizontal":
		return recycler.Horizontal, true
	}
	return recycler.Vertical, false
}

func parseSizeMode(s string) (recycler.SizeMode, bool) {
	switch strings.ToLower(s) {
	case "", "auto":
		return recycler.SizeAuto, true
	case "uniform":
		return recycler.SizeUniform, true
	case "variable":
		return recycler.SizeVariable, true
	}
	return recycler.SizeAuto, false
}

func parseAlignment(s string) (recycler.Alignment, bool) {
	switch strings.ToLower(s) {
	case "start":
		return recycler.AlignStart, true
	case "", "middle":
		return recycler.AlignMiddle, true
	case "end":
		return recycler.AlignEnd, true
	}
	return recycler.AlignMiddle, false
}

// GetConfigField returns the raw JSON of key in the writable config file, or
// false when it is not set there.
func (c *Config) GetConfigField(key string) (string, bool, error) {
	data, err := os.ReadFile(c.dataConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read config file: %w", err)
	}
	return Lookup(data, key)
}

// Lookup returns the raw JSON at the dot path key of a config document.
func Lookup(data []byte, key string) (string, bool, error) {
	if !gjson.ValidBytes(data) {
		return "", false, fmt.Errorf("config is not valid JSON")
	}
	res := gjson.GetBytes(data, key)
	if !res.Exists() {
		return "", false, nil
	}
	return res.Raw, true, nil
}

// SetConfigField writes value at key in the writable config file, creating
// the file if needed.
func (c *Config) SetConfigField(key string, value any) error {
	// read the data
	data, err := os.ReadFile(c.dataConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			data = []byte("{}")
		} else {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	newValue, err := sjson.Set(string(data), key, value)
	if err != nil {
		return fmt.Errorf("failed to set config field %s: %w", key, err)
	}
	if err := os.MkdirAll(filepath.Dir(c.dataConfigPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(c.dataConfigPath, []byte(newValue), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DataConfigPath is the file SetConfigField writes to.
func (c *Config) DataConfigPath() string {
	return c.dataConfigPath
}
