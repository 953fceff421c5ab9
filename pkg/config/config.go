// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Errors returned by configuration loading and validation
var (
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrUnknownCategory = errors.New("unknown collision category")
)

// Config contains configuration for a collision world
type Config struct {
	World      WorldConfig       `json:"world" yaml:"world"`
	Guard      GuardConfig       `json:"guard" yaml:"guard"`
	Categories map[string]uint32 `json:"categories" yaml:"categories"`
}

// Bounds is the playable area covered by the spatial index
type Bounds struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// WorldConfig contains spatial index configuration
type WorldConfig struct {
	Bounds       Bounds `json:"bounds" yaml:"bounds"`
	NodeCapacity int    `json:"nodeCapacity" yaml:"nodeCapacity"`
	MaxDepth     int    `json:"maxDepth" yaml:"maxDepth"`
	SharedIndex  bool   `json:"sharedIndex" yaml:"sharedIndex"`
}

// GuardConfig controls the circuit breaker placed in front of each
// collider's notification handler.
type GuardConfig struct {
	Enabled                bool     `json:"enabled" yaml:"enabled"`
	MaxConsecutiveFailures int      `json:"maxConsecutiveFailures" yaml:"maxConsecutiveFailures"`
	Timeout                Duration `json:"timeout" yaml:"timeout"`
}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration time.Duration

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	return d.parse(s)
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("line %d: duration must be a string: %w", node.Line, err)
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("failed to parse duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// LoadConfig loads a configuration from a JSON or YAML file. Fields missing
// from the file keep their DefaultConfig values. A categories table in the
// file replaces the default categories rather than extending them.
func LoadConfig(path string) (*Config, error) {
	var categories struct {
		Categories map[string]uint32 `json:"categories" yaml:"categories"`
	}
	if err := decodeFile(path, &categories); err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if categories.Categories != nil {
		config.Categories = nil
	}
	if err := decodeFile(path, config); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig saves a configuration, choosing the format from the extension
func SaveConfig(config *Config, path string) error {
	return encodeFile(path, config)
}

// DefaultConfig returns a configuration for a 770x578 screen-sized world
func DefaultConfig() *Config {
	return &Config{
		World: WorldConfig{
			Bounds: Bounds{
				X:      0,
				Y:      0,
				Width:  770,
				Height: 578,
			},
			NodeCapacity: 10,
			MaxDepth:     5,
			SharedIndex:  false,
		},
		Guard: GuardConfig{
			Enabled:                false,
			MaxConsecutiveFailures: 3,
			Timeout:                Duration(5 * time.Second),
		},
		Categories: map[string]uint32{
			"player":     1 << 0,
			"enemy":      1 << 1,
			"pickup":     1 << 2,
			"projectile": 1 << 3,
			"wall":       1 << 4,
		},
	}
}

// Validate checks the configuration for values the collision world cannot use
func (c *Config) Validate() error {
	var problems []string

	b := c.World.Bounds
	if b.Width <= 0 || b.Height <= 0 {
		problems = append(problems, fmt.Sprintf("world bounds must have positive size, got %vx%v", b.Width, b.Height))
	}
	if c.World.NodeCapacity < 1 {
		problems = append(problems, fmt.Sprintf("nodeCapacity must be at least 1, got %d", c.World.NodeCapacity))
	}
	if c.World.MaxDepth < 0 {
		problems = append(problems, fmt.Sprintf("maxDepth must not be negative, got %d", c.World.MaxDepth))
	}
	if c.Guard.Enabled {
		if c.Guard.MaxConsecutiveFailures < 1 {
			problems = append(problems, "guard.maxConsecutiveFailures must be at least 1")
		}
		if c.Guard.Timeout <= 0 {
			problems = append(problems, "guard.timeout must be positive")
		}
	}
	for _, name := range c.CategoryNames() {
		if c.Categories[name] == 0 {
			problems = append(problems, fmt.Sprintf("category %q has no bits set", name))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// CategoryNames returns the configured category names in sorted order
func (c *Config) CategoryNames() []string {
	names := make([]string, 0, len(c.Categories))
	for name := range c.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Mask combines named categories into a bitmask
func (c *Config) Mask(names ...string) (uint32, error) {
	var mask uint32
	for _, name := range names {
		bits, ok := c.Categories[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
		}
		mask |= bits
	}
	return mask, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func decodeFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, v)
	} else {
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func encodeFile(path string, v interface{}) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
