// pkg/config/scenario.go
package config

import (
	"fmt"
	"strings"
)

// Scenario describes a set of game objects to simulate
type Scenario struct {
	Name     string         `json:"name" yaml:"name"`
	Ticks    int            `json:"ticks" yaml:"ticks"`
	TimeStep float64        `json:"timeStep" yaml:"timeStep"`
	Objects  []ObjectConfig `json:"objects" yaml:"objects"`
}

// ObjectConfig describes one game object and its hitbox.
// Position is relative to Parent when Parent is set.
type ObjectConfig struct {
	Name       string   `json:"name" yaml:"name"`
	Parent     string   `json:"parent,omitempty" yaml:"parent,omitempty"`
	X          float64  `json:"x" yaml:"x"`
	Y          float64  `json:"y" yaml:"y"`
	VX         float64  `json:"vx,omitempty" yaml:"vx,omitempty"`
	VY         float64  `json:"vy,omitempty" yaml:"vy,omitempty"`
	Width      float64  `json:"width" yaml:"width"`
	Height     float64  `json:"height" yaml:"height"`
	Categories []string `json:"categories" yaml:"categories"`
	Mask       []string `json:"mask,omitempty" yaml:"mask,omitempty"`
	Notify     bool     `json:"notify,omitempty" yaml:"notify,omitempty"`
	Inactive   bool     `json:"inactive,omitempty" yaml:"inactive,omitempty"`
}

// LoadScenario loads a scenario from a JSON or YAML file
func LoadScenario(path string) (*Scenario, error) {
	scenario := &Scenario{}
	if err := decodeFile(path, scenario); err != nil {
		return nil, err
	}
	return scenario, nil
}

// SaveScenario saves a scenario, choosing the format from the extension
func SaveScenario(scenario *Scenario, path string) error {
	return encodeFile(path, scenario)
}

// DefaultScenario returns a small scene: a player walking over two pickups
// and into an enemy, plus a wall nobody listens for.
func DefaultScenario() *Scenario {
	return &Scenario{
		Name:     "default",
		Ticks:    120,
		TimeStep: 1.0 / 60.0,
		Objects: []ObjectConfig{
			{
				Name: "player", X: 40, Y: 280, VX: 120, Width: 24, Height: 32,
				Categories: []string{"player"},
				Mask:       []string{"enemy", "pickup"},
				Notify:     true,
			},
			{
				Name: "rupee", X: 100, Y: 290, Width: 12, Height: 12,
				Categories: []string{"pickup"},
				Mask:       []string{"player"},
				Notify:     true,
			},
			{
				Name: "heart", X: 160, Y: 290, Width: 12, Height: 12,
				Categories: []string{"pickup"},
			},
			{
				Name: "chicken", X: 200, Y: 270, VX: -30, Width: 28, Height: 28,
				Categories: []string{"enemy"},
				Mask:       []string{"player"},
				Notify:     true,
			},
			{
				Name: "wall", X: 0, Y: 0, Width: 770, Height: 8,
				Categories: []string{"wall"},
			},
		},
	}
}

// Validate checks object names, parents, sizes and category references
// against the categories of config.
func (s *Scenario) Validate(config *Config) error {
	var problems []string

	if s.TimeStep <= 0 {
		problems = append(problems, fmt.Sprintf("timeStep must be positive, got %v", s.TimeStep))
	}

	names := make(map[string]bool, len(s.Objects))
	for i, obj := range s.Objects {
		if obj.Name == "" {
			problems = append(problems, fmt.Sprintf("object %d has no name", i))
			continue
		}
		if names[obj.Name] {
			problems = append(problems, fmt.Sprintf("duplicate object name %q", obj.Name))
		}
		names[obj.Name] = true
	}

	for _, obj := range s.Objects {
		if obj.Parent != "" && !names[obj.Parent] {
			problems = append(problems, fmt.Sprintf("object %q has unknown parent %q", obj.Name, obj.Parent))
		}
		if obj.Parent == obj.Name && obj.Name != "" {
			problems = append(problems, fmt.Sprintf("object %q is its own parent", obj.Name))
		}
		if obj.Width <= 0 || obj.Height <= 0 {
			problems = append(problems, fmt.Sprintf("object %q must have a positive size", obj.Name))
		}
		if len(obj.Categories) == 0 {
			problems = append(problems, fmt.Sprintf("object %q has no categories", obj.Name))
		}
		if _, err := config.Mask(obj.Categories...); err != nil {
			problems = append(problems, fmt.Sprintf("object %q: %v", obj.Name, err))
		}
		if _, err := config.Mask(obj.Mask...); err != nil {
			problems = append(problems, fmt.Sprintf("object %q mask: %v", obj.Name, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: scenario %q: %s", ErrInvalidConfig, s.Name, strings.Join(problems, "; "))
	}
	return nil
}
