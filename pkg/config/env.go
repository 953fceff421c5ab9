// pkg/config/env.go
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables read by ApplyEnvironmentOverrides
const (
	EnvWorldWidth    = "HITBOX_WORLD_WIDTH"
	EnvWorldHeight   = "HITBOX_WORLD_HEIGHT"
	EnvNodeCapacity  = "HITBOX_NODE_CAPACITY"
	EnvMaxDepth      = "HITBOX_MAX_DEPTH"
	EnvSharedIndex   = "HITBOX_SHARED_INDEX"
	EnvGuardEnabled  = "HITBOX_GUARD_ENABLED"
	EnvGuardFailures = "HITBOX_GUARD_MAX_FAILURES"
	EnvGuardTimeout  = "HITBOX_GUARD_TIMEOUT"
)

// ApplyEnvironmentOverrides overwrites config values with any HITBOX_*
// variables that are set. Unset variables leave the config untouched.
func ApplyEnvironmentOverrides(config *Config) error {
	if err := envFloat(EnvWorldWidth, &config.World.Bounds.Width); err != nil {
		return err
	}
	if err := envFloat(EnvWorldHeight, &config.World.Bounds.Height); err != nil {
		return err
	}
	if err := envInt(EnvNodeCapacity, &config.World.NodeCapacity); err != nil {
		return err
	}
	if err := envInt(EnvMaxDepth, &config.World.MaxDepth); err != nil {
		return err
	}
	if err := envBool(EnvSharedIndex, &config.World.SharedIndex); err != nil {
		return err
	}
	if err := envBool(EnvGuardEnabled, &config.Guard.Enabled); err != nil {
		return err
	}
	if err := envInt(EnvGuardFailures, &config.Guard.MaxConsecutiveFailures); err != nil {
		return err
	}
	if v, ok := os.LookupEnv(EnvGuardTimeout); ok {
		if err := config.Guard.Timeout.parse(v); err != nil {
			return fmt.Errorf("invalid %s: %w", EnvGuardTimeout, err)
		}
	}
	return nil
}

func envFloat(key string, dst *float64) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = f
	return nil
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func envBool(key string, dst *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}
