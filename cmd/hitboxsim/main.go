// cmd/hitboxsim/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/opd-ai/go-hitbox/pkg/config"
	"github.com/opd-ai/go-hitbox/pkg/engine"
	"github.com/opd-ai/go-hitbox/pkg/event"
	"github.com/opd-ai/go-hitbox/pkg/logging"
)

func main() {
	logger := logging.NewLogger()
	ctx := logging.WithRunID(context.Background(), logging.GenerateRunID())

	configPath := flag.String("config", "config.json", "Path to configuration file (.json or .yaml)")
	scenarioPath := flag.String("scenario", "", "Path to scenario file; the built-in scenario is used when empty")
	ticks := flag.Int("ticks", 0, "Number of ticks to run; overrides the scenario")
	dt := flag.Float64("dt", 0, "Seconds per tick; overrides the scenario")
	createDefault := flag.Bool("default", false, "Write default configuration and scenario files and exit")
	flag.Parse()

	if *createDefault {
		writeDefaults(ctx, logger, *configPath, *scenarioPath)
		return
	}

	cfg := loadConfig(ctx, logger, *configPath)

	scenario := config.DefaultScenario()
	if *scenarioPath != "" {
		loaded, err := config.LoadScenario(*scenarioPath)
		if err != nil {
			logger.Error(ctx, "Failed to load scenario", err, "scenario_path", *scenarioPath)
			os.Exit(1)
		}
		scenario = loaded
	}
	if *ticks > 0 {
		scenario.Ticks = *ticks
	}
	if *dt > 0 {
		scenario.TimeStep = *dt
	}

	sim := engine.NewSimulation(ctx, cfg, logger)
	sim.EventBus.Subscribe(event.EntityCollision, func(e event.Event) {
		collision := e.(*event.CollisionEvent)
		logger.Info(ctx, "Collision",
			"tick", sim.CurrentTick+1,
			"querier", collision.Querier,
			"other", collision.Other,
		)
	})
	sim.EventBus.Subscribe(event.NotificationDropped, func(e event.Event) {
		dropped := e.(*event.DroppedEvent)
		logger.Warn(ctx, "Collision notification dropped",
			"querier", dropped.Querier,
			"other", dropped.Other,
			"reason", dropped.Reason,
		)
	})

	if err := sim.Load(scenario); err != nil {
		logger.Error(ctx, "Failed to load scenario objects", err, "scenario", scenario.Name)
		os.Exit(1)
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting simulation",
		"scenario", scenario.Name,
		"ticks", scenario.Ticks,
		"time_step", scenario.TimeStep,
		"shared_index", cfg.World.SharedIndex,
		"guard", cfg.Guard.Enabled,
	)

	for i := 0; i < scenario.Ticks; i++ {
		if sigCtx.Err() != nil {
			logger.Info(ctx, "Interrupted, stopping simulation", "tick", sim.CurrentTick)
			break
		}
		sim.Tick(scenario.TimeStep)
	}

	summary := sim.Summary()
	logger.Info(ctx, "Simulation finished",
		"ticks", summary.Ticks,
		"objects", summary.Objects,
		"notifications", summary.Notifications,
		"dropped", summary.Dropped,
		"contacts", summary.Contacts,
	)
}

// loadConfig reads the configuration file, falling back to defaults when it
// does not exist, then applies environment overrides and validates.
func loadConfig(ctx context.Context, logger *logging.Logger, path string) *config.Config {
	var cfg *config.Config

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", path,
		)
		cfg = config.DefaultConfig()
	} else {
		cfg, err = config.LoadConfig(path)
		if err != nil {
			logger.Error(ctx, "Failed to load configuration", err, "config_path", path)
			os.Exit(1)
		}
	}

	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		logger.Error(ctx, "Failed to apply environment configuration", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error(ctx, "Invalid configuration", err, "config_path", path)
		os.Exit(1)
	}
	return cfg
}

func writeDefaults(ctx context.Context, logger *logging.Logger, configPath, scenarioPath string) {
	if err := config.SaveConfig(config.DefaultConfig(), configPath); err != nil {
		logger.Error(ctx, "Failed to create default configuration", err, "config_path", configPath)
		os.Exit(1)
	}
	logger.Info(ctx, "Created default configuration file", "config_path", configPath)

	if scenarioPath == "" {
		return
	}
	if err := config.SaveScenario(config.DefaultScenario(), scenarioPath); err != nil {
		logger.Error(ctx, "Failed to create default scenario", err, "scenario_path", scenarioPath)
		os.Exit(1)
	}
	logger.Info(ctx, "Created default scenario file", "scenario_path", scenarioPath)
}
