package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/deltakit/deltakit/cli"
	"github.com/deltakit/deltakit/internal/appconfig"
	"github.com/deltakit/deltakit/internal/logging"
	"github.com/deltakit/deltakit/utils"
)

func main() {
	cfg := loadConfig()
	runID := utils.GenerateULIDString()
	logger := setupLogger(cfg).With().Str("run_id", runID).Logger()

	ctx := logger.WithContext(context.Background())

	logger.Info().Str("cmd", "main").Msg("starting deltakit")

	if err := cli.ExecuteWithContext(ctx); err != nil {
		logger.Error().Str("cmd", "main").Err(err).Msg("command failed")
		os.Exit(cli.ExitCode(err))
	}
}

// loadConfig reads .deltakit.yml from the working directory, falling back
// to appconfig.Default when absent, mirroring the teacher's
// findProjectRoot/.icebox.yml convention.
func loadConfig() *appconfig.Config {
	path := findConfigFile()
	if path == "" {
		return appconfig.Default()
	}
	cfg, err := appconfig.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
		return appconfig.Default()
	}
	return cfg
}

func findConfigFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ".deltakit.yml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func setupLogger(cfg *appconfig.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if cfg.Log.Quiet {
		return zerolog.Nop()
	}

	var writer = os.Stderr
	logger := zerolog.New(writer).With().Timestamp().Str("app", "deltakit").Logger()

	if cfg.Log.FilePath != "" {
		mgr := logging.NewManager(&cfg.Log)
		if w, err := mgr.GetWriter(); err == nil {
			logger = zerolog.New(w).With().Timestamp().Str("app", "deltakit").Logger()
		}
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err == nil {
		logger = logger.Level(level)
	}
	return logger
}
