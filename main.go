package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hazyhour/blazebot/cmd"
	"github.com/hazyhour/blazebot/internal/conf"
	"github.com/hazyhour/blazebot/internal/logging"
	"github.com/hazyhour/blazebot/internal/telemetry"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if settings.Debug {
		level = slog.LevelDebug
	}
	logging.Init(level)

	// Telemetry is opt-in; a failed init is logged but never fatal.
	if err := telemetry.Init(settings); err != nil {
		slog.Warn("telemetry initialization failed", "error", err)
	}
	defer telemetry.Flush()

	if err := cmd.RootCommand(settings).Execute(); err != nil {
		logging.Fatal("command failed", "error", err)
	}
}
