package main

import (
	"log/slog"

	"github.com/soundprediction/sitegraph/pkg/logger"
)

func main() {
	// Create a colored logger
	log := logger.NewDefaultLogger(slog.LevelDebug)

	log.Info("============================================")
	log.Info("    Sitegraph Colored Logger Demo")
	log.Info("============================================")

	log.Debug("Debug message - standard color")
	log.Info("Info message - standard color")
	log.Info("Persisting facilities to database - green!")
	log.Warn("Warning message - yellow!")
	log.Error("Error message - red!")

	log.Info("Database operations are highlighted in green:")
	log.Info("Persisting resolved facilities", "count", 42)
	log.Info("Facilities persisted", "duration", "1.2s")

	log.Info("Demo complete!")
}
