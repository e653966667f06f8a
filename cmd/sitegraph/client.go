package sitegraph

import (
	"fmt"
	"log/slog"

	"github.com/soundprediction/sitegraph"
	"github.com/soundprediction/sitegraph/pkg/config"
	"github.com/soundprediction/sitegraph/pkg/logger"
	"github.com/soundprediction/sitegraph/pkg/refdata"
	"github.com/soundprediction/sitegraph/pkg/store"
	"github.com/soundprediction/sitegraph/pkg/telemetry"
)

// newLogger builds the colored slog logger from the configured level.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return logger.NewDefaultLogger(level)
}

// newClient wires the store, reference tables, and telemetry into a graph
// client. The returned client owns the store handle; Close releases it.
func newClient(cfg *config.Config, log *slog.Logger) (*sitegraph.Client, error) {
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", cfg.Database.Path, err)
	}

	tables, err := refdata.Load(cfg.RefData.OverridesPath)
	if err != nil {
		st.Close()
		return nil, err
	}

	opts := &sitegraph.Options{Tables: tables}
	if cfg.Telemetry.ParquetPath != "" {
		recorder, err := telemetry.NewRecorder(cfg.Telemetry.ParquetPath)
		if err != nil {
			log.Warn("Telemetry disabled", "error", err)
		} else {
			opts.Recorder = recorder
		}
	}

	client, err := sitegraph.NewClient(st, opts, log)
	if err != nil {
		st.Close()
		return nil, err
	}
	return client, nil
}
