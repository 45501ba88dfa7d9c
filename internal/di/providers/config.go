// Package providers contains dependency injection providers for GlazePal.
package providers

import (
	"time"

	"github.com/samber/do/v2"

	"github.com/glazepal/glazepal/internal/config"
	"github.com/glazepal/glazepal/internal/logger"
)

// shutdownTimeout bounds how long a handle waits for its component to drain.
const shutdownTimeout = 5 * time.Second

// ProvideConfig provides the configuration loaded from the registered flags.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	flags := do.MustInvoke[config.Flags](i)
	return config.Load(flags)
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Debug("configuration loaded",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Store.DataPath,
	)

	return log, nil
}
