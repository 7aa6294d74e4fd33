// Package logger builds slog loggers from options or environment-driven
// configuration.
//
//	log := logger.New(
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithFormat(logger.FormatText),
//	)
//
// Or from the environment (LOG_LEVEL, LOG_FORMAT):
//
//	var cfg logger.Config
//	config.MustLoad(&cfg)
//	log := logger.NewFromConfig(cfg)
package logger
