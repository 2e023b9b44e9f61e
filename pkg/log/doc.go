// Package log provides flake's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. Internally it is backed by the standard
// library's slog via a bridge handler that feeds a formatter/outputs
// pipeline, so output stays consistent across the codebase while remaining
// compatible with the slog ecosystem.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("server"))
//	l.Info("listening", log.Str("addr", ":8080"))
//
// # Configuration
//
// ApplyConfig builds a logger from a declarative Config (level + text/json
// format), typically populated from FLAKE_LOG_LEVEL and FLAKE_LOG_FORMAT.
//
// # Interop
//
// RedirectStdLog routes the standard library's global logger (used by
// Pebble, among others) through a Logger instance.
package log
