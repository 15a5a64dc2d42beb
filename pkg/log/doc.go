// Package log provides duraq's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. Entries flow through a Formatter
// (text or JSON) to one or more Outputs.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("server"))
//	l.Info("server started", log.Int("port", 8080))
//
// # Configuration
//
// Use ApplyConfig to build a logger from a declarative Config, typically
// sourced from DURAQ_LOG_LEVEL / DURAQ_LOG_FORMAT.
//
// # Interop
//
// RedirectStdLog routes standard library log output (used by Pebble) through
// the facade so the whole process emits one consistent stream.
package log
