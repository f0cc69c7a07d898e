// Package logging provides structured logging configuration for waytrace.
//
// This package wraps log/slog to provide consistent logging across all
// waytrace components. It supports configurable log levels and output
// formats.
//
// Create a logger with the desired configuration:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Warn("resolved object via graveyard", "class", "wl_buffer", "instance", 5)
//
// Components accept a *slog.Logger in their constructor. If no logger is
// provided, use logging.Nop() for a no-op logger.
package logging
