// Package logger defines the leveled, structured logging interface consumed by
// the connection package, along with adapters for log/slog and zerolog.
//
// Arguments follow the log/slog convention of alternating keys and values:
//
//	log.Debug("sending request", "endpoint", "sendMessage", "attempt", 1)
package logger

import (
	"io"
	"log/slog"
)

// Logger is the observability capability a Connection emits events through.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

// SlogHandler adapts a log/slog handler to Logger.
type SlogHandler struct {
	logger *slog.Logger
}

// New returns a Logger writing through h.
func New(h slog.Handler) *SlogHandler {
	return &SlogHandler{logger: slog.New(h)}
}

func (handler *SlogHandler) Error(msg string, args ...any) {
	handler.logger.Error(msg, args...)
}

func (handler *SlogHandler) Warn(msg string, args ...any) {
	handler.logger.Warn(msg, args...)
}

func (handler *SlogHandler) Info(msg string, args ...any) {
	handler.logger.Info(msg, args...)
}

func (handler *SlogHandler) Debug(msg string, args ...any) {
	handler.logger.Debug(msg, args...)
}

// Nop returns a Logger that discards every event.
func Nop() Logger {
	return New(slog.NewTextHandler(io.Discard, nil))
}
