// Package logging defines the logger used across the facades and the
// container, with a noop default, a standard library adapter and a zerolog
// backed implementation configured from the LOGGING config section.
package logging

import (
	"log"

	"github.com/rs/zerolog"
)

// Logger defines the interface for logging.
type Logger interface {
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
}

var (
	_ Logger = (*Noop)(nil)
	_ Logger = (*StandardLogger)(nil)
	_ Logger = (*Zerolog)(nil)
)

// Noop discards everything. It is the default logger.
type Noop struct{}

// Info implements the Logger interface
func (n Noop) Info(...interface{}) {}

// Infof implements the Logger interface.
func (n Noop) Infof(string, ...interface{}) {}

// Error implements the Logger interface.
func (n Noop) Error(...interface{}) {}

// Errorf implements the Logger interface.
func (n Noop) Errorf(string, ...interface{}) {}

// StandardLogger implements the Logger interface using the standard library logger.
type StandardLogger struct{}

// Info implements the Logger interface
func (d StandardLogger) Info(args ...interface{}) {
	log.Println(args...)
}

// Infof implements the Logger interface.
func (d StandardLogger) Infof(format string, args ...interface{}) {
	log.Printf(format, args...)
}

// Error implements the Logger interface.
func (d StandardLogger) Error(args ...interface{}) {
	d.Info(args...)
}

// Errorf implements the Logger interface.
func (d StandardLogger) Errorf(format string, args ...interface{}) {
	d.Infof(format, args...)
}

// Zerolog implements the Logger interface on top of a zerolog.Logger.
type Zerolog struct {
	logger zerolog.Logger
}

// NewZerolog wraps l.
func NewZerolog(l zerolog.Logger) Zerolog {
	return Zerolog{logger: l}
}

// Zerolog returns the wrapped logger for structured use.
func (z Zerolog) Zerolog() zerolog.Logger {
	return z.logger
}

// Info implements the Logger interface
func (z Zerolog) Info(args ...interface{}) {
	z.logger.Info().Msg(sprint(args))
}

// Infof implements the Logger interface.
func (z Zerolog) Infof(format string, args ...interface{}) {
	z.logger.Info().Msgf(format, args...)
}

// Error implements the Logger interface.
func (z Zerolog) Error(args ...interface{}) {
	z.logger.Error().Msg(sprint(args))
}

// Errorf implements the Logger interface.
func (z Zerolog) Errorf(format string, args ...interface{}) {
	z.logger.Error().Msgf(format, args...)
}
