// Package output handles record serialization and progress logging.
package output

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Progress reports engine activity to stderr.
type Progress struct {
	logger zerolog.Logger
}

// NewProgress creates a Progress reporter. Set enabled=false for --quiet mode.
func NewProgress(enabled bool) *Progress {
	return NewVerboseProgress(enabled, false)
}

// NewVerboseProgress creates a Progress reporter with debug logging enabled.
func NewVerboseProgress(enabled, verbose bool) *Progress {
	return newProgress(os.Stderr, enabled, verbose)
}

func newProgress(w io.Writer, enabled, verbose bool) *Progress {
	level := zerolog.InfoLevel
	switch {
	case verbose: // verbose implies enabled
		level = zerolog.DebugLevel
	case !enabled:
		level = zerolog.Disabled
	}

	out := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.TimeOnly}
	return &Progress{
		logger: zerolog.New(out).Level(level).With().Timestamp().Logger(),
	}
}

// Log prints a progress message if enabled.
func (p *Progress) Log(format string, args ...interface{}) {
	p.logger.Info().Msgf(format, args...)
}

// Debug prints a debug message if verbose is enabled.
func (p *Progress) Debug(format string, args ...interface{}) {
	p.logger.Debug().Msgf(format, args...)
}

// Warn prints a warning if enabled.
func (p *Progress) Warn(format string, args ...interface{}) {
	p.logger.Warn().Msgf(format, args...)
}

// Logger exposes the underlying structured logger for components.
func (p *Progress) Logger() zerolog.Logger {
	return p.logger
}
