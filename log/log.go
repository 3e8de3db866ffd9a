// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is a thin structured-logging layer over log/slog with a
// compact terminal handler for interactive use.
package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

const errorKey = "err"

// Verbosity levels, most verbose first. Trace and Crit extend the
// standard slog range the same way geth-style loggers do.
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelCrit  = slog.Level(12)

	levelMaxVerbosity = LevelTrace
)

// LevelString returns the 4-letter tag used in log output.
func LevelString(l slog.Level) string {
	switch {
	case l <= LevelTrace:
		return "TRCE"
	case l <= LevelDebug:
		return "DBUG"
	case l <= LevelInfo:
		return "INFO"
	case l <= LevelWarn:
		return "WARN"
	case l <= LevelError:
		return "EROR"
	default:
		return "CRIT"
	}
}

// FromVerbosity maps the CLI verbosity number (0..5) to a level.
func FromVerbosity(v int) slog.Level {
	switch v {
	case 0:
		return LevelCrit
	case 1:
		return LevelError
	case 2:
		return LevelWarn
	case 3:
		return LevelInfo
	case 4:
		return LevelDebug
	default:
		return LevelTrace
	}
}

// Logger emits key/value structured records.
type Logger interface {
	// With returns a Logger whose records carry the given attributes.
	With(ctx ...any) Logger

	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)

	// Crit logs a critical record then exits the process.
	Crit(msg string, ctx ...any)
}

type logger struct {
	inner *slog.Logger
}

// New wraps an slog handler in a Logger.
func New(h slog.Handler) Logger {
	return &logger{slog.New(h)}
}

func (l *logger) write(level slog.Level, msg string, ctx []any) {
	if !l.inner.Enabled(context.Background(), level) {
		return
	}
	l.inner.Log(context.Background(), level, msg, ctx...)
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{l.inner.With(ctx...)}
}

func (l *logger) Trace(msg string, ctx ...any) { l.write(LevelTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...any) { l.write(LevelDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...any)  { l.write(LevelInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...any)  { l.write(LevelWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...any) { l.write(LevelError, msg, ctx) }

func (l *logger) Crit(msg string, ctx ...any) {
	l.write(LevelCrit, msg, ctx)
	os.Exit(1)
}

var root atomic.Pointer[logger]

func init() {
	root.Store(&logger{slog.New(DiscardHandler())})
}

// SetDefault installs the handler backing the package-level logger.
func SetDefault(h slog.Handler) {
	root.Store(&logger{slog.New(h)})
}

// Root returns the package-level logger.
func Root() Logger { return root.Load() }

// WithContext returns a child of the root logger carrying the given
// attributes. Packages typically hold one of these per subsystem.
func WithContext(ctx ...any) Logger { return root.Load().With(ctx...) }

func Trace(msg string, ctx ...any) { root.Load().Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { root.Load().Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { root.Load().Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { root.Load().Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { root.Load().Error(msg, ctx...) }
func Crit(msg string, ctx ...any)  { root.Load().Crit(msg, ctx...) }
