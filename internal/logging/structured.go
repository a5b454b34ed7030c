// Package logging provides structured JSON logging for consensus components.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

var std = newBase(os.Stderr)

func newBase(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(ParseLevel(os.Getenv("LOG_LEVEL")))
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "ts",
			logrus.FieldKeyMsg:  "event",
		},
	})
	return l
}

// ParseLevel maps a LOG_LEVEL value to a logrus level.
// Defaults to warn when empty or unrecognised.
func ParseLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.WarnLevel
	}
}

// SetLevel changes the level of the shared base logger.
func SetLevel(level logrus.Level) {
	std.SetLevel(level)
}

// Logger provides structured logging
type Logger struct {
	base      *logrus.Logger
	component string
	run       string
}

// New creates a new logger for a component
func New(component string) *Logger {
	return NewWithBase(component, std)
}

// NewWithBase creates a component logger on top of a specific logrus logger.
func NewWithBase(component string, base *logrus.Logger) *Logger {
	return &Logger{base: base, component: component}
}

// WithRun sets the fan-out run context
func (l *Logger) WithRun(run string) *Logger {
	return &Logger{
		base:      l.base,
		component: l.component,
		run:       run,
	}
}

func (l *Logger) entry(extra map[string]any, err error) *logrus.Entry {
	e := l.base.WithField("component", l.component)
	if l.run != "" {
		e = e.WithField("run", l.run)
	}
	if len(extra) > 0 {
		e = e.WithFields(logrus.Fields(extra))
	}
	if err != nil {
		e = e.WithError(err)
	}
	return e
}

// Debug logs a debug event
func (l *Logger) Debug(event string, extra map[string]any) {
	l.entry(extra, nil).Debug(event)
}

// Info logs an info event
func (l *Logger) Info(event string, extra map[string]any) {
	l.entry(extra, nil).Info(event)
}

// Warn logs a warning event
func (l *Logger) Warn(event string, extra map[string]any, err error) {
	l.entry(extra, err).Warn(event)
}

// Error logs an error event
func (l *Logger) Error(event string, extra map[string]any, err error) {
	l.entry(extra, err).Error(event)
}

// TimedEvent logs an event with duration
func (l *Logger) TimedEvent(event string, start time.Time, extra map[string]any) {
	l.entry(extra, nil).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Info(event)
}
