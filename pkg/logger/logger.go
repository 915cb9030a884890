// Package logger provides component-scoped structured logging on top of logrus.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus entry pre-tagged with a component name.
// All log lines carry the "component" field so output from multiple
// subsystems can be filtered in aggregate.
type Logger struct {
	*logrus.Entry

	component string
}

// New creates a logger for the given component writing to out at the given level.
func New(component string, level logrus.Level, out io.Writer) *Logger {
	base := logrus.New()
	base.SetOutput(out)
	base.SetLevel(level)
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &Logger{
		Entry:     base.WithField("component", component),
		component: component,
	}
}

// NewDefault creates a logger for the given component with the level taken
// from the LOG_LEVEL environment variable (default "info"), writing to stderr.
func NewDefault(component string) *Logger {
	return New(component, levelFromEnv(), os.Stderr)
}

// Component returns the component name this logger is tagged with.
func (l *Logger) Component() string {
	return l.component
}

// LogWithFields returns an entry with additional structured fields attached.
func (l *Logger) LogWithFields(fields map[string]interface{}) *logrus.Entry {
	return l.Entry.WithFields(logrus.Fields(fields))
}

func levelFromEnv() logrus.Level {
	raw := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if raw == "" {
		return logrus.InfoLevel
	}
	level, err := logrus.ParseLevel(raw)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
