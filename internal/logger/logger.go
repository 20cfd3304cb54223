// Package logger provides the structured logger used across the pipeline.
package logger

import (
	"io"

	"github.com/sirupsen/logrus"

	"sip-creator/internal/config"
)

// Logger wraps logrus.Logger with pipeline context helpers
type Logger struct {
	*logrus.Logger
}

// NewLogger creates a new structured logger instance
func NewLogger(cfg config.LoggingConfig) *Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}

	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return &Logger{Logger: log}
}

// Discard returns a logger that writes nothing.
func Discard() *Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return &Logger{Logger: log}
}

// WithRecord adds record context to log entries
func (l *Logger) WithRecord(id string) *logrus.Entry {
	return l.WithField("record_id", id)
}

// WithRun adds bulk run context to log entries
func (l *Logger) WithRun(runID string) *logrus.Entry {
	return l.WithField("run_id", runID)
}

// WithMapping adds mapping context to log entries
func (l *Logger) WithMapping(prefix string) *logrus.Entry {
	return l.WithField("mapping", prefix)
}
