package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Logger = NewLogger("info")

// NewLogger builds a text logger writing to stdout. Unknown levels fall back
// to info.
func NewLogger(level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	return l
}

// NewLoggerService replaces the package logger with one at the given level.
func NewLoggerService(level string) *logrus.Logger {
	Logger = NewLogger(level)
	return Logger
}
