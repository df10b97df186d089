// Package logging builds the logrus loggers shared by the docdiff front
// ends. Output goes to stderr by default because stdout carries the MCP
// protocol.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultLevel is used when no level, or an unknown one, is configured.
const DefaultLevel = logrus.InfoLevel

// New returns a text logger writing to out at the named level. A nil out
// selects stderr. Unknown level names fall back to DefaultLevel.
func New(level string, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		DisableColors:   true,
	})
	log.SetLevel(ParseLevel(level))
	return log
}

// ParseLevel maps a level name to a logrus level, accepting "warning" and
// "warn" alike.
func ParseLevel(level string) logrus.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return DefaultLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return DefaultLevel
	}
	return lvl
}

// Discard returns a logger that drops everything. Tests and library callers
// without a logger use it.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return log
}
