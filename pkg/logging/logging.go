// Package logging wraps logrus as a package-level instance, level set
// once from the environment, call sites using the
// Debugf/Infof/Warnf/Errorf shape.
package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the package-wide logger every component logs through.
var Logger = logrus.New()

const levelEnvVar = "JSVM_LOGLEVEL"

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	Configure(os.Getenv(levelEnvVar))
}

// Configure sets the logger's level from a level name
// (error|warn|info|debug|trace), defaulting to info on an empty or
// unrecognised value.
func Configure(levelName string) {
	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(levelName)))
	if err != nil {
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)
}

// Debugf logs at debug level.
func Debugf(format string, args ...interface{}) { Logger.Debugf(format, args...) }

// Infof logs at info level.
func Infof(format string, args ...interface{}) { Logger.Infof(format, args...) }

// Warnf logs at warn level.
func Warnf(format string, args ...interface{}) { Logger.Warnf(format, args...) }

// Errorf logs at error level.
func Errorf(format string, args ...interface{}) { Logger.Errorf(format, args...) }

// IsTraceEnabled reports whether trace-level logging is active, used to
// avoid building expensive log payloads when they'd be discarded anyway.
func IsTraceEnabled() bool { return Logger.IsLevelEnabled(logrus.TraceLevel) }
