package logging

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New builds the process logger. Level comes from LOG_LEVEL (debug, info,
// warn, error), defaulting to info.
func New(prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          prefix,
	})
	logger.SetLevel(levelFromEnv())
	return logger
}

func levelFromEnv() log.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
