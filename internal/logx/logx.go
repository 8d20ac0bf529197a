// Package logx wraps charmbracelet/log into the teacher's package-level
// singleton logger shape, adapted to read its level from internal/config
// instead of a global service config.
package logx

import (
	"os"
	"time"

	"github.com/charmbracelet/log"

	"riichi-server/internal/config"
)

var logger *log.Logger

// Init builds the process-wide logger. appName becomes the log prefix.
func Init(appName string, cfg config.Log) {
	logger = log.New(os.Stderr)
	logger.SetPrefix(appName)
	logger.SetReportTimestamp(true)
	logger.SetTimeFormat(time.DateTime)
	logger.SetLevel(parseLevel(cfg.Level))
}

func parseLevel(level string) log.Level {
	switch level {
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

func ensure() {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
}

func Fatal(format string, args ...any) {
	ensure()
	if len(args) == 0 {
		logger.Fatal(format)
	} else {
		logger.Fatal(format, args...)
	}
}

func Info(format string, args ...any) {
	ensure()
	if len(args) == 0 {
		logger.Info(format)
	} else {
		logger.Info(format, args...)
	}
}

func Warn(format string, args ...any) {
	ensure()
	if len(args) == 0 {
		logger.Warn(format)
	} else {
		logger.Warn(format, args...)
	}
}

func Error(format string, args ...any) {
	ensure()
	if len(args) == 0 {
		logger.Error(format)
	} else {
		logger.Error(format, args...)
	}
}

func Debug(format string, args ...any) {
	ensure()
	if len(args) == 0 {
		logger.Debug(format)
	} else {
		logger.Debug(format, args...)
	}
}
