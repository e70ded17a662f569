// Package logger provides the process-wide structured logger, built on
// charmbracelet/log. There is no TUI or remote peer to forward log entries
// to in this project, so logging stays local: level control via LOG_LEVEL,
// component sub-loggers, and optional file logging.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

var (
	Logger        *log.Logger
	currentWriter io.Writer = os.Stderr
)

func init() {
	Logger = log.New(os.Stderr)
	SetLevel(os.Getenv("LOG_LEVEL"))
}

// SetLevel sets the log level from a string ("DEBUG", "INFO", "WARN",
// "ERROR", "FATAL"); anything else (including empty) defaults to INFO.
func SetLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		Logger.SetLevel(log.DebugLevel)
	case "WARN", "WARNING":
		Logger.SetLevel(log.WarnLevel)
	case "ERROR":
		Logger.SetLevel(log.ErrorLevel)
	case "FATAL":
		Logger.SetLevel(log.FatalLevel)
	default:
		Logger.SetLevel(log.InfoLevel)
	}
}

// SetOutput redirects the logger output to a different writer.
func SetOutput(w io.Writer) {
	currentWriter = w
	level := Logger.GetLevel()
	Logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	Logger.SetLevel(level)
}

// With returns a sub-logger scoped to a named component, e.g.
// logger.With("component", "engine").
func With(keyvals ...interface{}) *log.Logger {
	return Logger.With(keyvals...)
}

// Convenience functions mirroring *log.Logger's own, so callers that don't
// need a component sub-logger can use the package directly.
func Info(msg interface{}, keyvals ...interface{})  { Logger.Info(msg, keyvals...) }
func Debug(msg interface{}, keyvals ...interface{}) { Logger.Debug(msg, keyvals...) }
func Warn(msg interface{}, keyvals ...interface{})  { Logger.Warn(msg, keyvals...) }
func Error(msg interface{}, keyvals ...interface{}) { Logger.Error(msg, keyvals...) }
func Fatal(msg interface{}, keyvals ...interface{}) { Logger.Fatal(msg, keyvals...) }

func Infof(format string, args ...interface{})  { Logger.Infof(format, args...) }
func Debugf(format string, args ...interface{}) { Logger.Debugf(format, args...) }
func Warnf(format string, args ...interface{})  { Logger.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { Logger.Errorf(format, args...) }
func Fatalf(format string, args ...interface{}) { Logger.Fatalf(format, args...) }

// SetupFileLogging points both this package's logger and charmbracelet/log's
// own default logger at a file under the user's (or, running as root,
// system) log directory.
func SetupFileLogging(prefix string) (*os.File, error) {
	var logDir, logPath string

	if os.Geteuid() == 0 {
		logDir = "/var/log/mousemapper"
		logPath = filepath.Join(logDir, "mousemapper.log")
		if err := os.MkdirAll(logDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create system log directory: %w", err)
		}
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		logDir = filepath.Join(homeDir, ".local", "share", "mousemapper")
		if err := os.MkdirAll(logDir, 0750); err != nil {
			logDir = filepath.Join(homeDir, ".mousemapper")
			if err := os.MkdirAll(logDir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		logPath = filepath.Join(logDir, "mousemapper.log")
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	if _, err := fmt.Fprintf(logFile, "\n%s %s: === new session ===\n", time.Now().Format("15:04:05"), prefix); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write to log file: %v\n", err)
	}

	fileLogger := log.NewWithOptions(logFile, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          prefix,
	})
	log.SetDefault(fileLogger)

	savedLevel := Logger.GetLevel()
	currentWriter = logFile
	Logger = log.NewWithOptions(logFile, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          prefix,
	})
	Logger.SetLevel(savedLevel)

	return logFile, nil
}

// Get returns the logger instance.
func Get() *log.Logger { return Logger }
