// Package logger provides the package-level structured logger every
// component logs through, mirroring charmbracelet/log's singleton
// style: one *log.Logger configured once from the environment, with
// helpers to redirect it to a file for the daemon's non-interactive
// run.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Logger is the process-wide logger. Every internal package logs
// through this instance (or the Debugf/Infof/Warnf/Errorf helpers)
// rather than holding its own.
var Logger *log.Logger

func init() {
	Logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: envBool("WAYOUT_LOG_TIME", true),
		TimeFormat:      "15:04:05",
	})
	SetLevel(os.Getenv("WAYOUT_LOG"))
	if envBool("WAYOUT_LOG_STYLE", true) {
		Logger.SetStyles(log.DefaultStyles())
	}
}

func envBool(name string, def bool) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

// SetLevel sets the log level from a string (DEBUG/INFO/WARN/ERROR);
// unrecognized or empty values fall back to INFO.
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

// SetupFileLogging redirects Logger to $XDG_STATE_HOME/wayoutd/wayoutd.log
// (falling back to ~/.local/state/wayoutd), preserving the level and
// style already configured. The caller owns the returned file and
// should close it on shutdown.
func SetupFileLogging() (*os.File, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	logDir := filepath.Join(stateDir, "wayoutd")
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return nil, fmt.Errorf("logger: create log dir: %w", err)
	}
	logPath := filepath.Join(logDir, "wayoutd.log")

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("logger: open log file: %w", err)
	}

	level := Logger.GetLevel()
	Logger = log.NewWithOptions(f, log.Options{
		ReportTimestamp: envBool("WAYOUT_LOG_TIME", true),
		TimeFormat:      "15:04:05",
	})
	Logger.SetLevel(level)
	if envBool("WAYOUT_LOG_STYLE", true) {
		Logger.SetStyles(log.DefaultStyles())
	}
	Logger.Infof("=== session started %s (log: %s) ===", time.Now().Format(time.RFC3339), logPath)

	return f, nil
}

func Debugf(format string, args ...any) { Logger.Debugf(format, args...) }
func Infof(format string, args ...any) { Logger.Infof(format, args...) }
func Warnf(format string, args ...any) { Logger.Warnf(format, args...) }
func Errorf(format string, args ...any) { Logger.Errorf(format, args...) }

// Get returns the shared logger instance, satisfying code that wants
// the full charmbracelet/log API instead of the narrow helpers above.
func Get() *log.Logger { return Logger }
