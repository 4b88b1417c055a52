package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	logDirName  = "bws-ssh-agent"
	logFileName = "agent.log"
	logFileMode = 0o600
	logDirMode  = 0o700
)

// Setup builds the process logger. Foreground runs log to stdout;
// supervisor-spawned children append to the state-dir log file so a
// detached daemon still leaves a trail.
func Setup(level string, foreground bool) (*slog.Logger, error) {
	var out io.Writer = os.Stdout
	if !foreground {
		file, err := openLogFile()
		if err != nil {
			return nil, err
		}
		out = file
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler), nil
}

// FilePath returns where background runs write their log.
func FilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "state", logDirName, "logs", logFileName), nil
}

func openLogFile() (*os.File, error) {
	path, err := FilePath()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), logDirMode); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, logFileMode)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
