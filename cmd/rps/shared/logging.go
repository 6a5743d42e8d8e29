package shared

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// SetupLogger creates the root logger writing to w at level
func SetupLogger(level string, w io.Writer) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	}), nil
}

// SetupFileLogger logs to path so the terminal UI is left alone. The
// returned func closes the file.
func SetupFileLogger(level, path string) (*log.Logger, func(), error) {
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger, err := SetupLogger(level, logFile)
	if err != nil {
		_ = logFile.Close()
		return nil, nil, err
	}
	return logger, func() { _ = logFile.Close() }, nil
}
