package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// RotatingFile returns a writer appending to path and rotating it once it
// grows past maxSizeMB. Zero backups or age keeps every rotated file.
func RotatingFile(path string, maxSizeMB, maxBackups, maxAgeDays int) (io.WriteCloser, error) {
	if path == "" {
		return nil, fmt.Errorf("log file path required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("log dir: %w", err)
		}
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}, nil
}
