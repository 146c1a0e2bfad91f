package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pvshadow/config"
	coremon "github.com/kilianp07/pvshadow/core/monitoring"
	"github.com/kilianp07/pvshadow/infra/logger"
	"github.com/kilianp07/pvshadow/infra/monitoring"
)

const defaultConfigPath = "config.yaml"

var (
	cfgPath  string
	logLevel string
	// logFile is the rotating log writer opened by loadConfig, if any.
	logFile io.Closer
)

var rootCmd = &cobra.Command{
	Use:          "pvshadow",
	Short:        "Shadow area of tilted PV panels over a solar day",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultConfigPath, "configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level")
}

// Execute runs the CLI, flushes pending error reports and closes the log file.
func Execute() error {
	err := rootCmd.Execute()
	coremon.Flush(2 * time.Second)
	return errors.Join(err, closeLogFile())
}

// closeLogFile restores stderr logging and closes the rotating log file.
func closeLogFile() error {
	if logFile == nil {
		return nil
	}
	logger.SetOutput(os.Stderr)
	err := logFile.Close()
	logFile = nil
	if err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

// loadConfig reads the configuration and sets up logging. A missing default
// file falls back to the built-in configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := cfgPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := logger.SetFormat(cfg.Logging.Format); err != nil {
		return nil, err
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	if lc := cfg.Logging; lc.File != "" {
		w, err := logger.RotatingFile(lc.File, lc.MaxSizeMB, lc.MaxBackups, lc.MaxAgeDays)
		if err != nil {
			return nil, err
		}
		if err := closeLogFile(); err != nil {
			return nil, err
		}
		logger.SetOutput(w)
		logFile = w
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)
	return cfg, nil
}
