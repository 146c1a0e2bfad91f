package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pvshadow/app"
	"github.com/kilianp07/pvshadow/config"
	coremon "github.com/kilianp07/pvshadow/core/monitoring"
	"github.com/kilianp07/pvshadow/infra/logger"
	"github.com/kilianp07/pvshadow/pkg/export"
)

var shadowFlags struct {
	tilts   []float64
	date    string
	end     string
	step    float64
	out     string
	workers int
}

var shadowCmd = &cobra.Command{
	Use:   "shadow",
	Short: "Compute the shadow area of each tilt over the configured period",
	RunE:  runShadow,
}

func init() {
	f := shadowCmd.Flags()
	f.Float64SliceVar(&shadowFlags.tilts, "tilt", nil, "tilt angle in degrees, repeatable")
	f.StringVar(&shadowFlags.date, "date", "", "period start (YYYY-MM-DD or RFC 3339)")
	f.StringVar(&shadowFlags.end, "end", "", "period end, inclusive")
	f.Float64Var(&shadowFlags.step, "step", 0, "sampling step in minutes")
	f.StringVar(&shadowFlags.out, "out", "", "output directory")
	f.IntVar(&shadowFlags.workers, "workers", 0, "engine workers")
	rootCmd.AddCommand(shadowCmd)
}

// applyShadowFlags overrides cfg with the flags set on the command line.
func applyShadowFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("tilt") {
		cfg.Tilts = shadowFlags.tilts
	}
	if flags.Changed("date") {
		cfg.Period.Start = shadowFlags.date
		if !flags.Changed("end") {
			cfg.Period.End = ""
		}
	}
	if flags.Changed("end") {
		cfg.Period.End = shadowFlags.end
	}
	if flags.Changed("step") {
		cfg.Period.StepMinutes = shadowFlags.step
	}
	if flags.Changed("out") {
		cfg.Output.Dir = shadowFlags.out
	}
	if flags.Changed("workers") {
		cfg.Engine.Workers = shadowFlags.workers
	}
	cfg.SetDefaults()
	return cfg.Validate()
}

func runShadow(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyShadowFlags(cmd, cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	log := logger.New("cli")
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Errorf("service close: %v", err)
		}
	}()

	report, err := svc.Run(ctx)
	if err != nil {
		coremon.CaptureException(err, map[string]string{"command": "shadow", "site": cfg.Site.Name})
		return err
	}
	for _, line := range export.AverageLines(report.Summaries()) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return err
		}
	}
	paths, err := app.WriteOutputs(report, cfg.Output)
	if err != nil {
		return err
	}
	for _, p := range paths {
		log.Infof("wrote %s", p)
	}
	return nil
}
