package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pvshadow/app"
	"github.com/kilianp07/pvshadow/core/metrics"
	"github.com/kilianp07/pvshadow/infra/logger"
	"github.com/kilianp07/pvshadow/pkg/chart"
	"github.com/kilianp07/pvshadow/pkg/export"
)

var sunpathFlags struct {
	year int
	out  string
	csv  string
}

var sunpathCmd = &cobra.Command{
	Use:   "sunpath",
	Short: "Draw the yearly sun path diagram of the configured site",
	RunE:  runSunPath,
}

func init() {
	f := sunpathCmd.Flags()
	f.IntVar(&sunpathFlags.year, "year", 0, "year to sample (defaults to the period start year)")
	f.StringVar(&sunpathFlags.out, "out", "sunpath.png", "chart path, format from the extension")
	f.StringVar(&sunpathFlags.csv, "csv", "", "optional CSV dump of the daylight positions")
	rootCmd.AddCommand(sunpathCmd)
}

func runSunPath(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	year := sunpathFlags.year
	if year == 0 {
		site, err := cfg.Site.Model()
		if err != nil {
			return err
		}
		start, _, err := cfg.Period.Bounds(site.Zone())
		if err != nil {
			return err
		}
		year = start.Year()
	}

	svc, err := app.New(cfg, app.WithSink(metrics.NopSink{}))
	if err != nil {
		return err
	}
	sp, err := svc.SunPath(ctx, year)
	if err != nil {
		return err
	}
	p, err := chart.SunPathChart(fmt.Sprintf("%s, %d", sp.Site.Name, sp.Year), sp.Samples, sp.Days)
	if err != nil {
		return err
	}
	if err := chart.Save(p, sunpathFlags.out); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	log := logger.New("cli")
	log.Infof("wrote %s", sunpathFlags.out)

	if sunpathFlags.csv != "" {
		var buf bytes.Buffer
		if err := export.WritePositionsCSV(&buf, sp.Samples); err != nil {
			return err
		}
		if err := os.WriteFile(sunpathFlags.csv, buf.Bytes(), 0o644); err != nil {
			return err
		}
		log.Infof("wrote %s", sunpathFlags.csv)
	}
	return nil
}
