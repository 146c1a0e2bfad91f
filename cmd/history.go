package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pvshadow/config"
	"github.com/kilianp07/pvshadow/core/factory"
	"github.com/kilianp07/pvshadow/infra/store"
)

var historyFlags struct {
	db    string
	limit int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the shadow runs recorded by the sqlite sink",
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.StringVar(&historyFlags.db, "db", "", "sqlite database (defaults to the configured sqlite sink)")
	f.IntVar(&historyFlags.limit, "limit", 20, "maximum number of runs, 0 for all")
	rootCmd.AddCommand(historyCmd)
}

// sqlitePath returns the path of the first sqlite sink in cfg.
func sqlitePath(cfg *config.Config) (string, error) {
	for _, s := range cfg.Metrics.Sinks {
		if !strings.EqualFold(strings.TrimSpace(s.Type), "sqlite") {
			continue
		}
		var c store.Config
		if err := factory.Decode(s.Conf, &c); err != nil {
			return "", err
		}
		return c.Path, nil
	}
	return "", nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	path := historyFlags.db
	if path == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if path, err = sqlitePath(cfg); err != nil {
			return err
		}
	}
	if path == "" {
		return fmt.Errorf("no database: pass --db or configure a sqlite sink")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("database %s: %w", path, err)
	}
	s, err := store.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	records, err := s.List(cmd.Context(), historyFlags.limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RUN\tCOMPUTED\tSITE\tTILT\tSAMPLES\tSUN UP\tMEAN m²\tPEAK m²")
	for _, r := range records {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%g\t%d\t%d\t%.3f\t%.3f\n",
			r.RunID, r.ComputedAt.Format(time.RFC3339), r.Site, r.Summary.Tilt,
			r.Summary.Samples, r.Summary.SunUp, r.Summary.Mean, r.Summary.Peak)
	}
	return tw.Flush()
}
