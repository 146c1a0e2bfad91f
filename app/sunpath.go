package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/pvshadow/core/model"
	"github.com/kilianp07/pvshadow/core/solarpos"
	"github.com/kilianp07/pvshadow/pkg/chart"
)

// Sampling of the sun path diagram.
const (
	YearStep = time.Hour
	DayStep  = 5 * time.Minute
)

// SunPath holds the daylight positions of a year and of the equinox and
// solstice days.
type SunPath struct {
	Site    model.Site
	Year    int
	Samples []model.SolarPositionSample
	Days    []chart.Day
}

// SunPath samples the sun hourly over year, plus the 21st of March, June and
// December every five minutes. Night samples are removed.
func (s *Service) SunPath(ctx context.Context, year int) (*SunPath, error) {
	site, err := s.cfg.Site.Model()
	if err != nil {
		return nil, fmt.Errorf("site: %w", err)
	}
	loc := site.Zone()
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	times, err := solarpos.Range(start, start.AddDate(1, 0, 0), YearStep)
	if err != nil {
		return nil, err
	}
	all, err := s.provider.Positions(ctx, site, times)
	if err != nil {
		return nil, err
	}
	out := &SunPath{Site: site, Year: year, Samples: solarpos.Daylight(all)}

	for _, month := range []time.Month{time.March, time.June, time.December} {
		day := time.Date(year, month, 21, 0, 0, 0, 0, loc)
		times, err := solarpos.Range(day, day.Add(24*time.Hour), DayStep)
		if err != nil {
			return nil, err
		}
		pos, err := s.provider.Positions(ctx, site, times)
		if err != nil {
			return nil, err
		}
		out.Days = append(out.Days, chart.Day{Label: day.Format(time.DateOnly), Positions: solarpos.Daylight(pos)})
	}
	s.log.Infow("sun path computed", map[string]any{"site": site.Name, "year": year, "daylight_samples": len(out.Samples)})
	return out, nil
}
