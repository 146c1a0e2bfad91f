package metrics

import (
	"time"

	coremetrics "github.com/kilianp07/pvshadow/core/metrics"
	"github.com/kilianp07/pvshadow/core/model"
	"github.com/kilianp07/pvshadow/core/shadow"
)

func sampleEvent(tilt float64) coremetrics.ShadowRunEvent {
	start := time.Date(2019, time.June, 21, 10, 0, 0, 0, time.UTC)
	panel, _ := model.NewPanelGeometry(1, 1, 1, tilt)
	positions := []model.SolarPositionSample{
		{Timestamp: start, ApparentElevation: 45},
		{Timestamp: start.Add(time.Hour), ApparentElevation: 60},
		{Timestamp: start.Add(2 * time.Hour), ApparentElevation: -2},
	}
	series := shadow.ComputeSeries(positions, panel)
	return coremetrics.ShadowRunEvent{
		RunID:      "run-1",
		Site:       "Montpellier",
		Panel:      panel,
		Start:      start,
		End:        start.Add(2 * time.Hour),
		Step:       time.Hour,
		Summary:    shadow.Summarize(tilt, positions, series),
		Positions:  positions,
		Series:     series,
		ComputedAt: start,
		Duration:   3 * time.Millisecond,
	}
}
