package observations

import (
	"context"
	"fmt"

	"github.com/stationlab/weather-agent/internal/analysis"
)

// Connectivity states reported by Probe.
const (
	StatusConnected = "connected"
	StatusNoData    = "no data"
)

// Probe performs a minimal one-day fetch against the source and reports
// connectivity: StatusConnected, StatusNoData, or "error: ..." carrying the
// failure message.
func Probe(ctx context.Context, source analysis.ObservationSource) string {
	observations, err := source.FetchRecent(ctx, 1)
	switch {
	case err != nil:
		return fmt.Sprintf("error: %s", err)
	case len(observations) == 0:
		return StatusNoData
	default:
		return StatusConnected
	}
}
