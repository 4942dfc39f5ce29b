package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrNoObservations is returned when the source holds no data for the window.
var ErrNoObservations = errors.New("no observations for station")

// Service runs the analysis sequence: fetch, compute, narrate, respond.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	source     ObservationSource
	narrator   Narrator
	stationID  string
	thresholds Thresholds
	logger     *slog.Logger
}

// NewService creates a new Service.
func NewService(source ObservationSource, narrator Narrator, stationID string, thresholds Thresholds, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		source:     source,
		narrator:   narrator,
		stationID:  stationID,
		thresholds: thresholds,
		logger:     logger,
	}
}

// Analyze fetches the last days of observations, computes statistics and asks
// the narrator for an analysis. Narrator failures never fail the request; the
// deterministic fallback narrative is substituted instead.
func (s *Service) Analyze(ctx context.Context, days int, customQuestion string) (*Result, error) {
	log := s.logger.With("days", days)
	log.Debug("fetching recent observations")

	observations, err := s.source.FetchRecent(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("fetch observations: %w", err)
	}
	if len(observations) == 0 {
		return nil, ErrNoObservations
	}

	stats, err := Compute(observations, s.thresholds)
	if err != nil {
		return nil, err
	}

	prompt := BuildPrompt(s.stationID, days, customQuestion, stats, observations)

	narrative, err := s.narrator.Generate(ctx, prompt)
	if err != nil {
		log.Warn("narrator failed, using fallback narrative", "error", err)
		narrative = FallbackNarrative(stats)
	}

	log.Debug("analysis complete",
		"total_days", stats.TotalDays,
		"anomaly", stats.AnomalyDetected,
		"spike", stats.SignificantSpike,
	)

	return &Result{
		StationID:    s.stationID,
		DaysAnalyzed: days,
		Statistics:   stats,
		LLMAnalysis:  narrative,
		Timestamp:    time.Now().UTC(),
		ModelUsed:    s.narrator.Model(),
	}, nil
}
