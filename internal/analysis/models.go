package analysis

import (
	"context"
	"time"
)

// Observation is a single daily reading for the station.
// Optional fields are nil when the source reported no value.
// A nil TempC excludes the record from statistics but not from the list.
type Observation struct {
	Date         string   `json:"date"` // YYYY-MM-DD
	TempC        *float64 `json:"temp_c"`
	PrecipMM     *float64 `json:"precip_mm"`
	WindSpeedKMH *float64 `json:"wind_speed_kmh"`
}

// Statistics summarizes the temperature series of one analysis window.
// JSON keys are part of the public HTTP contract.
type Statistics struct {
	CurrentTemp        float64 `json:"current_temp"`
	MeanTemp           float64 `json:"mean_temp"`
	StdDev             float64 `json:"std_dev"`
	MinTemp            float64 `json:"min_temp"`
	MaxTemp            float64 `json:"max_temp"`
	ZScore             float64 `json:"z_score"`
	DayOverDayChange   float64 `json:"day_over_day_change"`
	WeekOverWeekChange float64 `json:"week_over_week_change"`
	AnomalyDetected    bool    `json:"anomaly_detected"`
	SignificantSpike   bool    `json:"significant_spike"`
	TotalDays          int     `json:"total_days"`
}

// Result is the complete analysis response for one request.
// It is request-scoped and never persisted.
type Result struct {
	StationID    string     `json:"station_id"`
	DaysAnalyzed int        `json:"days_analyzed"`
	Statistics   Statistics `json:"statistics"`
	LLMAnalysis  string     `json:"llm_analysis"`
	Timestamp    time.Time  `json:"timestamp"`
	ModelUsed    string     `json:"model_used"`
}

// Thresholds are the policy values deciding when statistics get flagged.
type Thresholds struct {
	// AnomalyZScore flags the window when |z-score| exceeds it.
	AnomalyZScore float64
	// SpikeDeltaC flags the window when |day-over-day change| exceeds it.
	SpikeDeltaC float64
}

// DefaultThresholds returns the standard flagging policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AnomalyZScore: 2.0,
		SpikeDeltaC:   5.0,
	}
}

// ObservationSource supplies recent daily observations for the station,
// ordered newest-first. An empty slice means no data, not an error.
type ObservationSource interface {
	FetchRecent(ctx context.Context, days int) ([]Observation, error)
}

// Narrator turns an analysis prompt into natural-language text.
type Narrator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}
