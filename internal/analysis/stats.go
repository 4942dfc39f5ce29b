package analysis

import (
	"errors"
	"math"
)

// ErrInsufficientData is returned when fewer than two observations carry a temperature.
var ErrInsufficientData = errors.New("insufficient data for analysis")

// Compute derives a Statistics record from observations ordered newest-first.
// Only observations with a temperature participate; flags are evaluated on the
// unrounded values before the record is rounded for presentation.
func Compute(observations []Observation, t Thresholds) (Statistics, error) {
	temps := make([]float64, 0, len(observations))
	for _, o := range observations {
		if o.TempC != nil {
			temps = append(temps, *o.TempC)
		}
	}
	if len(temps) < 2 {
		return Statistics{}, ErrInsufficientData
	}

	n := float64(len(temps))
	mean := avg(temps)

	// Population variance: divide by N, matching the upstream GSOD analysis.
	var variance float64
	for _, v := range temps {
		variance += (v - mean) * (v - mean)
	}
	variance /= n
	std := math.Sqrt(variance)

	current := temps[0]
	zScore := 0.0
	if std > 0 {
		zScore = (current - mean) / std
	}

	dayChange := temps[0] - temps[1]

	weekChange := 0.0
	if len(temps) >= 14 {
		weekChange = avg(temps[:7]) - avg(temps[7:14])
	}

	minTemp, maxTemp := temps[0], temps[0]
	for _, v := range temps[1:] {
		if v < minTemp {
			minTemp = v
		}
		if v > maxTemp {
			maxTemp = v
		}
	}

	return Statistics{
		CurrentTemp:        round1(current),
		MeanTemp:           round1(mean),
		StdDev:             round1(std),
		MinTemp:            round1(minTemp),
		MaxTemp:            round1(maxTemp),
		ZScore:             round2(zScore),
		DayOverDayChange:   round1(dayChange),
		WeekOverWeekChange: round1(weekChange),
		AnomalyDetected:    math.Abs(zScore) > t.AnomalyZScore,
		SignificantSpike:   math.Abs(dayChange) > t.SpikeDeltaC,
		TotalDays:          len(temps),
	}, nil
}

func avg(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
