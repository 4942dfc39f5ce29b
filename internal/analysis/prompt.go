package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stationlab/weather-agent/internal/common"
)

// promptPayloadLimit caps how much of the raw observation JSON is embedded in prompts.
const promptPayloadLimit = 500

const customQuestionTemplate = `You are a professional weather analyst. Answer the following question based on the weather data and statistics:

QUESTION: %s

STATION: %s
TIME PERIOD: Last %d days

CALCULATED STATISTICS:
%s

RECENT DAILY DATA:
%s...

Provide a clear, concise answer (3-4 sentences) with specific numbers from the data.`

const defaultAnalysisTemplate = `You are a professional weather analyst. Analyze the following weather data and statistics:

STATION: %s
TIME PERIOD: Last %d days

CALCULATED STATISTICS:
%s

RECENT DAILY DATA:
%s...

Provide a concise professional weather analysis covering:
1. Current temperature conditions and comparison to average
2. Any anomalies or unusual patterns (use z-score and changes)
3. Overall weather trends
4. Brief forecast implications

Keep your response to 4-5 sentences, be specific with numbers.`

// BuildPrompt renders the narrator prompt: the custom-question variant when the
// caller asked one, the default analysis variant otherwise.
func BuildPrompt(stationID string, days int, customQuestion string, stats Statistics, observations []Observation) string {
	statsJSON, _ := json.MarshalIndent(stats, "", "  ")
	payload, _ := json.Marshal(observations)
	recent := common.Truncate(string(payload), promptPayloadLimit)

	if customQuestion != "" {
		return fmt.Sprintf(customQuestionTemplate, customQuestion, stationID, days, statsJSON, recent)
	}
	return fmt.Sprintf(defaultAnalysisTemplate, stationID, days, statsJSON, recent)
}

// FallbackNarrative builds the deterministic narrative used whenever the
// narrator is unavailable. Only the statistics record feeds it.
func FallbackNarrative(stats Statistics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current temperature is %.1f°C, compared to average of %.1f°C. ", stats.CurrentTemp, stats.MeanTemp)
	if stats.AnomalyDetected {
		fmt.Fprintf(&b, "Anomaly detected with z-score of %.2f. ", stats.ZScore)
	}
	fmt.Fprintf(&b, "Day-over-day change: %.1f°C.", stats.DayOverDayChange)
	return b.String()
}
