package analysis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

type stubSource struct {
	observations []Observation
	err          error
	lastDays     int
}

func (s *stubSource) FetchRecent(ctx context.Context, days int) ([]Observation, error) {
	s.lastDays = days
	if s.err != nil {
		return nil, s.err
	}
	return s.observations, nil
}

type stubNarrator struct {
	text       string
	err        error
	lastPrompt string
}

func (n *stubNarrator) Generate(ctx context.Context, prompt string) (string, error) {
	n.lastPrompt = prompt
	if n.err != nil {
		return "", n.err
	}
	return n.text, nil
}

func (n *stubNarrator) Model() string { return "test/model" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAnalyze(t *testing.T) {
	src := &stubSource{observations: obsFromTemps(20.0, 18.0)}
	narr := &stubNarrator{text: "Temperatures are trending mildly upward."}
	svc := NewService(src, narr, "999999", DefaultThresholds(), discardLogger())

	result, err := svc.Analyze(context.Background(), 30, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if src.lastDays != 30 {
		t.Errorf("source fetched %d days, want 30", src.lastDays)
	}
	if result.StationID != "999999" {
		t.Errorf("StationID = %q", result.StationID)
	}
	if result.DaysAnalyzed != 30 {
		t.Errorf("DaysAnalyzed = %d, want 30", result.DaysAnalyzed)
	}
	if result.Statistics.MeanTemp != 19.0 {
		t.Errorf("MeanTemp = %v, want 19.0", result.Statistics.MeanTemp)
	}
	if result.LLMAnalysis != narr.text {
		t.Errorf("LLMAnalysis = %q, want narrator text verbatim", result.LLMAnalysis)
	}
	if result.ModelUsed != "test/model" {
		t.Errorf("ModelUsed = %q", result.ModelUsed)
	}
	if result.Timestamp.IsZero() {
		t.Error("Timestamp is zero")
	}
	if !strings.Contains(narr.lastPrompt, "STATION: 999999") {
		t.Errorf("narrator prompt missing station id:\n%s", narr.lastPrompt)
	}
}

func TestAnalyzeNarratorFailureFallsBack(t *testing.T) {
	src := &stubSource{observations: obsFromTemps(20.0, 18.0)}
	narr := &stubNarrator{err: errors.New("model overloaded")}
	svc := NewService(src, narr, "999999", DefaultThresholds(), discardLogger())

	result, err := svc.Analyze(context.Background(), 30, "")
	if err != nil {
		t.Fatalf("narrator failure must not fail the request, got %v", err)
	}

	want := "Current temperature is 20.0°C, compared to average of 19.0°C. Day-over-day change: 2.0°C."
	if result.LLMAnalysis != want {
		t.Errorf("LLMAnalysis = %q, want fallback %q", result.LLMAnalysis, want)
	}
	if result.DaysAnalyzed != 30 {
		t.Errorf("DaysAnalyzed = %d, fallback must not alter it", result.DaysAnalyzed)
	}
	if result.Statistics.TotalDays != 2 {
		t.Errorf("TotalDays = %d, fallback must not alter statistics", result.Statistics.TotalDays)
	}
	if result.ModelUsed != "test/model" {
		t.Errorf("ModelUsed = %q", result.ModelUsed)
	}
}

func TestAnalyzeNoObservations(t *testing.T) {
	src := &stubSource{}
	narr := &stubNarrator{text: "unused"}
	svc := NewService(src, narr, "999999", DefaultThresholds(), discardLogger())

	result, err := svc.Analyze(context.Background(), 30, "")
	if !errors.Is(err, ErrNoObservations) {
		t.Fatalf("expected ErrNoObservations, got %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result, got %+v", result)
	}
}

func TestAnalyzeSourceFailure(t *testing.T) {
	srcErr := errors.New("query timed out")
	src := &stubSource{err: srcErr}
	svc := NewService(src, &stubNarrator{}, "999999", DefaultThresholds(), discardLogger())

	_, err := svc.Analyze(context.Background(), 30, "")
	if !errors.Is(err, srcErr) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
	if errors.Is(err, ErrNoObservations) {
		t.Fatal("transport failure must not be reported as missing data")
	}
}

func TestAnalyzeInsufficientData(t *testing.T) {
	src := &stubSource{observations: obsFromTemps(20.0)}
	svc := NewService(src, &stubNarrator{}, "999999", DefaultThresholds(), discardLogger())

	_, err := svc.Analyze(context.Background(), 30, "")
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestAnalyzeCustomQuestion(t *testing.T) {
	src := &stubSource{observations: obsFromTemps(20.0, 18.0)}
	narr := &stubNarrator{text: "Yes, slightly warmer than usual."}
	svc := NewService(src, narr, "999999", DefaultThresholds(), discardLogger())

	if _, err := svc.Analyze(context.Background(), 14, "Is it warmer than usual?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(narr.lastPrompt, "QUESTION: Is it warmer than usual?") {
		t.Errorf("narrator prompt missing custom question:\n%s", narr.lastPrompt)
	}
	if !strings.Contains(narr.lastPrompt, "TIME PERIOD: Last 14 days") {
		t.Errorf("narrator prompt missing time period:\n%s", narr.lastPrompt)
	}
}
