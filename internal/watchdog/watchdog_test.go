package watchdog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stationlab/weather-agent/internal/analysis"
)

type switchableSource struct {
	observations []analysis.Observation
	err          error
}

func (s *switchableSource) FetchRecent(ctx context.Context, days int) ([]analysis.Observation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.observations, nil
}

func TestWatchdogLogsTransitionsOnly(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	temp := 20.0
	src := &switchableSource{observations: []analysis.Observation{{Date: "2023-11-30", TempC: &temp}}}
	w := New(src, time.Minute, logger)

	// First probe always logs the initial state.
	w.runProbe()
	afterFirst := buf.Len()
	if afterFirst == 0 {
		t.Fatal("first probe logged nothing")
	}

	// Steady state stays quiet.
	w.runProbe()
	if buf.Len() != afterFirst {
		t.Fatalf("steady connected state logged: %s", buf.String())
	}

	// Degradation logs once.
	src.err = errors.New("backend unavailable")
	w.runProbe()
	afterDegraded := buf.Len()
	if afterDegraded == afterFirst {
		t.Fatal("transition to error state logged nothing")
	}

	// A different error message is still the same state class.
	src.err = errors.New("another failure")
	w.runProbe()
	if buf.Len() != afterDegraded {
		t.Fatalf("steady error state logged again: %s", buf.String())
	}

	// Recovery logs once.
	src.err = nil
	w.runProbe()
	if buf.Len() == afterDegraded {
		t.Fatal("recovery logged nothing")
	}
}

func TestWatchdogDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	w := New(&switchableSource{}, 0, logger)
	if err := w.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer w.Stop()
}
