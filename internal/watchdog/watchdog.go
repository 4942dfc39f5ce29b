package watchdog

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/stationlab/weather-agent/internal/analysis"
	"github.com/stationlab/weather-agent/internal/observations"
)

const probeTimeout = 30 * time.Second

// Watchdog periodically probes the observation source and logs connectivity
// transitions. It is purely observational and never gates requests.
type Watchdog struct {
	scheduler *gocron.Scheduler
	source    analysis.ObservationSource
	interval  time.Duration
	logger    *slog.Logger

	mu        sync.Mutex
	lastClass string
}

// New creates a watchdog probing source every interval. An interval <= 0
// disables it.
func New(source analysis.ObservationSource, interval time.Duration, logger *slog.Logger) *Watchdog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watchdog{
		scheduler: gocron.NewScheduler(time.UTC),
		source:    source,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic probe and starts the underlying scheduler.
func (w *Watchdog) Start() error {
	if w.interval <= 0 {
		w.logger.Info("data-source watchdog disabled")
		return nil
	}

	_, err := w.scheduler.Every(w.interval).Do(w.runProbe)
	if err != nil {
		return err
	}

	w.scheduler.StartAsync()
	w.logger.Info("data-source watchdog started", "interval", w.interval)
	return nil
}

// Stop stops the scheduler and cancels any future probes.
func (w *Watchdog) Stop() {
	if w.scheduler != nil {
		w.scheduler.Stop()
	}
}

// runProbe checks connectivity and logs only when the state class changes,
// so steady states (including persistent failure) do not flood the log.
func (w *Watchdog) runProbe() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	state := observations.Probe(ctx, w.source)
	class := classify(state)

	w.mu.Lock()
	prev := w.lastClass
	w.lastClass = class
	w.mu.Unlock()

	if class == prev {
		return
	}

	if class == observations.StatusConnected {
		w.logger.Info("data source reachable", "state", state, "previous", prev)
		return
	}
	w.logger.Warn("data source degraded", "state", state, "previous", prev)
}

// classify collapses error states so fluctuating error messages count as one.
func classify(state string) string {
	if strings.HasPrefix(state, "error:") {
		return "error"
	}
	return state
}
