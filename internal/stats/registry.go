// Package stats reports the hub's own resource usage so the dashboard's
// diagnostics view has something to show.
package stats

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Registry holds the enabled collectors and runs the periodic report loop.
type Registry struct {
	collectors []Collector
	interval   time.Duration
	logger     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistry creates a registry with the default collector set.
func NewRegistry(interval time.Duration, logger zerolog.Logger) *Registry {
	return &Registry{
		collectors: []Collector{
			&CPUCollector{Logger: logger},
			&MemoryCollector{Logger: logger},
			&GoroutineCollector{Logger: logger},
		},
		interval: interval,
		logger:   logger,
	}
}

// Snapshot collects every metric once. Collectors that fail are omitted.
func (r *Registry) Snapshot(ctx context.Context) map[string]float64 {
	out := make(map[string]float64, len(r.collectors))
	for _, c := range r.collectors {
		if v := c.Collect(ctx); v != nil {
			out[c.Name()] = *v
		}
	}
	return out
}

// Start launches the periodic report loop.
func (r *Registry) Start() error {
	if r.ctx != nil {
		r.logger.Warn().Msg("Stats registry is already running")
		return errors.New("stats registry is already running")
	}

	r.ctx, r.cancel = context.WithCancel(context.Background())

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.runReportLoop()
	}()

	r.logger.Info().Dur("interval", r.interval).Msg("Stats registry started")
	return nil
}

// Stop halts the report loop.
func (r *Registry) Stop() error {
	if r.ctx == nil {
		r.logger.Warn().Msg("Stats registry is not running")
		return errors.New("stats registry is not running")
	}

	r.cancel()
	r.wg.Wait()

	r.ctx = nil
	r.cancel = nil

	r.logger.Info().Msg("Stats registry stopped")
	return nil
}

func (r *Registry) runReportLoop() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			snapshot := r.Snapshot(r.ctx)
			event := r.logger.Info()
			for name, value := range snapshot {
				event = event.Float64(name, value)
			}
			event.Msg("Engine stats")
		case <-r.ctx.Done():
			return
		}
	}
}
