// Package quota polls local storage usage, raises threshold-crossing events
// and exposes explicit cache eviction. The tracker never evicts on its own.
package quota

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/localfirst/offsync/internal/clock"
	"github.com/localfirst/offsync/internal/events"
	"github.com/localfirst/offsync/internal/models"
)

//go:generate moq -out estimator_mock.go . Estimator

// Estimator reports storage usage and quota from the platform.
type Estimator interface {
	Estimate(ctx context.Context) (models.StorageQuota, error)
}

// Clearer performs the actual eviction: selective removes cache-class
// storage only, full clears everything including the entity mirror.
type Clearer interface {
	ClearCache(ctx context.Context) error
	Clear(ctx context.Context) error
}

// Usage bands, derived from the configured thresholds.
const (
	bandNormal = iota
	bandWarning
	bandCritical
)

// Tracker polls the estimator and emits a threshold event exactly once per
// upward crossing. A jump over both thresholds in one poll emits only the
// highest band's event; falling below a threshold re-arms it.
type Tracker struct {
	estimator Estimator
	clearer   Clearer
	clock     clock.Clock
	bus       *events.Bus
	logger    *slog.Logger

	interval time.Duration
	warnAt   float64 // usage fraction, e.g. 0.75
	critAt   float64 // usage fraction, e.g. 0.90

	mu   sync.Mutex
	last models.StorageQuota
	band int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTracker creates a storage quota tracker.
func NewTracker(estimator Estimator, clearer Clearer, clk clock.Clock, bus *events.Bus, logger *slog.Logger,
	interval time.Duration, warnAt, critAt float64,
) *Tracker {
	return &Tracker{
		estimator: estimator,
		clearer:   clearer,
		clock:     clk,
		bus:       bus,
		logger:    logger,
		interval:  interval,
		warnAt:    warnAt,
		critAt:    critAt,
	}
}

// Start launches the periodic poll until Stop is called.
func (t *Tracker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.loop(ctx)
}

// Stop terminates the poll loop and waits for it to exit.
func (t *Tracker) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
	t.wg.Wait()
}

// Quota returns the most recent usage snapshot.
func (t *Tracker) Quota() models.StorageQuota {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Poll queries the estimator once and applies the threshold logic.
// Exported so tests and the engine can poll deterministically.
func (t *Tracker) Poll(ctx context.Context) (models.StorageQuota, error) {
	quota, err := t.estimator.Estimate(ctx)
	if err != nil {
		return models.StorageQuota{}, fmt.Errorf("failed to estimate storage usage: %w", err)
	}

	band := t.bandFor(quota)

	t.mu.Lock()
	prev := t.band
	t.last = quota
	t.band = band
	t.mu.Unlock()

	// Edge-triggered: exactly one event per upward crossing, for the
	// highest band entered. Downward movement re-arms silently.
	if band > prev {
		switch band {
		case bandCritical:
			t.logger.Warn("storage usage critical", "usage_percent", quota.UsagePercent)
			t.bus.Publish(events.QuotaCritical{Quota: quota})
		case bandWarning:
			t.logger.Warn("storage usage high", "usage_percent", quota.UsagePercent)
			t.bus.Publish(events.QuotaWarning{Quota: quota})
		}
	}

	return quota, nil
}

// ClearCache evicts local storage on explicit request. Selective removes
// only cache-class storage; non-selective clears everything including the
// entity mirror, forcing a full resync.
func (t *Tracker) ClearCache(ctx context.Context, selective bool) error {
	if selective {
		if err := t.clearer.ClearCache(ctx); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		t.logger.Info("cache cleared", "selective", true)
	} else {
		if err := t.clearer.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear storage: %w", err)
		}
		t.logger.Info("storage cleared", "selective", false)
	}

	// Refresh the snapshot so the next poll starts from the new usage.
	if _, err := t.Poll(ctx); err != nil {
		t.logger.Warn("failed to refresh quota after clear", "error", err)
	}

	return nil
}

func (t *Tracker) loop(ctx context.Context) {
	defer t.wg.Done()

	ticker := t.clock.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if _, err := t.Poll(ctx); err != nil {
				t.logger.Warn("quota poll failed", "error", err)
			}
		}
	}
}

func (t *Tracker) bandFor(q models.StorageQuota) int {
	fraction := q.UsagePercent / 100
	switch {
	case fraction > t.critAt:
		return bandCritical
	case fraction > t.warnAt:
		return bandWarning
	default:
		return bandNormal
	}
}
