// Package network tracks connectivity and a derived quality score, driving
// sync scheduling: offline→online transitions start the coordinator's
// timer, online→offline transitions stop it.
package network

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/localfirst/offsync/internal/clock"
	"github.com/localfirst/offsync/internal/events"
	"github.com/localfirst/offsync/internal/models"
)

// Score latency bands
const (
	// ExcellentRTT is the upper bound for an excellent connection
	ExcellentRTT = 500 * time.Millisecond
	// GoodRTT is the upper bound for a good connection
	GoodRTT = 2 * time.Second
)

// Source is the platform connectivity signal: a current status plus a
// channel of transitions.
type Source interface {
	// Status returns the current binary signal and connection metadata.
	Status() models.NetworkStatus

	// Changes emits a status on every online/offline transition or
	// metadata change. The monitor owns draining this channel.
	Changes() <-chan models.NetworkStatus
}

// Prober measures one lightweight round trip to rate connection quality.
type Prober interface {
	Probe(ctx context.Context) (time.Duration, error)
}

// Monitor combines the binary connectivity signal with a periodic quality
// probe and republishes every status change on the event bus.
type Monitor struct {
	source Source
	prober Prober
	clock  clock.Clock
	bus    *events.Bus
	logger *slog.Logger

	probeInterval time.Duration
	probeTimeout  time.Duration

	// onOnline / onOffline run on offline→online / online→offline edges.
	onOnline  func()
	onOffline func()

	mu     sync.Mutex
	status models.NetworkStatus

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMonitor creates a network monitor. The transition hooks may be nil.
func NewMonitor(source Source, prober Prober, clk clock.Clock, bus *events.Bus, logger *slog.Logger,
	probeInterval, probeTimeout time.Duration, onOnline, onOffline func(),
) *Monitor {
	m := &Monitor{
		source:        source,
		prober:        prober,
		clock:         clk,
		bus:           bus,
		logger:        logger,
		probeInterval: probeInterval,
		probeTimeout:  probeTimeout,
		onOnline:      onOnline,
		onOffline:     onOffline,
	}

	m.status = source.Status()
	m.status.Score = models.ScoreOffline
	if m.status.IsOnline {
		// Optimistic until the first probe refines it.
		m.status.Score = models.ScoreGood
	}

	return m
}

// Start launches the monitor loop: it drains source transitions and runs
// the periodic quality probe until Stop is called.
func (m *Monitor) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go m.loop(ctx)
}

// Stop terminates the monitor loop and waits for it to exit.
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

// Status returns the current combined network status.
func (m *Monitor) Status() models.NetworkStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Online reports whether the engine should attempt sync runs.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status.IsOnline
}

func (m *Monitor) loop(ctx context.Context) {
	defer m.wg.Done()

	ticker := m.clock.NewTicker(m.probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case status, ok := <-m.source.Changes():
			if !ok {
				return
			}
			m.applySignal(ctx, status)
		case <-ticker.C():
			m.RunProbe(ctx)
		}
	}
}

// applySignal merges a binary signal transition into the current status.
func (m *Monitor) applySignal(ctx context.Context, signal models.NetworkStatus) {
	m.mu.Lock()
	wasOnline := m.status.IsOnline

	m.status.IsOnline = signal.IsOnline
	m.status.ConnectionType = signal.ConnectionType
	m.status.EffectiveType = signal.EffectiveType
	m.status.DownlinkMbps = signal.DownlinkMbps
	m.status.SaveData = signal.SaveData

	if signal.IsOnline {
		now := m.clock.Now()
		m.status.LastConnected = &now
		if m.status.Score == models.ScoreOffline {
			m.status.Score = models.ScoreGood
		}
	} else {
		m.status.Score = models.ScoreOffline
	}
	status := m.status
	m.mu.Unlock()

	m.logger.Info("network status changed", "online", status.IsOnline, "score", status.Score)
	m.bus.Publish(events.NetworkChanged{Status: status})

	switch {
	case !wasOnline && status.IsOnline:
		if m.onOnline != nil {
			m.onOnline()
		}
		// Refine the optimistic score right away.
		m.RunProbe(ctx)
	case wasOnline && !status.IsOnline:
		if m.onOffline != nil {
			m.onOffline()
		}
	}
}

// RunProbe performs one quality round trip and updates the score. Exported
// so tests and the engine can probe deterministically.
func (m *Monitor) RunProbe(ctx context.Context) {
	m.mu.Lock()
	online := m.status.IsOnline
	m.mu.Unlock()

	if !online {
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	rtt, err := m.prober.Probe(probeCtx)
	cancel()

	score := scoreFromProbe(rtt, err)

	m.mu.Lock()
	changed := m.status.Score != score || m.status.RTT != rtt
	m.status.RTT = rtt
	m.status.Score = score
	status := m.status
	m.mu.Unlock()

	if changed {
		m.logger.Debug("connectivity probe", "rtt", rtt, "score", score, "error", err)
		m.bus.Publish(events.NetworkChanged{Status: status})
	}
}

// scoreFromProbe rates a probe result: excellent under 500ms, good up to
// 2s, poor above that, offline when the probe fails.
func scoreFromProbe(rtt time.Duration, err error) models.ConnectivityScore {
	switch {
	case err != nil:
		return models.ScoreOffline
	case rtt < ExcellentRTT:
		return models.ScoreExcellent
	case rtt <= GoodRTT:
		return models.ScoreGood
	default:
		return models.ScorePoor
	}
}
