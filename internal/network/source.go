package network

import (
	"sync"

	"github.com/localfirst/offsync/internal/models"
)

// ManualSource is a connectivity source driven by explicit Set calls. It
// serves platforms without a native signal (the CLI assumes online and
// lets the probe downgrade the score) and deterministic tests.
type ManualSource struct {
	mu      sync.Mutex
	status  models.NetworkStatus
	changes chan models.NetworkStatus
}

// NewManualSource creates a source with the given initial status.
func NewManualSource(initial models.NetworkStatus) *ManualSource {
	return &ManualSource{
		status:  initial,
		changes: make(chan models.NetworkStatus, 8),
	}
}

// Status returns the current signal.
func (s *ManualSource) Status() models.NetworkStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Changes returns the transition channel.
func (s *ManualSource) Changes() <-chan models.NetworkStatus {
	return s.changes
}

// Set pushes a new signal. A full channel drops the oldest pending signal
// so the latest transition always gets through.
func (s *ManualSource) Set(status models.NetworkStatus) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()

	for {
		select {
		case s.changes <- status:
			return
		default:
			select {
			case <-s.changes:
			default:
			}
		}
	}
}
