// Package events provides the typed publish/subscribe bus every engine
// component uses to notify external observers. The event kinds form a
// closed set; payloads are concrete structs, one per kind.
package events

import (
	"github.com/localfirst/offsync/internal/models"
)

// Kind identifies an event type on the bus.
type Kind string

const (
	KindEntitySaved      Kind = "entity_saved"
	KindEntityDeleted    Kind = "entity_deleted"
	KindQueueUpdated     Kind = "queue_updated"
	KindSyncStarted      Kind = "sync_started"
	KindSyncProgress     Kind = "sync_progress"
	KindSyncCompleted    Kind = "sync_completed"
	KindStatusChanged    Kind = "status_changed"
	KindConflictDetected Kind = "conflict_detected"
	KindConflictResolved Kind = "conflict_resolved"
	KindNetworkChanged   Kind = "network_changed"
	KindQuotaWarning     Kind = "quota_warning"
	KindQuotaCritical    Kind = "quota_critical"
)

// Event is implemented by every payload published on the bus.
type Event interface {
	Kind() Kind
}

// EntitySaved is published after a successful local save.
type EntitySaved struct {
	Entity *models.Entity
}

func (EntitySaved) Kind() Kind { return KindEntitySaved }

// EntityDeleted is published after an entity is removed from the readable store.
type EntityDeleted struct {
	EntityType string
	EntityID   string
}

func (EntityDeleted) Kind() Kind { return KindEntityDeleted }

// QueueUpdated is published whenever the pending operation count changes.
type QueueUpdated struct {
	Pending int
}

func (QueueUpdated) Kind() Kind { return KindQueueUpdated }

// SyncStarted is published when a sync run begins draining the queue.
type SyncStarted struct {
	Queued int
}

func (SyncStarted) Kind() Kind { return KindSyncStarted }

// SyncProgress is published after each processed operation.
type SyncProgress struct {
	OperationID string
	Percent     int // 0-100
}

func (SyncProgress) Kind() Kind { return KindSyncProgress }

// SyncCompleted is published with the report of a finished run.
type SyncCompleted struct {
	Report *models.SyncReport
}

func (SyncCompleted) Kind() Kind { return KindSyncCompleted }

// StatusChanged is published on engine-level sync status transitions.
type StatusChanged struct {
	Status models.SyncStatus
}

func (StatusChanged) Kind() Kind { return KindStatusChanged }

// ConflictDetected is published when a sync attempt reveals divergence.
type ConflictDetected struct {
	Conflict *models.DataConflict
}

func (ConflictDetected) Kind() Kind { return KindConflictDetected }

// ConflictResolved is published when a conflict leaves the active set.
type ConflictResolved struct {
	Conflict *models.DataConflict
}

func (ConflictResolved) Kind() Kind { return KindConflictResolved }

// NetworkChanged is published on every connectivity status change.
type NetworkChanged struct {
	Status models.NetworkStatus
}

func (NetworkChanged) Kind() Kind { return KindNetworkChanged }

// QuotaWarning is published once when usage crosses the warning threshold.
type QuotaWarning struct {
	Quota models.StorageQuota
}

func (QuotaWarning) Kind() Kind { return KindQuotaWarning }

// QuotaCritical is published once when usage crosses the critical threshold.
type QuotaCritical struct {
	Quota models.StorageQuota
}

func (QuotaCritical) Kind() Kind { return KindQuotaCritical }
