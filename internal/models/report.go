package models

import "time"

// SyncStatus is the engine-level synchronization phase.
type SyncStatus string

const (
	SyncStatusOffline SyncStatus = "offline"
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSyncing SyncStatus = "syncing"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusFailed  SyncStatus = "failed"
)

// SyncRunStatus summarizes the outcome of one performSync run.
type SyncRunStatus string

const (
	SyncRunSuccess SyncRunStatus = "success"
	SyncRunPartial SyncRunStatus = "partial"
	SyncRunFailed  SyncRunStatus = "failed"
)

// SyncError records one per-operation failure encountered during a run.
type SyncError struct {
	OperationID string `json:"operation_id"`
	EntityType  string `json:"entity_type"`
	EntityID    string `json:"entity_id"`
	Message     string `json:"message"`
	Dropped     bool   `json:"dropped"` // true when the operation exhausted its retries
}

// SyncReport is the result of one sync run. Per-operation failures are
// aggregated here; the run itself only errors on engine-level preconditions.
type SyncReport struct {
	StartTime           time.Time     `json:"start_time"`
	EndTime             time.Time     `json:"end_time"`
	OperationsProcessed int           `json:"operations_processed"`
	OperationsSucceeded int           `json:"operations_succeeded"`
	OperationsFailed    int           `json:"operations_failed"`
	ConflictsDetected   int           `json:"conflicts_detected"`
	BytesTransferred    int64         `json:"bytes_transferred"`
	Status              SyncRunStatus `json:"status"`
	Errors              []SyncError   `json:"errors,omitempty"`
}
