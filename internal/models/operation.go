package models

import "time"

// OperationType describes what a queued sync operation does to its entity.
type OperationType string

const (
	OperationCreate OperationType = "create"
	OperationUpdate OperationType = "update"
	OperationDelete OperationType = "delete"
)

// Priority orders queued operations. Higher priorities sync first.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank returns the numeric weight of a priority for sorting.
// Unknown values rank below low so malformed input never jumps the queue.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// MaxPriority returns the higher of two priorities.
func MaxPriority(a, b Priority) Priority {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// OperationMetadata carries the scheduling state of a queued operation.
type OperationMetadata struct {
	Priority          Priority      `json:"priority"`
	CreatedAt         time.Time     `json:"created_at"`
	Attempts          int           `json:"attempts"`
	MaxRetries        int           `json:"max_retries"`
	NextRetry         *time.Time    `json:"next_retry,omitempty"`
	EstimatedDuration time.Duration `json:"estimated_duration"`
	DependsOn         []string      `json:"depends_on,omitempty"`
}

// SyncOperation is a durable, queued intent to create, update or delete one
// entity on the remote system. BaseVersion and LocalHash snapshot the state
// the mutation was built against; they drive conflict detection.
type SyncOperation struct {
	ID          string            `json:"id"`
	EntityType  string            `json:"entity_type"`
	EntityID    string            `json:"entity_id"`
	Op          OperationType     `json:"operation"`
	Data        map[string]any    `json:"data,omitempty"`
	BaseVersion int64             `json:"base_version"` // last remote version known when the mutation happened
	LocalHash   string            `json:"local_hash"`
	Metadata    OperationMetadata `json:"metadata"`
}

// Key returns the queue deduplication key. At most one active operation
// exists per key; newer mutations supersede the queued one.
func (op *SyncOperation) Key() string {
	return op.EntityType + "/" + op.EntityID
}

// Ready reports whether the operation may be attempted at the given time,
// honouring its retry backoff.
func (op *SyncOperation) Ready(now time.Time) bool {
	return op.Metadata.NextRetry == nil || !op.Metadata.NextRetry.After(now)
}

// Clone creates a copy of the operation with its own data map.
func (op *SyncOperation) Clone() *SyncOperation {
	clone := *op
	if op.Data != nil {
		clone.Data = make(map[string]any, len(op.Data))
		for k, v := range op.Data {
			clone.Data[k] = v
		}
	}
	if op.Metadata.NextRetry != nil {
		ts := *op.Metadata.NextRetry
		clone.Metadata.NextRetry = &ts
	}
	if op.Metadata.DependsOn != nil {
		clone.Metadata.DependsOn = append([]string(nil), op.Metadata.DependsOn...)
	}
	return &clone
}
