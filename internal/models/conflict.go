package models

import "time"

// ConflictType classifies how local and remote copies diverged.
type ConflictType string

const (
	// ConflictTypeVersion means the remote advanced past the local base
	// version with different content.
	ConflictTypeVersion ConflictType = "version_mismatch"
	// ConflictTypeDelete means a local edit raced a remote delete (or the
	// other way around).
	ConflictTypeDelete ConflictType = "delete_conflict"
)

// ResolutionStrategy selects how a conflict's resolved data is computed.
type ResolutionStrategy string

const (
	// ResolveUseLocal keeps the local data.
	ResolveUseLocal ResolutionStrategy = "use_local"
	// ResolveUseRemote keeps the remote data.
	ResolveUseRemote ResolutionStrategy = "use_remote"
	// ResolveMerge shallow-merges remote data overlaid by local top-level keys.
	ResolveMerge ResolutionStrategy = "merge_data"
	// ResolveUserChoice uses caller-supplied data.
	ResolveUserChoice ResolutionStrategy = "user_choice"
	// ResolveCreateCopy keeps remote data under the original id and clones
	// the local data into a new entity.
	ResolveCreateCopy ResolutionStrategy = "create_copy"
)

// DataConflict records a detected divergence between local and remote copies
// of one entity. It lives in the resolver's active set until resolved.
type DataConflict struct {
	ID            string              `json:"id"`
	EntityType    string              `json:"entity_type"`
	EntityID      string              `json:"entity_id"`
	LocalData     map[string]any      `json:"local_data"`
	RemoteData    map[string]any      `json:"remote_data"`
	LocalVersion  int64               `json:"local_version"`
	RemoteVersion int64               `json:"remote_version"`
	RemoteHash    string              `json:"remote_hash"`
	Type          ConflictType        `json:"conflict_type"`
	DetectedAt    time.Time           `json:"detected_at"`
	Strategy      *ResolutionStrategy `json:"resolution_strategy,omitempty"`
	Resolved      bool                `json:"resolved"`
	ResolvedAt    *time.Time          `json:"resolved_at,omitempty"`
	ResolvedBy    string              `json:"resolved_by,omitempty"`
}
