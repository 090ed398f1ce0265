package models

import "time"

// EntityStatus describes where an entity stands relative to the remote.
type EntityStatus string

const (
	// EntityStatusSynced means local and remote copies match.
	EntityStatusSynced EntityStatus = "synced"
	// EntityStatusDirty means the entity changed locally since the last sync.
	EntityStatusDirty EntityStatus = "dirty"
	// EntityStatusConflict means a sync attempt found divergent remote data.
	EntityStatusConflict EntityStatus = "conflict"
	// EntityStatusDeleted means a delete is queued, pending remote acknowledgement.
	EntityStatusDeleted EntityStatus = "deleted"
	// EntityStatusNew means the entity has never been pushed to the remote.
	EntityStatusNew EntityStatus = "new"
)

// Source identifies where the current entity data came from.
type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
	SourceMerged Source = "merged"
)

// EntityMetadata carries the bookkeeping the sync engine maintains per entity.
type EntityMetadata struct {
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LastSynced *time.Time `json:"last_synced,omitempty"`
	Version    int64      `json:"version"` // increments by exactly 1 on every successful save
	Hash       string     `json:"hash"`    // content digest of Data, changes iff Data changed
	Size       int64      `json:"size"`    // serialized size of Data in bytes
	Source     Source     `json:"source"`
}

// SyncState tracks per-entity synchronization progress.
type SyncState struct {
	Status        EntityStatus   `json:"status"`
	RemoteVersion *int64         `json:"remote_version,omitempty"` // last version acknowledged by the remote
	LocalVersion  int64          `json:"local_version"`
	ConflictID    string         `json:"conflict_id,omitempty"` // active conflict, if Status is conflict
	ConflictData  map[string]any `json:"conflict_data,omitempty"`
	RetryCount    int            `json:"retry_count"`
	LastAttempt   *time.Time     `json:"last_attempt,omitempty"`
}

// Entity is a versioned, hashed unit of domain data tracked for offline use.
// Data holds the application payload; the engine never interprets it beyond
// hashing and shallow merging during conflict resolution.
type Entity struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	Metadata  EntityMetadata `json:"metadata"`
	SyncState SyncState      `json:"sync_state"`
}

// Clone creates a deep copy of the entity. Data values are shared for
// nested structures; top-level keys are copied, which is sufficient for the
// shallow merge semantics of conflict resolution.
func (e *Entity) Clone() *Entity {
	data := make(map[string]any, len(e.Data))
	for k, v := range e.Data {
		data[k] = v
	}

	clone := &Entity{
		ID:        e.ID,
		Type:      e.Type,
		Data:      data,
		Metadata:  e.Metadata,
		SyncState: e.SyncState,
	}

	if e.Metadata.LastSynced != nil {
		ts := *e.Metadata.LastSynced
		clone.Metadata.LastSynced = &ts
	}
	if e.SyncState.RemoteVersion != nil {
		v := *e.SyncState.RemoteVersion
		clone.SyncState.RemoteVersion = &v
	}
	if e.SyncState.LastAttempt != nil {
		ts := *e.SyncState.LastAttempt
		clone.SyncState.LastAttempt = &ts
	}
	if e.SyncState.ConflictData != nil {
		cd := make(map[string]any, len(e.SyncState.ConflictData))
		for k, v := range e.SyncState.ConflictData {
			cd[k] = v
		}
		clone.SyncState.ConflictData = cd
	}

	return clone
}
