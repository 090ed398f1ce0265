// Package api holds the wire DTOs of the HTTP sync transport.
package api

import "time"

// OperationRequest is one sync operation pushed to the server.
type OperationRequest struct {
	ID          string         `json:"id"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	Operation   string         `json:"operation"` // create | update | delete
	Data        map[string]any `json:"data,omitempty"`
	BaseVersion int64          `json:"base_version"`
	Hash        string         `json:"hash"`
	Priority    string         `json:"priority"`
	CreatedAt   time.Time      `json:"created_at"`
}

// EntitySnapshot describes the server's copy of an entity, returned on
// conflict so the client can resolve locally.
type EntitySnapshot struct {
	Data    map[string]any `json:"data,omitempty"`
	Version int64          `json:"version"`
	Hash    string         `json:"hash"`
	Deleted bool           `json:"deleted,omitempty"`
}

// OperationResponse is the server's verdict on one pushed operation.
type OperationResponse struct {
	Success          bool            `json:"success"`
	Conflict         bool            `json:"conflict,omitempty"`
	Remote           *EntitySnapshot `json:"remote,omitempty"`
	Error            string          `json:"error,omitempty"`
	BytesTransferred int64           `json:"bytes_transferred,omitempty"`
}

// ErrorResponse is the generic error body of the sync API.
type ErrorResponse struct {
	Message string `json:"message"`
}
