// Package transport defines the remote API contract the engine depends on.
// The wire format is a collaborator concern; the HTTP JSON implementation
// lives in the httpapi subpackage.
package transport

import (
	"context"

	"github.com/localfirst/offsync/internal/models"
)

//go:generate moq -out transport_mock.go . Transport

// Result is the outcome of delivering one sync operation to the remote.
type Result struct {
	// Success means the remote applied the operation.
	Success bool

	// Conflict means the remote rejected the operation because its copy
	// diverged from the operation's base snapshot. RemoteData,
	// RemoteVersion and RemoteHash describe the remote copy.
	Conflict      bool
	RemoteData    map[string]any
	RemoteVersion int64
	RemoteHash    string
	RemoteDeleted bool

	// Error carries the remote failure message when neither Success nor
	// Conflict is set.
	Error string

	// BytesTransferred is the payload size moved for this operation.
	BytesTransferred int64
}

// Transport delivers sync operations to the remote system. A returned error
// means the call itself failed (network, timeout); remote-side rejection is
// reported through Result.
type Transport interface {
	SyncOperation(ctx context.Context, op *models.SyncOperation) (*Result, error)
}
