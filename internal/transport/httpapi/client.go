// Package httpapi implements the Transport contract over HTTP JSON.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/localfirst/offsync/internal/models"
	"github.com/localfirst/offsync/internal/transport"
	"github.com/localfirst/offsync/pkg/api"
)

// Client is the HTTP client for the remote sync API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authToken  string
}

// NewClient creates a new API client. The per-call timeout is controlled by
// the caller's context; the embedded client timeout is a safety net.
func NewClient(baseURL, authToken string) *Client {
	return &Client{
		baseURL:   baseURL,
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// SyncOperation pushes one operation to the server. An HTTP 409 carries the
// remote snapshot and maps to a conflict result; other non-2xx statuses are
// transport errors and retried by the coordinator.
func (c *Client) SyncOperation(ctx context.Context, op *models.SyncOperation) (*transport.Result, error) {
	req := api.OperationRequest{
		ID:          op.ID,
		EntityType:  op.EntityType,
		EntityID:    op.EntityID,
		Operation:   string(op.Op),
		Data:        op.Data,
		BaseVersion: op.BaseVersion,
		Hash:        op.LocalHash,
		Priority:    string(op.Metadata.Priority),
		CreatedAt:   op.Metadata.CreatedAt,
	}

	var resp api.OperationResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/sync/operations", req, &resp); err != nil {
		return nil, fmt.Errorf("sync operation request failed: %w", err)
	}

	result := &transport.Result{
		Success:          resp.Success,
		Conflict:         resp.Conflict,
		Error:            resp.Error,
		BytesTransferred: resp.BytesTransferred,
	}
	if resp.Remote != nil {
		result.RemoteData = resp.Remote.Data
		result.RemoteVersion = resp.Remote.Version
		result.RemoteHash = resp.Remote.Hash
		result.RemoteDeleted = resp.Remote.Deleted
	}

	return result, nil
}

// doRequest performs one HTTP request. A 409 response is decoded into
// result like a success: it carries the conflict payload, not an error.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok && resp.StatusCode != http.StatusConflict {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
