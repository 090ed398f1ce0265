package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/localfirst/offsync/internal/models"
	"github.com/localfirst/offsync/internal/syncer"
)

func (c *Cli) runStatus(ctx context.Context) error {
	state := c.engine.GetState()

	fmt.Println("=== Sync Status ===")
	fmt.Printf("Status:   %s\n", state.Status)
	fmt.Printf("Network:  online=%v score=%s", state.Network.IsOnline, state.Network.Score)
	if state.Network.RTT > 0 {
		fmt.Printf(" rtt=%s", state.Network.RTT.Round(time.Millisecond))
	}
	fmt.Println()
	fmt.Printf("Storage:  %.1f%% used (%d / %d bytes)\n",
		state.Quota.UsagePercent, state.Quota.Usage, state.Quota.Quota)
	fmt.Printf("Pending:  %d operation(s)\n", len(state.PendingOperations))
	fmt.Printf("Conflicts: %d\n", len(state.Conflicts))

	for _, op := range state.PendingOperations {
		line := fmt.Sprintf("  [%s] %s %s/%s attempts=%d",
			op.Metadata.Priority, op.Op, op.EntityType, op.EntityID, op.Metadata.Attempts)
		if op.Metadata.NextRetry != nil {
			line += fmt.Sprintf(" next_retry=%s", op.Metadata.NextRetry.Format(time.RFC3339))
		}
		fmt.Println(line)
	}

	return nil
}

func (c *Cli) runList(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: list <type>")
	}

	entities, err := c.engine.GetEntities(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to list entities: %w", err)
	}

	if len(entities) == 0 {
		fmt.Println("No entities found.")
		return nil
	}

	for _, e := range entities {
		fmt.Printf("%s  v%d  %s  %s\n", e.ID, e.Metadata.Version, e.SyncState.Status,
			e.Metadata.UpdatedAt.Format(time.RFC3339))
	}

	return nil
}

func (c *Cli) runSave(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: save <type> <id> <json>")
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(args[2]), &data); err != nil {
		return fmt.Errorf("invalid JSON data: %w", err)
	}

	entity := &models.Entity{
		ID:   args[1],
		Type: args[0],
		Data: data,
	}
	if err := c.engine.SaveEntity(ctx, entity); err != nil {
		return fmt.Errorf("failed to save entity: %w", err)
	}

	fmt.Printf("Saved %s/%s (version %d)\n", entity.Type, entity.ID, entity.Metadata.Version)
	return nil
}

func (c *Cli) runDelete(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: delete <type> <id>")
	}

	if err := c.engine.DeleteEntity(ctx, args[0], args[1]); err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}

	fmt.Printf("Deleted %s/%s (delete queued)\n", args[0], args[1])
	return nil
}

func (c *Cli) runSync(ctx context.Context) error {
	report, err := c.engine.PerformSync(ctx, nil)
	if err != nil {
		if err == syncer.ErrOffline {
			return fmt.Errorf("cannot sync: engine is offline")
		}
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Printf("Sync %s: %d processed, %d succeeded, %d failed, %d conflict(s), %d bytes\n",
		report.Status, report.OperationsProcessed, report.OperationsSucceeded,
		report.OperationsFailed, report.ConflictsDetected, report.BytesTransferred)

	for _, syncErr := range report.Errors {
		suffix := ""
		if syncErr.Dropped {
			suffix = " (dropped)"
		}
		fmt.Printf("  %s/%s: %s%s\n", syncErr.EntityType, syncErr.EntityID, syncErr.Message, suffix)
	}

	return nil
}

func (c *Cli) runConflicts(ctx context.Context) error {
	conflicts := c.engine.Conflicts()
	if len(conflicts) == 0 {
		fmt.Println("No unresolved conflicts.")
		return nil
	}

	for _, dc := range conflicts {
		fmt.Printf("%s  %s/%s  %s  detected %s\n",
			dc.ID, dc.EntityType, dc.EntityID, dc.Type,
			dc.DetectedAt.Format(time.RFC3339))
	}

	return nil
}

func (c *Cli) runResolve(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: resolve <conflict-id> <strategy> [json]")
	}

	var custom map[string]any
	if len(args) >= 3 {
		if err := json.Unmarshal([]byte(args[2]), &custom); err != nil {
			return fmt.Errorf("invalid custom data: %w", err)
		}
	}

	dc, err := c.engine.ResolveConflict(ctx, args[0], models.ResolutionStrategy(args[1]), custom)
	if err != nil {
		return fmt.Errorf("failed to resolve conflict: %w", err)
	}

	fmt.Printf("Resolved conflict %s for %s/%s with %s\n", dc.ID, dc.EntityType, dc.EntityID, *dc.Strategy)
	return nil
}

func (c *Cli) runClear(ctx context.Context, args []string) error {
	selective := true
	if len(args) > 0 && args[0] == "-all" {
		selective = false
	}

	if err := c.engine.ClearCache(ctx, selective); err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}

	if selective {
		fmt.Println("Cache cleared.")
	} else {
		fmt.Println("Local storage cleared; a full resync will follow.")
	}
	return nil
}
