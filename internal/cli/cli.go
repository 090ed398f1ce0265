// Package cli implements the offsync command surface: thin glue over the
// engine facade.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/localfirst/offsync/internal/engine"
)

// Cli dispatches commands against one engine instance.
type Cli struct {
	engine *engine.Engine
}

// New creates the command dispatcher.
func New(e *engine.Engine) *Cli {
	return &Cli{engine: e}
}

// Run executes one command. Errors print to stderr and exit non-zero.
func (c *Cli) Run(ctx context.Context, command string, args []string) {
	var err error

	switch command {
	case "status":
		err = c.runStatus(ctx)
	case "list":
		err = c.runList(ctx, args)
	case "save":
		err = c.runSave(ctx, args)
	case "delete":
		err = c.runDelete(ctx, args)
	case "sync":
		err = c.runSync(ctx)
	case "conflicts":
		err = c.runConflicts(ctx)
	case "resolve":
		err = c.runResolve(ctx, args)
	case "clear":
		err = c.runClear(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		PrintUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// PrintUsage prints the command overview.
func PrintUsage() {
	fmt.Println("Usage: offsync [flags] <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  status                        Show sync, network and storage status")
	fmt.Println("  list <type>                   List entities of a type")
	fmt.Println("  save <type> <id> <json>       Save an entity with the given JSON data")
	fmt.Println("  delete <type> <id>            Delete an entity (queued with high priority)")
	fmt.Println("  sync                          Run a sync pass now")
	fmt.Println("  conflicts                     List unresolved conflicts")
	fmt.Println("  resolve <id> <strategy>       Resolve a conflict (use_local, use_remote,")
	fmt.Println("                                merge_data, create_copy)")
	fmt.Println("  clear [-all]                  Clear cache (-all wipes the entity mirror)")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -db <path>        Path to local database (default offsync.db)")
	fmt.Println("  -server <url>     Remote sync API base URL")
	fmt.Println("  -config <path>    Optional YAML config file")
	fmt.Println("  -version          Show version information")
}
