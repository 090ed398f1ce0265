package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/localfirst/offsync/internal/cli"
	"github.com/localfirst/offsync/internal/config"
	"github.com/localfirst/offsync/internal/engine"
	"github.com/localfirst/offsync/internal/models"
	"github.com/localfirst/offsync/internal/network"
	"github.com/localfirst/offsync/internal/storage/boltdb"
	"github.com/localfirst/offsync/internal/transport/httpapi"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Remote sync API base URL")
	dbPath := flag.String("db", "offsync.db", "Path to local database")
	configPath := flag.String("config", "", "Optional YAML config file")
	authToken := flag.String("token", "", "Bearer token for the sync API")
	quotaLimit := flag.Int64("quota-limit", 512<<20, "Local storage quota in bytes")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage()
		os.Exit(1)
	}
	command := args[0]

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	ctx := context.Background()

	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	// The CLI has no platform connectivity signal; it starts online and
	// lets the probe downgrade the score.
	source := network.NewManualSource(models.NetworkStatus{
		IsOnline:       true,
		ConnectionType: "unknown",
	})

	eng, err := engine.New(ctx, cfg, engine.Deps{
		Backend:       boltStorage,
		OperationLog:  boltStorage,
		Transport:     httpapi.NewClient(*serverURL, *authToken),
		NetworkSource: source,
		Prober:        network.NewHTTPProber(*serverURL + "/api/v1/health"),
		Estimator:     boltdb.NewEstimator(boltStorage, *quotaLimit),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize engine: %v\n", err)
		os.Exit(1)
	}

	eng.Start(ctx)
	defer eng.Close()

	cli.New(eng).Run(ctx, command, args[1:])
}

func printVersion() {
	fmt.Printf("offsync %s\n", Version)
	fmt.Printf("  build date: %s\n", BuildDate)
	fmt.Printf("  git commit: %s\n", GitCommit)
}
