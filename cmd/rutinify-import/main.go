package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/rutinify/internal/config"
	"github.com/claude/rutinify/internal/importer"
	"github.com/claude/rutinify/internal/storage"
	"github.com/claude/rutinify/internal/tracker"
	"github.com/claude/rutinify/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	serverURL := flag.String("server", "", "rutinify server URL; when set the file is sent to the server instead of the local store")
	name := flag.String("name", "", "routine name (defaults to the file name)")
	dryRun := flag.Bool("dry-run", false, "validate and report counts without adding the routine")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("rutinify-import", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: rutinify-import [-config config.yaml | -server <URL>] [-name <routine>] [-dry-run] <file.csv | dir>\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	path := flag.Arg(0)

	info, err := os.Stat(path)
	if err != nil {
		log.Error("input not found", "path", path, "error", err)
		os.Exit(1)
	}

	if *dryRun {
		log.Info("DRY RUN mode: routines will be validated but not added")
	}

	ctx := context.Background()
	switch {
	case info.IsDir() && *serverURL == "":
		log.Error("importing a directory requires -server")
		os.Exit(1)
	case info.IsDir():
		os.Exit(uploadDir(ctx, log, *serverURL, path, *dryRun))
	}

	routineName := *name
	if routineName == "" {
		routineName = importer.RoutineNameFromFilename(path)
	}

	if *serverURL != "" {
		os.Exit(importRemote(ctx, log, *serverURL, path, routineName, *dryRun))
	}
	os.Exit(importLocal(ctx, log, *configPath, path, routineName, *dryRun))
}

func importLocal(ctx context.Context, log *slog.Logger, configPath, path, name string, dryRun bool) int {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		return 1
	}

	kv, err := storage.Open(ctx, cfg.Storage.Options())
	if err != nil {
		log.Error("failed to open storage", "error", err)
		return 1
	}
	defer kv.Close()
	log.Info("storage ready", "driver", cfg.Storage.Driver)

	f, err := os.Open(path)
	if err != nil {
		log.Error("failed to open file", "error", err)
		return 1
	}
	defer f.Close()

	t := tracker.New(kv, log)
	stats, err := importer.New(t, log, dryRun).Import(ctx, name, f)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		return 1
	}
	printStats(log, stats)
	log.Info("import complete")
	return 0
}

func importRemote(ctx context.Context, log *slog.Logger, serverURL, path, name string, dryRun bool) int {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("failed to read file", "error", err)
		return 1
	}

	stats, err := upload.NewClient(serverURL).ImportCSV(ctx, name, data, dryRun)
	var rejected *upload.RejectedError
	switch {
	case errors.As(err, &rejected):
		printProblems(log, rejected.Problems)
		log.Error("import rejected", "routine", name, "problems", len(rejected.Problems))
		return 1
	case err != nil:
		log.Error("import failed", "routine", name, "error", err)
		return 1
	}
	printStats(log, stats)
	log.Info("import complete", "server", serverURL)
	return 0
}

func uploadDir(ctx context.Context, log *slog.Logger, serverURL, dir string, dryRun bool) int {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		return 1
	}
	state, err := upload.OpenStateDB(filepath.Join(homeDir, ".rutinify-import"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		return 1
	}
	defer state.Close()

	stats, err := upload.New(upload.NewClient(serverURL), state, dir, dryRun, log).Run(ctx)
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files uploaded:   %d\n", stats.FilesUploaded)
	fmt.Printf("  Files skipped:    %d (unchanged)\n", stats.FilesSkipped)
	fmt.Printf("  Files existing:   %d (routine name taken)\n", stats.FilesExisting)
	fmt.Printf("  Files rejected:   %d\n", stats.FilesRejected)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	fmt.Printf("  Exercises:        %d\n", stats.Exercises)
	fmt.Printf("  Sets:             %d\n", stats.Sets)
	fmt.Println()
	if err != nil {
		log.Error("upload failed", "error", err)
		return 1
	}
	if stats.FilesRejected > 0 || stats.FilesErrored > 0 {
		return 1
	}
	return 0
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	if stats == nil {
		return
	}
	log.Info("import stats",
		"routine", stats.RoutineName,
		"rows", stats.RowsParsed,
		"blank_rows", stats.BlankRows,
		"days", stats.Days,
		"supersets", stats.Supersets,
		"exercises", stats.Exercises,
		"sets", stats.Sets,
	)
	printProblems(log, stats.Problems)
}

func printProblems(log *slog.Logger, problems []importer.Problem) {
	for _, p := range problems {
		log.Warn("invalid row", "row", p.Row, "field", p.Field, "message", p.Message)
	}
}
