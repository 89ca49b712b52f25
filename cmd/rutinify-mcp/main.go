package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/rutinify/internal/config"
	"github.com/claude/rutinify/internal/mcp"
	"github.com/claude/rutinify/internal/storage"
	"github.com/claude/rutinify/internal/tracker"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	serverURL := flag.String("server", "", "rutinify server URL; when set, data is read over the REST API")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("rutinify-mcp", Version)
		return
	}

	// stdout carries the protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	if *serverURL != "" {
		ds = mcp.NewHTTPClient(*serverURL)
		log.Info("remote mode", "server", *serverURL)
	} else {
		cfg, err := config.LoadOrDefault(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		kv, err := storage.Open(context.Background(), cfg.Storage.Options())
		if err != nil {
			log.Error("failed to open storage", "error", err)
			os.Exit(1)
		}
		defer kv.Close()
		ds = mcp.NewLocal(tracker.New(kv, log))
		log.Info("local mode", "storage", cfg.Storage.Driver)
	}

	if err := server.ServeStdio(mcp.New(ds, Version, log)); err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
