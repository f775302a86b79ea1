package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	dockermcp "github.com/vignesh69420/docker-mcp"
	"github.com/vignesh69420/docker-mcp/audit"
	"github.com/vignesh69420/docker-mcp/compose"
	"github.com/vignesh69420/docker-mcp/container"
	"github.com/vignesh69420/docker-mcp/mcp"
	"github.com/vignesh69420/docker-mcp/tools"
)

// serveCmd runs the MCP server on stdin and stdout until the client
// closes the pipe or the process is signalled.
func serveCmd(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	auditDB := fs.String("audit-db", "", "SQLite audit trail path (empty disables auditing)")
	logLevel := fs.String("log-level", "info", "Log level: debug, info, warn or error")

	fs.Usage = func() {
		fmt.Println(`Usage: docker-mcp serve [options]

Serve the Model Context Protocol over stdio. Requests arrive on stdin,
responses leave on stdout and logs go to stderr.

Options:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  docker-mcp serve
  docker-mcp serve -log-level debug
  docker-mcp serve -audit-db ~/.docker-mcp/audit.db`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	logger := newLogger(*logLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := container.NewManager(container.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	// The server comes up even when the daemon is down. Each tool call
	// reports the failure on its own until the daemon returns.
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	if err := engine.Ping(pingCtx); err != nil {
		logger.Warn("serve: docker daemon unreachable", "error", err)
	}
	cancel()

	reg := tools.NewTools()
	if err := tools.RegisterDockerTools(reg, engine, compose.NewExecutor(compose.WithLogger(logger))); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *auditDB != "" {
		if err := dockermcp.EnsureHome(); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", dockermcp.Home(), err)
			os.Exit(1)
		}
		store, err := audit.Open(*auditDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening audit database %s: %v\n", *auditDB, err)
			os.Exit(1)
		}
		defer store.Close()
		if err := store.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing audit database: %v\n", err)
			os.Exit(1)
		}
		reg.OnInvocation = audit.Recorder(store, logger)
		logger.Info("serve: audit trail enabled", "path", *auditDB)
	}

	srv := mcp.NewServer("docker-mcp", version, reg, mcp.WithLogger(logger))

	logger.Info("serve: ready on stdio", "version", version, "tools", len(reg.Names()))
	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
