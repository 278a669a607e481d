package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/a3tai/mcp-diarias/internal/config"
	"github.com/a3tai/mcp-diarias/internal/forms"
	"github.com/a3tai/mcp-diarias/internal/logging"
	"github.com/a3tai/mcp-diarias/internal/mcp"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// isVersionRequest reports whether the arguments ask for the version
func isVersionRequest(args []string) bool {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return true
		}
	}
	return false
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server, log *logrus.Logger) int {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signalCh)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.WithField("signal", sig.String()).Info("Initiating graceful shutdown")
		cancel()

		if err := <-serverErrCh; err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("Server shutdown with error")
			return 1
		}

	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("Server error")
			return 1
		}
	}

	log.Info("Server stopped successfully")
	return 0
}

// runStdioMode handles stdio mode execution. The parent process controls
// the lifecycle: the server returns when stdin is closed.
func runStdioMode(ctx context.Context, server *mcp.Server, log *logrus.Logger) int {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("Server error")
		return 1
	}
	return 0
}

func run() int {
	if isVersionRequest(os.Args[1:]) {
		printVersion()
		return 0
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	if version != "dev" {
		cfg.Version = version
	}

	log := logging.New(cfg)
	log.WithField("config", cfg.String()).Debug("Starting with configuration")

	svc, err := forms.NewService(cfg, log)
	if err != nil {
		log.WithError(err).Error("Failed to create forms service")
		return 1
	}

	server, err := mcp.NewServer(cfg, svc, log)
	if err != nil {
		log.WithError(err).Error("Failed to create MCP server")
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		return runServerMode(ctx, cancel, server, log)
	}
	return runStdioMode(ctx, server, log)
}

func main() {
	os.Exit(run())
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("MCP Diárias\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
