package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/pflag"

	"github.com/rpggio/guidequeue/internal/config"
	"github.com/rpggio/guidequeue/internal/domain/activity"
	"github.com/rpggio/guidequeue/internal/domain/guide"
	"github.com/rpggio/guidequeue/internal/domain/schedule"
	"github.com/rpggio/guidequeue/internal/mcp"
	"github.com/rpggio/guidequeue/internal/scheduler"
	"github.com/rpggio/guidequeue/internal/store"
	"github.com/rpggio/guidequeue/internal/transport"
)

func main() {
	os.Exit(serve(os.Args[1:]))
}

// serve runs the process and returns its exit code. Deferred cleanup runs
// before main exits.
func serve(args []string) int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, ".env error: %v\n", err)
	}

	flags := pflag.NewFlagSet("guidequeue", pflag.ContinueOnError)
	config.RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if logPath := os.Getenv("GUIDEQUEUE_LOG_PATH"); logPath != "" {
		fileWriter, err := newLogFileWriter(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer fileWriter.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		return 1
	}
	return 0
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	roster, err := loadRoster(cfg.Roster)
	if err != nil {
		return err
	}

	be, err := openBackend(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer be.Close()

	st := store.New(be.KV, store.Options{
		KeyPrefix: cfg.Store.KeyPrefix,
		Capacity:  cfg.Slots.Capacity,
		Logger:    logger,
	})
	activitySvc := activity.NewService(be.Activity, logger)
	scheduleSvc := schedule.NewService(roster, st, activitySvc, schedule.Options{Logger: logger})
	scheduleSvc.Load(ctx)

	if cfg.Reset.Schedule != "" {
		reset, err := scheduler.New(cfg.Reset.Schedule, cfg.Reset.Timezone, scheduleSvc, logger)
		if err != nil {
			return err
		}
		reset.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			reset.Stop(stopCtx)
		}()
	}

	handler := mcp.NewHandler(scheduleSvc, activitySvc)
	mcpServer := mcp.NewServer(mcp.Config{
		Handler:       handler,
		AdminToken:    cfg.Auth.AdminToken,
		TransportMode: cfg.Transport.Mode,
		Logger:        logger,
	})

	if cfg.Transport.Mode == "stdio" {
		return runStdioMode(ctx, logger, mcpServer)
	}
	return runHTTPMode(ctx, logger, cfg, handler, mcpServer)
}

func loadRoster(cfg config.RosterConfig) (*guide.Directory, error) {
	guides := guide.DefaultRoster(cfg.Size)
	if cfg.Path != "" {
		loaded, err := guide.LoadRoster(cfg.Path)
		if err != nil {
			return nil, err
		}
		guides = loaded
	}
	return guide.NewDirectory(guides)
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "admin", "local")

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, cfg config.Config, handler *mcp.Handler, mcpServer *sdkmcp.Server) error {
	opts := transport.Options{
		AdminToken: cfg.Auth.AdminToken,
		Logger:     logger,
	}
	if cfg.Transport.MCP {
		opts.MCP = sdkmcp.NewStreamableHTTPHandler(
			func(*http.Request) *sdkmcp.Server { return mcpServer },
			&sdkmcp.StreamableHTTPOptions{
				SessionTimeout: 30 * time.Minute,
			},
		)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           transport.NewServer(handler, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", httpServer.Addr, "mcp", cfg.Transport.MCP)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
