// Command apploom runs one generation session as an MCP server on stdio.
// The host process (or a developer poking at the tool surface) seeds the
// virtual codebase from a JSON file and drives the six codebase tools over
// the Model Context Protocol.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	almcp "github.com/Weavly/AppLoom/internal/adapter/mcp"
	alnats "github.com/Weavly/AppLoom/internal/adapter/nats"
	otelx "github.com/Weavly/AppLoom/internal/adapter/otel"
	"github.com/Weavly/AppLoom/internal/adapter/ristretto"
	"github.com/Weavly/AppLoom/internal/config"
	"github.com/Weavly/AppLoom/internal/domain/tool"
	"github.com/Weavly/AppLoom/internal/logger"
	"github.com/Weavly/AppLoom/internal/session"
)

const version = "0.1.0"

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		codebasePath = flag.String("codebase", "", "path to the initial codebase JSON payload (empty for a blank tree)")
		docID        = flag.String("doc", "", "document ID the session belongs to")
		orgID        = flag.String("org", "", "organization ID the session belongs to")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// MCP owns stdout, so logs go to stderr.
	log, logCloser := logger.NewWithWriter(os.Stderr, cfg.Logging)
	slog.SetDefault(log)
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("config loaded",
		"log_level", cfg.Logging.Level,
		"cache_enabled", cfg.Cache.Enabled,
		"nats_enabled", cfg.NATS.Enabled,
		"telemetry_enabled", cfg.Telemetry.Enabled,
	)

	// --- Infrastructure ---

	opts := session.Options{Logger: log}

	if cfg.Telemetry.Enabled {
		shutdown, err := otelx.Setup(ctx, cfg.Logging.Service, cfg.Telemetry.Endpoint)
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				log.Error("telemetry shutdown failed", "error", err)
			}
		}()

		metrics, err := otelx.NewMetrics()
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		opts.Metrics = metrics
	}

	if cfg.NATS.Enabled {
		sink, err := alnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = sink.Close() }()
		opts.Sink = sink
	}

	if cfg.Cache.Enabled {
		cache, err := ristretto.New(cfg.Cache.MaxBytes)
		if err != nil {
			return fmt.Errorf("cache: %w", err)
		}
		defer cache.Close()
		opts.Cache = cache
		opts.CacheTTL = cfg.Cache.TTL
	}

	// --- Session ---

	// The payload comes from a file; stdin belongs to the MCP protocol.
	var payload []byte
	if *codebasePath != "" {
		payload, err = os.ReadFile(*codebasePath)
		if err != nil {
			return fmt.Errorf("read codebase payload: %w", err)
		}
	}

	sess, err := session.New(cfg.Session, payload, tool.Context{
		DocID:          *docID,
		OrganizationID: *orgID,
	}, opts)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	log.Info("session ready", "session_id", sess.ID(), "files", sess.Store().Len())

	ctx, span := otelx.StartSessionSpan(ctx, sess.ID(), *docID, *orgID)
	defer span.End()

	// --- MCP ---

	srv := almcp.NewServer(almcp.ServerConfig{Name: "apploom", Version: version}, sess, log)
	if err := srv.ServeStdio(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp: %w", err)
	}

	log.Info("session finished", "session_id", sess.ID(), "files", sess.Store().Len())
	return nil
}
