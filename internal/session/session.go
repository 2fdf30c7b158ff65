// Package session wires one generation session: a virtual codebase seeded
// from the orchestrator's payload, a tool registry bound to it, and the
// observability around each tool call. Every session owns its own store and
// registry, so concurrent sessions in one process never share state.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	otelx "github.com/Weavly/AppLoom/internal/adapter/otel"
	"github.com/Weavly/AppLoom/internal/config"
	"github.com/Weavly/AppLoom/internal/domain/codebase"
	"github.com/Weavly/AppLoom/internal/domain/tool"
	"github.com/Weavly/AppLoom/internal/logger"
	"github.com/Weavly/AppLoom/internal/normalize"
	"github.com/Weavly/AppLoom/internal/port/cache"
	"github.com/Weavly/AppLoom/internal/port/toolevent"
	"github.com/Weavly/AppLoom/internal/registry"
	"github.com/Weavly/AppLoom/internal/tools"
)

// Options carries the optional collaborators of a session. Zero values
// disable the corresponding concern.
type Options struct {
	Logger   *slog.Logger
	Metrics  *otelx.Metrics
	Cache    cache.Cache
	CacheTTL time.Duration
	Sink     toolevent.Sink
}

// Session is one generation session. The driving agent loop issues tool
// calls sequentially and feeds each result back into the LLM context.
type Session struct {
	id      string
	store   *codebase.Store
	reg     *registry.Registry
	tc      tool.Context
	sink    toolevent.Sink
	metrics *otelx.Metrics
	log     *slog.Logger
}

// New seeds a store from the initialization payload, registers the codebase
// tools against it, and returns the ready session. A nil or empty payload
// starts the session with an empty tree.
func New(cfg config.Session, payload []byte, tc tool.Context, opts Options) (*Session, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	store := codebase.NewStore()
	if len(payload) > 0 {
		if !store.ReplaceAll(payload) {
			return nil, fmt.Errorf("session init: codebase payload rejected, expected {\"files\":[{\"path\":...,\"content\":...}]}")
		}
	}

	reg := registry.New(log, opts.Metrics)
	tools.RegisterAll(reg, tools.Deps{
		Store:           store,
		Norm:            normalize.New(cfg.MaxParseAttempts),
		Cache:           opts.Cache,
		CacheTTL:        opts.CacheTTL,
		WriteBatchLimit: cfg.WriteBatchLimit,
	})

	s := &Session{
		id:      uuid.NewString(),
		store:   store,
		reg:     reg,
		tc:      tc,
		sink:    opts.Sink,
		metrics: opts.Metrics,
		log:     log,
	}

	log.Info("session started",
		"session_id", s.id,
		"doc_id", tc.DocID,
		"organization_id", tc.OrganizationID,
		"files", store.Len(),
	)
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Store returns the session's virtual codebase.
func (s *Session) Store() *codebase.Store { return s.store }

// Manifest returns the tool descriptors shown to the LLM.
func (s *Session) Manifest() []registry.Descriptor { return s.reg.Manifest() }

// Tools returns the tool definitions registered for this session.
func (s *Session) Tools() []tool.Definition { return s.reg.List(registry.Filter{}) }

// Readme returns the tree's README.md content for seeding agent context.
func (s *Session) Readme() string { return s.store.Readme() }

// Export returns the path-sorted snapshot handed to the external
// persistence collaborator at session end.
func (s *Session) Export() []codebase.File { return s.store.Export() }

// Invoke dispatches one tool call, stamping a fresh call ID into the
// context and publishing a tool event after completion.
func (s *Session) Invoke(ctx context.Context, name string, args any) tool.Result {
	callID := uuid.NewString()
	ctx = logger.WithSessionID(ctx, s.id)
	ctx = logger.WithCallID(ctx, callID)

	start := time.Now()
	res := s.reg.Invoke(ctx, name, args, s.tc)
	if s.metrics != nil {
		s.metrics.StoreFiles.Record(ctx, int64(s.store.Len()))
	}
	s.publishEvent(ctx, callID, name, res, time.Since(start))
	return res
}

// publishEvent reports the invocation to the platform's event stream.
// Publication failures are logged, never surfaced to the agent.
func (s *Session) publishEvent(ctx context.Context, callID, name string, res tool.Result, elapsed time.Duration) {
	if s.sink == nil {
		return
	}

	p := toolevent.Payload{
		SessionID:  s.id,
		CallID:     callID,
		Tool:       name,
		Success:    res.Success,
		DurationMS: elapsed.Milliseconds(),
		FileCount:  s.store.Len(),
	}
	if res.Error != nil {
		p.ErrorType = string(res.Error.Type)
	}

	data, err := json.Marshal(p)
	if err != nil {
		s.log.Error("tool event marshal failed", "error", err)
		return
	}
	if err := s.sink.Publish(ctx, toolevent.SubjectToolResult, data); err != nil {
		s.log.Error("tool event publish failed",
			"subject", toolevent.SubjectToolResult,
			"error", err,
		)
	}
}
