// Package registry dispatches named, schema-validated tool invocations
// against a per-session tool catalogue.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	otelx "github.com/Weavly/AppLoom/internal/adapter/otel"
	"github.com/Weavly/AppLoom/internal/domain/tool"
	"github.com/Weavly/AppLoom/internal/logger"
)

// Filter narrows List results. Zero-value fields are ignored; set fields
// are combined with AND.
type Filter struct {
	Category    string
	Permissions []string
}

// Descriptor is the outward-facing summary of a registered tool, shown to
// the LLM as part of its available-actions manifest.
type Descriptor struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Permissions []string `json:"permissions,omitempty"`
}

// Registry is an instance-scoped tool catalogue. Each generation session
// constructs its own so concurrent sessions never share tool bindings.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]tool.Definition
	log     *slog.Logger
	metrics *otelx.Metrics
}

// New creates an empty Registry. metrics may be nil to disable instruments.
func New(log *slog.Logger, metrics *otelx.Metrics) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		tools:   make(map[string]tool.Definition),
		log:     log,
		metrics: metrics,
	}
}

// Register inserts or overwrites a tool by name. Last registration wins.
func (r *Registry) Register(def tool.Definition) {
	r.mu.Lock()
	r.tools[def.Name] = def
	r.mu.Unlock()

	r.log.Info("tool registered",
		"tool", def.Name,
		"version", def.Version,
		"category", def.Metadata.Category,
	)
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (tool.Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.tools[name]
	return def, ok
}

// List returns tools matching the filter: category equality AND a non-empty
// intersection with the requested permission set. An empty filter returns
// everything. Results are sorted by name for reproducible manifests.
func (r *Registry) List(f Filter) []tool.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]tool.Definition, 0, len(r.tools))
	for _, def := range r.tools {
		if f.Category != "" && def.Metadata.Category != f.Category {
			continue
		}
		if len(f.Permissions) > 0 && !intersects(def.Permissions, f.Permissions) {
			continue
		}
		defs = append(defs, def)
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Manifest returns descriptors for all registered tools, sorted by name.
func (r *Registry) Manifest() []Descriptor {
	defs := r.List(Filter{})
	out := make([]Descriptor, 0, len(defs))
	for _, def := range defs {
		out = append(out, Descriptor{
			Name:        def.Name,
			Version:     def.Version,
			Description: def.Description,
			Category:    def.Metadata.Category,
			Permissions: def.Permissions,
		})
	}
	return out
}

// Invoke is the single dispatch entry point. The error taxonomy on the
// returned Result tells the agent loop what to do next: fatal (unknown
// tool) and validation failures need a different call, transient failures
// can be retried as-is. The handler never runs on a validation failure.
func (r *Registry) Invoke(ctx context.Context, name string, args any, tc tool.Context) tool.Result {
	def, ok := r.Get(name)
	if !ok {
		return tool.Fail(tool.FatalError(fmt.Sprintf(
			"unknown tool %q: it is not registered for this session", name)))
	}

	if def.InputSchema != nil {
		coerced, err := def.InputSchema.Validate(args)
		if err != nil {
			r.observe(ctx, name, 0, tool.ErrorValidation)
			return tool.Fail(tool.ValidationError(err.Error()))
		}
		args = coerced
	}

	ctx, span := otelx.StartToolCallSpan(ctx, logger.CallID(ctx), name)
	defer span.End()

	start := time.Now()
	output, err := r.execute(ctx, def, args, tc)
	elapsed := time.Since(start)

	if err != nil {
		r.observe(ctx, name, elapsed, tool.ErrorTransient)
		return tool.Fail(tool.TransientError(err.Error()))
	}

	r.observe(ctx, name, elapsed, "")
	if def.Metadata.RequiresConfirm {
		return tool.Result{Success: true, Output: output, RequiresConfirm: true, ConfirmPayload: output}
	}
	return tool.Ok(output)
}

// execute runs the handler, converting a panic into an error so a
// misbehaving tool can never take down the session.
func (r *Registry) execute(ctx context.Context, def tool.Definition, args any, tc tool.Context) (output any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("tool %s panicked: %v", def.Name, rec)
		}
	}()
	return def.Handler(ctx, args, tc)
}

// observe records the structured log line and metric points for one
// invocation. errType is empty on success.
func (r *Registry) observe(ctx context.Context, name string, elapsed time.Duration, errType tool.ErrorType) {
	attrs := []any{
		"tool", name,
		"duration_ms", elapsed.Milliseconds(),
		"session_id", logger.SessionID(ctx),
		"call_id", logger.CallID(ctx),
	}
	if errType != "" {
		attrs = append(attrs, "error_type", string(errType))
		r.log.Warn("tool invocation failed", attrs...)
	} else {
		r.log.Info("tool invocation completed", attrs...)
	}

	if r.metrics == nil {
		return
	}
	r.metrics.ToolInvocations.Add(ctx, 1)
	r.metrics.ToolDuration.Record(ctx, elapsed.Seconds())
	if errType != "" {
		r.metrics.ToolFailures.Add(ctx, 1)
	}
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
