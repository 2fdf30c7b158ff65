package registry_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/Weavly/AppLoom/internal/domain/tool"
	"github.com/Weavly/AppLoom/internal/registry"
)

type stubSchema struct {
	coerced any
	err     error
}

func (s stubSchema) Validate(any) (any, error) {
	return s.coerced, s.err
}

func newRegistry() *registry.Registry {
	return registry.New(slog.Default(), nil)
}

func echoTool(name, category string, perms ...string) tool.Definition {
	return tool.Definition{
		Name:        name,
		Version:     "1.0.0",
		Description: "echoes its arguments",
		Permissions: perms,
		Metadata:    tool.Metadata{Category: category},
		Handler: func(_ context.Context, args any, _ tool.Context) (any, error) {
			return args, nil
		},
	}
}

func TestInvokeUnknownToolIsFatal(t *testing.T) {
	r := newRegistry()
	res := r.Invoke(context.Background(), "nope", nil, tool.Context{})

	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error.Type != tool.ErrorFatal {
		t.Errorf("expected fatal_error, got %s", res.Error.Type)
	}
	if res.Error.Retryable {
		t.Error("unknown tool must not be retryable")
	}
}

func TestInvokeValidationFailureSkipsHandler(t *testing.T) {
	r := newRegistry()
	ran := false
	def := echoTool("echo", "test")
	def.InputSchema = stubSchema{err: errors.New("directory must be a string")}
	def.Handler = func(_ context.Context, _ any, _ tool.Context) (any, error) {
		ran = true
		return nil, nil
	}
	r.Register(def)

	res := r.Invoke(context.Background(), "echo", 42, tool.Context{})
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error.Type != tool.ErrorValidation {
		t.Errorf("expected validation_error, got %s", res.Error.Type)
	}
	if res.Error.Retryable {
		t.Error("validation errors must not be retryable")
	}
	if ran {
		t.Error("handler must not run on validation failure")
	}
}

func TestInvokeHandlerErrorIsTransient(t *testing.T) {
	r := newRegistry()
	def := echoTool("boom", "test")
	def.Handler = func(_ context.Context, _ any, _ tool.Context) (any, error) {
		return nil, errors.New("store unavailable")
	}
	r.Register(def)

	res := r.Invoke(context.Background(), "boom", nil, tool.Context{})
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error.Type != tool.ErrorTransient {
		t.Errorf("expected transient_error, got %s", res.Error.Type)
	}
	if !res.Error.Retryable {
		t.Error("handler errors must be retryable")
	}
}

func TestInvokeHandlerPanicIsTransient(t *testing.T) {
	r := newRegistry()
	def := echoTool("panics", "test")
	def.Handler = func(_ context.Context, _ any, _ tool.Context) (any, error) {
		panic("index out of range")
	}
	r.Register(def)

	res := r.Invoke(context.Background(), "panics", nil, tool.Context{})
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error.Type != tool.ErrorTransient {
		t.Errorf("expected transient_error, got %s", res.Error.Type)
	}
	if !res.Error.Retryable {
		t.Error("panics must be retryable")
	}
}

func TestInvokePassesCoercedArgs(t *testing.T) {
	r := newRegistry()
	def := echoTool("echo", "test")
	def.InputSchema = stubSchema{coerced: "coerced-args"}
	r.Register(def)

	res := r.Invoke(context.Background(), "echo", "raw", tool.Context{})
	if !res.Success {
		t.Fatalf("invoke failed: %+v", res.Error)
	}
	if res.Output != "coerced-args" {
		t.Errorf("handler got %v, want coerced args", res.Output)
	}
}

func TestLastRegistrationWins(t *testing.T) {
	r := newRegistry()
	r.Register(echoTool("dup", "first"))
	r.Register(echoTool("dup", "second"))

	def, ok := r.Get("dup")
	if !ok {
		t.Fatal("tool missing")
	}
	if def.Metadata.Category != "second" {
		t.Errorf("expected last registration to win, got %s", def.Metadata.Category)
	}
}

func TestListFilters(t *testing.T) {
	r := newRegistry()
	r.Register(echoTool("a", "read", "codebase:read"))
	r.Register(echoTool("b", "write", "codebase:write"))
	r.Register(echoTool("c", "write", "codebase:write", "codebase:read"))

	tests := []struct {
		name   string
		filter registry.Filter
		want   []string
	}{
		{"empty filter returns all sorted", registry.Filter{}, []string{"a", "b", "c"}},
		{"category only", registry.Filter{Category: "write"}, []string{"b", "c"}},
		{"permissions only", registry.Filter{Permissions: []string{"codebase:read"}}, []string{"a", "c"}},
		{
			"category and permissions AND",
			registry.Filter{Category: "write", Permissions: []string{"codebase:read"}},
			[]string{"c"},
		},
		{"no match", registry.Filter{Category: "read", Permissions: []string{"codebase:write"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.List(tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d tools, got %d", len(tt.want), len(got))
			}
			for i := range got {
				if got[i].Name != tt.want[i] {
					t.Errorf("tool %d: expected %s, got %s", i, tt.want[i], got[i].Name)
				}
			}
		})
	}
}

func TestManifestSorted(t *testing.T) {
	r := newRegistry()
	r.Register(echoTool("zeta", "x"))
	r.Register(echoTool("alpha", "x"))

	m := r.Manifest()
	if len(m) != 2 || m[0].Name != "alpha" || m[1].Name != "zeta" {
		t.Fatalf("manifest not sorted by name: %+v", m)
	}
	if m[0].Description == "" {
		t.Error("descriptor missing description")
	}
}

func TestRequiresConfirmPropagates(t *testing.T) {
	r := newRegistry()
	def := echoTool("confirm-me", "write")
	def.Metadata.RequiresConfirm = true
	r.Register(def)

	res := r.Invoke(context.Background(), "confirm-me", "payload", tool.Context{})
	if !res.Success {
		t.Fatalf("invoke failed: %+v", res.Error)
	}
	if !res.RequiresConfirm {
		t.Error("expected requires_confirm on result")
	}
	if res.ConfirmPayload != "payload" {
		t.Errorf("unexpected confirm payload: %v", res.ConfirmPayload)
	}
}
