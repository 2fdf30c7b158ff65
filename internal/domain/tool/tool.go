// Package tool defines the domain model for schema-validated, named
// operations exposed to the generation agent.
package tool

import (
	"context"
	"time"
)

// Handler executes a tool with already-validated arguments.
type Handler func(ctx context.Context, args any, tc Context) (any, error)

// Schema validates and coerces raw tool arguments before the handler runs.
// The returned value is what the handler receives as args.
type Schema interface {
	Validate(args any) (any, error)
}

// Metadata carries advisory, LLM- and orchestrator-facing attributes of a
// tool. Timeout is enforced, if at all, by the orchestrator, not this core.
type Metadata struct {
	Category        string        `json:"category"`
	RequiresConfirm bool          `json:"requires_confirm"`
	MaxRetries      int           `json:"max_retries"`
	Timeout         time.Duration `json:"timeout"`
}

// Definition is a named, versioned operation bound to a virtual codebase.
// Description is natural-language text consumed by the LLM, not executed.
type Definition struct {
	Name        string
	Version     string
	Description string
	InputSchema Schema
	Permissions []string
	Metadata    Metadata
	Handler     Handler
}

// Context identifies the session on whose behalf a tool call runs.
type Context struct {
	DocID          string
	UserID         string
	OrganizationID string
	Connectors     map[string]string
}

// Result is the uniform outcome of a tool invocation, fed back into the
// LLM context by the agent loop.
type Result struct {
	Success         bool   `json:"success"`
	Output          any    `json:"output,omitempty"`
	Error           *Error `json:"error,omitempty"`
	RequiresConfirm bool   `json:"requires_confirm,omitempty"`
	ConfirmPayload  any    `json:"confirm_payload,omitempty"`
}
