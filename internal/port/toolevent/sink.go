// Package toolevent defines the port for publishing tool invocation events
// to the surrounding platform's observability pipeline.
package toolevent

import "context"

// SubjectToolResult carries one payload per completed tool invocation.
const SubjectToolResult = "sessions.toolcall.result"

// Payload is the schema for sessions.toolcall.result messages.
type Payload struct {
	SessionID  string `json:"session_id"`
	CallID     string `json:"call_id"`
	Tool       string `json:"tool"`
	Success    bool   `json:"success"`
	ErrorType  string `json:"error_type,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	FileCount  int    `json:"file_count"`
}

// Sink is the port interface for publishing session events.
type Sink interface {
	// Publish sends a message to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Close shuts down the sink connection.
	Close() error
}
