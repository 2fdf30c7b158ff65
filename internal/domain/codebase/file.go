// Package codebase models the in-memory virtual source tree of a generated
// application. One Store lives for the duration of a single generation
// session and is mutated only through tool calls.
package codebase

import (
	"encoding/json"
	"fmt"
)

// DefaultFileType is assigned to entries created by a write when no prior
// entry exists for the path.
const DefaultFileType = "file"

// File is a single entry in the virtual tree. Path is the unique key
// (POSIX-style, stored verbatim). Content is the full text body; writes
// replace it wholesale, never diff it. Type is free-form metadata carried
// from the initialization payload.
type File struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// payload is the initialization envelope handed in by the orchestrator.
type payload struct {
	Files []File `json:"files"`
}

// ParsePayload decodes a {"files":[...]} JSON blob into file records.
// Records with an empty path are rejected rather than silently skipped so a
// malformed payload never half-populates a session.
func ParsePayload(data []byte) ([]File, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse codebase payload: %w", err)
	}
	if p.Files == nil {
		return nil, fmt.Errorf("parse codebase payload: missing files array")
	}
	for i := range p.Files {
		if p.Files[i].Path == "" {
			return nil, fmt.Errorf("parse codebase payload: file %d has empty path", i)
		}
	}
	return p.Files, nil
}
