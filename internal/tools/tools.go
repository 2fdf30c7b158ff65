// Package tools defines the six codebase tools exposed to the generation
// agent: list_files, get_files_content, find_files_with_text, write_files,
// delete_files, and plan_files. Each is thin policy over the virtual store
// and the argument normalizer; none carries cross-call state, so calls can
// be freely interleaved and retried against the current store contents.
package tools

import (
	"strings"
	"time"

	"github.com/Weavly/AppLoom/internal/domain/codebase"
	"github.com/Weavly/AppLoom/internal/normalize"
	"github.com/Weavly/AppLoom/internal/port/cache"
	"github.com/Weavly/AppLoom/internal/registry"
)

// Tool names as seen by the LLM.
const (
	NameListFiles     = "list_files"
	NameGetContent    = "get_files_content"
	NameFindText      = "find_files_with_text"
	NameWriteFiles    = "write_files"
	NameDeleteFiles   = "delete_files"
	NamePlanFiles     = "plan_files"
	toolVersion       = "1.0.0"
	categoryCodebase  = "codebase"
	permCodebaseRead  = "codebase:read"
	permCodebaseWrite = "codebase:write"
)

// Deps binds the tools to one session's collaborators. Cache is optional;
// when nil, find_files_with_text runs uncached.
type Deps struct {
	Store           *codebase.Store
	Norm            *normalize.Normalizer
	Cache           cache.Cache
	CacheTTL        time.Duration
	WriteBatchLimit int
}

// RegisterAll registers the six codebase tools on the registry.
func RegisterAll(r *registry.Registry, d Deps) {
	r.Register(ListFiles(d))
	r.Register(GetFilesContent(d))
	r.Register(FindFilesWithText(d))
	r.Register(WriteFiles(d))
	r.Register(DeleteFiles(d))
	r.Register(PlanFiles(d))
}

// inDirectory reports whether path falls under dir. An empty or "." dir
// matches everything; otherwise the path must equal dir or carry it as a
// "/"-terminated prefix, so "src" never matches "srcfoo.ts".
func inDirectory(path, dir string) bool {
	if dir == "" || dir == "." {
		return true
	}
	return path == dir || strings.HasPrefix(path, dir+"/")
}

// cleanDirectory normalizes a directory argument: trims whitespace and any
// trailing slash before prefix comparison.
func cleanDirectory(dir string) string {
	return strings.TrimSuffix(strings.TrimSpace(dir), "/")
}

// stringField extracts an optional string field from map-shaped args.
func stringField(args any, key string) (string, bool) {
	m, ok := args.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := m[key].(string)
	return s, ok
}

// boolField extracts an optional bool field from map-shaped args.
func boolField(args any, key string) (bool, bool) {
	m, ok := args.(map[string]any)
	if !ok {
		return false, false
	}
	b, ok := m[key].(bool)
	return b, ok
}
