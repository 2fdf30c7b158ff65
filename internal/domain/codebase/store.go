package codebase

import (
	"sort"
	"sync"
)

// readmePath is the file surfaced by Readme for seeding agent context.
const readmePath = "README.md"

// Store is the in-memory path → File map for one generation session.
// It is an explicit instance wired through the session, never a package
// singleton, so concurrent sessions in one process cannot share state.
//
// The session protocol is sequential, but the MCP transport and the event
// sink may observe the store from other goroutines, so all access is guarded.
type Store struct {
	mu       sync.RWMutex
	files    map[string]File
	revision uint64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{files: make(map[string]File)}
}

// ReplaceAll parses a {"files":[...]} JSON payload and atomically replaces
// the entire map. On any parse or shape failure it reports false and leaves
// the prior contents untouched. The boolean (rather than error) signature is
// deliberate: this sits on a hot path re-invoked after every mutation, and
// callers needing diagnostics log around it.
func (s *Store) ReplaceAll(data []byte) bool {
	files, err := ParsePayload(data)
	if err != nil {
		return false
	}

	next := make(map[string]File, len(files))
	for _, f := range files {
		// Last write wins on duplicate paths.
		next[f.Path] = f
	}

	s.mu.Lock()
	s.files = next
	s.revision++
	s.mu.Unlock()
	return true
}

// Paths returns all keys in unspecified order. Tools that expose paths
// externally sort before returning.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	return paths
}

// Get returns the file at path.
func (s *Store) Get(path string) (File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[path]
	return f, ok
}

// Content returns the content of the file at path.
func (s *Store) Content(path string) (string, bool) {
	f, ok := s.Get(path)
	return f.Content, ok
}

// Readme returns the content of README.md, or "" when absent. Used by the
// orchestrator to seed agent context; the path is not otherwise special.
func (s *Store) Readme() string {
	c, _ := s.Content(readmePath)
	return c
}

// Set upserts a single entry. An existing entry keeps its prior Type; a new
// entry gets DefaultFileType.
func (s *Store) Set(path, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	typ := DefaultFileType
	if prev, ok := s.files[path]; ok {
		typ = prev.Type
	}
	s.files[path] = File{Path: path, Content: content, Type: typ}
	s.revision++
}

// Delete removes the entry at path, reporting whether it existed.
// Deleting an absent path is not an error; deletion is idempotent.
func (s *Store) Delete(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[path]; !ok {
		return false
	}
	delete(s.files, path)
	s.revision++
	return true
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// Revision returns a counter that increases on every mutation. Cache keys
// derived from it become unreachable as soon as the tree changes.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Export returns a path-sorted snapshot of all files for handoff to an
// external persistence collaborator. The store itself never persists.
func (s *Store) Export() []File {
	s.mu.RLock()
	files := make([]File, 0, len(s.files))
	for _, f := range s.files {
		files = append(files, f)
	}
	s.mu.RUnlock()

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}
