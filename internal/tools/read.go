package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Weavly/AppLoom/internal/domain/tool"
)

// FileContent is one per-path lookup result. A missing path fills Error and
// leaves Content empty rather than failing the whole call.
type FileContent struct {
	Path    string  `json:"path"`
	Content string  `json:"content"`
	Error   *string `json:"error"`
}

// SearchResult is the output of find_files_with_text.
type SearchResult struct {
	MatchingFiles []string `json:"matchingFiles"`
	Count         int      `json:"count"`
}

// listArgs are the coerced arguments of list_files.
type listArgs struct {
	Directory string
}

type listSchema struct{}

func (listSchema) Validate(args any) (any, error) {
	dir, ok := stringField(args, "directory")
	if !ok {
		// Tolerate a bare string argument.
		if s, isStr := args.(string); isStr {
			dir = s
		}
	}
	return listArgs{Directory: cleanDirectory(dir)}, nil
}

// ListFiles returns the tool that enumerates paths, optionally scoped to a
// directory. Results are lexically sorted for reproducible listings.
func ListFiles(d Deps) tool.Definition {
	return tool.Definition{
		Name:        NameListFiles,
		Version:     toolVersion,
		Description: "List all file paths in the codebase. Pass an optional 'directory' to scope the listing; omit it or pass '.' for the full tree.",
		InputSchema: listSchema{},
		Permissions: []string{permCodebaseRead},
		Metadata:    tool.Metadata{Category: categoryCodebase},
		Handler: func(_ context.Context, args any, _ tool.Context) (any, error) {
			la := args.(listArgs)

			var paths []string
			for _, p := range d.Store.Paths() {
				if inDirectory(p, la.Directory) {
					paths = append(paths, p)
				}
			}
			sort.Strings(paths)
			if paths == nil {
				paths = []string{}
			}
			return paths, nil
		},
	}
}

type pathsSchema struct {
	d Deps
}

func (s pathsSchema) Validate(args any) (any, error) {
	paths, err := s.d.Norm.Paths(args)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.New("filePaths must contain at least one path")
	}
	return paths, nil
}

// GetFilesContent returns the tool that reads file bodies. Each requested
// path yields its own {path, content, error} triple; partial success is the
// norm, not the exception.
func GetFilesContent(d Deps) tool.Definition {
	return tool.Definition{
		Name:        NameGetContent,
		Version:     toolVersion,
		Description: "Read the full content of one or more files. Arguments: {\"filePaths\": [\"src/App.tsx\", ...]}. Missing paths are reported per entry, not as a call failure.",
		InputSchema: pathsSchema{d: d},
		Permissions: []string{permCodebaseRead},
		Metadata:    tool.Metadata{Category: categoryCodebase},
		Handler: func(_ context.Context, args any, _ tool.Context) (any, error) {
			paths := args.([]string)

			out := make([]FileContent, 0, len(paths))
			for _, p := range paths {
				content, ok := d.Store.Content(p)
				if !ok {
					msg := fmt.Sprintf("File not found: %s", p)
					out = append(out, FileContent{Path: p, Error: &msg})
					continue
				}
				out = append(out, FileContent{Path: p, Content: content})
			}
			return out, nil
		},
	}
}

// searchArgs are the coerced arguments of find_files_with_text.
type searchArgs struct {
	Keyword       string
	CaseSensitive bool
	Directory     string
}

type searchSchema struct{}

func (searchSchema) Validate(args any) (any, error) {
	keyword, ok := stringField(args, "keyword")
	if !ok || keyword == "" {
		return nil, errors.New("keyword must be a non-empty string to search for")
	}
	cs, _ := boolField(args, "caseSensitive")
	dir, _ := stringField(args, "directory")
	return searchArgs{
		Keyword:       keyword,
		CaseSensitive: cs,
		Directory:     cleanDirectory(dir),
	}, nil
}

// FindFilesWithText returns the substring (not regex) content search tool.
// Results are memoized in the session cache keyed on the store revision, so
// any mutation makes stale entries unreachable.
func FindFilesWithText(d Deps) tool.Definition {
	return tool.Definition{
		Name:        NameFindText,
		Version:     toolVersion,
		Description: "Find files whose content contains a keyword (plain substring, not regex). Optional: 'caseSensitive' (default false) and 'directory' to scope the search.",
		InputSchema: searchSchema{},
		Permissions: []string{permCodebaseRead},
		Metadata:    tool.Metadata{Category: categoryCodebase},
		Handler: func(ctx context.Context, args any, _ tool.Context) (any, error) {
			sa := args.(searchArgs)

			key := fmt.Sprintf("search:%d:%q:%t:%s",
				d.Store.Revision(), sa.Keyword, sa.CaseSensitive, sa.Directory)
			if d.Cache != nil {
				if data, ok, err := d.Cache.Get(ctx, key); err == nil && ok {
					var cached SearchResult
					if err := json.Unmarshal(data, &cached); err == nil {
						return cached, nil
					}
				}
			}

			needle := sa.Keyword
			if !sa.CaseSensitive {
				needle = strings.ToLower(needle)
			}

			matches := []string{}
			for _, p := range d.Store.Paths() {
				if !inDirectory(p, sa.Directory) {
					continue
				}
				content, ok := d.Store.Content(p)
				if !ok {
					continue
				}
				haystack := content
				if !sa.CaseSensitive {
					haystack = strings.ToLower(haystack)
				}
				if strings.Contains(haystack, needle) {
					matches = append(matches, p)
				}
			}
			sort.Strings(matches)

			result := SearchResult{MatchingFiles: matches, Count: len(matches)}
			if d.Cache != nil {
				if data, err := json.Marshal(result); err == nil {
					_ = d.Cache.Set(ctx, key, data, d.CacheTTL)
				}
			}
			return result, nil
		},
	}
}
