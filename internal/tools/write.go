package tools

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Weavly/AppLoom/internal/domain/tool"
	"github.com/Weavly/AppLoom/internal/normalize"
)

// upsert is a prepared write_files entry, built in the parallel phase and
// applied in the synchronous merge.
type upsert struct {
	path    string
	content string
	existed bool
}

type writeSchema struct {
	d Deps
}

func (s writeSchema) Validate(args any) (any, error) {
	recs, err := s.d.Norm.Files(args, normalize.NeedContent)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("files must contain at least one record")
	}
	if len(recs) > s.d.WriteBatchLimit {
		return nil, fmt.Errorf(
			"write_files received %d file records, which exceeds the limit of %d per call; split the batch into multiple smaller calls",
			len(recs), s.d.WriteBatchLimit)
	}
	return recs, nil
}

// WriteFiles returns the tool that upserts file contents. Records are
// prepared in parallel (each goroutine fills its own slot) and merged into
// the store in one synchronous step so no caller observes a partial batch.
func WriteFiles(d Deps) tool.Definition {
	return tool.Definition{
		Name:        NameWriteFiles,
		Version:     toolVersion,
		Description: "Create or overwrite files. Arguments: {\"files\": [{\"filePath\": \"src/App.tsx\", \"fileContent\": \"...\"}]}; send the object directly, never JSON-stringified. Content replaces the file wholesale; include the complete body.",
		InputSchema: writeSchema{d: d},
		Permissions: []string{permCodebaseWrite},
		Metadata:    tool.Metadata{Category: categoryCodebase},
		Handler: func(ctx context.Context, args any, _ tool.Context) (any, error) {
			recs := args.([]normalize.Record)

			// Prepare per-record work in parallel; the session protocol
			// guarantees no interleaved mutation between here and the merge.
			prepared := make([]upsert, len(recs))
			g, _ := errgroup.WithContext(ctx)
			for i, rec := range recs {
				g.Go(func() error {
					_, existed := d.Store.Get(rec.FilePath)
					prepared[i] = upsert{path: rec.FilePath, content: rec.FileContent, existed: existed}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return nil, err
			}

			// Single synchronous merge so no partial batch is observable.
			lines := make([]string, 0, len(prepared))
			for _, u := range prepared {
				d.Store.Set(u.path, u.content)
				if u.existed {
					lines = append(lines, fmt.Sprintf("Successfully updated file: %s", u.path))
				} else {
					lines = append(lines, fmt.Sprintf("Successfully created file: %s", u.path))
				}
			}
			return lines, nil
		},
	}
}

// DeleteFiles returns the idempotent file removal tool. Missing paths are
// reported as ignored, never as errors.
func DeleteFiles(d Deps) tool.Definition {
	return tool.Definition{
		Name:        NameDeleteFiles,
		Version:     toolVersion,
		Description: "Delete files by path. Arguments: {\"filePaths\": [\"src/Old.tsx\", ...]}. Paths that do not exist are ignored.",
		InputSchema: pathsSchema{d: d},
		Permissions: []string{permCodebaseWrite},
		Metadata:    tool.Metadata{Category: categoryCodebase},
		Handler: func(_ context.Context, args any, _ tool.Context) (any, error) {
			paths := args.([]string)

			lines := make([]string, 0, len(paths))
			for _, p := range paths {
				if d.Store.Delete(p) {
					lines = append(lines, fmt.Sprintf("Deleted file: %s", p))
				} else {
					lines = append(lines, fmt.Sprintf("File not found (ignored): %s", p))
				}
			}
			return lines, nil
		},
	}
}

type planSchema struct {
	d Deps
}

func (s planSchema) Validate(args any) (any, error) {
	recs, err := s.d.Norm.Files(args, normalize.NeedPurpose)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("files must contain at least one record")
	}
	return recs, nil
}

// PlanFiles returns the read-only declaration-of-intent tool: it formats an
// upcoming batch of writes as a markdown bullet list without touching the
// store.
func PlanFiles(d Deps) tool.Definition {
	return tool.Definition{
		Name:        NamePlanFiles,
		Version:     toolVersion,
		Description: "Declare which files you are about to write and why, before calling write_files. Arguments: {\"files\": [{\"filePath\": \"src/App.tsx\", \"purpose\": \"...\"}]}. Does not modify anything.",
		InputSchema: planSchema{d: d},
		Permissions: []string{permCodebaseRead},
		Metadata:    tool.Metadata{Category: categoryCodebase},
		Handler: func(_ context.Context, args any, _ tool.Context) (any, error) {
			recs := args.([]normalize.Record)

			var b strings.Builder
			b.WriteString("Planned files:\n")
			for _, rec := range recs {
				fmt.Fprintf(&b, "- **%s**: %s\n", rec.FilePath, rec.Purpose)
			}
			return b.String(), nil
		},
	}
}
