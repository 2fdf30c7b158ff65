package normalize

import (
	"encoding/json"
	"strings"
	"testing"
)

func mustStringify(t *testing.T, v any, times int) string {
	t.Helper()
	cur := v
	for i := 0; i < times; i++ {
		data, err := json.Marshal(cur)
		if err != nil {
			t.Fatal(err)
		}
		cur = string(data)
	}
	s, ok := cur.(string)
	if !ok {
		t.Fatal("stringify produced non-string")
	}
	return s
}

func nativeFiles() map[string]any {
	return map[string]any{
		"files": []any{
			map[string]any{"filePath": "src/a.ts", "fileContent": "export const a = 1"},
			map[string]any{"filePath": "src/b.ts", "fileContent": "export const b = 2"},
		},
	}
}

func TestFilesAcceptsEquivalentShapes(t *testing.T) {
	n := New(DefaultParseAttempts)
	native := nativeFiles()

	tests := []struct {
		name string
		raw  any
	}{
		{"native object", native},
		{"native bare array", native["files"]},
		{"once stringified", mustStringify(t, native, 1)},
		{"twice stringified", mustStringify(t, native, 2)},
		{"stringified bare array", mustStringify(t, native["files"], 1)},
		{"stringified files value", map[string]any{
			"files": mustStringify(t, native["files"], 1),
		}},
		{"single record object", map[string]any{
			"filePath": "src/a.ts", "fileContent": "export const a = 1",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := n.Files(tt.raw, NeedContent)
			if err != nil {
				t.Fatalf("Files failed: %v", err)
			}
			if recs[0].FilePath != "src/a.ts" {
				t.Errorf("unexpected first path: %s", recs[0].FilePath)
			}
			if recs[0].FileContent != "export const a = 1" {
				t.Errorf("unexpected first content: %q", recs[0].FileContent)
			}
		})
	}
}

func TestFilesShapesYieldIdenticalRecords(t *testing.T) {
	n := New(DefaultParseAttempts)
	native := nativeFiles()

	base, err := n.Files(native, NeedContent)
	if err != nil {
		t.Fatal(err)
	}

	for _, raw := range []any{
		mustStringify(t, native, 1),
		mustStringify(t, native, 2),
		native["files"],
	} {
		recs, err := n.Files(raw, NeedContent)
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != len(base) {
			t.Fatalf("expected %d records, got %d", len(base), len(recs))
		}
		for i := range recs {
			if recs[i] != base[i] {
				t.Errorf("record %d differs: %+v vs %+v", i, recs[i], base[i])
			}
		}
	}
}

func TestFilesParseCeilingTerminates(t *testing.T) {
	n := New(DefaultParseAttempts)
	blob := mustStringify(t, nativeFiles(), 6)

	_, err := n.Files(blob, NeedContent)
	if err == nil {
		t.Fatal("expected shape error on 6-deep stringified payload")
	}
	if !strings.Contains(err.Error(), "do not JSON-stringify") {
		t.Errorf("error not actionable for the LLM: %v", err)
	}
}

func TestFilesUnescapePass(t *testing.T) {
	n := New(DefaultParseAttempts)
	// Double-escaped control characters: literal \" and \\n in the string.
	raw := `{\"files\": [{\"filePath\": \"a.ts\", \"fileContent\": \"line1\\nline2\"}]}`

	recs, err := n.Files(raw, NeedContent)
	if err != nil {
		t.Fatalf("unescape branch failed: %v", err)
	}
	if recs[0].FilePath != "a.ts" {
		t.Errorf("unexpected path: %s", recs[0].FilePath)
	}
	if recs[0].FileContent != "line1\nline2" {
		t.Errorf("unexpected content: %q", recs[0].FileContent)
	}
}

func TestFilesExtractsObjectFromProse(t *testing.T) {
	n := New(DefaultParseAttempts)
	raw := `Here are the files to write: {"files": [{"filePath": "a.ts", "fileContent": "x"}]} then let me know.`

	recs, err := n.Files(raw, NeedContent)
	if err != nil {
		t.Fatalf("prose extraction failed: %v", err)
	}
	if len(recs) != 1 || recs[0].FilePath != "a.ts" {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestFilesFieldValidation(t *testing.T) {
	n := New(DefaultParseAttempts)

	tests := []struct {
		name    string
		raw     any
		need    Need
		wantSub string
	}{
		{
			"empty filePath",
			map[string]any{"files": []any{map[string]any{"filePath": "", "fileContent": "x"}}},
			NeedContent,
			"filePath must be a non-empty string",
		},
		{
			"whitespace filePath",
			map[string]any{"files": []any{map[string]any{"filePath": "  ", "fileContent": "x"}}},
			NeedContent,
			"filePath must be a non-empty string",
		},
		{
			"missing fileContent",
			map[string]any{"files": []any{map[string]any{"filePath": "a.ts"}}},
			NeedContent,
			"fileContent must be a string",
		},
		{
			"non-string purpose",
			map[string]any{"files": []any{map[string]any{"filePath": "a.ts", "purpose": 7}}},
			NeedPurpose,
			"purpose must be a string",
		},
		{
			"record not an object",
			map[string]any{"files": []any{42}},
			NeedContent,
			"must be an object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Files(tt.raw, tt.need)
			if err == nil {
				t.Fatal("expected field validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestFilesEmptyPathRejectedFromEveryBranch(t *testing.T) {
	n := New(DefaultParseAttempts)
	bad := map[string]any{"files": []any{map[string]any{"filePath": "", "fileContent": "x"}}}

	for _, raw := range []any{
		bad,
		mustStringify(t, bad, 1),
		mustStringify(t, bad, 2),
		"prose before " + mustStringify(t, bad, 1) + " prose after",
	} {
		if _, err := n.Files(raw, NeedContent); err == nil {
			t.Fatalf("empty filePath accepted via %T branch", raw)
		}
	}
}

func TestPathsShapes(t *testing.T) {
	n := New(DefaultParseAttempts)

	tests := []struct {
		name string
		raw  any
		want []string
	}{
		{"wrapper object", map[string]any{"filePaths": []any{"a.ts", "b.ts"}}, []string{"a.ts", "b.ts"}},
		{"bare array", []any{"a.ts"}, []string{"a.ts"}},
		{"single string path", "a.ts", []string{"a.ts"}},
		{"stringified wrapper", `{"filePaths": ["a.ts", "b.ts"]}`, []string{"a.ts", "b.ts"}},
		{"stringified array value", map[string]any{"filePaths": `["a.ts"]`}, []string{"a.ts"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Paths(tt.raw)
			if err != nil {
				t.Fatalf("Paths failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("path %d: expected %s, got %s", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestPathsRejectsEmpty(t *testing.T) {
	n := New(DefaultParseAttempts)
	if _, err := n.Paths(map[string]any{"filePaths": []any{""}}); err == nil {
		t.Fatal("expected error on empty path")
	}
	if _, err := n.Paths(map[string]any{"filePaths": []any{7}}); err == nil {
		t.Fatal("expected error on non-string path")
	}
}
