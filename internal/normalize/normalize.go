// Package normalize recovers canonical tool arguments from the
// inconsistently-shaped payloads an LLM caller produces: nested or
// double-stringified JSON, partially-escaped JSON, bare arrays, single
// objects, or JSON embedded in prose. Every failure is rewritten into
// actionable prose for the LLM; raw parser errors never escape.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultParseAttempts bounds the repeated-parse loop so multiply-encoded
// payloads terminate instead of looping.
const DefaultParseAttempts = 5

// Need selects which record field a tool requires beyond filePath.
type Need int

const (
	NeedPathOnly Need = iota
	NeedContent
	NeedPurpose
)

// Record is the canonical shape of one file argument.
type Record struct {
	FilePath    string
	FileContent string
	Purpose     string
}

// errNoShape marks a payload whose structure was unrecognizable after every
// fallback. Field-level failures (empty filePath, wrong field type) are
// distinct and terminal: re-parsing cannot fix them.
var errNoShape = errors.New("unrecognizable argument shape")

// objectBlockRE grabs the first top-level {...} block out of prose.
var objectBlockRE = regexp.MustCompile(`(?s)\{.*\}`)

// Normalizer holds the parse budget. The zero value is not usable; use New.
type Normalizer struct {
	parseAttempts int
}

// New creates a Normalizer with the given repeated-parse ceiling.
// Non-positive values fall back to DefaultParseAttempts.
func New(parseAttempts int) *Normalizer {
	if parseAttempts < 1 {
		parseAttempts = DefaultParseAttempts
	}
	return &Normalizer{parseAttempts: parseAttempts}
}

// Files recovers a slice of file records from raw, in priority order:
// direct parse of an object-looking string, bounded re-parse of
// multiply-stringified input (with one unescape pass), shape classification
// (array, {files: [...]} wrapper, single record), and finally regex
// extraction of the first {...} block from the original string.
func (n *Normalizer) Files(raw any, need Need) ([]Record, error) {
	recs, err := n.filesOnce(raw, need)
	if err == nil {
		return recs, nil
	}
	if !errors.Is(err, errNoShape) {
		return nil, err
	}

	// Last resort: the payload may be a JSON object buried in prose.
	if s, ok := raw.(string); ok {
		if block := objectBlockRE.FindString(s); block != "" && block != strings.TrimSpace(s) {
			if recs, err := n.filesOnce(block, need); err == nil {
				return recs, nil
			}
		}
	}

	return nil, n.filesShapeError()
}

// Paths recovers a slice of file paths from raw, accepting a bare string
// array, a {filePaths: [...]} wrapper, or a single path string, with the
// same stringified-JSON recovery as Files.
func (n *Normalizer) Paths(raw any) ([]string, error) {
	paths, err := n.pathsOnce(raw)
	if err == nil {
		return paths, nil
	}
	if !errors.Is(err, errNoShape) {
		return nil, err
	}

	if s, ok := raw.(string); ok {
		if block := objectBlockRE.FindString(s); block != "" && block != strings.TrimSpace(s) {
			if paths, err := n.pathsOnce(block); err == nil {
				return paths, nil
			}
		}
	}

	return nil, errors.New(
		"filePaths could not be interpreted: send {\"filePaths\": [\"src/App.tsx\", ...]} " +
			"as a plain JSON object; do not JSON-stringify the arguments",
	)
}

func (n *Normalizer) filesOnce(raw any, need Need) ([]Record, error) {
	val, ok := n.decode(raw)
	if !ok {
		return nil, errNoShape
	}

	items, ok := n.classifyItems(val)
	if !ok {
		return nil, errNoShape
	}

	recs := make([]Record, 0, len(items))
	for i, item := range items {
		rec, err := n.toRecord(i, item, need)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (n *Normalizer) pathsOnce(raw any) ([]string, error) {
	val, ok := n.decode(raw)
	if !ok {
		// A bare path is not valid JSON; take it as a single-element list.
		s, isStr := raw.(string)
		t := strings.TrimSpace(s)
		if !isStr || t == "" || strings.ContainsAny(t, "{}[]\"") {
			return nil, errNoShape
		}
		val = t
	}

	var items []any
	switch v := val.(type) {
	case []any:
		items = v
	case string:
		items = []any{v}
	case map[string]any:
		fv, ok := v["filePaths"]
		if !ok {
			return nil, errNoShape
		}
		switch fvt := fv.(type) {
		case []any:
			items = fvt
		case string:
			// The array itself may arrive stringified.
			dec, ok := n.decode(fvt)
			if !ok {
				return nil, errNoShape
			}
			arr, ok := dec.([]any)
			if !ok {
				items = []any{fvt}
			} else {
				items = arr
			}
		default:
			return nil, errNoShape
		}
	default:
		return nil, errNoShape
	}

	paths := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("filePaths[%d] must be a non-empty string path", i)
		}
		paths = append(paths, s)
	}
	return paths, nil
}

// decode unwraps raw into a parsed JSON value. Non-string values pass
// through untouched; strings go through the bounded re-parse loop.
func (n *Normalizer) decode(raw any) (any, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case string:
		return n.decodeString(v)
	default:
		return v, true
	}
}

// decodeString repeatedly parses s while the result remains a string,
// bounded by the parse ceiling. One unescape pass handles callers that
// double-escape control characters before stringifying.
func (n *Normalizer) decodeString(s string) (any, bool) {
	var cur any = strings.TrimSpace(s)
	if cur == "" {
		return nil, false
	}

	for attempt := 0; attempt < n.parseAttempts; attempt++ {
		str, isStr := cur.(string)
		if !isStr {
			return cur, true
		}

		var parsed any
		if err := json.Unmarshal([]byte(str), &parsed); err != nil {
			if attempt > 0 {
				// The previous pass produced a terminal, non-JSON string.
				return cur, true
			}
			unescaped := unescape(str)
			if unescaped == str {
				return nil, false
			}
			if err := json.Unmarshal([]byte(unescaped), &parsed); err != nil {
				return nil, false
			}
		}
		cur = parsed
	}

	if _, isStr := cur.(string); isStr {
		// Parse ceiling reached with the value still wrapped.
		return nil, false
	}
	return cur, true
}

// unescape reverses one level of control-character escaping.
func unescape(s string) string {
	r := strings.NewReplacer(
		`\\`, `\`,
		`\"`, `"`,
		`\n`, "\n",
		`\t`, "\t",
	)
	return r.Replace(s)
}

// classifyItems resolves the recovered value into a list of raw records:
// a bare array, an object wrapping a files array (possibly stringified),
// or a single record object.
func (n *Normalizer) classifyItems(val any) ([]any, bool) {
	switch v := val.(type) {
	case []any:
		return v, true
	case map[string]any:
		fv, ok := v["files"]
		if !ok {
			if _, ok := v["filePath"]; ok {
				return []any{v}, true
			}
			return nil, false
		}
		switch fvt := fv.(type) {
		case []any:
			return fvt, true
		case map[string]any:
			return []any{fvt}, true
		case string:
			dec, ok := n.decode(fvt)
			if !ok {
				return nil, false
			}
			return n.classifyItems(dec)
		default:
			return nil, false
		}
	default:
		return nil, false
	}
}

// toRecord field-validates one raw record. An empty filePath is rejected
// regardless of which parse branch produced the record.
func (n *Normalizer) toRecord(i int, item any, need Need) (Record, error) {
	// Individual records occasionally arrive stringified as well.
	if s, ok := item.(string); ok {
		dec, ok := n.decode(s)
		if !ok {
			return Record{}, errNoShape
		}
		item = dec
	}

	m, ok := item.(map[string]any)
	if !ok {
		return Record{}, fmt.Errorf(
			"files[%d] must be an object with a filePath field, got %T", i, item)
	}

	path, ok := m["filePath"].(string)
	if !ok || strings.TrimSpace(path) == "" {
		return Record{}, fmt.Errorf("files[%d].filePath must be a non-empty string", i)
	}

	rec := Record{FilePath: path}

	switch need {
	case NeedContent:
		content, ok := m["fileContent"].(string)
		if !ok {
			return Record{}, fmt.Errorf("files[%d].fileContent must be a string", i)
		}
		rec.FileContent = content
	case NeedPurpose:
		purpose, ok := m["purpose"].(string)
		if !ok {
			return Record{}, fmt.Errorf("files[%d].purpose must be a string", i)
		}
		rec.Purpose = purpose
	case NeedPathOnly:
	}

	return rec, nil
}

func (n *Normalizer) filesShapeError() error {
	return errors.New(
		"files could not be interpreted: expected {\"files\": [{\"filePath\": \"src/App.tsx\", " +
			"\"fileContent\": \"...\"}]} sent as a plain JSON object; " +
			"do not JSON-stringify the arguments, and do not nest them inside another string",
	)
}
