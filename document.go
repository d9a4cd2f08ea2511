package siteforge

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Document is the nested JSON value an editor instance edits: objects are
// map[string]any, arrays are []any, numbers decode as float64. A Document
// must stay JSON-serializable at all times because it is both pushed to the
// preview surface and persisted over HTTP.
type Document = map[string]any

// Get resolves a dot-separated path inside doc. Numeric segments index into
// arrays. The second return value is false when any segment fails to resolve.
func Get(doc Document, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var cur any = doc
	for _, seg := range strings.Split(path, ".") {
		switch c := cur.(type) {
		case map[string]any:
			v, ok := c[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(c) {
				return nil, false
			}
			cur = c[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// GetString is Get narrowed to string values; non-strings read as "".
func GetString(doc Document, path string) string {
	v, ok := Get(doc, path)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetBool is Get narrowed to bool values; anything else reads as false.
func GetBool(doc Document, path string) bool {
	v, ok := Get(doc, path)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Set writes value at path and returns a new document. Every container on
// the chain from the root to the parent of the final segment is shallow
// copied, so the result is a distinct reference at each level of the path
// while sibling branches keep their original references. The input document
// is never mutated.
//
// When an intermediate segment does not resolve to an object or array, or a
// final array index is out of range, Set is a no-op: it returns the original
// document and false. Callers that want an error instead use SetStrict.
func Set(doc Document, path string, value any) (Document, bool) {
	if path == "" {
		return doc, false
	}
	out, ok := setIn(doc, strings.Split(path, "."), value)
	if !ok {
		return doc, false
	}
	return out.(map[string]any), true
}

// SetStrict is Set with the tolerant no-op turned into an error.
func SetStrict(doc Document, path string, value any) (Document, error) {
	out, ok := Set(doc, path, value)
	if !ok {
		return doc, fmt.Errorf("siteforge: path %q does not resolve to a container", path)
	}
	return out, nil
}

func setIn(node any, segs []string, value any) (any, bool) {
	seg := segs[0]
	switch c := node.(type) {
	case map[string]any:
		cp := make(map[string]any, len(c)+1)
		for k, v := range c {
			cp[k] = v
		}
		if len(segs) == 1 {
			cp[seg] = value
			return cp, true
		}
		child, ok := c[seg]
		if !ok {
			return nil, false
		}
		next, ok := setIn(child, segs[1:], value)
		if !ok {
			return nil, false
		}
		cp[seg] = next
		return cp, true
	case []any:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(c) {
			return nil, false
		}
		cp := make([]any, len(c))
		copy(cp, c)
		if len(segs) == 1 {
			cp[i] = value
			return cp, true
		}
		next, ok := setIn(c[i], segs[1:], value)
		if !ok {
			return nil, false
		}
		cp[i] = next
		return cp, true
	default:
		return nil, false
	}
}

// DecodeDocument reads a JSON object from r. It rejects top-level arrays and
// scalars since an editor document is always an object.
func DecodeDocument(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("siteforge: decode document: %w", err)
	}
	return doc, nil
}

// EncodeDocument renders doc as compact JSON.
func EncodeDocument(doc Document) ([]byte, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("siteforge: encode document: %w", err)
	}
	return b, nil
}
