package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/reoring/kindgraph/internal/diag"
)

// keyOrder records the document order of mapping keys, by JSON Pointer of the
// mapping. Go maps decoded from the document lose that order.
type keyOrder map[string][]string

// orderedKeys returns the keys of m in document order. Keys the index does not
// know about (documents built in memory) follow in sorted order.
func orderedKeys[V any](o keyOrder, p diag.Pointer, m map[string]V) []string {
	out := make([]string, 0, len(m))
	seen := make(map[string]struct{}, len(m))
	for _, k := range o[p.String()] {
		if _, ok := m[k]; !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	if len(out) == len(m) {
		return out
	}
	var rest []string
	for k := range m {
		if _, ok := seen[k]; !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// rebase copies every entry recorded at or below src to the same relative
// location below dst.
func (o keyOrder) rebase(from keyOrder, src, dst string) {
	for k, keys := range from {
		switch {
		case k == src:
			o[dst] = append([]string(nil), keys...)
		case strings.HasPrefix(k, src+"/"):
			o[dst+k[len(src):]] = append([]string(nil), keys...)
		}
	}
}

// DuplicateKeyError reports a key that appears twice in one mapping.
type DuplicateKeyError struct {
	Key     string
	Pointer string // mapping that holds the key
	// Line and column positions are known for YAML input only.
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("duplicate key %q in %s at %d:%d (first at %d:%d)", e.Key, e.Pointer, e.Line, e.Col, e.FirstLine, e.FirstCol)
	}
	return fmt.Sprintf("duplicate key %q in %s", e.Key, e.Pointer)
}

type scanFrame struct {
	object       bool
	ptr          diag.Pointer
	keys         []string
	seen         map[string]struct{}
	key          string
	expectingKey bool
	index        int
}

// child returns the pointer of the value the frame is about to receive.
func (f *scanFrame) child() diag.Pointer {
	if f.object {
		return f.ptr.Field(f.key)
	}
	return f.ptr.Index(f.index)
}

// advance marks the frame's current value as consumed.
func (f *scanFrame) advance() {
	if f.object {
		f.expectingKey = true
		return
	}
	f.index++
}

// scanJSONOrder walks the JSON token stream once, recording the key order of
// every object and rejecting duplicate keys.
func scanJSONOrder(data []byte) (keyOrder, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	order := keyOrder{}
	var stack []*scanFrame
	top := func() *scanFrame {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return order, nil
			}
			return nil, err
		}
		parent := top()
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				ptr := diag.Root()
				if parent != nil {
					ptr = parent.child()
				}
				f := &scanFrame{object: d == '{', ptr: ptr, expectingKey: d == '{'}
				if f.object {
					f.seen = map[string]struct{}{}
				}
				stack = append(stack, f)
			case '}', ']':
				if parent == nil {
					return nil, errors.New("document: unbalanced JSON")
				}
				if parent.object {
					order[parent.ptr.String()] = parent.keys
				}
				stack = stack[:len(stack)-1]
				if up := top(); up != nil {
					up.advance()
				}
			}
			continue
		}
		if parent == nil {
			continue
		}
		if parent.object && parent.expectingKey {
			key, _ := tok.(string)
			if _, dup := parent.seen[key]; dup {
				return nil, &DuplicateKeyError{Key: key, Pointer: parent.ptr.String()}
			}
			parent.seen[key] = struct{}{}
			parent.keys = append(parent.keys, key)
			parent.key = key
			parent.expectingKey = false
			continue
		}
		parent.advance()
	}
}
