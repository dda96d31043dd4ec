package document

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/reoring/kindgraph/internal/diag"
)

// yamlToValue converts a YAML node into JSON-compatible Go values
// (map[string]any, []any, primitives), recording mapping key order below ptr
// and rejecting duplicate keys.
func yamlToValue(n *yaml.Node, ptr diag.Pointer, order keyOrder) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlToValue(n.Content[0], ptr, order)
	case yaml.AliasNode:
		return yamlToValue(n.Alias, ptr, order)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		first := make(map[string][2]int, len(n.Content)/2)
		keys := make([]string, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			key := k.Value
			if pos, dup := first[key]; dup {
				return nil, &DuplicateKeyError{
					Key: key, Pointer: ptr.String(),
					FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column,
				}
			}
			first[key] = [2]int{k.Line, k.Column}
			keys = append(keys, key)
			val, err := yamlToValue(n.Content[i+1], ptr.Field(key), order)
			if err != nil {
				return nil, err
			}
			m[key] = val
		}
		order[ptr.String()] = keys
		return m, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := yamlToValue(c, ptr.Index(i), order)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return yamlScalar(n), nil
	default:
		return nil, nil
	}
}

func yamlScalar(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		if b, err := strconv.ParseBool(n.Value); err == nil {
			return b
		}
		return n.Value
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return i
		}
		return n.Value
	case "!!float":
		if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
			return f
		}
		return n.Value
	default:
		return n.Value
	}
}

// stringMap returns v as a JSON-like object, or nil.
func stringMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
