package classify

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/reoring/kindgraph/typegraph"
)

// FormatKey is a (type, format) pair of a schema scalar. An empty Format is the
// entry used when the schema declares no format.
type FormatKey struct {
	Type   string
	Format string
}

// FormatTable maps scalar (type, format) pairs to TypeNames.
type FormatTable map[FormatKey]typegraph.TypeName

// DefaultFormats recognizes the decimal mapping for untyped numbers.
func DefaultFormats() FormatTable {
	return FormatTable{
		{"string", ""}:          typegraph.String,
		{"string", "byte"}:      typegraph.Bytes,
		{"string", "date-time"}: typegraph.Timestamp,
		{"integer", ""}:         typegraph.Int,
		{"integer", "int32"}:    typegraph.Int,
		{"integer", "int64"}:    typegraph.Long,
		{"boolean", ""}:         typegraph.Boolean,
		{"number", ""}:          typegraph.Decimal,
		{"number", "double"}:    typegraph.Double,
		{"number", "float"}:     typegraph.Double,
	}
}

// LegacyFormats has no decimal mapping: every number is a double.
func LegacyFormats() FormatTable {
	t := DefaultFormats()
	t[FormatKey{"number", ""}] = typegraph.Double
	return t
}

// Lookup resolves a scalar. exact is false when the format had no entry of its
// own and the type's format-less entry was used.
func (t FormatTable) Lookup(typ, format string) (name typegraph.TypeName, exact, ok bool) {
	if n, found := t[FormatKey{typ, format}]; found {
		return n, true, true
	}
	if n, found := t[FormatKey{typ, ""}]; found {
		return n, false, true
	}
	return "", false, false
}

// Overlay returns a copy of t with every entry of o applied on top.
func (t FormatTable) Overlay(o FormatTable) FormatTable {
	out := make(FormatTable, len(t)+len(o))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Keys returns the table keys sorted by type then format.
func (t FormatTable) Keys() []FormatKey {
	keys := make([]FormatKey, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		return keys[i].Format < keys[j].Format
	})
	return keys
}

// LoadFormatTable reads a table from YAML of the form
//
//	number:
//	  "": float64
//	  decimal: math/big.Float
//
// Top-level keys are schema types, nested keys formats ("" for none).
func LoadFormatTable(data []byte) (FormatTable, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("classify: format table: %w", err)
	}
	t := make(FormatTable)
	for typ, formats := range raw {
		if typ == "" {
			return nil, fmt.Errorf("classify: format table: empty schema type")
		}
		for format, name := range formats {
			if name == "" {
				return nil, fmt.Errorf("classify: format table: %s/%q maps to an empty type name", typ, format)
			}
			t[FormatKey{typ, format}] = typegraph.TypeName(name)
		}
	}
	return t, nil
}
