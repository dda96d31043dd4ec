// Package classify maps schema property nodes to attribute shapes.
package classify

import (
	"github.com/gobuffalo/flect"

	"github.com/reoring/kindgraph/document"
	"github.com/reoring/kindgraph/internal/diag"
	"github.com/reoring/kindgraph/typegraph"
)

// Naming suffixes of derived contexts.
const (
	ItemSuffix  = "Item"
	ValueSuffix = "Value"
)

// Sink receives inline objects that need a type of their own. Implementations
// queue def unless a type of that name is already registered or pending.
type Sink interface {
	// Reference is called for an inline object named by its title.
	Reference(name typegraph.TypeName, def *document.Definition)
	// Synthesize is called for an anonymous inline object with its derived name.
	Synthesize(name typegraph.TypeName, def *document.Definition)
}

// Classifier classifies the properties of one compilation.
type Classifier struct {
	formats FormatTable
	issues  *diag.Collector
	sink    Sink
}

// New returns a classifier. A nil table means DefaultFormats.
func New(formats FormatTable, issues *diag.Collector, sink Sink) *Classifier {
	if formats == nil {
		formats = DefaultFormats()
	}
	return &Classifier{formats: formats, issues: issues, sink: sink}
}

// Classify returns the shape of property p of owner. ok is false when the
// property has no representable shape; a diagnostic was recorded.
func (c *Classifier) Classify(owner typegraph.TypeName, p document.Property) (shape typegraph.Shape, ok bool) {
	switch n := p.Node.(type) {
	case document.ArrayNode:
		item, ok := c.element(n.Items, owner, p.Name+ItemSuffix, p.Pointer.Field("items"))
		return typegraph.ListOf(item), ok
	case document.MapNode:
		at := p.Pointer.Field("additionalProperties")
		if inner, isList := n.Values.(document.ArrayNode); isList {
			value, ok := c.element(inner.Items, owner, p.Name+ValueSuffix+ItemSuffix, at.Field("items"))
			return typegraph.MapOf(value), ok
		}
		value, ok := c.element(n.Values, owner, p.Name+ValueSuffix, at)
		return typegraph.MapOf(value), ok
	default:
		t, ok := c.element(p.Node, owner, p.Name, p.Pointer)
		return typegraph.Scalar(t), ok
	}
}

// element resolves a node that must name a single type. attr is the naming
// context used when an anonymous object has to be synthesized.
func (c *Classifier) element(n document.Node, owner typegraph.TypeName, attr string, at diag.Pointer) (typegraph.TypeName, bool) {
	switch n := n.(type) {
	case document.RefNode:
		return typegraph.TypeName(n.Name), true
	case *document.ObjectNode:
		if n.Name != "" {
			name := typegraph.TypeName(n.Name)
			c.sink.Reference(name, n.Definition(n.Name))
			return name, true
		}
		name := Synthesized(owner, attr)
		c.sink.Synthesize(name, n.Definition(string(name)))
		return name, true
	case document.ScalarNode:
		return c.Scalar(n.Type, n.Format, at), true
	case document.UntypedNode:
		c.issues.Warnf(diag.CodeUntypedProperty, at, "untyped property %s.%s defaults to %s", owner, attr, typegraph.String)
		return typegraph.String, true
	case document.ArrayNode, document.MapNode:
		c.issues.Warnf(diag.CodeUnhandledProperty, at, "nested collection in %s.%s is not supported", owner, attr)
		return "", false
	default:
		c.issues.Warnf(diag.CodeUnhandledProperty, at, "unhandled property %s.%s of type %T", owner, attr, n)
		return "", false
	}
}

// Scalar maps a (type, format) pair through the format table. Unknown formats
// fall back to the type's plain mapping, unknown types to string.
func (c *Classifier) Scalar(typ, format string, at diag.Pointer) typegraph.TypeName {
	name, exact, ok := c.formats.Lookup(typ, format)
	if !ok {
		c.issues.Warnf(diag.CodeUntypedProperty, at, "unrecognized scalar type %q defaults to %s", typ, typegraph.String)
		return typegraph.String
	}
	if !exact && typ != "string" {
		c.issues.Warnf(diag.CodeUnmappedFormat, at, "format %q of %s has no mapping, using %s", format, typ, name)
	}
	return name
}

// Synthesized names the type of an anonymous inline object: the owner followed
// by the capitalized attribute context.
func Synthesized(owner typegraph.TypeName, attr string) typegraph.TypeName {
	return typegraph.TypeName(string(owner) + flect.Capitalize(attr))
}

// Dependencies returns the TypeNames of shapes that require an import, in
// first-seen order without duplicates.
func Dependencies(shapes []typegraph.Shape) []typegraph.TypeName {
	var out []typegraph.TypeName
	seen := make(map[typegraph.TypeName]struct{}, len(shapes))
	for _, s := range shapes {
		if !s.Type.RequiresImport() {
			continue
		}
		if _, dup := seen[s.Type]; dup {
			continue
		}
		seen[s.Type] = struct{}{}
		out = append(out, s.Type)
	}
	return out
}
