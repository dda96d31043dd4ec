package document

import (
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/kube-openapi/pkg/validation/spec"

	"github.com/reoring/kindgraph/internal/diag"
)

// Node is a schema node as the classifier sees it. The concrete types are
// RefNode, ArrayNode, MapNode, ObjectNode, ScalarNode and UntypedNode.
type Node interface {
	isNode()
}

// RefNode refers to a named definition.
type RefNode struct {
	Name string
}

// ArrayNode is a list of Items.
type ArrayNode struct {
	Items Node
}

// MapNode is a string-keyed map of Values.
type MapNode struct {
	Values Node
}

// ObjectNode is an inline object with its own property set. Name comes from
// the schema title and is empty for anonymous objects.
type ObjectNode struct {
	Name        string
	Description string
	Properties  []Property
	Required    sets.Set[string]
	Pointer     diag.Pointer
}

// ScalarNode is a typed primitive.
type ScalarNode struct {
	Type   string
	Format string
}

// UntypedNode has neither a type nor any structure.
type UntypedNode struct {
	Format string
}

func (RefNode) isNode()     {}
func (ArrayNode) isNode()   {}
func (MapNode) isNode()     {}
func (*ObjectNode) isNode() {}
func (ScalarNode) isNode()  {}
func (UntypedNode) isNode() {}

// Property is one named property of an object schema.
type Property struct {
	Name        string
	Description string
	Node        Node
	Pointer     diag.Pointer
}

// Definition is a named schema from the definitions section, or an inline
// object promoted to one.
type Definition struct {
	Name        string
	Type        string
	Format      string
	Description string
	Properties  []Property
	Required    sets.Set[string]
	// Alias is the target of a definition that is only a reference.
	Alias string
	// Kinds holds the raw x-kubernetes-group-version-kind entries, a single
	// map already wrapped into a list. Nil when the extension is absent.
	Kinds      []any
	Extensions spec.Extensions
	Pointer    diag.Pointer
}

// IsAlias reports whether the definition merely refers to another one.
func (d *Definition) IsAlias() bool { return d.Alias != "" }

// IsObject reports whether the definition declares type object or has
// properties.
func (d *Definition) IsObject() bool { return d.Type == "object" || len(d.Properties) > 0 }

// Definition promotes an inline object to a named definition.
func (o *ObjectNode) Definition(name string) *Definition {
	return &Definition{
		Name:        name,
		Type:        "object",
		Description: o.Description,
		Properties:  o.Properties,
		Required:    o.Required,
		Pointer:     o.Pointer,
	}
}

func primaryType(s *spec.Schema) string {
	for _, t := range s.Type {
		if t != "null" {
			return t
		}
	}
	return ""
}

// node converts a schema into its classifier view. p is the schema's location
// in the document and keys property order.
func (d *Document) node(s *spec.Schema, p diag.Pointer) Node {
	if s == nil {
		return UntypedNode{}
	}
	if ref := schemaRef(s); ref != "" {
		return RefNode{Name: RefName(ref)}
	}
	typ := primaryType(s)
	switch {
	case typ == "array":
		var items *spec.Schema
		if s.Items != nil {
			items = s.Items.Schema
			if items == nil && len(s.Items.Schemas) > 0 {
				items = &s.Items.Schemas[0]
			}
		}
		return ArrayNode{Items: d.node(items, p.Field("items"))}
	case len(s.Properties) > 0:
		return d.objectNode(s, p)
	case s.AdditionalProperties != nil && s.AdditionalProperties.Schema != nil:
		return MapNode{Values: d.node(s.AdditionalProperties.Schema, p.Field("additionalProperties"))}
	case typ == "object" && s.AdditionalProperties != nil && s.AdditionalProperties.Allows:
		return MapNode{Values: UntypedNode{}}
	case typ == "object":
		return d.objectNode(s, p)
	case typ != "":
		return ScalarNode{Type: typ, Format: s.Format}
	default:
		return UntypedNode{Format: s.Format}
	}
}

func (d *Document) objectNode(s *spec.Schema, p diag.Pointer) *ObjectNode {
	return &ObjectNode{
		Name:        s.Title,
		Description: s.Description,
		Properties:  d.properties(s, p),
		Required:    sets.New(s.Required...),
		Pointer:     p,
	}
}

func (d *Document) properties(s *spec.Schema, p diag.Pointer) []Property {
	if len(s.Properties) == 0 {
		return nil
	}
	keys := orderedKeys(d.order, p.Field("properties"), s.Properties)
	out := make([]Property, 0, len(keys))
	for _, name := range keys {
		ps := s.Properties[name]
		pp := p.Property(name)
		out = append(out, Property{
			Name:        name,
			Description: ps.Description,
			Node:        d.node(&ps, pp),
			Pointer:     pp,
		})
	}
	return out
}

func (d *Document) definition(name string, s *spec.Schema) *Definition {
	p := diag.Definition(name)
	def := &Definition{
		Name:        name,
		Type:        primaryType(s),
		Format:      s.Format,
		Description: s.Description,
		Required:    sets.New(s.Required...),
		Extensions:  s.Extensions,
		Pointer:     p,
	}
	if v, ok := Extension(s.Extensions, ExtGroupVersionKind); ok {
		switch x := v.(type) {
		case []any:
			def.Kinds = x
		default:
			def.Kinds = []any{x}
		}
	}
	if ref := schemaRef(s); ref != "" {
		def.Alias = RefName(ref)
		return def
	}
	def.Properties = d.properties(s, p)
	return def
}
