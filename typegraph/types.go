package typegraph

import (
	"slices"
	"strings"
)

// NodeKind identifies a type node variant.
type NodeKind int

const (
	NodeObject NodeKind = iota
	NodeContainer
	NodeSealed
	NodeInterface
)

func (k NodeKind) String() string {
	switch k {
	case NodeObject:
		return "object"
	case NodeContainer:
		return "container"
	case NodeSealed:
		return "sealed"
	case NodeInterface:
		return "interface"
	default:
		return "unknown"
	}
}

// TypeNode is one registered type. The concrete variants are *ObjectType,
// *ContainerType, *SealedType and *InterfaceType.
type TypeNode interface {
	NodeKind() NodeKind
	TypeName() TypeName
	Doc() string
	Deps() []TypeName
}

// Meta is the part shared by all variants.
type Meta struct {
	Name          TypeName
	Documentation string
	Dependencies  []TypeName
}

func (m *Meta) TypeName() TypeName { return m.Name }
func (m *Meta) Doc() string        { return m.Documentation }
func (m *Meta) Deps() []TypeName   { return append([]TypeName(nil), m.Dependencies...) }

// ShapeKind tells how an attribute holds its type.
type ShapeKind int

const (
	ShapeScalar ShapeKind = iota
	ShapeList
	ShapeMap
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeScalar:
		return "scalar"
	case ShapeList:
		return "list"
	case ShapeMap:
		return "map"
	default:
		return "unknown"
	}
}

// Shape is the semantic shape of an attribute: a direct reference, a list of
// Type, or a map from string keys to Type.
type Shape struct {
	Kind ShapeKind
	Type TypeName
}

func Scalar(t TypeName) Shape { return Shape{Kind: ShapeScalar, Type: t} }
func ListOf(t TypeName) Shape { return Shape{Kind: ShapeList, Type: t} }
func MapOf(t TypeName) Shape  { return Shape{Kind: ShapeMap, Type: t} }

// Key returns the map key type. Schema maps always have string keys.
func (s Shape) Key() TypeName {
	if s.Kind != ShapeMap {
		return ""
	}
	return String
}

// AttributeMeta describes one attribute of an object type.
type AttributeMeta struct {
	Name          string
	Documentation string
	Required      bool
	Shape         Shape
}

// ObjectType is a type with named attributes.
type ObjectType struct {
	Meta
	Attributes []AttributeMeta // document order
	KindRoot   bool
}

func (*ObjectType) NodeKind() NodeKind { return NodeObject }

// Attribute returns the attribute with the given name.
func (o *ObjectType) Attribute(name string) (AttributeMeta, bool) {
	for _, a := range o.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return AttributeMeta{}, false
}

// ContainerType wraps exactly one element type.
type ContainerType struct {
	Meta
	Element TypeName
}

func (*ContainerType) NodeKind() NodeKind { return NodeContainer }

// Alternative is one branch of a sealed union.
type Alternative struct {
	Tag  string // lower-cased
	Type TypeName
}

// SealedType is a closed union of alternative representations.
type SealedType struct {
	Meta
	Alternatives []Alternative
}

func (*SealedType) NodeKind() NodeKind { return NodeSealed }

// Alternative returns the type for a tag, matched case-insensitively.
func (s *SealedType) Alternative(tag string) (TypeName, bool) {
	for _, a := range s.Alternatives {
		if strings.EqualFold(a.Tag, tag) {
			return a.Type, true
		}
	}
	return "", false
}

// InterfaceType is a marker type with no attributes.
type InterfaceType struct {
	Meta
}

func (*InterfaceType) NodeKind() NodeKind { return NodeInterface }

func (m Meta) clone() Meta {
	m.Dependencies = slices.Clone(m.Dependencies)
	return m
}

func cloneNode(n TypeNode) TypeNode {
	switch n := n.(type) {
	case *ObjectType:
		c := *n
		c.Meta = n.Meta.clone()
		c.Attributes = slices.Clone(n.Attributes)
		return &c
	case *ContainerType:
		c := *n
		c.Meta = n.Meta.clone()
		return &c
	case *SealedType:
		c := *n
		c.Meta = n.Meta.clone()
		c.Alternatives = slices.Clone(n.Alternatives)
		return &c
	case *InterfaceType:
		c := *n
		c.Meta = n.Meta.clone()
		return &c
	default:
		return n
	}
}
