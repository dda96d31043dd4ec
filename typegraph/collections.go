package typegraph

import (
	"strings"

	"github.com/gobuffalo/flect"
	"k8s.io/apimachinery/pkg/util/sets"
)

// ListAttribute describes a list-shaped attribute that gets its own wrapper
// declaration in emitted code.
type ListAttribute struct {
	Owner     TypeName
	Attribute AttributeMeta
	Plural    bool
}

// Item returns the list element type.
func (l ListAttribute) Item() TypeName { return l.Attribute.Shape.Type }

// DeclarationName names the wrapper type: owner + attribute + "List".
func (l ListAttribute) DeclarationName() TypeName {
	return TypeName(string(l.Owner) + flect.Capitalize(l.Attribute.Name) + "List")
}

// MapAttribute describes a map-shaped attribute that gets its own wrapper
// declaration in emitted code.
type MapAttribute struct {
	Owner     TypeName
	Attribute AttributeMeta
	Plural    bool
}

// Key returns the map key type.
func (m MapAttribute) Key() TypeName { return m.Attribute.Shape.Key() }

// Value returns the map value type.
func (m MapAttribute) Value() TypeName { return m.Attribute.Shape.Type }

// DeclarationName names the wrapper type: owner + attribute + "Map".
func (m MapAttribute) DeclarationName() TypeName {
	return TypeName(string(m.Owner) + flect.Capitalize(m.Attribute.Name) + "Map")
}

// IsPluralAttributeName reports whether an attribute name reads as a plural.
// "tls" is the one known singular ending in s.
func IsPluralAttributeName(name string) bool {
	return strings.HasSuffix(name, "s") && name != "tls"
}

func collectCollections(g *Graph, exclude []string) ([]ListAttribute, []MapAttribute) {
	skip := sets.New(exclude...)
	var lists []ListAttribute
	var maps []MapAttribute
	for _, name := range g.order {
		obj, ok := g.types[name].(*ObjectType)
		if !ok {
			continue
		}
		for _, a := range obj.Attributes {
			if skip.Has(a.Name) {
				continue
			}
			switch a.Shape.Kind {
			case ShapeList:
				lists = append(lists, ListAttribute{Owner: obj.Name, Attribute: a, Plural: IsPluralAttributeName(a.Name)})
			case ShapeMap:
				maps = append(maps, MapAttribute{Owner: obj.Name, Attribute: a, Plural: IsPluralAttributeName(a.Name)})
			}
		}
	}
	return lists, maps
}
