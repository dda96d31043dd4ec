package typegraph

import (
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Snapshot is a serializable view of a frozen graph.
type Snapshot struct {
	PackagePrefixes []string             `json:"packagePrefixes" yaml:"packagePrefixes"`
	MetadataType    TypeName             `json:"metadataType" yaml:"metadataType"`
	Kinds           []KindRegistration   `json:"kinds" yaml:"kinds"`
	Actions         []ActionSnapshot     `json:"actions,omitempty" yaml:"actions,omitempty"`
	Types           []TypeSnapshot       `json:"types" yaml:"types"`
	Lists           []CollectionSnapshot `json:"lists,omitempty" yaml:"lists,omitempty"`
	Maps            []CollectionSnapshot `json:"maps,omitempty" yaml:"maps,omitempty"`
	Stats           Stats                `json:"stats" yaml:"stats"`
}

// ActionSnapshot is the serializable form of a KindAction.
type ActionSnapshot struct {
	GVK          string   `json:"gvk" yaml:"gvk"`
	Method       string   `json:"method" yaml:"method"`
	URL          string   `json:"url" yaml:"url"`
	Action       string   `json:"action,omitempty" yaml:"action,omitempty"`
	RequestType  TypeName `json:"requestType,omitempty" yaml:"requestType,omitempty"`
	ResponseType TypeName `json:"responseType,omitempty" yaml:"responseType,omitempty"`
	Query        []string `json:"query,omitempty" yaml:"query,omitempty"`
	Path         []string `json:"path,omitempty" yaml:"path,omitempty"`
}

// TypeSnapshot is the serializable form of a TypeNode.
type TypeSnapshot struct {
	Name          TypeName            `json:"name" yaml:"name"`
	Variant       string              `json:"variant" yaml:"variant"`
	Documentation string              `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	Dependencies  []TypeName          `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	KindRoot      bool                `json:"kindRoot,omitempty" yaml:"kindRoot,omitempty"`
	Attributes    []AttributeSnapshot `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Element       TypeName            `json:"element,omitempty" yaml:"element,omitempty"`
	Alternatives  map[string]TypeName `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
}

// AttributeSnapshot is the serializable form of an AttributeMeta.
type AttributeSnapshot struct {
	Name     string   `json:"name" yaml:"name"`
	Shape    string   `json:"shape" yaml:"shape"`
	Type     TypeName `json:"type" yaml:"type"`
	Required bool     `json:"required,omitempty" yaml:"required,omitempty"`
}

// CollectionSnapshot is the serializable form of a list or map descriptor.
type CollectionSnapshot struct {
	Declaration TypeName `json:"declaration" yaml:"declaration"`
	Owner       TypeName `json:"owner" yaml:"owner"`
	Attribute   string   `json:"attribute" yaml:"attribute"`
	Type        TypeName `json:"type" yaml:"type"`
	Plural      bool     `json:"plural,omitempty" yaml:"plural,omitempty"`
}

// Snapshot captures the graph in registration order.
func (g *Graph) Snapshot() Snapshot {
	s := Snapshot{
		PackagePrefixes: g.Platform().PackagePrefixes,
		MetadataType:    g.metadata,
		Kinds:           g.Kinds(),
		Stats:           g.stats,
	}
	for _, k := range g.actionKinds {
		for _, a := range g.actions[k] {
			as := ActionSnapshot{GVK: k.String(), Method: a.Method, URL: a.URL, Action: a.Action}
			if a.RequestType != nil {
				as.RequestType = *a.RequestType
			}
			if a.ResponseType != nil {
				as.ResponseType = *a.ResponseType
			}
			for _, p := range a.QueryParameters {
				as.Query = append(as.Query, p.Name)
			}
			for _, p := range a.PathParameters {
				as.Path = append(as.Path, p.Name)
			}
			s.Actions = append(s.Actions, as)
		}
	}
	for _, n := range g.Types() {
		s.Types = append(s.Types, snapshotType(n))
	}
	for _, l := range g.lists {
		s.Lists = append(s.Lists, CollectionSnapshot{Declaration: l.DeclarationName(), Owner: l.Owner, Attribute: l.Attribute.Name, Type: l.Item(), Plural: l.Plural})
	}
	for _, m := range g.maps {
		s.Maps = append(s.Maps, CollectionSnapshot{Declaration: m.DeclarationName(), Owner: m.Owner, Attribute: m.Attribute.Name, Type: m.Value(), Plural: m.Plural})
	}
	return s
}

func snapshotType(n TypeNode) TypeSnapshot {
	ts := TypeSnapshot{
		Name:          n.TypeName(),
		Variant:       n.NodeKind().String(),
		Documentation: n.Doc(),
		Dependencies:  n.Deps(),
	}
	switch t := n.(type) {
	case *ObjectType:
		ts.KindRoot = t.KindRoot
		for _, a := range t.Attributes {
			ts.Attributes = append(ts.Attributes, AttributeSnapshot{Name: a.Name, Shape: a.Shape.Kind.String(), Type: a.Shape.Type, Required: a.Required})
		}
	case *ContainerType:
		ts.Element = t.Element
	case *SealedType:
		ts.Alternatives = make(map[string]TypeName, len(t.Alternatives))
		for _, a := range t.Alternatives {
			ts.Alternatives[a.Tag] = a.Type
		}
	case *InterfaceType:
	}
	return ts
}

// Dump serializes the graph snapshot as "json" or "yaml".
func Dump(g *Graph, format string) ([]byte, error) {
	s := g.Snapshot()
	switch format {
	case "", "json":
		return json.MarshalIndent(s, "", "  ")
	case "yaml":
		return yaml.Marshal(s)
	default:
		return nil, fmt.Errorf("typegraph: unknown dump format %q", format)
	}
}
