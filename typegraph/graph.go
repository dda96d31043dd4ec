package typegraph

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrDuplicateType is returned when a name is registered twice.
	ErrDuplicateType = errors.New("typegraph: duplicate type name")
	// ErrFrozen is returned by every mutator once the graph is frozen.
	ErrFrozen = errors.New("typegraph: graph is frozen")
	// ErrNoMetadataType is returned by Freeze when no metadata type was set.
	ErrNoMetadataType = errors.New("typegraph: resource metadata type not resolved")
)

// Stats records how a graph was built.
type Stats struct {
	Definitions        int `json:"definitions" yaml:"definitions"`
	SkippedDefinitions int `json:"skippedDefinitions" yaml:"skippedDefinitions"`
	IgnoredAliases     int `json:"ignoredAliases" yaml:"ignoredAliases"`
	Synthesized        int `json:"synthesized" yaml:"synthesized"`
	FixpointRounds     int `json:"fixpointRounds" yaml:"fixpointRounds"`
}

// Graph is the compiled type graph: every registered type, the kind registry
// and the resolved resource metadata type. It is built incrementally and is
// read-only after Freeze.
type Graph struct {
	platform PlatformSpecifics

	order []TypeName
	types map[TypeName]TypeNode

	kinds     []KindRegistration
	kindIndex map[TypeName]int
	kindSeen  map[KindRegistration]struct{}

	actionKinds []Kind
	actions     map[Kind][]KindAction

	metadata TypeName

	lists []ListAttribute
	maps  []MapAttribute

	stats  Stats
	frozen bool
}

// New returns an empty, mutable graph.
func New(platform PlatformSpecifics) *Graph {
	return &Graph{
		platform:  platform,
		types:     make(map[TypeName]TypeNode),
		kindIndex: make(map[TypeName]int),
		kindSeen:  make(map[KindRegistration]struct{}),
		actions:   make(map[Kind][]KindAction),
	}
}

// Register adds a type node. Registering an existing name is an error.
func (g *Graph) Register(n TypeNode) error {
	if g.frozen {
		return ErrFrozen
	}
	name := n.TypeName()
	if _, exists := g.types[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateType, name)
	}
	g.types[name] = n
	g.order = append(g.order, name)
	return nil
}

// RegisterKind records that a definition type implements a kind. One type may
// implement several kinds; registering the same pair twice is an error.
func (g *Graph) RegisterKind(r KindRegistration) error {
	if g.frozen {
		return ErrFrozen
	}
	if _, exists := g.kindSeen[r]; exists {
		return fmt.Errorf("%w: kind %s registered twice for %s", ErrDuplicateType, r.GVK(), r.Type)
	}
	g.kindSeen[r] = struct{}{}
	if _, exists := g.kindIndex[r.Type]; !exists {
		g.kindIndex[r.Type] = len(g.kinds)
	}
	g.kinds = append(g.kinds, r)
	return nil
}

// AddAction appends an API action for its kind.
func (g *Graph) AddAction(a KindAction) error {
	if g.frozen {
		return ErrFrozen
	}
	if _, seen := g.actions[a.Kind]; !seen {
		g.actionKinds = append(g.actionKinds, a.Kind)
	}
	g.actions[a.Kind] = append(g.actions[a.Kind], a)
	return nil
}

// SetMetadataType records the canonical resource metadata type.
func (g *Graph) SetMetadataType(t TypeName) error {
	if g.frozen {
		return ErrFrozen
	}
	g.metadata = t
	return nil
}

// SetStats records build statistics.
func (g *Graph) SetStats(s Stats) error {
	if g.frozen {
		return ErrFrozen
	}
	g.stats = s
	return nil
}

// Freeze precomputes the list and map attribute descriptors and makes the
// graph read-only. Attributes named in exclude get no descriptor.
func (g *Graph) Freeze(exclude ...string) error {
	if g.frozen {
		return nil
	}
	if g.metadata == "" {
		return ErrNoMetadataType
	}
	g.lists, g.maps = collectCollections(g, exclude)
	g.frozen = true
	return nil
}

// Frozen reports whether Freeze completed.
func (g *Graph) Frozen() bool { return g.frozen }

// Has reports whether a type of this name is registered.
func (g *Graph) Has(name TypeName) bool {
	_, ok := g.types[name]
	return ok
}

// Type looks up a registered type. Once the graph is frozen the returned node
// is a copy.
func (g *Graph) Type(name TypeName) (TypeNode, bool) {
	n, ok := g.types[name]
	if !ok {
		return nil, false
	}
	return g.handout(n), true
}

// Types returns all type nodes in registration order.
func (g *Graph) Types() []TypeNode {
	out := make([]TypeNode, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.handout(g.types[name]))
	}
	return out
}

func (g *Graph) handout(n TypeNode) TypeNode {
	if !g.frozen {
		return n
	}
	return cloneNode(n)
}

// Len returns the number of registered types.
func (g *Graph) Len() int { return len(g.order) }

// Kinds returns the kind registrations in registration order.
func (g *Graph) Kinds() []KindRegistration { return slices.Clone(g.kinds) }

// KindOf returns the first kind registration of a definition type.
func (g *Graph) KindOf(name TypeName) (KindRegistration, bool) {
	i, ok := g.kindIndex[name]
	if !ok {
		return KindRegistration{}, false
	}
	return g.kinds[i], true
}

// ActionKinds returns every kind with at least one action, in discovery order.
func (g *Graph) ActionKinds() []Kind { return slices.Clone(g.actionKinds) }

// Actions returns the API actions of a kind in discovery order.
func (g *Graph) Actions(k Kind) []KindAction { return slices.Clone(g.actions[k]) }

// MetadataType returns the resolved resource metadata type.
func (g *Graph) MetadataType() TypeName { return g.metadata }

// Platform returns the platform specifics the graph was built for.
func (g *Graph) Platform() PlatformSpecifics {
	return PlatformSpecifics{PackagePrefixes: slices.Clone(g.platform.PackagePrefixes)}
}

// ListAttributes returns the list attribute descriptors computed by Freeze.
func (g *Graph) ListAttributes() []ListAttribute { return slices.Clone(g.lists) }

// MapAttributes returns the map attribute descriptors computed by Freeze.
func (g *Graph) MapAttributes() []MapAttribute { return slices.Clone(g.maps) }

// Stats returns the recorded build statistics.
func (g *Graph) Stats() Stats { return g.stats }
