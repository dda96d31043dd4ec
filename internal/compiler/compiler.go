// Package compiler builds the type graph from a schema document: kind
// registrations, the resource metadata type, every definition, and the types
// synthesized for anonymous inline objects.
package compiler

import (
	"errors"
	"strings"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/reoring/kindgraph/document"
	"github.com/reoring/kindgraph/internal/classify"
	"github.com/reoring/kindgraph/internal/diag"
	"github.com/reoring/kindgraph/kinds"
	"github.com/reoring/kindgraph/typegraph"
)

// DefaultCollectionExclusions are attribute names that get no list or map
// descriptor.
var DefaultCollectionExclusions = []string{"status"}

// Options configures a compilation.
type Options struct {
	Logger logr.Logger
	// Formats maps scalar (type, format) pairs; nil means classify.DefaultFormats.
	Formats classify.FormatTable
	// ShowIgnoredAliases logs skipped alias definitions at info level and
	// reports them as diagnostics.
	ShowIgnoredAliases bool
	// CollectionExclusions overrides DefaultCollectionExclusions when non-nil.
	CollectionExclusions []string
	// Platform overrides the prefixes derived from the document title.
	Platform *typegraph.PlatformSpecifics
}

// Compile builds and freezes the type graph of doc. Non-fatal diagnostics are
// returned even when compilation fails.
func Compile(doc *document.Document, opts Options) (*typegraph.Graph, diag.Issues, error) {
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	platform := doc.Platform()
	if opts.Platform != nil {
		platform = *opts.Platform
	}

	reg, err := kinds.Resolve(doc, kinds.Options{Logger: log.WithName("kinds")})
	if err != nil {
		return nil, nil, err
	}

	b := &builder{
		doc:         doc,
		reg:         reg,
		graph:       typegraph.New(platform),
		log:         log,
		opts:        opts,
		definitions: sets.New(doc.DefinitionNames()...),
		kindRoots:   sets.New[typegraph.TypeName](),
		skipped:     sets.New[typegraph.TypeName](),
		claims:      make(map[typegraph.TypeName]claim),
		pending:     newPendingQueue(),
	}
	b.classifier = classify.New(opts.Formats, &b.issues, b)

	graph, err := b.build()
	issues := append(reg.Issues(), b.issues.Issues()...)
	if err != nil {
		return nil, issues, err
	}
	return graph, issues, nil
}

type builder struct {
	doc        *document.Document
	reg        *kinds.Registry
	graph      *typegraph.Graph
	classifier *classify.Classifier
	log        logr.Logger
	opts       Options
	issues     diag.Collector

	definitions sets.Set[string]
	kindRoots   sets.Set[typegraph.TypeName]
	skipped     sets.Set[typegraph.TypeName]
	// claims remembers where each inline object name came from.
	claims  map[typegraph.TypeName]claim
	pending *pendingQueue
	stats       typegraph.Stats

	// err is the first fatal error raised from a classifier callback.
	err error
}

func (b *builder) build() (*typegraph.Graph, error) {
	if err := b.registerKinds(); err != nil {
		return nil, err
	}
	if err := b.resolveMetadata(); err != nil {
		return nil, err
	}
	if err := b.processDefinitions(); err != nil {
		return nil, err
	}
	if err := b.drainPending(); err != nil {
		return nil, err
	}
	if err := b.graph.SetStats(b.stats); err != nil {
		return nil, err
	}
	exclude := DefaultCollectionExclusions
	if b.opts.CollectionExclusions != nil {
		exclude = b.opts.CollectionExclusions
	}
	if err := b.graph.Freeze(exclude...); err != nil {
		return nil, err
	}
	b.log.Info("type graph built",
		"types", b.graph.Len(),
		"kinds", len(b.graph.Kinds()),
		"definitions", b.stats.Definitions,
		"synthesized", b.stats.Synthesized,
		"skipped", b.stats.SkippedDefinitions,
		"fixpointRounds", b.stats.FixpointRounds)
	return b.graph, nil
}

// registerKinds records the kind registrations of every writable kind and the
// actions of every kind.
func (b *builder) registerKinds() error {
	for _, kt := range b.reg.WritableKindTypes() {
		for _, t := range kt.Types {
			r := typegraph.KindRegistration{Type: t, Group: kt.Kind.Group, Kind: kt.Kind.Kind, Version: kt.Kind.Version}
			if err := b.graph.RegisterKind(r); err != nil {
				return b.duplicate(diag.Definition(string(t)), err)
			}
			b.kindRoots.Insert(t)
		}
	}
	for _, k := range b.reg.ActionKinds() {
		for _, a := range b.reg.Actions(k) {
			if err := b.graph.AddAction(a); err != nil {
				return err
			}
		}
	}
	b.log.V(1).Info("kinds registered", "registrations", len(b.graph.Kinds()))
	return nil
}

// processDefinitions is the main pass over the document's definitions.
func (b *builder) processDefinitions() error {
	for _, def := range b.doc.Definitions() {
		name := typegraph.TypeName(def.Name)
		if def.IsAlias() {
			b.ignoreAlias(def)
			continue
		}
		if e, ok := b.pending.Drop(name); ok {
			b.log.V(2).Info("lookahead superseded by main pass", "type", name, "origin", e.origin)
		}
		if err := b.define(def); err != nil {
			return err
		}
		b.stats.Definitions++
	}
	b.log.V(1).Info("definitions processed", "count", b.stats.Definitions, "pending", b.pending.Len())
	return nil
}

// drainPending registers queued definitions until no new ones appear.
func (b *builder) drainPending() error {
	for b.pending.Len() > 0 {
		b.stats.FixpointRounds++
		batch := b.pending.Take()
		b.log.V(1).Info("fixpoint round", "round", b.stats.FixpointRounds, "pending", len(batch))
		for _, e := range batch {
			if e.origin == originDefinition && (b.graph.Has(e.name) || b.skipped.Has(e.name)) {
				continue
			}
			if err := b.define(e.def); err != nil {
				return err
			}
			if e.origin == originSynthesized {
				b.stats.Synthesized++
			}
		}
	}
	return nil
}

func (b *builder) ignoreAlias(def *document.Definition) {
	b.stats.IgnoredAliases++
	if b.opts.ShowIgnoredAliases {
		b.log.Info("ignoring alias definition", "definition", def.Name, "use", def.Alias)
		b.issues.Warnf(diag.CodeIgnoredAlias, def.Pointer, "definition %s is an alias, use %s instead", def.Name, def.Alias)
		return
	}
	b.log.V(1).Info("ignoring alias definition", "definition", def.Name, "use", def.Alias)
}

// claim is the source of a name given to an inline object.
type claim struct {
	at     diag.Pointer
	titled bool
}

func (c claim) String() string {
	if c.titled {
		return "inline object titled at " + c.at.String()
	}
	return "inline object at " + c.at.String()
}

// Reference queues a title-named inline object unless a definition of that
// name exists. Objects sharing a title share one type; a title equal to a
// synthesized name is fatal.
func (b *builder) Reference(name typegraph.TypeName, def *document.Definition) {
	if b.err != nil || b.definitions.Has(string(name)) {
		return
	}
	if c, ok := b.claims[name]; ok {
		if !c.titled {
			b.err = diag.Fatalf(diag.CodeDuplicateType, def.Pointer,
				"inline object titled %s collides with the type synthesized from %s", name, c.at)
		}
		return
	}
	b.claim(name, def, true)
}

// Synthesize queues an anonymous inline object under its derived name. A name
// that clashes with a schema definition, a titled inline object or another
// synthesized type is fatal.
func (b *builder) Synthesize(name typegraph.TypeName, def *document.Definition) {
	if b.err != nil {
		return
	}
	if b.definitions.Has(string(name)) {
		b.err = diag.Fatalf(diag.CodeDuplicateType, def.Pointer,
			"synthesized type %s collides with the schema definition of the same name", name)
		return
	}
	if c, ok := b.claims[name]; ok {
		if c.titled || c.at.String() != def.Pointer.String() {
			b.err = diag.Fatalf(diag.CodeDuplicateType, def.Pointer,
				"synthesized type %s already claimed by %s", name, c)
		}
		return
	}
	b.claim(name, def, false)
}

func (b *builder) claim(name typegraph.TypeName, def *document.Definition, titled bool) {
	if !b.pending.Push(pendingEntry{name: name, def: def, origin: originSynthesized}) || b.graph.Has(name) {
		b.err = diag.Fatalf(diag.CodeDuplicateType, def.Pointer, "type %s is already queued", name)
		return
	}
	b.claims[name] = claim{at: def.Pointer, titled: titled}
}

// lookahead queues the definitions a newly registered type depends on.
func (b *builder) lookahead(deps []typegraph.TypeName) {
	for _, dep := range deps {
		if b.graph.Has(dep) || b.pending.Has(dep) || b.skipped.Has(dep) {
			continue
		}
		def, ok := b.doc.Definition(string(dep))
		if !ok || def.IsAlias() {
			continue
		}
		b.pending.Push(pendingEntry{name: dep, def: def, origin: originDefinition})
	}
}

func (b *builder) register(n typegraph.TypeNode, at diag.Pointer) error {
	if err := b.graph.Register(n); err != nil {
		return b.duplicate(at, err)
	}
	return nil
}

func (b *builder) duplicate(at diag.Pointer, err error) error {
	if errors.Is(err, typegraph.ErrDuplicateType) {
		return &diag.Error{Code: diag.CodeDuplicateType, Path: at.String(), Message: "type registered twice", Cause: err}
	}
	return err
}

func isReadOnly(doc string) bool {
	return strings.Contains(strings.ToLower(doc), "read-only")
}
