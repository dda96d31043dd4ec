package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/kindgraph/document"
	"github.com/reoring/kindgraph/internal/classify"
	"github.com/reoring/kindgraph/internal/diag"
	"github.com/reoring/kindgraph/typegraph"
)

type recordingSink struct {
	known  map[typegraph.TypeName]bool
	queued []typegraph.TypeName
	defs   map[typegraph.TypeName]*document.Definition
}

func newSink(known ...typegraph.TypeName) *recordingSink {
	s := &recordingSink{known: map[typegraph.TypeName]bool{}, defs: map[typegraph.TypeName]*document.Definition{}}
	for _, k := range known {
		s.known[k] = true
	}
	return s
}

func (s *recordingSink) Reference(name typegraph.TypeName, def *document.Definition) {
	s.Synthesize(name, def)
}

func (s *recordingSink) Synthesize(name typegraph.TypeName, def *document.Definition) {
	if s.known[name] {
		return
	}
	s.known[name] = true
	s.queued = append(s.queued, name)
	s.defs[name] = def
}

func prop(name string, n document.Node) document.Property {
	return document.Property{Name: name, Node: n, Pointer: diag.Definition("Owner").Property(name)}
}

func inline(props ...document.Property) *document.ObjectNode {
	return &document.ObjectNode{Properties: props}
}

func TestClassify_Shapes(t *testing.T) {
	str := document.ScalarNode{Type: "string"}
	cases := []struct {
		name   string
		prop   document.Property
		want   typegraph.Shape
		queued []typegraph.TypeName
	}{
		{"ref", prop("metadata", document.RefNode{Name: "Meta"}), typegraph.Scalar("Meta"), nil},
		{"string", prop("name", str), typegraph.Scalar(typegraph.String), nil},
		{"bytes", prop("data", document.ScalarNode{Type: "string", Format: "byte"}), typegraph.Scalar(typegraph.Bytes), nil},
		{"timestamp", prop("at", document.ScalarNode{Type: "string", Format: "date-time"}), typegraph.Scalar(typegraph.Timestamp), nil},
		{"int", prop("n", document.ScalarNode{Type: "integer", Format: "int32"}), typegraph.Scalar(typegraph.Int), nil},
		{"long", prop("n", document.ScalarNode{Type: "integer", Format: "int64"}), typegraph.Scalar(typegraph.Long), nil},
		{"bool", prop("b", document.ScalarNode{Type: "boolean"}), typegraph.Scalar(typegraph.Boolean), nil},
		{"double", prop("d", document.ScalarNode{Type: "number", Format: "double"}), typegraph.Scalar(typegraph.Double), nil},
		{"decimal", prop("d", document.ScalarNode{Type: "number"}), typegraph.Scalar(typegraph.Decimal), nil},
		{"list of strings", prop("tags", document.ArrayNode{Items: str}), typegraph.ListOf(typegraph.String), nil},
		{"map of strings", prop("labels", document.MapNode{Values: str}), typegraph.MapOf(typegraph.String), nil},
		{"anonymous object", prop("spec", inline(prop("a", str))), typegraph.Scalar("OwnerSpec"), []typegraph.TypeName{"OwnerSpec"}},
		{"list of anonymous", prop("foo", document.ArrayNode{Items: inline()}), typegraph.ListOf("OwnerFooItem"), []typegraph.TypeName{"OwnerFooItem"}},
		{"map of anonymous", prop("foo", document.MapNode{Values: inline()}), typegraph.MapOf("OwnerFooValue"), []typegraph.TypeName{"OwnerFooValue"}},
		{"map of list of anonymous", prop("foo", document.MapNode{Values: document.ArrayNode{Items: inline()}}), typegraph.MapOf("OwnerFooValueItem"), []typegraph.TypeName{"OwnerFooValueItem"}},
		{"named inline", prop("x", &document.ObjectNode{Name: "Shared"}), typegraph.Scalar("Shared"), []typegraph.TypeName{"Shared"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var issues diag.Collector
			sink := newSink()
			c := classify.New(nil, &issues, sink)
			got, ok := c.Classify("Owner", tc.prop)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.queued, sink.queued)
			assert.False(t, issues.HasWarnings(), "%v", issues.Warnings())
		})
	}
}

func TestClassify_SinkDecidesOnKnownNames(t *testing.T) {
	var issues diag.Collector
	sink := newSink("OwnerSpec")
	c := classify.New(nil, &issues, sink)
	got, ok := c.Classify("Owner", prop("spec", inline()))
	require.True(t, ok)
	assert.Equal(t, typegraph.Scalar("OwnerSpec"), got)
	assert.Empty(t, sink.queued)
}

func TestClassify_SynthesizedDefinitionCarriesInlineBody(t *testing.T) {
	var issues diag.Collector
	sink := newSink()
	c := classify.New(nil, &issues, sink)
	body := inline(prop("name", document.ScalarNode{Type: "string"}))
	body.Description = "spec of the owner"
	_, ok := c.Classify("Owner", prop("spec", body))
	require.True(t, ok)
	def := sink.defs["OwnerSpec"]
	require.NotNil(t, def)
	assert.Equal(t, "OwnerSpec", def.Name)
	assert.Equal(t, "spec of the owner", def.Description)
	require.Len(t, def.Properties, 1)
	assert.Equal(t, "name", def.Properties[0].Name)
}

func TestClassify_Diagnostics(t *testing.T) {
	var issues diag.Collector
	c := classify.New(nil, &issues, newSink())

	got, ok := c.Classify("Owner", prop("raw", document.UntypedNode{}))
	require.True(t, ok)
	assert.Equal(t, typegraph.Scalar(typegraph.String), got)

	got, ok = c.Classify("Owner", prop("n", document.ScalarNode{Type: "integer", Format: "uint8"}))
	require.True(t, ok)
	assert.Equal(t, typegraph.Scalar(typegraph.Int), got)

	got, ok = c.Classify("Owner", prop("id", document.ScalarNode{Type: "string", Format: "uuid"}))
	require.True(t, ok)
	assert.Equal(t, typegraph.Scalar(typegraph.String), got)

	_, ok = c.Classify("Owner", prop("grid", document.ArrayNode{Items: document.ArrayNode{Items: document.ScalarNode{Type: "string"}}}))
	assert.False(t, ok)

	all := issues.Issues()
	require.Len(t, all, 3)
	assert.Equal(t, diag.CodeUntypedProperty, all[0].Code)
	assert.Equal(t, "/definitions/Owner/properties/raw", all[0].Path)
	assert.Equal(t, diag.CodeUnmappedFormat, all[1].Code)
	assert.Equal(t, diag.CodeUnhandledProperty, all[2].Code)
	assert.Equal(t, "/definitions/Owner/properties/grid/items", all[2].Path)
}

func TestDependencies(t *testing.T) {
	deps := classify.Dependencies([]typegraph.Shape{
		typegraph.Scalar(typegraph.String),
		typegraph.Scalar("Meta"),
		typegraph.ListOf("Item"),
		typegraph.MapOf("Meta"),
		typegraph.Scalar(typegraph.Timestamp),
		typegraph.MapOf(typegraph.Int),
	})
	assert.Equal(t, []typegraph.TypeName{"Meta", "Item", typegraph.Timestamp}, deps)
}
