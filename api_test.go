package kindgraph_test

import (
	"errors"
	"os"
	"reflect"
	"testing"

	"github.com/reoring/kindgraph"
	"github.com/reoring/kindgraph/internal/classify"
	"github.com/reoring/kindgraph/typegraph"
)

const (
	objectMeta  = typegraph.TypeName("io.k8s.apimachinery.pkg.apis.meta.v1.ObjectMeta")
	intOrString = typegraph.TypeName("io.k8s.apimachinery.pkg.util.intstr.IntOrString")
)

func names(g *typegraph.Graph) []typegraph.TypeName {
	var out []typegraph.TypeName
	for _, n := range g.Types() {
		out = append(out, n.TypeName())
	}
	return out
}

func TestCompileFile_Widgets(t *testing.T) {
	g, d, err := kindgraph.CompileFile("testdata/widgets.yaml", kindgraph.Options{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if d.HasWarnings() {
		t.Fatalf("unexpected warnings: %v", d.Warnings())
	}
	if g.MetadataType() != objectMeta {
		t.Fatalf("metadata type: got %s", g.MetadataType())
	}

	want := []typegraph.TypeName{
		"com.example.v1.Widget",
		"com.example.v1.WidgetList",
		"com.example.v1.Gadget",
		objectMeta,
		"io.k8s.apimachinery.pkg.apis.meta.v1.ListMeta",
		"io.k8s.apimachinery.pkg.apis.meta.v1.Time",
		"io.k8s.apimachinery.pkg.api.resource.Quantity",
		intOrString,
		"io.k8s.apimachinery.pkg.runtime.RawExtension",
		"com.example.v1.WidgetSpec",
		"com.example.v1.WidgetStatus",
		"com.example.v1.WidgetSpecPortsItem",
	}
	if got := names(g); !reflect.DeepEqual(got, want) {
		t.Fatalf("types:\n got %v\nwant %v", got, want)
	}

	var kinds []string
	for _, k := range g.Kinds() {
		kinds = append(kinds, k.APIVersion()+"/"+k.Kind+"="+string(k.Type))
	}
	wantKinds := []string{
		"example.com/v1/Widget=com.example.v1.Widget",
		"example.com/v1/Gadget=com.example.v1.Gadget",
	}
	if !reflect.DeepEqual(kinds, wantKinds) {
		t.Fatalf("kinds: got %v", kinds)
	}

	list := g.Actions(typegraph.NewKind("example.com", "Widget", "v1"))
	if len(list) != 2 || list[0].Action != "list" || list[1].Action != "post" {
		t.Fatalf("widget actions: %+v", list)
	}
	if len(list[0].QueryParameters) != 1 || list[0].QueryParameters[0].Name != "limit" {
		t.Fatalf("list query parameters: %+v", list[0].QueryParameters)
	}
	if len(list[0].PathParameters) != 1 || list[0].PathParameters[0].Name != "namespace" {
		t.Fatalf("list path parameters: %+v", list[0].PathParameters)
	}

	n, _ := g.Type("com.example.v1.Gadget")
	weight, _ := n.(*typegraph.ObjectType).Attribute("weight")
	if weight.Shape.Type != typegraph.Decimal {
		t.Fatalf("weight: got %s", weight.Shape.Type)
	}
	n, _ = g.Type(objectMeta)
	if _, ok := n.(*typegraph.ObjectType).Attribute("uid"); ok {
		t.Fatalf("read-only uid should be dropped")
	}

	st := g.Stats()
	if st.Definitions != 9 || st.IgnoredAliases != 1 || st.Synthesized != 3 || st.FixpointRounds != 2 {
		t.Fatalf("stats: %+v", st)
	}
}

func TestCompileBytes_LegacyFormats(t *testing.T) {
	data, err := os.ReadFile("testdata/widgets.yaml")
	if err != nil {
		t.Fatal(err)
	}
	g, _, err := kindgraph.CompileBytes(data, kindgraph.Options{ScalarFormats: classify.LegacyFormats()})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	n, _ := g.Type("com.example.v1.Gadget")
	weight, _ := n.(*typegraph.ObjectType).Attribute("weight")
	if weight.Shape.Type != typegraph.Double {
		t.Fatalf("weight: got %s", weight.Shape.Type)
	}
}

func TestCompileBytes_ShowIgnoredAliases(t *testing.T) {
	data, err := os.ReadFile("testdata/widgets.yaml")
	if err != nil {
		t.Fatal(err)
	}
	_, d, err := kindgraph.CompileBytes(data, kindgraph.Options{ShowIgnoredAliases: true})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	iss := d.Issues().ByCode(kindgraph.CodeIgnoredAlias)
	if len(iss) != 1 || iss[0].Path != "/definitions/io.k8s.apimachinery.pkg.apis.meta.v1.Status_v2" {
		t.Fatalf("ignored aliases: %v", d.Warnings())
	}
}

func TestCompileCRDs(t *testing.T) {
	data, err := os.ReadFile("testdata/crds.yaml")
	if err != nil {
		t.Fatal(err)
	}
	g, d, err := kindgraph.CompileCRDs(data, kindgraph.Options{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if d.HasWarnings() {
		t.Fatalf("unexpected warnings: %v", d.Warnings())
	}
	if g.MetadataType() != objectMeta {
		t.Fatalf("metadata type: got %s", g.MetadataType())
	}
	want := []typegraph.TypeName{
		"com.example.v1.Widget",
		"com.example.v1.Gadget",
		objectMeta,
		intOrString,
		"com.example.v1.WidgetSpec",
		"com.example.v1.WidgetStatus",
		"com.example.v1.GadgetSpec",
		"com.example.v1.WidgetSpecTemplate",
		"com.example.v1.WidgetSpecTemplateContainersItem",
	}
	if got := names(g); !reflect.DeepEqual(got, want) {
		t.Fatalf("types:\n got %v\nwant %v", got, want)
	}

	n, _ := g.Type("com.example.v1.WidgetSpec")
	spec := n.(*typegraph.ObjectType)
	port, _ := spec.Attribute("port")
	if port.Shape != typegraph.Scalar(intOrString) {
		t.Fatalf("port shape: %+v", port.Shape)
	}
	replicas, _ := spec.Attribute("replicas")
	if !replicas.Required || replicas.Shape.Type != typegraph.Int {
		t.Fatalf("replicas: %+v", replicas)
	}
	if g.Stats().FixpointRounds != 3 {
		t.Fatalf("fixpoint rounds: %d", g.Stats().FixpointRounds)
	}
}

func TestCompileBytes_Errors(t *testing.T) {
	_, d, err := kindgraph.CompileBytes([]byte(`{"swagger": "2.0", "info": {"title": "t", "version": "1"}, "paths": {}}`), kindgraph.Options{})
	if !errors.Is(err, kindgraph.ErrNoWritableKinds) || !errors.Is(err, kindgraph.ErrUnsatisfiable) {
		t.Fatalf("expected no writable kinds, got %v", err)
	}
	e, ok := kindgraph.AsError(err)
	if !ok || e.Code != kindgraph.CodeNoWritableKinds || e.Path != "/" {
		t.Fatalf("AsError: %+v", e)
	}
	if d == nil || d.HasWarnings() {
		t.Fatalf("diag should be empty and non-nil")
	}

	if _, _, err := kindgraph.CompileBytes(nil, kindgraph.Options{}); err == nil {
		t.Fatalf("empty input should fail")
	}
	if _, ok := kindgraph.AsError(errors.New("plain")); ok {
		t.Fatalf("plain errors are not compilation errors")
	}
}
