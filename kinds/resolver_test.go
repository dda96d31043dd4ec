package kinds_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/kindgraph/document"
	"github.com/reoring/kindgraph/internal/diag"
	"github.com/reoring/kindgraph/kinds"
	"github.com/reoring/kindgraph/typegraph"
)

const apiJSON = `{
  "swagger": "2.0",
  "info": {"title": "Kubernetes", "version": "v1"},
  "paths": {
    "/apis/example.com/v1/namespaces/{namespace}/widgets": {
      "parameters": [{"name": "namespace", "in": "path", "type": "string", "required": true, "uniqueItems": true}],
      "get": {
        "parameters": [
          {"name": "limit", "in": "query", "type": "integer"},
          {"name": "watch", "in": "query", "type": "boolean"}
        ],
        "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/WidgetList"}}},
        "x-kubernetes-action": "list",
        "x-kubernetes-group-version-kind": {"group": "example.com", "kind": "Widget", "version": "v1"}
      },
      "post": {
        "description": "create a Widget",
        "parameters": [{"name": "body", "in": "body", "schema": {"$ref": "#/definitions/Widget"}}],
        "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Widget"}}},
        "x-kubernetes-action": "post",
        "x-kubernetes-group-version-kind": {"Group": "example.com", "KIND": "Widget", "version": "v1"}
      }
    },
    "/apis/example.com/v1/gizmos": {
      "post": {
        "x-kubernetes-group-version-kind": {"group": "example.com", "kind": "Gizmo", "version": "v1"}
      }
    },
    "/version": {"get": {"description": "no kind"}}
  },
  "definitions": {
    "Widget": {
      "type": "object",
      "properties": {"metadata": {"$ref": "#/definitions/Meta"}},
      "x-kubernetes-group-version-kind": [
        {"group": "example.com", "kind": "Widget", "version": "v1"},
        {"group": "example.com", "kind": "Widget", "version": "v1"}
      ]
    },
    "WidgetV2": {
      "type": "object",
      "x-kubernetes-group-version-kind": [{"group": "example.com", "kind": "Widget", "version": "v1"}]
    },
    "Meta": {"type": "object"}
  }
}`

func resolve(t *testing.T, src string) (*kinds.Registry, error) {
	t.Helper()
	doc, err := document.Load([]byte(src))
	require.NoError(t, err)
	return kinds.Resolve(doc, kinds.Options{})
}

func TestResolve_Registry(t *testing.T) {
	reg, err := resolve(t, apiJSON)
	require.NoError(t, err)

	widget := typegraph.NewKind("example.com", "Widget", "v1")
	gizmo := typegraph.NewKind("example.com", "Gizmo", "v1")

	assert.Equal(t, []typegraph.Kind{widget, gizmo}, reg.ActionKinds())
	assert.Equal(t, []typegraph.Kind{widget}, reg.WritableKinds())
	assert.Equal(t, []typegraph.TypeName{"Widget", "WidgetV2"}, reg.Types(widget))
	assert.Equal(t, []typegraph.Kind{widget}, reg.KindOf("Widget"))
	assert.True(t, reg.IsWritable(widget))
	assert.False(t, reg.IsWritable(gizmo))

	require.Len(t, reg.Issues(), 1)
	assert.Equal(t, diag.CodeKindWithoutTypes, reg.Issues()[0].Code)

	actions := reg.Actions(widget)
	require.Len(t, actions, 2)
	list, post := actions[0], actions[1]
	assert.Equal(t, "GET", list.Method)
	assert.Equal(t, "list", list.Action)
	assert.Nil(t, list.RequestType)
	require.NotNil(t, list.ResponseType)
	assert.Equal(t, typegraph.TypeName("WidgetList"), *list.ResponseType)
	require.Len(t, list.QueryParameters, 2)
	assert.Equal(t, typegraph.Int, list.QueryParameters[0].Type)
	assert.Equal(t, typegraph.Boolean, list.QueryParameters[1].Type)
	require.Len(t, list.PathParameters, 1)
	assert.True(t, list.PathParameters[0].Required)
	assert.True(t, list.PathParameters[0].UniqueItems)

	assert.True(t, post.Writable())
	require.NotNil(t, post.RequestType)
	assert.Equal(t, typegraph.TypeName("Widget"), *post.RequestType)
}

func TestResolve_DefinitionWithSeveralKinds(t *testing.T) {
	src := `{"paths": {
	  "/apis/g/v1/as": {"post": {"x-kubernetes-group-version-kind": {"group": "g", "kind": "A", "version": "v1"}}},
	  "/apis/g/v1/bs": {"post": {"x-kubernetes-group-version-kind": {"group": "g", "kind": "B", "version": "v1"}}}},
	  "definitions": {"Opts": {"type": "object",
	    "x-kubernetes-group-version-kind": [{"group": "g", "kind": "A", "version": "v1"}, {"group": "g", "kind": "B", "version": "v1"}]}}}`
	reg, err := resolve(t, src)
	require.NoError(t, err)

	a := typegraph.NewKind("g", "A", "v1")
	b := typegraph.NewKind("g", "B", "v1")
	assert.Equal(t, []typegraph.Kind{a, b}, reg.WritableKinds())
	assert.Equal(t, []typegraph.TypeName{"Opts"}, reg.Types(a))
	assert.Equal(t, []typegraph.TypeName{"Opts"}, reg.Types(b))
	assert.Equal(t, []typegraph.Kind{a, b}, reg.KindOf("Opts"))
}

func TestResolve_NoWritableKinds(t *testing.T) {
	_, err := resolve(t, `{"swagger": "2.0", "paths": {"/x": {"get": {}}}, "definitions": {"A": {"type": "object"}}}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrNoWritableKinds))
	assert.True(t, errors.Is(err, diag.ErrUnsatisfiable))
}

func TestResolve_MissingGVKKey(t *testing.T) {
	src := `{"paths": {"/x": {"post": {"x-kubernetes-group-version-kind": {"group": "", "kind": "X"}}}}}`
	_, err := resolve(t, src)
	require.Error(t, err)
	var de *diag.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, diag.CodeMissingGVKKey, de.Code)
	assert.Equal(t, "/paths/~1x/post/x-kubernetes-group-version-kind", de.Path)
	assert.True(t, errors.Is(err, diag.ErrMalformedInput))
}

func TestResolve_InvalidDefinitionGVK(t *testing.T) {
	src := `{"definitions": {"A": {"type": "object", "x-kubernetes-group-version-kind": ["oops"]}}}`
	_, err := resolve(t, src)
	var de *diag.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, diag.CodeInvalidGVK, de.Code)
	assert.Equal(t, "/definitions/A/x-kubernetes-group-version-kind/0", de.Path)
}

func TestResolve_UnsupportedParameter(t *testing.T) {
	src := `{"paths": {"/x": {"post": {
	  "parameters": [{"name": "ratio", "in": "query", "type": "number"}],
	  "x-kubernetes-group-version-kind": {"group": "", "kind": "X", "version": "v1"}}}}}`
	_, err := resolve(t, src)
	var de *diag.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, diag.CodeUnsupportedParameter, de.Code)
	assert.Contains(t, de.Message, "ratio")
}
