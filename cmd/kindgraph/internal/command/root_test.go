package command

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/kindgraph/typegraph"
)

var (
	widgets = filepath.Join("..", "..", "..", "..", "testdata", "widgets.yaml")
	crds    = filepath.Join("..", "..", "..", "..", "testdata", "crds.yaml")
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCompileCommand_JSON(t *testing.T) {
	out, _, err := run(t, "compile", widgets)
	require.NoError(t, err)

	var snap typegraph.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, typegraph.TypeName("io.k8s.apimachinery.pkg.apis.meta.v1.ObjectMeta"), snap.MetadataType)
	assert.Len(t, snap.Kinds, 2)
	assert.Equal(t, 3, snap.Stats.Synthesized)
}

func TestCompileCommand_LegacyFormats(t *testing.T) {
	out, _, err := run(t, "--legacy-formats", "compile", "-o", "yaml", widgets)
	require.NoError(t, err)
	assert.Contains(t, out, "type: float64")
	assert.NotContains(t, out, "math/big.Float")
}

func TestCompileCommand_FormatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formats.yaml")
	require.NoError(t, os.WriteFile(path, []byte("number:\n  \"\": int64\n"), 0o600))
	out, _, err := run(t, "--formats", path, "compile", "-o", "yaml", widgets)
	require.NoError(t, err)
	assert.NotContains(t, out, "math/big.Float")
}

func TestCRDCommand(t *testing.T) {
	out, _, err := run(t, "crd", crds)
	require.NoError(t, err)
	assert.Contains(t, out, "com.example.v1.WidgetSpecTemplateContainersItem")
}

func TestKindsCommand(t *testing.T) {
	out, _, err := run(t, "kinds", widgets)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "API VERSION")
	assert.Contains(t, lines[1], "com.example.v1.Widget")
	assert.Contains(t, lines[1], "list,post")
	assert.Contains(t, lines[2], "Gadget")
}

func TestTypesCommand(t *testing.T) {
	out, _, err := run(t, "types", "--crd", crds)
	require.NoError(t, err)
	assert.Contains(t, out, "com.example.v1.Widget")
	assert.Contains(t, out, "(kind)")
	assert.Contains(t, out, "sealed")
}

func TestShowAliasesLogsWarnings(t *testing.T) {
	_, errOut, err := run(t, "--show-aliases", "--log-format", "json", "compile", widgets)
	require.NoError(t, err)
	assert.Contains(t, errOut, `"code":"ignored_alias"`)
}

func TestRootCommand_Errors(t *testing.T) {
	_, _, err := run(t, "--log-level", "loud", "compile", widgets)
	assert.ErrorContains(t, err, "unknown log level")

	_, _, err = run(t, "compile", "-o", "toml", widgets)
	assert.Error(t, err)

	_, _, err = run(t, "compile", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "read input")
}
