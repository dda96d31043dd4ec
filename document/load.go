package document

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
	"k8s.io/kube-openapi/pkg/validation/spec"

	"github.com/reoring/kindgraph/internal/diag"
)

// ErrEmptyDocument is returned when the input holds no document at all.
var ErrEmptyDocument = errors.New("document: empty input")

// Load parses a Swagger 2.0 document from JSON or YAML bytes. Duplicate keys
// in any mapping are rejected with a *DuplicateKeyError.
func Load(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyDocument
	}
	if trimmed[0] == '{' {
		return loadJSON(trimmed)
	}
	return loadYAML(trimmed)
}

// LoadFile reads and parses a schema document from disk.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	d, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func loadJSON(data []byte) (*Document, error) {
	order, err := scanJSONOrder(data)
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	var sw spec.Swagger
	if err := json.Unmarshal(data, &sw); err != nil {
		return nil, fmt.Errorf("document: decode swagger: %w", err)
	}
	return &Document{swagger: &sw, order: order}, nil
}

func loadYAML(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	order := keyOrder{}
	v, err := yamlToValue(&root, diag.Root(), order)
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	if v == nil {
		return nil, ErrEmptyDocument
	}
	sw, err := swaggerFromValue(v)
	if err != nil {
		return nil, err
	}
	return &Document{swagger: sw, order: order}, nil
}

// swaggerFromValue decodes JSON-compatible values into the typed document.
func swaggerFromValue(v any) (*spec.Swagger, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("document: encode: %w", err)
	}
	var sw spec.Swagger
	if err := json.Unmarshal(b, &sw); err != nil {
		return nil, fmt.Errorf("document: decode swagger: %w", err)
	}
	return &sw, nil
}
