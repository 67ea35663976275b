package loader

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/selimozcann/URLTester/internal/model"
)

type yamlDecoder struct{}

// Decode reads a YAML sequence of mappings with the same keys as the JSON
// format: URL, expectedRedirect and optional domain, in any case.
func (yamlDecoder) Decode(path string, withDomain bool) ([]*model.Record, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{fmt.Errorf("read %s: %w", path, err)}
	}

	var nodes []yaml.Node
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, []error{fmt.Errorf("decode YAML: %w", err)}
	}
	return convert(len(nodes), func(i int) (rawRecord, error) {
		return decodeYAMLRecord(&nodes[i])
	}, withDomain)
}

func decodeYAMLRecord(node *yaml.Node) (rawRecord, error) {
	var raw rawRecord
	if node.Kind != yaml.MappingNode {
		return raw, fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		var dst *string
		switch strings.ToLower(key.Value) {
		case "url":
			dst = &raw.URL
		case "expectedredirect":
			dst = &raw.ExpectedRedirect
		case "domain":
			dst = &raw.Domain
		default:
			continue
		}
		if value.Kind != yaml.ScalarNode {
			return raw, fmt.Errorf("line %d: %s must be a string", value.Line, key.Value)
		}
		if value.Tag != "!!null" {
			*dst = value.Value
		}
	}
	return raw, nil
}
