package parser

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/imishinist/mlflow-adsp/internal/models"
)

// ParseYAMLParams reads entry point parameters. Scalars keep their literal
// form as written in the document.
func ParseYAMLParams(reader io.Reader) (map[string]string, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(reader).Decode(&root); err != nil {
		return nil, fmt.Errorf("failed to parse YAML parameters: %w", err)
	}

	doc, err := literalMapping(&root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML parameters: %w", err)
	}
	params, err := paramsFromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML parameters: %w", err)
	}
	return params, nil
}

// literalMapping converts a mapping node into a map whose scalar leaves are
// their source text.
func literalMapping(n *yaml.Node) (map[string]any, error) {
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("document must be a mapping")
	}

	out := make(map[string]any, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i].Value, n.Content[i+1]
		switch value.Kind {
		case yaml.ScalarNode:
			if value.Tag == "!!null" {
				out[key] = nil
			} else {
				out[key] = value.Value
			}
		case yaml.MappingNode:
			m, err := literalMapping(value)
			if err != nil {
				return nil, err
			}
			out[key] = m
		default:
			out[key] = value
		}
	}
	return out, nil
}

func ParseYAMLBackendConfig(reader io.Reader) (models.BackendConfig, error) {
	data := models.BackendConfig{}
	decoder := yaml.NewDecoder(reader)

	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse YAML backend config: %w", err)
	}

	return data, nil
}
