package parser

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/imishinist/mlflow-adsp/internal/models"
)

// ParseJSONParams reads entry point parameters. Numbers keep their literal
// form, so 0.010 stays "0.010".
func ParseJSONParams(reader io.Reader) (map[string]string, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber()

	var doc map[string]any
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON parameters: %w", err)
	}
	normalizeNumbers(doc)

	params, err := paramsFromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON parameters: %w", err)
	}
	return params, nil
}

func normalizeNumbers(m map[string]any) {
	for k, v := range m {
		switch v := v.(type) {
		case json.Number:
			m[k] = v.String()
		case map[string]any:
			normalizeNumbers(v)
		}
	}
}

func ParseJSONBackendConfig(reader io.Reader) (models.BackendConfig, error) {
	data := models.BackendConfig{}
	decoder := json.NewDecoder(reader)

	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse JSON backend config: %w", err)
	}

	return data, nil
}
