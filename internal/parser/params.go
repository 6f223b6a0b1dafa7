package parser

import (
	"fmt"
	"sort"
	"strconv"
)

// paramsFromDocument accepts either {"parameters": {...}} or a flat mapping
// and renders scalar values as strings.
func paramsFromDocument(doc map[string]any) (map[string]string, error) {
	raw := doc
	if nested, ok := doc["parameters"]; ok && len(doc) == 1 {
		m, ok := nested.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("parameters must be a mapping, got %T", nested)
		}
		raw = m
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	params := make(map[string]string, len(raw))
	for _, k := range keys {
		s, err := scalarString(raw[k])
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", k, err)
		}
		params[k] = s
	}
	return params, nil
}

func scalarString(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case nil:
		return "", fmt.Errorf("value is null")
	default:
		return "", fmt.Errorf("value must be a scalar, got %T", v)
	}
}
