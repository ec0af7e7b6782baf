package configload

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/agentic-research/pathform/api"
)

func loadYAML(data []byte) (api.Config, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return api.Config{}, fmt.Errorf("parsing yaml config: %w", err)
	}
	return fromGeneric(normalizeYAML(doc).(map[string]any))
}

// normalizeYAML rewrites any-keyed maps to string keys so the YAML tree
// matches the JSON decoder's shape.
func normalizeYAML(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, item := range v {
			v[k] = normalizeYAML(item)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[fmt.Sprint(k)] = normalizeYAML(item)
		}
		return out
	case []any:
		for i, item := range v {
			v[i] = normalizeYAML(item)
		}
		return v
	default:
		return v
	}
}
