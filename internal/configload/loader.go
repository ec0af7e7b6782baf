// Package configload reads registry configurations from disk. Three
// formats are supported, selected by file extension: JSON, YAML and HCL.
// All three decode to the same api.Config, so a configuration can be
// ported between formats without changing meaning.
package configload

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agentic-research/pathform/api"
)

// EnvVar names the environment variable the CLI consults for a
// configuration path when no flag is given.
const EnvVar = "PATHFORM_CONFIG"

// Load reads the configuration at path, decoding by extension.
func Load(path string) (api.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return api.Config{}, fmt.Errorf("reading config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(data)
	case ".yaml", ".yml":
		return loadYAML(data)
	case ".hcl":
		return loadHCL(path, data)
	default:
		return api.Config{}, fmt.Errorf("unsupported config extension %q", filepath.Ext(path))
	}
}

// fromGeneric converts a decoded document tree into an api.Config. JSON
// and YAML both land here; HCL has its own schema-driven decoder.
func fromGeneric(doc any) (api.Config, error) {
	root, ok := doc.(map[string]any)
	if !ok {
		return api.Config{}, fmt.Errorf("config root must be a mapping, got %T", doc)
	}
	cfg := api.Config{}
	for key, value := range root {
		switch key {
		case "tokens":
			tokens, err := tokenSpecs(value)
			if err != nil {
				return api.Config{}, err
			}
			cfg.Tokens = tokens
		case "paths":
			m, err := stringMap(key, value)
			if err != nil {
				return api.Config{}, err
			}
			cfg.Paths = m
		case "names":
			m, err := stringMap(key, value)
			if err != nil {
				return api.Config{}, err
			}
			cfg.Names = m
		case "templates":
			m, err := stringMap(key, value)
			if err != nil {
				return api.Config{}, err
			}
			cfg.Templates = m
		default:
			return api.Config{}, fmt.Errorf("unknown config section %q", key)
		}
	}
	return cfg, nil
}

func tokenSpecs(value any) (map[string]api.TokenSpec, error) {
	section, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf(`"tokens" must be a mapping, got %T`, value)
	}
	tokens := make(map[string]api.TokenSpec, len(section))
	for name, raw := range section {
		spec, err := tokenSpec(name, raw)
		if err != nil {
			return nil, err
		}
		tokens[name] = spec
	}
	return tokens, nil
}

func tokenSpec(name string, raw any) (api.TokenSpec, error) {
	// The shorthand form maps a token name straight to its type.
	if typ, ok := raw.(string); ok {
		return api.TokenSpec{Type: typ}, nil
	}
	fields, ok := raw.(map[string]any)
	if !ok {
		return api.TokenSpec{}, fmt.Errorf("token %q must be a type name or a mapping, got %T", name, raw)
	}
	spec := api.TokenSpec{}
	for key, value := range fields {
		switch key {
		case "type":
			s, err := scalarString(name, key, value)
			if err != nil {
				return api.TokenSpec{}, err
			}
			spec.Type = s
		case "default":
			s, err := scalarString(name, key, value)
			if err != nil {
				return api.TokenSpec{}, err
			}
			spec.Default = s
		case "case":
			s, err := scalarString(name, key, value)
			if err != nil {
				return api.TokenSpec{}, err
			}
			spec.Case = s
		case "padding":
			s, err := scalarString(name, key, value)
			if err != nil {
				return api.TokenSpec{}, err
			}
			spec.Padding = s
		case "choices":
			items, ok := value.([]any)
			if !ok {
				return api.TokenSpec{}, fmt.Errorf("token %q: choices must be a list, got %T", name, value)
			}
			choices := make([]string, len(items))
			for i, item := range items {
				s, err := scalarString(name, "choices", item)
				if err != nil {
					return api.TokenSpec{}, err
				}
				choices[i] = s
			}
			spec.Choices = choices
		case "numbers":
			b, ok := value.(bool)
			if !ok {
				return api.TokenSpec{}, fmt.Errorf("token %q: numbers must be a bool, got %T", name, value)
			}
			spec.Numbers = &b
		default:
			return api.TokenSpec{}, fmt.Errorf("token %q: unknown key %q", name, key)
		}
	}
	return spec, nil
}

// scalarString renders a scalar config value as the string the token
// layer parses. Numeric paddings, defaults and choices are legal in every
// format, so integers and floats normalize to their decimal text.
func scalarString(token, key string, value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("token %q: %s must be a scalar, got %T", token, key, value)
	}
}

func stringMap(section string, value any) (map[string]string, error) {
	raw, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%q must be a mapping, got %T", section, value)
	}
	out := make(map[string]string, len(raw))
	for name, pattern := range raw {
		s, ok := pattern.(string)
		if !ok {
			return nil, fmt.Errorf("%s template %q must be a string, got %T", section, name, pattern)
		}
		out[name] = s
	}
	return out, nil
}
