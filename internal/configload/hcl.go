package configload

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/agentic-research/pathform/api"
)

// HCL configurations use labelled blocks instead of mappings:
//
//	token "version" {
//	  type    = "int"
//	  padding = "3"
//	}
//
//	path "project" {
//	  pattern = "/projects/{project}"
//	}
type hclConfig struct {
	Tokens    []hclToken    `hcl:"token,block"`
	Paths     []hclPattern  `hcl:"path,block"`
	Names     []hclPattern  `hcl:"name,block"`
	Templates []hclPattern  `hcl:"template,block"`
}

type hclToken struct {
	Name    string    `hcl:"name,label"`
	Type    string    `hcl:"type"`
	Default *string   `hcl:"default,optional"`
	Choices *[]string `hcl:"choices,optional"`
	Padding *string   `hcl:"padding,optional"`
	Case    *string   `hcl:"case,optional"`
	Numbers *bool     `hcl:"numbers,optional"`
}

type hclPattern struct {
	Name    string `hcl:"name,label"`
	Pattern string `hcl:"pattern"`
}

func loadHCL(path string, data []byte) (api.Config, error) {
	var doc hclConfig
	if err := hclsimple.Decode(path, data, nil, &doc); err != nil {
		return api.Config{}, fmt.Errorf("parsing hcl config: %w", err)
	}

	cfg := api.Config{}
	if len(doc.Tokens) > 0 {
		cfg.Tokens = make(map[string]api.TokenSpec, len(doc.Tokens))
		for _, t := range doc.Tokens {
			spec := api.TokenSpec{Type: t.Type, Numbers: t.Numbers}
			if t.Default != nil {
				spec.Default = *t.Default
			}
			if t.Choices != nil {
				spec.Choices = *t.Choices
			}
			if t.Padding != nil {
				spec.Padding = *t.Padding
			}
			if t.Case != nil {
				spec.Case = *t.Case
			}
			cfg.Tokens[t.Name] = spec
		}
	}
	cfg.Paths = patternMap(doc.Paths)
	cfg.Names = patternMap(doc.Names)
	cfg.Templates = patternMap(doc.Templates)
	return cfg, nil
}

func patternMap(blocks []hclPattern) map[string]string {
	if len(blocks) == 0 {
		return nil
	}
	out := make(map[string]string, len(blocks))
	for _, b := range blocks {
		out[b.Name] = b.Pattern
	}
	return out
}
