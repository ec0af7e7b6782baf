// Package api defines the configuration schema consumed by the pathform
// engine. A Config is an already-parsed, in-memory structure: it can be
// produced by internal/configload from a JSON, YAML or HCL file, or built
// directly by embedding applications.
package api

// TokenSpec configures one typed token. All values are raw strings as they
// appear in configuration; the engine parses them into typed values when
// the token is constructed.
type TokenSpec struct {
	// Type is one of "int", "float", "str", "sequence".
	Type string `json:"type" yaml:"type"`
	// Default is the string-encoded default value. Optional.
	Default string `json:"default,omitempty" yaml:"default,omitempty"`
	// Choices is an optional closed set of string-encoded valid values.
	Choices []string `json:"choices,omitempty" yaml:"choices,omitempty"`
	// Padding bounds the textual width: "3" is exactly three characters,
	// "3+" at least three, "+3" at most three.
	Padding string `json:"padding,omitempty" yaml:"padding,omitempty"`
	// Case is a string-token case rule: "lower", "upper", "lowerCamel" or
	// "upperCamel". Empty means no case restriction.
	Case string `json:"case,omitempty" yaml:"case,omitempty"`
	// Numbers controls whether digits may appear in a string token after
	// the first character. Defaults to true when nil.
	Numbers *bool `json:"numbers,omitempty" yaml:"numbers,omitempty"`
}

// Config is the full declarative input to a registry: the token table and
// the template namespaces.
type Config struct {
	// Tokens maps token names to their specifications.
	Tokens map[string]TokenSpec `json:"tokens" yaml:"tokens"`
	// Paths holds directory-aware path templates by name.
	Paths map[string]string `json:"paths,omitempty" yaml:"paths,omitempty"`
	// Names holds flat name templates by name.
	Names map[string]string `json:"names,omitempty" yaml:"names,omitempty"`
	// Templates is accepted as an alias for Paths so single-namespace
	// configurations stay terse. Setting both is a configuration error.
	Templates map[string]string `json:"templates,omitempty" yaml:"templates,omitempty"`
}
