package pattern

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfig is the root of the configuration error family. Every error
// raised while loading or validating a registry unwraps to it, so callers
// can test errors.Is(err, ErrConfig) without naming each specialization.
var ErrConfig = errors.New("invalid configuration")

// ConfigError reports a malformed configuration value.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }
func (e *ConfigError) Unwrap() error { return ErrConfig }

// TokenConfigError reports an invalid token definition.
type TokenConfigError struct {
	Token string
	Msg   string
}

func (e *TokenConfigError) Error() string { return fmt.Sprintf("token %q: %s", e.Token, e.Msg) }
func (e *TokenConfigError) Unwrap() error { return ErrConfig }

// MissingTokenError reports a token reference that no loaded token satisfies.
type MissingTokenError struct {
	Token    string
	Template string
}

func (e *MissingTokenError) Error() string {
	if e.Template == "" {
		return fmt.Sprintf("token %q does not exist", e.Token)
	}
	return fmt.Sprintf("token %q required by template %q does not exist", e.Token, e.Template)
}

func (e *MissingTokenError) Unwrap() error { return ErrConfig }

// MissingTemplateError reports a template reference that no loaded template
// satisfies.
type MissingTemplateError struct {
	Namespace string
	Name      string
}

func (e *MissingTemplateError) Error() string {
	return fmt.Sprintf("%s template %q does not exist", e.Namespace, e.Name)
}

func (e *MissingTemplateError) Unwrap() error { return ErrConfig }

// TemplateValidationError reports families of templates that can format to
// the same concrete string.
type TemplateValidationError struct {
	Clashes [][]string
}

func (e *TemplateValidationError) Error() string {
	families := make([]string, len(e.Clashes))
	for i, family := range e.Clashes {
		families[i] = "(" + strings.Join(family, ", ") + ")"
	}
	return "ambiguous templates: " + strings.Join(families, ", ")
}

func (e *TemplateValidationError) Unwrap() error { return ErrConfig }

// ParseError reports a string that does not conform to a token or template
// pattern. Multi-template searches treat it as "this candidate does not
// apply" and continue; it only surfaces when no candidate matches.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return e.Msg }

// FormatError reports field values that cannot be encoded: missing required
// fields, out-of-choices values, or padding violations.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string { return e.Msg }

func parseErrorf(format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...)}
}

func formatErrorf(format string, args ...any) error {
	return &FormatError{Msg: fmt.Sprintf(format, args...)}
}
