package pattern

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// markerPattern matches the three reference forms in a raw pattern: {x} is
// a token reference, {@x} an anchored template reference (the parent when
// it opens the pattern), {#x} an unanchored template reference.
var markerPattern = regexp.MustCompile(`\{([@#])?(\w+)\}`)

// toSlash normalizes separators regardless of host platform, so Windows
// style paths parse everywhere.
func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

const (
	sigilAnchored   = "@"
	sigilUnanchored = "#"
)

// Template is a named pattern of literal text, token references and
// references to other templates. Linked templates are shared references
// into the owning registry's tables, never owned copies. All derived state
// is resolved at construction, so a Template is immutable and safe for
// concurrent readers once built.
type Template struct {
	name      string
	raw       string
	parent    *Template
	relatives []*Template
	locals    []Token

	orderedFields []string
	pattern       string
	regexStr      string
	re            *regexp.Regexp
	tokens        map[string]Token
}

// NewTemplate builds and resolves a template. Every linked template must
// already be resolved; the registry guarantees this by loading references
// depth-first.
func NewTemplate(name, raw string, parent *Template, relatives []*Template, locals []Token) (*Template, error) {
	t := &Template{name: name, raw: raw, parent: parent, relatives: relatives, locals: locals}
	if err := t.resolve(); err != nil {
		return nil, err
	}
	return t, nil
}

// FromToken synthesizes a template whose whole pattern is the token.
func FromToken(tok Token) (*Template, error) {
	return NewTemplate(tok.Name(), "{"+tok.Name()+"}", nil, nil, []Token{tok})
}

func (t *Template) Name() string { return t.name }

// Pattern returns the literal pattern with every linked template expanded.
func (t *Template) Pattern() string { return t.pattern }

// Regex returns the unanchored match pattern with every token substituted
// by a capture group.
func (t *Template) Regex() string { return t.regexStr }

// Parent returns the anchored template opening the pattern, if any.
func (t *Template) Parent() *Template { return t.parent }

// Relatives returns the linked templates that are not the parent.
func (t *Template) Relatives() []*Template { return slices.Clone(t.relatives) }

// OrderedFields returns the field names in pattern order, duplicates kept.
func (t *Template) OrderedFields() []string { return slices.Clone(t.orderedFields) }

// Tokens returns the transitive token table: every linked template's
// tokens merged under this template's precedence (locals override the
// parent, which overrides relatives in declaration order).
func (t *Template) Tokens() map[string]Token { return maps.Clone(t.tokens) }

func (t *Template) String() string { return t.name + "(" + t.pattern + ")" }

// resolve expands linked templates into the literal pattern, collects the
// ordered field list and token table, and compiles the match regex.
func (t *Template) resolve() error {
	linked := make(map[string]*Template)
	for _, rel := range t.relatives {
		linked[rel.name] = rel
	}
	if t.parent != nil {
		linked[t.parent.name] = t.parent
	}

	var fields []string
	var pattern strings.Builder
	last := 0
	for _, m := range markerPattern.FindAllStringSubmatchIndex(t.raw, -1) {
		name := t.raw[m[4]:m[5]]
		if m[2] < 0 {
			// Token references stay as {name} placeholders in the literal
			// pattern; only template references are spliced.
			fields = append(fields, name)
			continue
		}
		ref := linked[name]
		if ref == nil {
			return &MissingTemplateError{Namespace: "linked", Name: name}
		}
		pattern.WriteString(t.raw[last:m[0]])
		pattern.WriteString(ref.pattern)
		fields = append(fields, ref.orderedFields...)
		last = m[1]
	}
	pattern.WriteString(t.raw[last:])
	t.pattern = pattern.String()
	t.orderedFields = fields

	tokens := make(map[string]Token)
	for _, rel := range t.relatives {
		maps.Copy(tokens, rel.tokens)
	}
	if t.parent != nil {
		maps.Copy(tokens, t.parent.tokens)
	}
	for _, tok := range t.locals {
		tokens[tok.Name()] = tok
	}
	t.tokens = tokens

	var rx strings.Builder
	last = 0
	for _, m := range markerPattern.FindAllStringSubmatchIndex(t.pattern, -1) {
		name := t.pattern[m[4]:m[5]]
		tok := tokens[name]
		if tok == nil {
			return &MissingTokenError{Token: name, Template: t.name}
		}
		rx.WriteString(regexp.QuoteMeta(t.pattern[last:m[0]]))
		rx.WriteString("(" + tok.Regex() + ")")
		last = m[1]
	}
	rx.WriteString(regexp.QuoteMeta(t.pattern[last:]))
	t.regexStr = rx.String()

	re, err := regexp.Compile("^" + t.regexStr + "$")
	if err != nil {
		return &ConfigError{Msg: fmt.Sprintf("template %q compiles to an invalid pattern: %v", t.name, err)}
	}
	t.re = re
	return nil
}

// Format encodes fields into a concrete string. Fields absent from the map
// fall back to their token's default; all still-unresolved fields are
// reported together in a single FormatError.
func (t *Template) Format(fields map[string]any) (string, error) {
	var missing []string
	values := make(map[string]string, len(t.tokens))
	for name, tok := range t.tokens {
		value, ok := fields[name]
		if !ok || value == nil {
			value = tok.Default()
		}
		if value == nil {
			missing = append(missing, name)
			continue
		}
		formatted, err := tok.Format(value)
		if err != nil {
			return "", err
		}
		values[name] = formatted
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return "", formatErrorf("missing required fields for template %s: %s",
			t.name, strings.Join(missing, ", "))
	}
	return expand(t.pattern, values), nil
}

// expand substitutes formatted values for the {name} placeholders left in
// an expanded literal pattern.
func expand(pattern string, values map[string]string) string {
	var out strings.Builder
	last := 0
	for _, m := range markerPattern.FindAllStringSubmatchIndex(pattern, -1) {
		out.WriteString(pattern[last:m[0]])
		out.WriteString(values[pattern[m[4]:m[5]]])
		last = m[1]
	}
	out.WriteString(pattern[last:])
	return out.String()
}

// Parse decodes a string into its field values. The whole string must
// match; a field referenced more than once must decode identically at
// every occurrence.
func (t *Template) Parse(s string) (map[string]any, error) {
	normalized := toSlash(s)
	m := t.re.FindStringSubmatch(normalized)
	if m == nil {
		return nil, parseErrorf("path %q does not match template %s", s, t)
	}
	return t.decodeFields(m[1:])
}

func (t *Template) decodeFields(groups []string) (map[string]any, error) {
	fields := make(map[string]any, len(t.orderedFields))
	for i, name := range t.orderedFields {
		value, err := t.tokens[name].Parse(groups[i])
		if err != nil {
			return nil, err
		}
		if existing, ok := fields[name]; ok && existing != value {
			return nil, parseErrorf("inconsistent values for token %q: %v, %v", name, existing, value)
		}
		fields[name] = value
	}
	return fields, nil
}

// Missing returns the tokens whose name is absent from fields. When
// ignoreDefaults is false, tokens carrying a default are excluded: the
// result is then exactly the set Format could not resolve.
func (t *Template) Missing(fields map[string]any, ignoreDefaults bool) map[string]Token {
	missing := make(map[string]Token)
	for name, tok := range t.tokens {
		if _, ok := fields[name]; ok {
			continue
		}
		if !ignoreDefaults && tok.Default() != nil {
			continue
		}
		missing[name] = tok
	}
	return missing
}

// Join appends another template, producing a new template that keeps the
// receiver's parent. Intended for combining relative templates on the fly.
func (t *Template) Join(other *Template) (*Template, error) {
	name, raw, relatives, locals := t.joinSpec(other.name, other.raw, other.relatives, other.parent, other.locals)
	return NewTemplate(name, raw, t.parent, relatives, locals)
}

// JoinLiteral appends a literal suffix pattern containing no references.
func (t *Template) JoinLiteral(suffix string) (*Template, error) {
	name, raw, relatives, locals := t.joinSpec(suffix, suffix, nil, nil, nil)
	return NewTemplate(name, raw, t.parent, relatives, locals)
}

func (t *Template) joinSpec(otherName, otherRaw string, otherRelatives []*Template, otherParent *Template, otherLocals []Token) (name, raw string, relatives []*Template, locals []Token) {
	relatives = slices.Clone(t.relatives)
	relatives = append(relatives, otherRelatives...)
	if otherParent != nil {
		relatives = append(relatives, otherParent)
	}
	locals = slices.Clone(t.locals)
	locals = append(locals, otherLocals...)
	joiner := "/"
	if strings.HasPrefix(otherRaw, "/") {
		joiner = ""
	}
	return t.name + "/" + otherName, t.raw + joiner + otherRaw, relatives, locals
}
