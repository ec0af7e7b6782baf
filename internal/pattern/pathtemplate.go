package pattern

import (
	"fmt"
	"maps"
	"path"
	"regexp"
	"strings"
)

// PathTemplate is a Template whose literal text is path-separator bearing.
// It adds directory-aware partial matching and on-disk enumeration through
// the Globber boundary.
type PathTemplate struct {
	Template

	// Start-anchored match patterns for Extract, precompiled for both
	// directory modes. extractDir carries the (?:$|/) suffix when the
	// pattern does not already end in a separator.
	extractDir *regexp.Regexp
	extractAny *regexp.Regexp
	dirSuffix  bool
}

// NewPathTemplate builds and resolves a path template.
func NewPathTemplate(name, raw string, parent *Template, relatives []*Template, locals []Token) (*PathTemplate, error) {
	inner, err := NewTemplate(name, raw, parent, relatives, locals)
	if err != nil {
		return nil, err
	}
	t := &PathTemplate{Template: *inner}

	t.extractAny, err = regexp.Compile("^" + t.regexStr)
	if err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("template %q compiles to an invalid pattern: %v", name, err)}
	}
	// A match must never stop mid-segment in directory mode: unless the
	// pattern already ends in a separator, require end-of-string or a
	// separator immediately after it.
	t.dirSuffix = !strings.HasSuffix(t.regexStr, "/")
	dirPattern := t.regexStr
	if t.dirSuffix {
		dirPattern += "(?:$|/)"
	}
	t.extractDir, err = regexp.Compile("^" + dirPattern)
	if err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("template %q compiles to an invalid pattern: %v", name, err)}
	}
	return t, nil
}

// Join appends another template, preserving the receiver's parent.
func (t *PathTemplate) Join(other *Template) (*PathTemplate, error) {
	name, raw, relatives, locals := t.joinSpec(other.name, other.raw, other.relatives, other.parent, other.locals)
	return NewPathTemplate(name, raw, t.parent, relatives, locals)
}

// Extract splits a path into the prefix matching this template, its parsed
// fields, and the unmatched remainder. In directory mode a partial match
// only counts on a whole-directory boundary and the remainder's leading
// separator is stripped; otherwise the remainder keeps it.
func (t *PathTemplate) Extract(p string, directory bool) (prefix string, fields map[string]any, remainder string, err error) {
	normalized := toSlash(p)
	re := t.extractAny
	if directory {
		re = t.extractDir
	}
	m := re.FindStringSubmatch(normalized)
	if m == nil {
		return "", nil, "", parseErrorf("path %q does not match template %s", p, &t.Template)
	}
	fields, err = t.decodeFields(m[1:])
	if err != nil {
		return "", nil, "", err
	}
	prefix = m[0]
	remainder = normalized[len(prefix):]
	// Only strip the separator the synthetic suffix captured; a separator
	// belonging to the pattern itself stays part of the prefix.
	if directory && t.dirSuffix && strings.HasSuffix(prefix, "/") {
		prefix = strings.TrimSuffix(prefix, "/")
	}
	return prefix, fields, remainder, nil
}

// Paths returns the on-disk paths matching the supplied fields, using
// wildcards (or defaults, when requested) for the rest. A generic wildcard
// over-matches tokens with ranged padding, so every glob candidate is
// re-parsed against the strict pattern and discarded on mismatch. The
// result maps each normalized path to its parsed fields.
func (t *PathTemplate) Paths(g Globber, fields map[string]any, useDefaults bool) (map[string]map[string]any, error) {
	values := make(map[string]any, len(t.tokens))
	maps.Copy(values, fields)
	for name, tok := range t.Missing(fields, true) {
		value := any(Wildcard)
		if useDefaults && tok.Default() != nil {
			value = tok.Default()
		}
		values[name] = value
	}
	pattern, err := t.Format(values)
	if err != nil {
		return nil, err
	}
	candidates, err := g.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	found := make(map[string]map[string]any, len(candidates))
	for _, candidate := range candidates {
		normalized := path.Clean(toSlash(candidate))
		parsed, err := t.Parse(normalized)
		if err != nil {
			continue // wildcard over-match, not a path of this template
		}
		found[normalized] = parsed
	}
	return found, nil
}

// ValuesFromPaths forces field to a wildcard, enumerates matching paths,
// and projects each path's parsed value for field onto it. Used to list,
// for example, every existing version under otherwise fixed fields.
func (t *PathTemplate) ValuesFromPaths(g Globber, field string, fields map[string]any, useDefaults bool) (map[any]string, error) {
	forced := make(map[string]any, len(fields)+1)
	maps.Copy(forced, fields)
	forced[field] = Wildcard
	found, err := t.Paths(g, forced, useDefaults)
	if err != nil {
		return nil, err
	}
	values := make(map[any]string, len(found))
	for p, parsed := range found {
		values[parsed[field]] = p
	}
	return values, nil
}
