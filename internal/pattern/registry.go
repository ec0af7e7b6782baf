package pattern

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/agentic-research/pathform/api"
)

// Template namespaces.
const (
	NamespacePath = "path"
	NamespaceName = "name"
)

// Registry owns the token table and both template namespaces. Tokens load
// first; templates load re-entrantly so declaration order never matters,
// with an in-progress marker turning reference cycles into a ConfigError
// instead of unbounded recursion. Once NewRegistry returns, the registry
// is immutable and safe for concurrent readers.
type Registry struct {
	tokens map[string]Token
	paths  map[string]*PathTemplate
	names  map[string]*Template

	// pathOrder fixes the iteration order for first-match parse, closest
	// search and clash reporting. Sorted by name: the config formats do not
	// reliably preserve declaration order, and a deterministic order keeps
	// results stable across runs.
	pathOrder []string

	pathPatterns map[string]string
	namePatterns map[string]string
	loading      map[string]bool

	globber Globber
}

// Option configures a Registry.
type Option func(*Registry)

// WithGlobber overrides the filesystem globber used for enumeration. The
// default globs the host filesystem.
func WithGlobber(g Globber) Option {
	return func(r *Registry) { r.globber = g }
}

// NewRegistry loads a configuration into a ready registry. Any invalid
// token, unresolved reference or reference cycle aborts the whole load:
// there is no partial registry.
func NewRegistry(cfg api.Config, opts ...Option) (*Registry, error) {
	r := &Registry{
		tokens:       make(map[string]Token, len(cfg.Tokens)),
		paths:        make(map[string]*PathTemplate),
		names:        make(map[string]*Template),
		namePatterns: cfg.Names,
		loading:      make(map[string]bool),
		globber:      OSGlobber(),
	}
	for _, opt := range opts {
		opt(r)
	}

	switch {
	case len(cfg.Templates) > 0 && len(cfg.Paths) > 0:
		return nil, &ConfigError{Msg: `configuration sets both "templates" and "paths"`}
	case len(cfg.Templates) > 0:
		r.pathPatterns = cfg.Templates
	default:
		r.pathPatterns = cfg.Paths
	}

	for _, name := range slices.Sorted(maps.Keys(cfg.Tokens)) {
		tok, err := NewToken(name, cfg.Tokens[name])
		if err != nil {
			return nil, err
		}
		r.tokens[name] = tok
	}

	for _, name := range slices.Sorted(maps.Keys(r.pathPatterns)) {
		if _, ok := r.paths[name]; !ok {
			if _, err := r.loadPathTemplate(name); err != nil {
				return nil, err
			}
		}
	}
	for _, name := range slices.Sorted(maps.Keys(r.namePatterns)) {
		if _, ok := r.names[name]; !ok {
			if _, err := r.loadNameTemplate(name); err != nil {
				return nil, err
			}
		}
	}
	r.pathOrder = slices.Sorted(maps.Keys(r.paths))
	return r, nil
}

// Globber returns the filesystem globber enumeration runs through.
func (r *Registry) Globber() Globber { return r.globber }

// Token returns a loaded token by name.
func (r *Registry) Token(name string) (Token, error) {
	tok, ok := r.tokens[name]
	if !ok {
		return nil, &MissingTokenError{Token: name}
	}
	return tok, nil
}

// Tokens returns a copy of the token table.
func (r *Registry) Tokens() map[string]Token { return maps.Clone(r.tokens) }

// PathTemplate returns a loaded path template by name.
func (r *Registry) PathTemplate(name string) (*PathTemplate, error) {
	t, ok := r.paths[name]
	if !ok {
		return nil, &MissingTemplateError{Namespace: NamespacePath, Name: name}
	}
	return t, nil
}

// PathTemplates returns a copy of the path template table.
func (r *Registry) PathTemplates() map[string]*PathTemplate { return maps.Clone(r.paths) }

// NameTemplate returns a loaded name template. When allowTokens is set and
// no template has the name, a bare token of that name is wrapped in a
// single-field template instead.
func (r *Registry) NameTemplate(name string, allowTokens bool) (*Template, error) {
	if t, ok := r.names[name]; ok {
		return t, nil
	}
	if allowTokens {
		if tok, ok := r.tokens[name]; ok {
			return FromToken(tok)
		}
	}
	return nil, &MissingTemplateError{Namespace: NamespaceName, Name: name}
}

// NameTemplates returns a copy of the name template table.
func (r *Registry) NameTemplates() map[string]*Template { return maps.Clone(r.names) }

// Resolve formats fields through the named template, looking in the path
// namespace first.
func (r *Registry) Resolve(templateName string, fields map[string]any) (string, error) {
	if t, ok := r.paths[templateName]; ok {
		return t.Format(fields)
	}
	if t, ok := r.names[templateName]; ok {
		return t.Format(fields)
	}
	return "", &MissingTemplateError{Namespace: NamespacePath, Name: templateName}
}

// ParsePath decodes a path against the first matching path template.
func (r *Registry) ParsePath(p string) (*PathTemplate, map[string]any, error) {
	for _, name := range r.pathOrder {
		fields, err := r.paths[name].Parse(p)
		if err == nil {
			return r.paths[name], fields, nil
		}
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			return nil, nil, err
		}
	}
	return nil, nil, parseErrorf("no templates match path %q", p)
}

// Match is one path template's partial match of a path.
type Match struct {
	Template  *PathTemplate
	Path      string
	Fields    map[string]any
	Remainder string
}

// ExtractClosest runs Extract against every path template and returns the
// match leaving the fewest unmatched path segments — the deepest
// structural match. Ties go to the first template in registry order.
func (r *Registry) ExtractClosest(p string, directory bool) (Match, error) {
	best := Match{}
	bestSegments := -1
	for _, name := range r.pathOrder {
		t := r.paths[name]
		prefix, fields, remainder, err := t.Extract(p, directory)
		if err != nil {
			continue
		}
		segments := strings.Count(remainder, "/")
		if bestSegments < 0 || segments < bestSegments {
			best = Match{Template: t, Path: prefix, Fields: fields, Remainder: remainder}
			bestSegments = segments
		}
	}
	if bestSegments < 0 {
		return Match{}, parseErrorf("no templates match path %q", p)
	}
	return best, nil
}

// Enumerate lists the on-disk paths matching the named path template and
// the supplied fields, via the registry's globber.
func (r *Registry) Enumerate(templateName string, fields map[string]any, useDefaults bool) (map[string]map[string]any, error) {
	t, err := r.PathTemplate(templateName)
	if err != nil {
		return nil, err
	}
	return t.Paths(r.globber, fields, useDefaults)
}

func (r *Registry) loadPathTemplate(name string) (*PathTemplate, error) {
	if t, ok := r.paths[name]; ok {
		return t, nil
	}
	raw, ok := r.pathPatterns[name]
	if !ok {
		return nil, &MissingTemplateError{Namespace: NamespacePath, Name: name}
	}
	if err := r.markLoading(NamespacePath, name); err != nil {
		return nil, err
	}
	defer r.unmarkLoading(NamespacePath, name)

	parent, relatives, locals, err := r.link(NamespacePath, name, raw)
	if err != nil {
		return nil, err
	}
	t, err := NewPathTemplate(name, raw, parent, relatives, locals)
	if err != nil {
		return nil, err
	}
	r.paths[name] = t
	return t, nil
}

func (r *Registry) loadNameTemplate(name string) (*Template, error) {
	if t, ok := r.names[name]; ok {
		return t, nil
	}
	raw, ok := r.namePatterns[name]
	if !ok {
		return nil, &MissingTemplateError{Namespace: NamespaceName, Name: name}
	}
	if err := r.markLoading(NamespaceName, name); err != nil {
		return nil, err
	}
	defer r.unmarkLoading(NamespaceName, name)

	parent, relatives, locals, err := r.link(NamespaceName, name, raw)
	if err != nil {
		return nil, err
	}
	t, err := NewTemplate(name, raw, parent, relatives, locals)
	if err != nil {
		return nil, err
	}
	r.names[name] = t
	return t, nil
}

func (r *Registry) markLoading(namespace, name string) error {
	key := namespace + "/" + name
	if r.loading[key] {
		return &ConfigError{Msg: fmt.Sprintf("template reference cycle through %s template %q", namespace, name)}
	}
	r.loading[key] = true
	return nil
}

func (r *Registry) unmarkLoading(namespace, name string) {
	delete(r.loading, namespace+"/"+name)
}

// link resolves every marker in a raw pattern: template references load
// (recursively, if needed) from the registry, token references resolve
// against the token table. The anchored reference opening the pattern
// becomes the parent; every other template reference is a relative.
func (r *Registry) link(namespace, name, raw string) (parent *Template, relatives []*Template, locals []Token, err error) {
	for _, m := range markerPattern.FindAllStringSubmatchIndex(raw, -1) {
		ref := raw[m[4]:m[5]]
		sigil := ""
		if m[2] >= 0 {
			sigil = raw[m[2]:m[3]]
		}
		switch sigil {
		case sigilAnchored:
			linked, err := r.lookupLinked(namespace, ref)
			if err != nil {
				return nil, nil, nil, err
			}
			if m[0] == 0 {
				parent = linked
			} else {
				relatives = append(relatives, linked)
			}
		case sigilUnanchored:
			linked, err := r.lookupLinked(namespace, ref)
			if err != nil {
				return nil, nil, nil, err
			}
			relatives = append(relatives, linked)
		default:
			tok, ok := r.tokens[ref]
			if !ok {
				return nil, nil, nil, &MissingTokenError{Token: ref, Template: name}
			}
			locals = append(locals, tok)
		}
	}
	return parent, relatives, locals, nil
}

// lookupLinked resolves a template reference: the referencing template's
// own namespace wins, then the other one.
func (r *Registry) lookupLinked(namespace, name string) (*Template, error) {
	namespaces := []string{NamespacePath, NamespaceName}
	if namespace == NamespaceName {
		namespaces = []string{NamespaceName, NamespacePath}
	}
	for _, ns := range namespaces {
		switch ns {
		case NamespacePath:
			if _, ok := r.pathPatterns[name]; ok {
				t, err := r.loadPathTemplate(name)
				if err != nil {
					return nil, err
				}
				return &t.Template, nil
			}
		case NamespaceName:
			if _, ok := r.namePatterns[name]; ok {
				return r.loadNameTemplate(name)
			}
		}
	}
	return nil, &MissingTemplateError{Namespace: namespace, Name: name}
}
