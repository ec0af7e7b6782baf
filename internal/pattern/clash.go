package pattern

import (
	"maps"
	"slices"
	"strings"
)

// skeleton splits a template's expanded pattern into its fixed literal
// segments and the tokens between them. Only templates whose literal
// segments are byte-identical can format to the same string, so the
// joined segments serve as the grouping key for clash detection.
func (t *Template) skeleton() (key string, columns []Token) {
	var literals []string
	last := 0
	field := 0
	for _, m := range markerPattern.FindAllStringIndex(t.pattern, -1) {
		literals = append(literals, t.pattern[last:m[0]])
		columns = append(columns, t.tokens[t.orderedFields[field]])
		field++
		last = m[1]
	}
	literals = append(literals, t.pattern[last:])
	return strings.Join(literals, "\x00"), columns
}

// substitutable returns the indexes of tokens in the column that share a
// value domain with at least one other token in the column. Strings with
// no case rule fall in both case classes, and strings permitting digits
// overlap the integer class.
func substitutable(column []Token) map[int]bool {
	buckets := make(map[string][]int)
	for i, tok := range column {
		switch tok := tok.(type) {
		case *StringToken:
			switch tok.Case() {
			case CaseLower, CaseLowerCamel:
				buckets["lower"] = append(buckets["lower"], i)
			case CaseUpper, CaseUpperCamel:
				buckets["upper"] = append(buckets["upper"], i)
			default:
				buckets["lower"] = append(buckets["lower"], i)
				buckets["upper"] = append(buckets["upper"], i)
			}
			if tok.Numbers() {
				buckets["int"] = append(buckets["int"], i)
			}
		case *FloatToken:
			buckets["float"] = append(buckets["float"], i)
		default:
			buckets["int"] = append(buckets["int"], i)
		}
	}
	out := make(map[int]bool)
	for _, idxs := range buckets {
		if len(idxs) < 2 {
			continue
		}
		for _, i := range idxs {
			out[i] = true
		}
	}
	return out
}

// ValidateUniquePaths reports families of path templates that could format
// to the same concrete string for some field assignment. Templates are
// grouped by identical literal skeleton, then the substitutable sets of
// each token position are intersected in order; a group emptying out at
// any position cannot clash. Each reported family is a sorted tuple of
// template names, and families are returned in sorted order.
func (r *Registry) ValidateUniquePaths() [][]string {
	type member struct {
		name    string
		columns []Token
	}
	groups := make(map[string][]member)
	for _, name := range r.pathOrder {
		key, columns := r.paths[name].skeleton()
		groups[key] = append(groups[key], member{name: name, columns: columns})
	}

	var families [][]string
	for _, key := range slices.Sorted(maps.Keys(groups)) {
		group := groups[key]
		if len(group) < 2 {
			continue
		}

		survivors := make(map[int]bool, len(group))
		for i := range group {
			survivors[i] = true
		}
		for pos := 0; pos < len(group[0].columns) && len(survivors) > 1; pos++ {
			column := make([]Token, len(group))
			for i, m := range group {
				column[i] = m.columns[pos]
			}
			clashing := substitutable(column)
			for i := range survivors {
				if !clashing[i] {
					delete(survivors, i)
				}
			}
		}
		if len(survivors) < 2 {
			continue
		}

		family := make([]string, 0, len(survivors))
		for i := range survivors {
			family = append(family, group[i].name)
		}
		slices.Sort(family)
		families = append(families, family)
	}
	return families
}

// Validate runs clash detection and converts any clashing family into a
// fatal configuration error.
func (r *Registry) Validate() error {
	families := r.ValidateUniquePaths()
	if len(families) == 0 {
		return nil
	}
	return &TemplateValidationError{Clashes: families}
}
