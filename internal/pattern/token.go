package pattern

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/agentic-research/pathform/api"
)

// Wildcard values accepted by Format in place of a concrete value. A
// generic wildcard passes through unchanged; when a token's padding names
// an exact width, the single-character wildcard is repeated to that width
// so glob expansion stays length aware.
const (
	Wildcard    = "*"
	WildcardOne = "?"
)

// Token kinds.
const (
	KindInt      = "int"
	KindFloat    = "float"
	KindString   = "str"
	KindSequence = "sequence"
)

// Case rules for string tokens, stored lowercased.
const (
	CaseLower      = "lower"
	CaseUpper      = "upper"
	CaseLowerCamel = "lowercamel"
	CaseUpperCamel = "uppercamel"
)

// Character class fragments for string tokens. The blacklist sits inside a
// negated class: path separators and the common field joiners "." and "_"
// can never appear inside a string value.
const (
	stringBlacklist = `/\\._`
	digitRange      = "0-9"
)

// Token is a typed, validated leaf field of a template. Implementations
// are immutable after construction; the regex fragment is computed once.
type Token interface {
	Name() string
	Kind() string
	// Default returns the typed default value, or nil.
	Default() any
	// Choices returns the typed closed value set, or nil.
	Choices() []any
	Padding() *Padding
	// Regex returns an unanchored, group-free fragment matching exactly the
	// token's valid encodings.
	Regex() string
	// Parse decodes text into the token's native type.
	Parse(text string) (any, error)
	// Format encodes a value as template text.
	Format(value any) (string, error)
}

// NewToken builds a token from its configuration. Padding syntax, choice
// conformance and the default's membership in choices are all validated
// here; failures are TokenConfigError.
func NewToken(name string, spec api.TokenSpec) (Token, error) {
	padding, err := parseSpecPadding(name, spec.Padding)
	if err != nil {
		return nil, err
	}

	// Membership is checked on the raw strings before parsing so the error
	// names the configured value, not its decoded form.
	if spec.Default != "" && len(spec.Choices) > 0 {
		found := false
		for _, choice := range spec.Choices {
			if choice == spec.Default {
				found = true
			}
		}
		if !found {
			return nil, &TokenConfigError{Token: name, Msg: fmt.Sprintf(
				"default %q is not one of the choices %v", spec.Default, spec.Choices)}
		}
	}
	for _, choice := range spec.Choices {
		if strings.ContainsAny(choice, Wildcard+WildcardOne) {
			return nil, &TokenConfigError{Token: name, Msg: fmt.Sprintf(
				"choice %q contains a reserved wildcard character", choice)}
		}
	}

	var tok Token
	switch spec.Type {
	case KindInt:
		tok, err = newIntToken(name, padding)
	case KindFloat:
		tok, err = newFloatToken(name, padding)
	case KindString:
		numbers := spec.Numbers == nil || *spec.Numbers
		tok, err = newStringToken(name, padding, spec.Case, numbers)
	case KindSequence:
		tok, err = newSequenceToken(name, padding)
	case "":
		return nil, &TokenConfigError{Token: name, Msg: "missing token type"}
	default:
		return nil, &TokenConfigError{Token: name, Msg: fmt.Sprintf("unknown token type %q", spec.Type)}
	}
	if err != nil {
		return nil, err
	}

	if err := baseOf(tok).finish(spec, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

func baseOf(tok Token) *baseToken {
	switch t := tok.(type) {
	case *IntToken:
		return &t.baseToken
	case *FloatToken:
		return &t.baseToken
	case *StringToken:
		return &t.baseToken
	case *SequenceToken:
		return &t.baseToken
	}
	panic(fmt.Sprintf("unknown token implementation %T", tok))
}

func parseSpecPadding(name, s string) (*Padding, error) {
	if s == "" {
		return nil, nil
	}
	p, err := ParsePadding(s)
	if err != nil {
		return nil, &TokenConfigError{Token: name, Msg: err.Error()}
	}
	return p, nil
}

// baseToken carries the state shared by every kind.
type baseToken struct {
	name    string
	kind    string
	def     any
	choices []any
	padding *Padding
	regex   string
	re      *regexp.Regexp
}

func newBaseToken(name, kind, regex string, padding *Padding) (baseToken, error) {
	re, err := regexp.Compile("^(?:" + regex + ")$")
	if err != nil {
		return baseToken{}, &TokenConfigError{Token: name, Msg: fmt.Sprintf("invalid derived pattern %s: %v", regex, err)}
	}
	return baseToken{name: name, kind: kind, padding: padding, regex: regex, re: re}, nil
}

func (b *baseToken) Name() string      { return b.name }
func (b *baseToken) Kind() string      { return b.kind }
func (b *baseToken) Default() any      { return b.def }
func (b *baseToken) Padding() *Padding { return b.padding }
func (b *baseToken) Regex() string     { return b.regex }

func (b *baseToken) Choices() []any {
	if b.choices == nil {
		return nil
	}
	out := make([]any, len(b.choices))
	copy(out, b.choices)
	return out
}

// finish parses the configured choices and default through the constructed
// token so they are guaranteed to conform to its pattern.
func (b *baseToken) finish(spec api.TokenSpec, tok Token) error {
	for _, raw := range spec.Choices {
		value, err := tok.Parse(raw)
		if err != nil {
			return &TokenConfigError{Token: b.name, Msg: fmt.Sprintf("invalid choice %q: %v", raw, err)}
		}
		b.choices = append(b.choices, value)
	}
	if spec.Default != "" {
		value, err := tok.Parse(spec.Default)
		if err != nil {
			return &TokenConfigError{Token: b.name, Msg: fmt.Sprintf("invalid default %q: %v", spec.Default, err)}
		}
		b.def = value
	}
	return nil
}

func (b *baseToken) match(text string) error {
	if !b.re.MatchString(text) {
		return parseErrorf("value %q for token %q does not match pattern %s", text, b.name, b.regex)
	}
	return nil
}

func (b *baseToken) allowed(value any) bool {
	if len(b.choices) == 0 {
		return true
	}
	for _, choice := range b.choices {
		if choice == value {
			return true
		}
	}
	return false
}

// wildcardString returns the glob form of a wildcard value, or "" when the
// value is not a wildcard.
func (b *baseToken) wildcardString(value any) string {
	s, ok := value.(string)
	if !ok || (s != Wildcard && s != WildcardOne) {
		return ""
	}
	if b.padding.Fixed() {
		return strings.Repeat(WildcardOne, b.padding.Lo)
	}
	return s
}

// IntToken encodes integers as runs of digits, zero-padded on the left to
// the padding minimum.
type IntToken struct {
	baseToken
}

func newIntToken(name string, padding *Padding) (*IntToken, error) {
	quantifier, err := padding.Quantifier()
	if err != nil {
		return nil, &TokenConfigError{Token: name, Msg: err.Error()}
	}
	base, err := newBaseToken(name, KindInt, `\d`+quantifier, padding)
	if err != nil {
		return nil, err
	}
	return &IntToken{baseToken: base}, nil
}

func (t *IntToken) Parse(text string) (any, error) {
	if err := t.match(text); err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return nil, parseErrorf("invalid integer for token %q: %s", t.name, text)
	}
	if !t.allowed(n) {
		return nil, parseErrorf("invalid value for token %q: %v (choices: %v)", t.name, n, t.choices)
	}
	return n, nil
}

func (t *IntToken) Format(value any) (string, error) {
	if w := t.wildcardString(value); w != "" {
		return w, nil
	}
	n, err := intValue(value)
	if err != nil {
		return "", formatErrorf("invalid value for token %q: %v", t.name, value)
	}
	if !t.allowed(n) {
		return "", formatErrorf("invalid value for token %q: %v (choices: %v)", t.name, n, t.choices)
	}
	return zeroFill(t.name, strconv.Itoa(n), t.padding, true)
}

// FloatToken encodes floats as digits, a dot, and a fractional part
// zero-padded on the right to the padding minimum.
type FloatToken struct {
	baseToken
}

func newFloatToken(name string, padding *Padding) (*FloatToken, error) {
	quantifier, err := padding.Quantifier()
	if err != nil {
		return nil, &TokenConfigError{Token: name, Msg: err.Error()}
	}
	base, err := newBaseToken(name, KindFloat, `\d+\.\d`+quantifier, padding)
	if err != nil {
		return nil, err
	}
	return &FloatToken{baseToken: base}, nil
}

func (t *FloatToken) Parse(text string) (any, error) {
	if err := t.match(text); err != nil {
		return nil, err
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, parseErrorf("invalid float for token %q: %s", t.name, text)
	}
	if !t.allowed(f) {
		return nil, parseErrorf("invalid value for token %q: %v (choices: %v)", t.name, f, t.choices)
	}
	return f, nil
}

func (t *FloatToken) Format(value any) (string, error) {
	if w := t.wildcardString(value); w != "" {
		return w, nil
	}
	f, err := floatValue(value)
	if err != nil {
		return "", formatErrorf("invalid value for token %q: %v", t.name, value)
	}
	if !t.allowed(f) {
		return "", formatErrorf("invalid value for token %q: %v (choices: %v)", t.name, f, t.choices)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	if t.padding != nil {
		dot := strings.IndexByte(s, '.')
		fraction, err := zeroFill(t.name, s[dot+1:], t.padding, false)
		if err != nil {
			return "", err
		}
		s = s[:dot+1] + fraction
	}
	return s, nil
}

// StringToken encodes free text restricted by the blacklist class, an
// optional case rule, and an optional digit exclusion.
type StringToken struct {
	baseToken
	caseRule string
	numbers  bool
}

func newStringToken(name string, padding *Padding, caseRule string, numbers bool) (*StringToken, error) {
	rule := strings.ToLower(caseRule)
	regex, err := stringRegex(name, rule, numbers, padding)
	if err != nil {
		return nil, err
	}
	base, err := newBaseToken(name, KindString, regex, padding)
	if err != nil {
		return nil, err
	}
	return &StringToken{baseToken: base, caseRule: rule, numbers: numbers}, nil
}

// Case returns the normalized case rule, or "" when unrestricted.
func (t *StringToken) Case() string { return t.caseRule }

// Numbers reports whether digits may appear in the value.
func (t *StringToken) Numbers() bool { return t.numbers }

func (t *StringToken) Parse(text string) (any, error) {
	if err := t.match(text); err != nil {
		return nil, err
	}
	if !t.allowed(text) {
		return nil, parseErrorf("invalid value for token %q: %v (choices: %v)", t.name, text, t.choices)
	}
	return text, nil
}

func (t *StringToken) Format(value any) (string, error) {
	if w := t.wildcardString(value); w != "" {
		return w, nil
	}
	s, ok := value.(string)
	if !ok {
		s = fmt.Sprint(value)
	}
	if !t.allowed(s) {
		return "", formatErrorf("invalid value for token %q: %v (choices: %v)", t.name, s, t.choices)
	}
	if s == Wildcard || isWildcardRun(s) {
		return s, nil
	}
	// A string cannot pad itself the way a number can, so an out-of-range
	// length is always an error even for ranged padding.
	if !t.padding.Fits(len(s)) {
		return "", formatErrorf("value %q for token %q does not fit padding %s", s, t.name, t.padding)
	}
	if s != "" {
		switch t.caseRule {
		case CaseUpper:
			s = strings.ToUpper(s)
		case CaseLower:
			s = strings.ToLower(s)
		case CaseLowerCamel:
			s = strings.ToLower(s[:1]) + s[1:]
		case CaseUpperCamel:
			s = strings.ToUpper(s[:1]) + s[1:]
		}
	}
	if err := t.match(s); err != nil {
		return "", formatErrorf("formatted value %q for token %q does not match pattern %s", s, t.name, t.regex)
	}
	return s, nil
}

// stringRegex builds the fragment for a string token. Case rules split the
// class in two: the first character comes from the case-specific class and
// the remainder from a possibly wider one, with the padding range shifted
// down by the character already consumed.
func stringRegex(name, caseRule string, numbers bool, p *Padding) (string, error) {
	if caseRule == "" {
		class := "[^" + stringBlacklist + "]"
		if !numbers {
			class = "[^" + stringBlacklist + digitRange + "]"
		}
		quantifier, err := p.Quantifier()
		if err != nil {
			return "", &TokenConfigError{Token: name, Msg: err.Error()}
		}
		return class + quantifier, nil
	}

	first, rest, ok := casePatterns(caseRule)
	if !ok {
		return "", &TokenConfigError{Token: name, Msg: fmt.Sprintf("unknown case rule %q", caseRule)}
	}
	if numbers {
		rest += digitRange
	}
	if first == rest {
		quantifier, err := p.Quantifier()
		if err != nil {
			return "", &TokenConfigError{Token: name, Msg: err.Error()}
		}
		return "[" + first + "]" + quantifier, nil
	}
	if p != nil && p.Hi > 0 && p.Hi < p.Lo {
		return "", &TokenConfigError{Token: name, Msg: fmt.Sprintf("padding max is less than min: %d,%d", p.Lo, p.Hi)}
	}
	restQuantifier := "*"
	if p != nil {
		lo := max(p.Lo-1, 0)
		hi := 0
		if p.Hi > 0 {
			hi = p.Hi - 1
			if hi == 0 && lo == 0 {
				// exact width one: the first character is the whole value
				return "[" + first + "]", nil
			}
		}
		restQuantifier = rangeQuantifier(lo, hi)
	}
	return "[" + first + "][" + rest + "]" + restQuantifier, nil
}

func casePatterns(rule string) (first, rest string, ok bool) {
	switch rule {
	case CaseLower:
		return "a-z", "a-z", true
	case CaseUpper:
		return "A-Z", "A-Z", true
	case CaseLowerCamel:
		return "a-z", "a-zA-Z", true
	case CaseUpperCamel:
		return "A-Z", "a-zA-Z", true
	}
	return "", "", false
}

// SequenceToken is an integer token that additionally passes symbolic
// frame-number placeholders through parse and format: a run of "#" whose
// length fits the padding, or a %0Nd printf placeholder whose width does.
type SequenceToken struct {
	IntToken
}

var printfPlaceholder = regexp.MustCompile(`^%(\d+)d$`)

func newSequenceToken(name string, padding *Padding) (*SequenceToken, error) {
	quantifier, err := padding.Quantifier()
	if err != nil {
		return nil, &TokenConfigError{Token: name, Msg: err.Error()}
	}
	base, err := newBaseToken(name, KindSequence, `[\d#]`+quantifier+`|%\d+d`, padding)
	if err != nil {
		return nil, err
	}
	return &SequenceToken{IntToken: IntToken{baseToken: base}}, nil
}

func (t *SequenceToken) Parse(text string) (any, error) {
	if t.isSymbolic(text) {
		return text, nil
	}
	return t.IntToken.Parse(text)
}

func (t *SequenceToken) Format(value any) (string, error) {
	if s, ok := value.(string); ok && t.isSymbolic(s) {
		return s, nil
	}
	return t.IntToken.Format(value)
}

func (t *SequenceToken) isSymbolic(s string) bool {
	if s == "" {
		return false
	}
	if strings.Count(s, "#") == len(s) {
		return t.padding.Fits(len(s))
	}
	if m := printfPlaceholder.FindStringSubmatch(s); m != nil {
		width, err := strconv.Atoi(m[1])
		return err == nil && t.padding.Fits(width)
	}
	return false
}

func intValue(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	case string:
		return strconv.Atoi(n)
	}
	return 0, fmt.Errorf("not an integer: %v", v)
}

func floatValue(v any) (float64, error) {
	switch f := v.(type) {
	case float64:
		return f, nil
	case float32:
		return float64(f), nil
	case int:
		return float64(f), nil
	case string:
		return strconv.ParseFloat(f, 64)
	}
	return 0, fmt.Errorf("not a float: %v", v)
}

func isWildcardRun(s string) bool {
	return s != "" && strings.Count(s, WildcardOne) == len(s)
}
