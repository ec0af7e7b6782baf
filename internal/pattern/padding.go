package pattern

import (
	"fmt"
	"strconv"
	"strings"
)

// Padding bounds the textual width of a token as an inclusive range.
// Hi == 0 means unbounded above. A nil *Padding means no restriction.
type Padding struct {
	Lo, Hi int
}

// ParsePadding parses the padding sublanguage: "N" is a fixed width, "N+"
// is at least N characters, "+N" is at most N.
func ParsePadding(s string) (*Padding, error) {
	n, err := strconv.Atoi(strings.Trim(s, "+"))
	if err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf(
			"padding %q must be an integer with an optional leading or trailing +", s)}
	}
	if n < 1 {
		return nil, &ConfigError{Msg: fmt.Sprintf("padding cannot be less than 1: %d", n)}
	}
	switch {
	case strings.HasSuffix(s, "+"):
		return &Padding{Lo: n}, nil
	case strings.HasPrefix(s, "+"):
		return &Padding{Lo: 1, Hi: n}, nil
	default:
		return &Padding{Lo: n, Hi: n}, nil
	}
}

// Quantifier derives the regex quantifier matching the padding range.
// A nil padding quantifies as "+": one or more.
func (p *Padding) Quantifier() (string, error) {
	if p == nil {
		return "+", nil
	}
	if p.Hi > 0 && p.Hi < p.Lo {
		return "", &ConfigError{Msg: fmt.Sprintf("padding max is less than min: %d,%d", p.Lo, p.Hi)}
	}
	return rangeQuantifier(p.Lo, p.Hi), nil
}

// rangeQuantifier builds the quantifier for an inclusive range where hi==0
// means unbounded. Callers have already rejected hi < lo.
func rangeQuantifier(lo, hi int) string {
	switch {
	case lo == 0 && hi == 0:
		return "*"
	case lo == 1 && hi == 0:
		return "+"
	case hi == 0:
		return fmt.Sprintf("{%d,}", lo)
	case lo == hi:
		return fmt.Sprintf("{%d}", lo)
	default:
		return fmt.Sprintf("{%d,%d}", lo, hi)
	}
}

// Fits reports whether a width satisfies the padding range.
func (p *Padding) Fits(n int) bool {
	if p == nil {
		return true
	}
	if p.Hi > 0 {
		return p.Lo <= n && n <= p.Hi
	}
	return p.Lo <= n
}

// Fixed reports whether the padding names an exact width.
func (p *Padding) Fixed() bool {
	return p != nil && p.Lo == p.Hi
}

func (p *Padding) String() string {
	switch {
	case p == nil:
		return ""
	case p.Lo == p.Hi:
		return strconv.Itoa(p.Lo)
	case p.Hi == 0:
		return strconv.Itoa(p.Lo) + "+"
	case p.Lo == 1:
		return "+" + strconv.Itoa(p.Hi)
	default:
		return fmt.Sprintf("%d..%d", p.Lo, p.Hi)
	}
}

// zeroFill pads s with zeros to the range minimum. Exceeding a bounded
// maximum is a FormatError: a number can gain zeros but never lose digits.
func zeroFill(tokenName, s string, p *Padding, left bool) (string, error) {
	if p == nil {
		return s, nil
	}
	if n := p.Lo - len(s); n > 0 {
		fill := strings.Repeat("0", n)
		if left {
			return fill + s, nil
		}
		return s + fill, nil
	}
	if p.Hi > 0 && len(s) > p.Hi {
		return "", formatErrorf("value %s for token %q exceeds fixed padding %d", s, tokenName, p.Hi)
	}
	return s, nil
}
