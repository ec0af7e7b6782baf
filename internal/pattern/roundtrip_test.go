package pattern

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/agentic-research/pathform/api"
)

// Formatting any valid field assignment and parsing the result back must
// reproduce the fields exactly.
func TestTemplate_FormatParseRoundTrip(t *testing.T) {
	project := mustToken(t, "project", api.TokenSpec{Type: KindString, Case: "lower"})
	version := mustToken(t, "version", api.TokenSpec{Type: KindInt, Padding: "3"})
	frame := mustToken(t, "frame", api.TokenSpec{Type: KindSequence, Padding: "4"})
	tpl, err := NewTemplate("roundtrip", "/projects/{project}/v{version}/{frame}", nil, nil,
		[]Token{project, version, frame})
	require.NoError(t, err)

	rapid.Check(t, func(rt *rapid.T) {
		fields := map[string]any{
			"project": rapid.StringMatching(`[a-z][a-z0-9]{0,11}`).Draw(rt, "project"),
			"version": rapid.IntRange(0, 999).Draw(rt, "version"),
			"frame":   rapid.IntRange(0, 9999).Draw(rt, "frame"),
		}
		formatted, err := tpl.Format(fields)
		if err != nil {
			rt.Fatalf("format: %v", err)
		}
		parsed, err := tpl.Parse(formatted)
		if err != nil {
			rt.Fatalf("parse %q: %v", formatted, err)
		}
		for name, want := range fields {
			if parsed[name] != want {
				rt.Fatalf("field %s: formatted %q, parsed %v, want %v", name, formatted, parsed[name], want)
			}
		}
	})
}
