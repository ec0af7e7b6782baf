package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/pathform/api"
)

func studioConfig() api.Config {
	return api.Config{
		Tokens: map[string]api.TokenSpec{
			"project": {Type: "str"},
			"version": {Type: "int", Padding: "3"},
			"shot":    {Type: "str", Case: "upperCamel"},
			"frame":   {Type: "sequence", Padding: "4"},
		},
		Paths: map[string]string{
			"project": "/projects/{project}",
			"shot":    "{@project}/shots/{shot}",
			"version": "{@shot}/v{version}",
		},
		Names: map[string]string{
			"cache": "{shot}_{frame}",
		},
	}
}

func mustRegistry(t *testing.T, cfg api.Config, opts ...Option) *Registry {
	t.Helper()
	reg, err := NewRegistry(cfg, opts...)
	require.NoError(t, err)
	return reg
}

func TestRegistry_Load(t *testing.T) {
	reg := mustRegistry(t, studioConfig())

	assert.Len(t, reg.Tokens(), 4)
	assert.Len(t, reg.PathTemplates(), 3)
	assert.Len(t, reg.NameTemplates(), 1)

	// Template references resolve regardless of declaration order: the
	// "version" template chains through "shot" to "project".
	tpl, err := reg.PathTemplate("version")
	require.NoError(t, err)
	assert.Equal(t, "/projects/{project}/shots/{shot}/v{version}", tpl.Pattern())
}

func TestRegistry_TemplatesAlias(t *testing.T) {
	reg := mustRegistry(t, api.Config{
		Tokens:    map[string]api.TokenSpec{"project": {Type: "str"}},
		Templates: map[string]string{"project": "/projects/{project}"},
	})
	_, err := reg.PathTemplate("project")
	assert.NoError(t, err)
}

func TestRegistry_TemplatesAndPathsConflict(t *testing.T) {
	_, err := NewRegistry(api.Config{
		Templates: map[string]string{"a": "/a"},
		Paths:     map[string]string{"b": "/b"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestRegistry_MissingReferences(t *testing.T) {
	_, err := NewRegistry(api.Config{
		Paths: map[string]string{"a": "/x/{nope}"},
	})
	require.Error(t, err)
	var mte *MissingTokenError
	assert.ErrorAs(t, err, &mte)

	_, err = NewRegistry(api.Config{
		Paths: map[string]string{"a": "{@nope}/x"},
	})
	require.Error(t, err)
	var mtpl *MissingTemplateError
	assert.ErrorAs(t, err, &mtpl)
}

func TestRegistry_ReferenceCycle(t *testing.T) {
	_, err := NewRegistry(api.Config{
		Paths: map[string]string{
			"a": "{@b}/x",
			"b": "{@a}/y",
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "cycle")
}

func TestRegistry_Resolve(t *testing.T) {
	reg := mustRegistry(t, studioConfig())

	p, err := reg.Resolve("version", map[string]any{
		"project": "alpha", "shot": "Opening", "version": 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "/projects/alpha/shots/Opening/v002", p)

	// Name namespace resolves too, including symbolic sequence values.
	n, err := reg.Resolve("cache", map[string]any{"shot": "Opening", "frame": "####"})
	require.NoError(t, err)
	assert.Equal(t, "Opening_####", n)
}

func TestRegistry_ParsePath_FirstMatch(t *testing.T) {
	reg := mustRegistry(t, studioConfig())

	tpl, fields, err := reg.ParsePath("/projects/alpha/shots/Opening/v002")
	require.NoError(t, err)
	assert.Equal(t, "version", tpl.Name())
	assert.Equal(t, map[string]any{"project": "alpha", "shot": "Opening", "version": 2}, fields)

	tpl, _, err = reg.ParsePath("/projects/alpha")
	require.NoError(t, err)
	assert.Equal(t, "project", tpl.Name())

	_, _, err = reg.ParsePath("/somewhere/else")
	require.Error(t, err)
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestRegistry_NameTemplate_TokenFallback(t *testing.T) {
	reg := mustRegistry(t, studioConfig())

	_, err := reg.NameTemplate("version", false)
	require.Error(t, err)

	tpl, err := reg.NameTemplate("version", true)
	require.NoError(t, err)
	s, err := tpl.Format(map[string]any{"version": 7})
	require.NoError(t, err)
	assert.Equal(t, "007", s)
}

func TestRegistry_ExtractClosest(t *testing.T) {
	reg := mustRegistry(t, studioConfig())

	match, err := reg.ExtractClosest("/projects/alpha/shots/Opening/v002/extra/stuff", true)
	require.NoError(t, err)
	assert.Equal(t, "version", match.Template.Name())
	assert.Equal(t, "/projects/alpha/shots/Opening/v002", match.Path)
	assert.Equal(t, "extra/stuff", match.Remainder)
	assert.Equal(t, 2, match.Fields["version"])

	// A shallower path still matches the deepest applicable template.
	match, err = reg.ExtractClosest("/projects/alpha/shots/Opening", true)
	require.NoError(t, err)
	assert.Equal(t, "shot", match.Template.Name())
	assert.Empty(t, match.Remainder)

	_, err = reg.ExtractClosest("/elsewhere", true)
	require.Error(t, err)
}

func TestRegistry_Enumerate(t *testing.T) {
	fs := memFS(t,
		"/projects/alpha/shots/Opening/v001/marker",
		"/projects/alpha/shots/Opening/v002/marker",
		"/projects/alpha/shots/Closing/v001/marker",
	)
	reg := mustRegistry(t, studioConfig(), WithGlobber(FilesystemGlobber{FS: fs}))

	found, err := reg.Enumerate("version", map[string]any{"project": "alpha", "shot": "Opening"}, false)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, 2, found["/projects/alpha/shots/Opening/v002"]["version"])
}

func TestRegistry_ValidateUniquePaths_Clash(t *testing.T) {
	cfg := api.Config{
		Tokens: map[string]api.TokenSpec{
			"asset": {Type: "str", Case: "lower"},
			"shot":  {Type: "str", Case: "lower"},
		},
		Paths: map[string]string{
			"asset": "/work/{asset}",
			"shot":  "/work/{shot}",
		},
	}
	reg := mustRegistry(t, cfg)

	families := reg.ValidateUniquePaths()
	require.Len(t, families, 1)
	assert.Equal(t, []string{"asset", "shot"}, families[0])

	err := reg.Validate()
	require.Error(t, err)
	var ve *TemplateValidationError
	require.ErrorAs(t, err, &ve)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestRegistry_ValidateUniquePaths_KindsDiffer(t *testing.T) {
	no := false
	cfg := api.Config{
		Tokens: map[string]api.TokenSpec{
			"name":    {Type: "str", Numbers: &no},
			"version": {Type: "int"},
		},
		Paths: map[string]string{
			"named":    "/work/{name}",
			"numbered": "/work/{version}",
		},
	}
	reg := mustRegistry(t, cfg)
	assert.Empty(t, reg.ValidateUniquePaths())
	assert.NoError(t, reg.Validate())
}

func TestRegistry_ValidateUniquePaths_NumbersOverlapInt(t *testing.T) {
	// A digit-permitting string can encode the same text as an integer.
	cfg := api.Config{
		Tokens: map[string]api.TokenSpec{
			"name":    {Type: "str"},
			"version": {Type: "int"},
		},
		Paths: map[string]string{
			"named":    "/work/{name}",
			"numbered": "/work/{version}",
		},
	}
	reg := mustRegistry(t, cfg)
	families := reg.ValidateUniquePaths()
	require.Len(t, families, 1)
	assert.Equal(t, []string{"named", "numbered"}, families[0])
}

func TestRegistry_ValidateUniquePaths_LiteralsDiffer(t *testing.T) {
	cfg := api.Config{
		Tokens: map[string]api.TokenSpec{
			"asset": {Type: "str"},
			"shot":  {Type: "str"},
		},
		Paths: map[string]string{
			"asset": "/assets/{asset}",
			"shot":  "/shots/{shot}",
		},
	}
	reg := mustRegistry(t, cfg)
	assert.Empty(t, reg.ValidateUniquePaths())
}

func TestRegistry_ValidateUniquePaths_MixedPositions(t *testing.T) {
	// Clashing at one position is not enough: every position must be
	// substitutable for the templates to be ambiguous.
	no := false
	cfg := api.Config{
		Tokens: map[string]api.TokenSpec{
			"asset":   {Type: "str", Numbers: &no},
			"shot":    {Type: "str", Numbers: &no},
			"version": {Type: "int"},
			"take":    {Type: "str", Numbers: &no},
		},
		Paths: map[string]string{
			"a": "/work/{asset}/{version}",
			"b": "/work/{shot}/{take}",
		},
	}
	reg := mustRegistry(t, cfg)
	assert.Empty(t, reg.ValidateUniquePaths())
}
