package pattern

import (
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/pathform/api"
)

func versionPathTemplate(t *testing.T) *PathTemplate {
	t.Helper()
	project := mustToken(t, "project", api.TokenSpec{Type: KindString})
	version := mustToken(t, "version", api.TokenSpec{Type: KindInt, Padding: "3"})
	tpl, err := NewPathTemplate("version", "/projects/{project}/v{version}", nil, nil,
		[]Token{project, version})
	require.NoError(t, err)
	return tpl
}

func memFS(t *testing.T, paths ...string) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	for _, p := range paths {
		require.NoError(t, util.WriteFile(fs, p, nil, 0o644))
	}
	return fs
}

func TestPathTemplate_Extract_Directory(t *testing.T) {
	tpl := versionPathTemplate(t)

	prefix, fields, remainder, err := tpl.Extract("/projects/alpha/v001/scenes/shot.ma", true)
	require.NoError(t, err)
	assert.Equal(t, "/projects/alpha/v001", prefix)
	assert.Equal(t, map[string]any{"project": "alpha", "version": 1}, fields)
	assert.Equal(t, "scenes/shot.ma", remainder)
}

func TestPathTemplate_Extract_ExactMatch(t *testing.T) {
	tpl := versionPathTemplate(t)

	prefix, fields, remainder, err := tpl.Extract("/projects/alpha/v001", true)
	require.NoError(t, err)
	assert.Equal(t, "/projects/alpha/v001", prefix)
	assert.Equal(t, 1, fields["version"])
	assert.Empty(t, remainder)
}

func TestPathTemplate_Extract_DirectoryBoundary(t *testing.T) {
	// In directory mode a match may not stop mid-segment.
	tpl := versionPathTemplate(t)
	_, _, _, err := tpl.Extract("/projects/alpha/v001extra", true)
	require.Error(t, err)

	// Without directory mode, the same path matches and the remainder
	// keeps everything after the pattern.
	prefix, _, remainder, err := tpl.Extract("/projects/alpha/v001extra", false)
	require.NoError(t, err)
	assert.Equal(t, "/projects/alpha/v001", prefix)
	assert.Equal(t, "extra", remainder)
}

func TestPathTemplate_Extract_NoMatch(t *testing.T) {
	tpl := versionPathTemplate(t)
	_, _, _, err := tpl.Extract("/assets/alpha/v001", true)
	require.Error(t, err)
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestPathTemplate_Paths(t *testing.T) {
	tpl := versionPathTemplate(t)
	fs := memFS(t,
		"/projects/alpha/v001/marker",
		"/projects/alpha/v002/marker",
		"/projects/beta/v001/marker",
	)

	found, err := tpl.Paths(FilesystemGlobber{FS: fs}, map[string]any{"project": "alpha"}, false)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, map[string]any{"project": "alpha", "version": 1}, found["/projects/alpha/v001"])
	assert.Equal(t, map[string]any{"project": "alpha", "version": 2}, found["/projects/alpha/v002"])
}

func TestPathTemplate_Paths_StrictRevalidation(t *testing.T) {
	// The glob wildcard for a fixed-width token is ??? which cannot
	// over-match, but ranged padding globs with * and must be filtered by
	// a strict re-parse.
	project := mustToken(t, "project", api.TokenSpec{Type: KindString})
	version := mustToken(t, "version", api.TokenSpec{Type: KindInt, Padding: "2+"})
	tpl, err := NewPathTemplate("version", "/projects/{project}/{version}", nil, nil,
		[]Token{project, version})
	require.NoError(t, err)

	fs := memFS(t,
		"/projects/alpha/01/marker",
		"/projects/alpha/001/marker",
		"/projects/alpha/1/marker", // too narrow, must be discarded
		"/projects/alpha/x1/marker",
	)

	found, err := tpl.Paths(FilesystemGlobber{FS: fs}, map[string]any{"project": "alpha"}, false)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Contains(t, found, "/projects/alpha/01")
	assert.Contains(t, found, "/projects/alpha/001")
}

func TestPathTemplate_Paths_UseDefaults(t *testing.T) {
	project := mustToken(t, "project", api.TokenSpec{Type: KindString, Default: "alpha"})
	version := mustToken(t, "version", api.TokenSpec{Type: KindInt, Padding: "3"})
	tpl, err := NewPathTemplate("version", "/projects/{project}/v{version}", nil, nil,
		[]Token{project, version})
	require.NoError(t, err)

	fs := memFS(t,
		"/projects/alpha/v001/marker",
		"/projects/beta/v001/marker",
	)

	found, err := tpl.Paths(FilesystemGlobber{FS: fs}, nil, true)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Contains(t, found, "/projects/alpha/v001")

	// Without defaults the unset project falls back to a wildcard.
	found, err = tpl.Paths(FilesystemGlobber{FS: fs}, nil, false)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestPathTemplate_ValuesFromPaths(t *testing.T) {
	tpl := versionPathTemplate(t)
	fs := memFS(t,
		"/projects/alpha/v001/marker",
		"/projects/alpha/v002/marker",
	)

	values, err := tpl.ValuesFromPaths(FilesystemGlobber{FS: fs}, "version",
		map[string]any{"project": "alpha"}, false)
	require.NoError(t, err)
	assert.Equal(t, map[any]string{
		1: "/projects/alpha/v001",
		2: "/projects/alpha/v002",
	}, values)
}

func TestPathTemplate_Join(t *testing.T) {
	tpl := versionPathTemplate(t)
	shot := mustToken(t, "shot", api.TokenSpec{Type: KindString, Case: "upperCamel"})
	rel, err := NewTemplate("shot", "shots/{shot}", nil, nil, []Token{shot})
	require.NoError(t, err)

	joined, err := tpl.Join(rel)
	require.NoError(t, err)
	fields, err := joined.Parse("/projects/alpha/v001/shots/Opening")
	require.NoError(t, err)
	assert.Equal(t, "Opening", fields["shot"])

	// The joined template is itself extractable.
	_, _, remainder, err := joined.Extract("/projects/alpha/v001/shots/Opening/cache", true)
	require.NoError(t, err)
	assert.Equal(t, "cache", remainder)
}
