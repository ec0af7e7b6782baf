package pattern

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Globber lists filesystem paths matching a wildcard pattern. It is the
// engine's only I/O boundary: results are trusted to be finite and
// immediately available, and every result is re-validated by the caller.
type Globber interface {
	Glob(pattern string) ([]string, error)
}

// FilesystemGlobber adapts a billy filesystem to the Globber boundary.
// Tests use it with an in-memory filesystem.
type FilesystemGlobber struct {
	FS billy.Filesystem
}

func (g FilesystemGlobber) Glob(pattern string) ([]string, error) {
	return util.Glob(g.FS, pattern)
}

// OSGlobber globs the host filesystem.
func OSGlobber() Globber {
	return FilesystemGlobber{FS: osfs.New("/")}
}
