// Package ldd resolves the transitive shared library dependencies of an
// ELF executable to paths on the filesystem.
package ldd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/cpso-tools/cpso/internal/elfmeta"
	"github.com/cpso-tools/cpso/pkg/log"
	"github.com/cpso-tools/cpso/util/fileutil"
)

// SearchPaths maps a file format to the ordered list of directories in
// which the shared libraries needed by binaries of that format are
// searched for.
type SearchPaths map[elfmeta.Format][]string

// UnresolvedError is returned when a needed shared library is not
// found in any of the search paths.
type UnresolvedError struct {
	Soname string
	// NeededBy is the path of the binary which declared the dependency
	NeededBy string
	Format   elfmeta.Format
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unable to resolve %q", e.Soname)
}

type Resolver struct {
	Reader      elfmeta.Reader
	SearchPaths SearchPaths
	// IsFile reports whether a candidate path is an existing regular
	// file
	IsFile func(path string) bool
}

func NewResolver(reader elfmeta.Reader, searchPaths SearchPaths) *Resolver {
	return &Resolver{
		Reader:      reader,
		SearchPaths: searchPaths,
		IsFile:      fileutil.IsFile,
	}
}

// Resolve walks the dependency graph of the executable depth-first and
// returns the paths of all shared libraries it transitively needs. The
// first error aborts the walk.
func (r *Resolver) Resolve(ctx context.Context, executable string) (*Dependencies, error) {
	deps := NewDependencies()
	err := r.resolve(ctx, executable, deps)
	if err != nil {
		return nil, err
	}
	return deps, nil
}

func (r *Resolver) resolve(ctx context.Context, binary string, deps *Dependencies) error {
	metadata, err := r.Reader.Read(ctx, binary)
	if err != nil {
		return err
	}

	for _, soname := range metadata.Needed {
		if deps.Has(soname) {
			continue
		}

		path, found := r.FindLibrary(soname, metadata.Format)
		if !found {
			return errors.WithStack(&UnresolvedError{
				Soname:   soname,
				NeededBy: binary,
				Format:   metadata.Format,
			})
		}
		log.Debugf("Resolved %s => %s (needed by %s)", soname, path, binary)

		// The library has to be added before its own dependencies are
		// walked, that's what terminates cycles
		deps.Add(soname, path)

		err = r.resolve(ctx, path, deps)
		if err != nil {
			return err
		}
	}

	return nil
}

// FindLibrary returns the first existing file named soname in the
// search paths for the given format
func (r *Resolver) FindLibrary(soname string, format elfmeta.Format) (string, bool) {
	for _, dir := range r.SearchPaths[format] {
		path := filepath.Join(dir, soname)
		if r.IsFile(path) {
			return path, true
		}
	}
	return "", false
}
