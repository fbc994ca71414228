package ldd

import (
	"path/filepath"

	"github.com/cpso-tools/cpso/util/sliceutil"
)

// Dependencies maps the sonames of shared libraries to the paths they
// were resolved to. Entries are never removed or overwritten. The order
// in which the sonames were added is preserved.
type Dependencies struct {
	paths   map[string]string
	sonames []string
}

func NewDependencies() *Dependencies {
	return &Dependencies{paths: make(map[string]string)}
}

// Add records the path of soname. It returns false and leaves the
// entry unchanged if soname was added before.
func (d *Dependencies) Add(soname, path string) bool {
	if d.Has(soname) {
		return false
	}
	d.paths[soname] = path
	d.sonames = append(d.sonames, soname)
	return true
}

func (d *Dependencies) Has(soname string) bool {
	_, ok := d.paths[soname]
	return ok
}

func (d *Dependencies) Path(soname string) (string, bool) {
	path, ok := d.paths[soname]
	return path, ok
}

func (d *Dependencies) Len() int {
	return len(d.sonames)
}

// Sonames returns the sonames in the order they were added, which is
// the pre-order of the dependency walk
func (d *Dependencies) Sonames() []string {
	return append([]string(nil), d.sonames...)
}

// Map returns a copy of the soname to path mapping
func (d *Dependencies) Map() map[string]string {
	m := make(map[string]string, len(d.paths))
	for soname, path := range d.paths {
		m[soname] = path
	}
	return m
}

// LibraryPaths returns the directories containing the resolved
// libraries, without duplicates
func (d *Dependencies) LibraryPaths() []string {
	libraryPaths := make([]string, 0, len(d.sonames))
	for _, soname := range d.sonames {
		libraryPaths = append(libraryPaths, filepath.Dir(d.paths[soname]))
	}
	return sliceutil.RemoveDuplicates(libraryPaths)
}
