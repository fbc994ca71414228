package config

import (
	"github.com/cpso-tools/cpso/internal/elfmeta"
)

const (
	ProgramName    = "cpso"
	ProgramVersion = "2.0"
	ProgramAuthor  = "suve"

	EnvPrefix = "CPSO"
)

type ReaderKind string

const (
	ReaderObjdump ReaderKind = "objdump"
	ReaderNative  ReaderKind = "native"
)

var ReaderKinds = []ReaderKind{ReaderObjdump, ReaderNative}

// DefaultSearchPaths returns the directories which are searched for
// the shared libraries needed by binaries of the respective format.
// Each call returns a new map, so callers are free to modify it.
func DefaultSearchPaths() map[elfmeta.Format][]string {
	return map[elfmeta.Format][]string{
		elfmeta.ELF32: {"/lib/", "/usr/lib/", "/usr/local/lib/"},
		elfmeta.ELF64: {"/lib64/", "/usr/lib64/", "/usr/local/lib64/"},
	}
}

// DefaultBlacklist returns substrings of the sonames of libraries which
// are expected to be present on any target system: the C runtime, the
// math and pthread libraries, GCC support libraries, the C++ standard
// library, the AddressSanitizer runtime and the dynamic linker itself.
func DefaultBlacklist() []string {
	return []string{
		"libasan.",
		"libc.",
		"libgcc_s.",
		"libm.",
		"libpthread.",
		"libstdc++.",
		"ld-linux.",
		"ld-linux-",
	}
}
