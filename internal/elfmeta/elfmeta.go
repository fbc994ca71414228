// Package elfmeta reads the metadata of ELF binaries which is needed to
// resolve their shared library dependencies: the word size of the file
// and the sonames declared by the NEEDED entries of its dynamic section.
package elfmeta

import (
	"context"
	"fmt"

	"github.com/cpso-tools/cpso/util/stringutil"
)

type Format int

const (
	ELF32 Format = iota + 1
	ELF64
)

func (f Format) String() string {
	switch f {
	case ELF32:
		return "ELF32"
	case ELF64:
		return "ELF64"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Metadata describes a single ELF binary
type Metadata struct {
	Path   string
	Format Format
	// Needed contains the sonames of the NEEDED entries in the order
	// in which they are declared
	Needed []string
}

// Reader reads the Metadata of the binary at the given path
type Reader interface {
	Read(ctx context.Context, path string) (*Metadata, error)
}

// FormatError is returned when the file format of a binary is either
// not an ELF format or could not be determined at all.
type FormatError struct {
	Path string
	// FormatString is the format reported for the file. It's empty if
	// the format could not be determined.
	FormatString string
}

func (e *FormatError) Error() string {
	if e.FormatString == "" {
		return fmt.Sprintf("could not determine file format for %q", e.Path)
	}
	return fmt.Sprintf("unrecognized file format %q (file: %q)", e.FormatString, e.Path)
}

// ToolError is returned when the external inspection tool exited with
// a non-zero exit code
type ToolError struct {
	Tool     string
	Path     string
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%q returned an error", e.Tool)
	return stringutil.JoinNonEmpty([]string{msg, stringutil.FirstLine(e.Stderr)}, "\n")
}
