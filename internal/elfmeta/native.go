package elfmeta

import (
	"context"
	"debug/elf"

	"github.com/pkg/errors"

	"github.com/cpso-tools/cpso/pkg/log"
)

// NativeReader reads the metadata of a binary in-process via the
// debug/elf package, without depending on binutils being installed.
type NativeReader struct{}

func (r *NativeReader) Read(ctx context.Context, path string) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	f, err := elf.Open(path)
	if err != nil {
		var formatErr *elf.FormatError
		if errors.As(err, &formatErr) {
			log.Debugf("%s: %v", path, err)
			return nil, errors.WithStack(&FormatError{Path: path})
		}
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	metadata := &Metadata{Path: path}
	switch f.Class {
	case elf.ELFCLASS32:
		metadata.Format = ELF32
	case elf.ELFCLASS64:
		metadata.Format = ELF64
	default:
		return nil, errors.WithStack(&FormatError{Path: path, FormatString: f.Class.String()})
	}

	metadata.Needed, err = f.ImportedLibraries()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return metadata, nil
}
