package elfmeta

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/cpso-tools/cpso/pkg/log"
	"github.com/cpso-tools/cpso/util/envutil"
	"github.com/cpso-tools/cpso/util/executil"
)

const (
	// The "file format" line is part of the first few lines printed by
	// objdump, everything after that is the body with the headers
	objdumpHeaderLines = 5

	fileFormatMarker = " file format "
	neededMarker     = "  NEEDED  "
)

// ObjdumpReader reads the metadata of a binary by parsing the output
// of `objdump -x`
type ObjdumpReader struct {
	// Path or name of the objdump executable
	Objdump string
}

func NewObjdumpReader(objdump string) *ObjdumpReader {
	if objdump == "" {
		objdump = "objdump"
	}
	return &ObjdumpReader{Objdump: objdump}
}

func (r *ObjdumpReader) Read(ctx context.Context, path string) (*Metadata, error) {
	cmd := executil.CommandContext(ctx, r.Objdump, "-x", path)
	// The markers we look for are only printed untranslated in the
	// C locale
	env, err := envutil.CLocale(os.Environ())
	if err != nil {
		return nil, err
	}
	cmd.Env = env
	stdout, stderr, err := cmd.Capture()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, errors.WithStack(&ToolError{
				Tool:     r.Objdump,
				Path:     path,
				ExitCode: exitErr.ExitCode(),
				Stderr:   string(stderr),
			})
		}
		return nil, err
	}

	return ParseObjdumpOutput(path, string(stdout))
}

// ParseObjdumpOutput extracts the file format and the NEEDED entries
// from the output of `objdump -x` for the file at path.
func ParseObjdumpOutput(path string, output string) (*Metadata, error) {
	lines := strings.Split(output, "\n")
	headerLen := objdumpHeaderLines
	if len(lines) < headerLen {
		headerLen = len(lines)
	}
	header, body := lines[:headerLen], lines[headerLen:]

	format, err := parseFormat(path, header)
	if err != nil {
		return nil, err
	}

	metadata := &Metadata{Path: path, Format: format}
	for _, line := range body {
		if !strings.Contains(line, neededMarker) {
			continue
		}
		fields := strings.Fields(line)
		soname := fields[len(fields)-1]
		metadata.Needed = append(metadata.Needed, soname)
	}
	log.Debugf("%s: format %s, needed: %s", path, format, strings.Join(metadata.Needed, ", "))

	return metadata, nil
}

func parseFormat(path string, header []string) (Format, error) {
	var format Format
	for _, line := range header {
		_, formatString, found := strings.Cut(line, fileFormatMarker)
		if !found {
			continue
		}
		formatString = strings.TrimSpace(formatString)

		switch {
		case strings.HasPrefix(formatString, "elf32-"):
			format = ELF32
		case strings.HasPrefix(formatString, "elf64-"):
			format = ELF64
		default:
			return 0, errors.WithStack(&FormatError{Path: path, FormatString: formatString})
		}
	}

	if format == 0 {
		return 0, errors.WithStack(&FormatError{Path: path})
	}
	return format, nil
}
