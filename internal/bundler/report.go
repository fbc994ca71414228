package bundler

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hokaccha/go-prettyjson"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"gopkg.in/yaml.v3"

	"github.com/cpso-tools/cpso/pkg/log"
)

type Status string

const (
	StatusCopied      Status = "copied"
	StatusBlacklisted Status = "blacklisted"
	StatusFailed      Status = "failed"
	// The library would have been copied but this is a dry run
	StatusSkipped Status = "skipped"
)

const (
	ReportFormatJSON = "json"
	ReportFormatYAML = "yaml"
)

var ReportFormats = []string{ReportFormatJSON, ReportFormatYAML}

type Entry struct {
	Soname string `json:"soname" yaml:"soname"`
	Path   string `json:"path" yaml:"path"`
	Status Status `json:"status" yaml:"status"`
	// First line of the error message if the library could not be copied
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

func (e *Entry) log() {
	switch e.Status {
	case StatusCopied:
		log.Successf("%s%q copied from %q", log.Prefix, e.Soname, e.Path)
	case StatusFailed:
		log.Warnf("%s%q could not be copied (%s)", log.Prefix, e.Soname, e.Error)
	case StatusBlacklisted:
		log.Infof("%s%q is blacklisted, skipping", log.Prefix, e.Soname)
	case StatusSkipped:
		log.Infof("%s%q would be copied from %q", log.Prefix, e.Soname, e.Path)
	}
}

type Report struct {
	Executable string   `json:"executable" yaml:"executable"`
	TargetDir  string   `json:"target_dir" yaml:"target_dir"`
	Entries    []*Entry `json:"libraries" yaml:"libraries"`
}

// WithStatus returns the entries with the given status
func (r *Report) WithStatus(status Status) []*Entry {
	var entries []*Entry
	for _, entry := range r.Entries {
		if entry.Status == status {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Summary returns the number of entries per status, e.g.
// "blacklisted: 1, copied: 2"
func (r *Report) Summary() string {
	counts := make(map[Status]int)
	for _, entry := range r.Entries {
		counts[entry.Status]++
	}

	statuses := maps.Keys(counts)
	sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })

	var parts []string
	for _, status := range statuses {
		parts = append(parts, fmt.Sprintf("%s: %d", status, counts[status]))
	}
	return strings.Join(parts, ", ")
}

// Write encodes the report in the given format ("json" or "yaml").
// Colors are only used for JSON.
func (r *Report) Write(w io.Writer, format string, color bool) error {
	var out []byte
	var err error

	switch format {
	case ReportFormatJSON:
		formatter := prettyjson.NewFormatter()
		formatter.DisabledColor = !color
		out, err = formatter.Marshal(r)
		if err != nil {
			return errors.WithStack(err)
		}
		out = append(out, '\n')
	case ReportFormatYAML:
		out, err = yaml.Marshal(r)
		if err != nil {
			return errors.WithStack(err)
		}
	default:
		return errors.Errorf("unsupported report format %q", format)
	}

	_, err = w.Write(out)
	return errors.WithStack(err)
}
