// Package bundler copies the resolved shared libraries of an executable
// into a target directory.
package bundler

import (
	"context"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/cpso-tools/cpso/internal/ldd"
	"github.com/cpso-tools/cpso/pkg/log"
	"github.com/cpso-tools/cpso/util/stringutil"
)

type Bundler struct {
	opts *Opts
}

func New(opts *Opts) *Bundler {
	return &Bundler{opts: opts}
}

// Copy copies every dependency which is not blacklisted into the target
// directory. Failing to copy a library is not fatal, the outcome for
// each library is recorded in the returned report instead.
func (b *Bundler) Copy(ctx context.Context, deps *ldd.Dependencies) *Report {
	sonames := deps.Sonames()
	report := &Report{
		TargetDir: b.opts.TargetDir,
		Entries:   make([]*Entry, len(sonames)),
	}

	g, ctx := errgroup.WithContext(ctx)
	numJobs := int(b.opts.NumJobs)
	if numJobs < 1 {
		numJobs = 1
	}
	g.SetLimit(numJobs)

	for i, soname := range sonames {
		path, _ := deps.Path(soname)
		entry := &Entry{Soname: soname, Path: path}
		report.Entries[i] = entry

		if b.opts.Blacklist.Matches(soname) {
			entry.Status = StatusBlacklisted
			continue
		}
		if b.opts.DryRun {
			entry.Status = StatusSkipped
			continue
		}

		g.Go(func() error {
			err := b.copyLibrary(ctx, entry)
			if err != nil {
				log.Debugf("%+v", err)
				entry.Status = StatusFailed
				entry.Error = stringutil.FirstLine(errors.Cause(err).Error())
				return nil
			}
			entry.Status = StatusCopied
			return nil
		})
	}
	// The goroutines never return an error
	_ = g.Wait()

	for _, entry := range report.Entries {
		entry.log()
	}
	return report
}

func (b *Bundler) copyLibrary(ctx context.Context, entry *Entry) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	// Sonames are usually relative symlinks to the versioned library
	// file, copy the file they point to
	src, err := filepath.EvalSymlinks(entry.Path)
	if err != nil {
		return errors.WithStack(err)
	}
	dest := filepath.Join(b.opts.TargetDir, entry.Soname)

	// Copying a file onto itself would truncate it
	same, err := isSameFile(src, dest)
	if err != nil {
		return err
	}
	if same {
		return errors.Errorf("%q and %q are the same file", entry.Path, dest)
	}

	err = copy.Copy(src, dest, copy.Options{PreserveTimes: true})
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func isSameFile(src, dest string) (bool, error) {
	destInfo, err := os.Stat(dest)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errors.WithStack(err)
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, errors.WithStack(err)
	}
	return os.SameFile(srcInfo, destInfo), nil
}
