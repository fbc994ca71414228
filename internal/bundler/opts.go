package bundler

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/cpso-tools/cpso/internal/cmdutils"
	"github.com/cpso-tools/cpso/util/fileutil"
)

type Opts struct {
	NumJobs uint `mapstructure:"jobs"`
	DryRun  bool `mapstructure:"dry-run"`

	// Fields which are not configurable via viper (i.e. via flags and
	// CPSO_* environment variables), by setting mapstructure:"-"
	TargetDir string    `mapstructure:"-"`
	Blacklist Blacklist `mapstructure:"-"`
}

func (opts *Opts) Validate() error {
	if opts.NumJobs == 0 {
		msg := fmt.Sprintf("invalid argument %d for \"--jobs\" flag: at least one job is required", opts.NumJobs)
		return cmdutils.WrapIncorrectUsageError(errors.New(msg))
	}

	if !fileutil.IsDir(opts.TargetDir) {
		msg := fmt.Sprintf("Directory %q does not exist", opts.TargetDir)
		return cmdutils.WrapIncorrectUsageError(errors.New(msg))
	}

	return nil
}
