package root

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/cpso-tools/cpso/internal/bundler"
	"github.com/cpso-tools/cpso/internal/cmdutils"
	"github.com/cpso-tools/cpso/internal/config"
	"github.com/cpso-tools/cpso/internal/elfmeta"
	"github.com/cpso-tools/cpso/internal/ldd"
	"github.com/cpso-tools/cpso/pkg/dependencies"
	"github.com/cpso-tools/cpso/pkg/log"
	"github.com/cpso-tools/cpso/util/fileutil"
	"github.com/cpso-tools/cpso/util/sliceutil"
)

type options struct {
	bundler.Opts `mapstructure:",squash"`

	Objdump string `mapstructure:"objdump"`
	Reader  string `mapstructure:"reader"`
	Report  string `mapstructure:"report"`
	List    bool   `mapstructure:"list"`

	Executable string    `mapstructure:"-"`
	Stdout     io.Writer `mapstructure:"-"`

	// Replaced in tests, the reader is created from the flags and the
	// default search paths are used if these are nil
	reader      elfmeta.Reader
	searchPaths ldd.SearchPaths
}

func (opts *options) Validate() error {
	if !fileutil.IsFile(opts.Executable) {
		msg := fmt.Sprintf("File %q does not exist", opts.Executable)
		return cmdutils.WrapIncorrectUsageError(errors.New(msg))
	}

	if !sliceutil.Contains(config.ReaderKinds, config.ReaderKind(opts.Reader)) {
		msg := fmt.Sprintf("invalid argument %q for \"--reader\" flag: must be \"objdump\" or \"native\"", opts.Reader)
		return cmdutils.WrapIncorrectUsageError(errors.New(msg))
	}

	if opts.Report != "" && !sliceutil.Contains(bundler.ReportFormats, opts.Report) {
		msg := fmt.Sprintf("invalid argument %q for \"--report\" flag: must be \"json\" or \"yaml\"", opts.Report)
		return cmdutils.WrapIncorrectUsageError(errors.New(msg))
	}

	return opts.Opts.Validate()
}

func New() *cobra.Command {
	return newWithOptions(&options{})
}

func init() {
	// Flags can also be set via environment variables, e.g.
	// CPSO_OBJDUMP=llvm-objdump
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func newWithOptions(opts *options) *cobra.Command {
	var bindFlags func()
	cmd := &cobra.Command{
		Use:   "cpso [flags] EXECUTABLE [TARGET-DIR]",
		Short: "Copies the shared libraries needed by an executable",
		Long: `cpso is a tool for bundling the .so files needed by binary executables.

It reads the dynamic section of EXECUTABLE, resolves every shared library
it needs (and, recursively, the libraries needed by those) and copies
them into TARGET-DIR, which defaults to the current working directory.

Libraries are searched for in /lib, /usr/lib and /usr/local/lib for 32-bit
binaries and in /lib64, /usr/lib64 and /usr/local/lib64 for 64-bit binaries.
Libraries which are part of every system (the C and C++ runtimes, libm,
libpthread, libgcc_s, libasan and the dynamic linker) are resolved but not
copied.`,
		Version: config.ProgramVersion,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmdutils.WrapIncorrectUsageError(errors.New("EXECUTABLE is missing"))
			}
			if len(args) > 2 {
				return cmdutils.WrapIncorrectUsageError(errors.Errorf("too many arguments: %s", strings.Join(args[2:], " ")))
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind viper keys to flags. We can't do this in the New
			// function, because that would re-bind viper keys which
			// were bound to the flags of other instances of the command.
			bindFlags()

			err := viper.Unmarshal(opts)
			if err != nil {
				return errors.WithStack(err)
			}

			opts.Executable = args[0]
			if len(args) > 1 {
				opts.TargetDir = args[1]
			} else {
				opts.TargetDir, err = os.Getwd()
				if err != nil {
					return errors.WithStack(err)
				}
			}
			if opts.Stdout == nil {
				opts.Stdout = os.Stdout
			}
			opts.Blacklist = config.DefaultBlacklist()

			return opts.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf("%s v.%s by %s\n", config.ProgramName, config.ProgramVersion, config.ProgramAuthor))
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return cmdutils.WrapIncorrectUsageError(err)
	})
	// Help and version are informational output, just like the log
	cmd.SetOut(os.Stderr)

	bindFlags = cmdutils.AddFlags(cmd,
		cmdutils.AddDryRunFlag,
		cmdutils.AddJobsFlag,
		cmdutils.AddListFlag,
		cmdutils.AddObjdumpFlag,
		cmdutils.AddReaderFlag,
		cmdutils.AddReportFlag,
		cmdutils.AddVerboseFlag,
	)

	return cmd
}

func run(ctx context.Context, opts *options) error {
	reader, err := newReader(opts)
	if err != nil {
		return err
	}
	searchPaths := opts.searchPaths
	if searchPaths == nil {
		searchPaths = config.DefaultSearchPaths()
	}

	deps, err := ldd.NewResolver(reader, searchPaths).Resolve(ctx, opts.Executable)
	if err != nil {
		var formatErr *elfmeta.FormatError
		var toolErr *elfmeta.ToolError
		var unresolvedErr *ldd.UnresolvedError
		if errors.As(err, &formatErr) || errors.As(err, &toolErr) || errors.As(err, &unresolvedErr) {
			log.Error(err, log.Prefix+err.Error())
			return cmdutils.WrapSilentError(err)
		}
		return err
	}
	var libraryPaths []string
	for _, dir := range deps.LibraryPaths() {
		libraryPaths = append(libraryPaths, fileutil.PrettifyPath(dir))
	}
	log.Debugf("Resolved %d libraries in %s", deps.Len(), strings.Join(libraryPaths, ", "))

	if opts.List {
		for _, soname := range deps.Sonames() {
			path, _ := deps.Path(soname)
			_, err = fmt.Fprintf(opts.Stdout, "%s => %s\n", soname, path)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	report := bundler.New(&opts.Opts).Copy(ctx, deps)
	report.Executable = opts.Executable
	log.Debugf("Summary: %s", report.Summary())

	if opts.Report != "" {
		color := opts.Stdout == os.Stdout && term.IsTerminal(int(os.Stdout.Fd()))
		err = report.Write(opts.Stdout, opts.Report, color)
		if err != nil {
			return err
		}
	}

	// Libraries which could not be copied were already reported and
	// don't change the exit code
	return nil
}

func newReader(opts *options) (elfmeta.Reader, error) {
	if opts.reader != nil {
		return opts.reader, nil
	}

	switch config.ReaderKind(opts.Reader) {
	case config.ReaderNative:
		return &elfmeta.NativeReader{}, nil
	default:
		err := dependencies.Check([]dependencies.Key{dependencies.Objdump}, dependencies.Define(opts.Objdump))
		if err != nil {
			log.Error(err)
			return nil, cmdutils.WrapSilentError(err)
		}
		return elfmeta.NewObjdumpReader(opts.Objdump), nil
	}
}
