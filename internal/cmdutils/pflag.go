package cmdutils

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func ViperMustBindPFlag(key string, flag *pflag.Flag) {
	err := viper.BindPFlag(key, flag)
	if err != nil {
		panic(err)
	}
}

// AddFlags executes the specified Add*Flag functions and returns a
// function which binds all those flags to viper
func AddFlags(cmd *cobra.Command, funcs ...func(cmd *cobra.Command) func()) (bindFlags func()) { // nolint:nonamedreturns
	var bindFlagFuncs []func()
	for _, f := range funcs {
		bindFlagFunc := f(cmd)
		bindFlagFuncs = append(bindFlagFuncs, bindFlagFunc)
	}
	return func() {
		for _, f := range bindFlagFuncs {
			f()
		}
	}
}

func AddVerboseFlag(cmd *cobra.Command) func() {
	cmd.Flags().BoolP("verbose", "v", false, "Print verbose output, including every resolution step.")
	return func() {
		ViperMustBindPFlag("verbose", cmd.Flags().Lookup("verbose"))
	}
}

func AddDryRunFlag(cmd *cobra.Command) func() {
	cmd.Flags().BoolP("dry-run", "n", false,
		"Resolve the dependencies and report what would be copied,\n"+
			"without copying anything.")
	return func() {
		ViperMustBindPFlag("dry-run", cmd.Flags().Lookup("dry-run"))
	}
}

func AddJobsFlag(cmd *cobra.Command) func() {
	cmd.Flags().UintP("jobs", "j", 1, "Maximum `number` of libraries which are copied in parallel.")
	return func() {
		ViperMustBindPFlag("jobs", cmd.Flags().Lookup("jobs"))
	}
}

func AddObjdumpFlag(cmd *cobra.Command) func() {
	cmd.Flags().String("objdump", "objdump",
		"The objdump `executable` used to read the dynamic section of binaries.")
	return func() {
		ViperMustBindPFlag("objdump", cmd.Flags().Lookup("objdump"))
	}
}

func AddReaderFlag(cmd *cobra.Command) func() {
	cmd.Flags().String("reader", "objdump",
		"How the dynamic section of binaries is read, either `kind` \"objdump\"\n"+
			"(run the objdump executable) or \"native\" (built-in ELF parser).")
	return func() {
		ViperMustBindPFlag("reader", cmd.Flags().Lookup("reader"))
	}
}

func AddReportFlag(cmd *cobra.Command) func() {
	cmd.Flags().String("report", "",
		"Print a report of all resolved libraries to stdout in the given `format`\n"+
			"(\"json\" or \"yaml\").")
	return func() {
		ViperMustBindPFlag("report", cmd.Flags().Lookup("report"))
	}
}

func AddListFlag(cmd *cobra.Command) func() {
	cmd.Flags().Bool("list", false,
		"Only print the resolved libraries (\"soname => path\") to stdout,\n"+
			"don't copy anything.")
	return func() {
		ViperMustBindPFlag("list", cmd.Flags().Lookup("list"))
	}
}
