package root

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cpso-tools/cpso/internal/cmdutils"
	"github.com/cpso-tools/cpso/pkg/log"
)

// Execute runs the command and returns the exit code of the process
func Execute(ctx context.Context, cmd *cobra.Command) int {
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var usageErr *cmdutils.IncorrectUsageError
	if errors.As(err, &usageErr) {
		log.Error(err, log.Prefix+err.Error())
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Usage: %s\n", cmd.UseLine())
		return 1
	}

	var silentErr *cmdutils.SilentError
	if !errors.As(err, &silentErr) {
		log.Error(err)
	}
	return 1
}
