package cmdutils

import (
	"bytes"
	"io"
	"testing"

	"github.com/spf13/cobra"
)

// ExecuteCommand executes the command with the given args and returns
// everything the command itself wrote to its output
func ExecuteCommand(t *testing.T, cmd *cobra.Command, in io.Reader, args ...string) (string, error) {
	t.Helper()

	output := bytes.Buffer{}
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetIn(in)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return output.String(), err
}
