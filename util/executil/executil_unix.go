//go:build !windows

package executil

import (
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/cpso-tools/cpso/pkg/log"
)

func (c *Cmd) prepareProcessGroupTermination() {
	if c.SysProcAttr == nil {
		c.SysProcAttr = &syscall.SysProcAttr{}
	}
	// Start the command in its own process group, so that it and all
	// of its children can be terminated together
	c.SysProcAttr.Setpgid = true
}

// TerminateProcessGroup sends SIGTERM to the process group of the
// command and, if the process didn't exit after a grace period,
// SIGKILL.
func (c *Cmd) TerminateProcessGroup() error {
	if c.Process == nil {
		return nil
	}
	pgid := -c.Process.Pid

	log.Debugf("Sending SIGTERM to process group %d", c.Process.Pid)
	err := unix.Kill(pgid, unix.SIGTERM)
	if err != nil && !errors.Is(err, unix.ESRCH) {
		return errors.WithStack(err)
	}

	select {
	case <-c.waitDone:
		return nil
	case <-time.After(processGroupTerminationGracePeriod):
	}

	log.Debugf("Sending SIGKILL to process group %d", c.Process.Pid)
	err = unix.Kill(pgid, unix.SIGKILL)
	if err != nil && !errors.Is(err, unix.ESRCH) {
		return errors.WithStack(err)
	}
	return nil
}
