package executil

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alessio/shellescape"
	"github.com/pkg/errors"

	"github.com/cpso-tools/cpso/pkg/log"
)

const (
	// Duration we wait after sending a SIGTERM to the process group
	// before we send a SIGKILL.
	processGroupTerminationGracePeriod = 5 * time.Second
)

// Cmd provides the same functionality as exec.Cmd plus some utility
// methods.
type Cmd struct {
	*exec.Cmd
	ctx                             context.Context
	waitDone                        chan struct{}
	signalErr                       <-chan error
	terminatedAfterContextDone      bool
	terminatedAfterContextDoneMutex sync.Mutex
}

func Command(name string, arg ...string) *Cmd {
	return &Cmd{Cmd: exec.Command(name, arg...)}
}

// CommandContext is like Command but includes a context.
//
// The provided context is used to terminate the process group (by first
// sending SIGTERM to the process group and after a grace period
// SIGKILL) if the context becomes done before the command completes on
// its own. In that case, Cmd.TerminatedAfterContextDone() returns true.
func CommandContext(ctx context.Context, name string, arg ...string) *Cmd {
	// We don't use exec.CommandContext here to avoid a race between
	// the goroutine started by the exec package, which immediately
	// sends SIGKILL when the context is done, and the goroutine started
	// by this package which first sends a SIGTERM to the process group.
	return &Cmd{Cmd: exec.Command(name, arg...), ctx: ctx}
}

// String returns the command line in a form which can be copied into
// a shell.
func (c *Cmd) String() string {
	return shellescape.QuoteCommand(c.Args)
}

// Does the same as exec.Cmd.Start(), but also sets up termination of
// the process group when the context is done or a terminating signal
// is received.
func (c *Cmd) Start() error {
	if c.Process != nil {
		return errors.New("exec: already started")
	}

	// Don't start the process if the context is already done
	if c.ctx != nil {
		select {
		case <-c.ctx.Done():
			return errors.WithStack(c.ctx.Err())
		default:
		}
	}

	c.waitDone = make(chan struct{}, 1)

	c.prepareProcessGroupTermination()

	// Terminate the process group on terminating signals
	c.signalErr = c.terminateOnSignal()

	log.Debugf("Command: %s", c.String())
	err := c.Cmd.Start()
	if err != nil {
		// Stop the signal handler goroutine, Wait will never be called
		<-c.signalErr
		c.signalErr = nil
		return errors.WithStack(err)
	}

	if c.ctx != nil {
		go func() {
			select {
			case <-c.ctx.Done():
				c.terminatedAfterContextDoneMutex.Lock()
				log.Debugf("Terminating process: %s", c.ctx.Err().Error())
				err := c.TerminateProcessGroup()
				if err != nil {
					log.Error(err, err.Error())
				}
				c.terminatedAfterContextDone = true
				c.terminatedAfterContextDoneMutex.Unlock()
			case <-c.waitDone:
			}
		}()
	}

	return nil
}

func (c *Cmd) TerminatedAfterContextDone() bool {
	c.terminatedAfterContextDoneMutex.Lock()
	res := c.terminatedAfterContextDone
	c.terminatedAfterContextDoneMutex.Unlock()
	return res
}

// Does the same as exec.Cmd.Wait() but also stops the goroutines
// started by Start.
func (c *Cmd) Wait() error {
	err := c.Cmd.Wait()
	if c.waitDone != nil {
		close(c.waitDone)
	}

	if c.signalErr != nil {
		signalErr := <-c.signalErr
		// If c.Cmd.Wait returned an error, prefer that.
		// Otherwise, report any error from the signal handler goroutine.
		if signalErr != nil && err == nil {
			err = signalErr
		}
	}

	return errors.WithStack(err)
}

// Same as exec.Cmd.Run() but uses the wrapper methods of this struct.
func (c *Cmd) Run() error {
	err := c.Start()
	if err != nil {
		return err
	}

	return c.Wait()
}

// Capture runs the command and returns everything it wrote to stdout
// and stderr. The returned error is an *exec.ExitError (wrapped) if the
// command exited with a non-zero status.
func (c *Cmd) Capture() (stdout []byte, stderr []byte, err error) { // nolint:nonamedreturns
	if c.Stdout != nil {
		return nil, nil, errors.New("exec: Stdout already set")
	}
	if c.Stderr != nil {
		return nil, nil, errors.New("exec: Stderr already set")
	}
	var outBuf, errBuf bytes.Buffer
	c.Stdout = &outBuf
	c.Stderr = &errBuf
	err = c.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

// terminateOnSignal registers a signal handler for terminating signals
// (SIGINT, SIGTERM, SIGQUIT) and starts a goroutine that waits until
// either a terminating signal was received or c.Process.Wait has
// completed (called from Wait).
// When a terminating signal is received, the goroutine terminates the
// process group of c.Process.
//
// terminateOnSignal returns a channel on which its result must be received.
func (c *Cmd) terminateOnSignal() <-chan error {
	errc := make(chan error)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		select {
		case errc <- nil:
			// c.Cmd.Wait has completed
			signal.Stop(sigs)
		case s := <-sigs:
			log.Debugf("Received %s", s.String())

			// Terminate the command's process group
			err := c.TerminateProcessGroup()
			if err != nil {
				errc <- errors.WithStack(err)
				return
			}

			// Re-raise the signal for other handlers
			signal.Stop(sigs)
			p, err := os.FindProcess(os.Getpid())
			if err != nil {
				errc <- errors.WithStack(err)
				return
			}
			err = p.Signal(s)
			if err != nil {
				errc <- errors.WithStack(err)
				return
			}
			errc <- nil
		}
	}()

	return errc
}
