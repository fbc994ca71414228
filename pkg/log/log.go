package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// Prefix is prepended to every message which is printed on behalf of
// the program itself (in contrast to messages about single libraries).
const Prefix = "cpso: "

// Output is the writer all log functions write to. It's stderr by
// default and can be replaced in tests to capture the log output.
var Output io.Writer

func init() {
	Output = os.Stderr
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		pterm.DisableColor()
	}
}

func log(style *pterm.Style, a ...any) {
	s := fmt.Sprint(a...)
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	if style != nil {
		s = style.Sprint(s)
	}
	_, _ = fmt.Fprint(Output, s)
}

// Successf highlights a message as successful
func Successf(format string, a ...any) {
	Success(fmt.Sprintf(format, a...))
}

func Success(a ...any) {
	log(GetPtermSuccessStyle(), a...)
}

// Warnf highlights a message as a warning
func Warnf(format string, a ...any) {
	Warn(fmt.Sprintf(format, a...))
}

func Warn(a ...any) {
	log(&pterm.Style{pterm.FgYellow}, a...)
}

// Errorf logs the message and, in verbose mode, the stack trace of
// the error
func Errorf(err error, format string, a ...any) {
	Error(err, fmt.Sprintf(format, a...))
}

// Error logs the specified message or, if no message is given, the
// error itself. In verbose mode, the error is printed with its stack
// trace.
func Error(err error, a ...any) {
	var msg string
	if len(a) > 0 {
		msg = fmt.Sprint(a...)
	} else if err != nil {
		msg = err.Error()
	}

	if viper.GetBool("verbose") && err != nil {
		var stackErr interface{ StackTrace() errors.StackTrace }
		if errors.As(err, &stackErr) {
			msg = fmt.Sprintf("%s\n%+v", msg, stackErr.StackTrace())
		}
	}

	log(GetPtermErrorStyle(), msg)
}

// Infof outputs a regular user message without any highlighting
func Infof(format string, a ...any) {
	Info(fmt.Sprintf(format, a...))
}

func Info(a ...any) {
	log(nil, a...)
}

// Debugf outputs additional information only if the verbose flag is set
func Debugf(format string, a ...any) {
	Debug(fmt.Sprintf(format, a...))
}

func Debug(a ...any) {
	if viper.GetBool("verbose") {
		log(&pterm.Style{pterm.FgCyan}, a...)
	}
}

// Printf writes without any colors
func Printf(format string, a ...any) {
	Print(fmt.Sprintf(format, a...))
}

func Print(a ...any) {
	log(nil, a...)
}
