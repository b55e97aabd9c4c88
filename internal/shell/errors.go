package shell

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/drakeos/drakeos/internal/vfs"
)

var (
	// ErrUnknownCommand is returned for a verb missing from the command table.
	ErrUnknownCommand = errors.New("command not found")
	// ErrMissingOperand is returned when a command needs an argument.
	ErrMissingOperand = errors.New("missing operand")
	// ErrInvalidOption is returned for an unrecognized flag.
	ErrInvalidOption = errors.New("invalid option")
	// ErrUnsupported is returned when the shell has no desktop to act on.
	ErrUnsupported = errors.New("not supported here")
)

// CommandError is the single line shown for a failed command, formatted
// like a POSIX shell: "cat: missing.txt: No such file or directory".
type CommandError struct {
	Command string
	Arg     string
	Err     error
}

func (e *CommandError) Error() string {
	var b strings.Builder
	b.WriteString(e.Command)
	b.WriteString(": ")
	if e.Arg != "" {
		b.WriteString(e.Arg)
		b.WriteString(": ")
	}
	b.WriteString(describe(e.Err))
	return b.String()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// describe turns a wrapped error into its leading-capital message. Tree
// errors are reported by their sentinel only, the shell already names the
// argument.
func describe(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, sentinel := range []error{
		vfs.ErrNotFound,
		vfs.ErrNotAFolder,
		vfs.ErrIsAFolder,
		vfs.ErrUnreadableContent,
	} {
		if errors.Is(err, sentinel) {
			msg = sentinel.Error()
			break
		}
	}
	if errors.Is(err, ErrUnknownCommand) || errors.Is(err, ErrMissingOperand) || errors.Is(err, ErrInvalidOption) {
		return msg
	}
	r, size := utf8.DecodeRuneInString(msg)
	return string(unicode.ToUpper(r)) + msg[size:]
}
