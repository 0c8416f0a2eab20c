// Package prompt asks the operator questions, either through a terminal UI or
// through plain line-based input when no terminal is attached.
package prompt

import (
	"context"
	"errors"
	"io"

	"github.com/mattn/go-isatty"
)

// ErrCancelled is returned when the operator aborts a prompt, or when input
// ends before a valid answer was given.
var ErrCancelled = errors.New("prompt cancelled")

// Option is one entry of a selection menu.
type Option struct {
	// Key is a short name the operator may type instead of the number.
	Key string
	// Label is the text shown for the entry.
	Label string
}

// Prompter asks questions.
type Prompter interface {
	// Select returns the index of the chosen option. def is preselected.
	Select(ctx context.Context, title string, options []Option, def int) (int, error)
	// Confirm asks a yes/no question. def is the answer on a bare enter.
	Confirm(ctx context.Context, question string, def bool) (bool, error)
}

type fileDescriptor interface {
	Fd() uintptr
}

// IsTerminal reports whether v is a file attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(fileDescriptor)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// New returns a TUI prompter when both in and out are terminals, and a Line
// prompter otherwise.
func New(in io.Reader, out io.Writer) Prompter {
	if IsTerminal(in) && IsTerminal(out) {
		return NewTUI(in, out)
	}
	return NewLine(in, out)
}
