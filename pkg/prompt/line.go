package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// Line prompts with numbered menus and y/n questions on plain streams. Each
// question is asked again until the answer is valid or input ends.
type Line struct {
	in  *bufio.Reader
	out io.Writer

	// Input is read by one goroutine so a blocked read can be abandoned
	// when the context ends.
	once    sync.Once
	lines   chan string
	readErr error
}

func NewLine(in io.Reader, out io.Writer) *Line {
	return &Line{in: bufio.NewReader(in), out: out}
}

func (l *Line) Select(ctx context.Context, title string, options []Option, def int) (int, error) {
	if len(options) == 0 {
		return 0, errors.New("no options to select from")
	}
	def = clamp(def, len(options))

	fmt.Fprintln(l.out, title)
	for i, o := range options {
		marker := " "
		if i == def {
			marker = "*"
		}
		fmt.Fprintf(l.out, " %s %d) %s\n", marker, i+1, o.Label)
	}

	return ask(ctx, l, fmt.Sprintf("Choose 1-%d [%d]: ", len(options), def+1), func(answer string) (int, bool) {
		return matchOption(answer, options, def)
	})
}

func (l *Line) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	return ask(ctx, l, fmt.Sprintf("%s %s: ", question, hint), func(answer string) (bool, bool) {
		return parseYesNo(answer, def)
	})
}

// ask writes question and reads answers until valid accepts one.
func ask[T any](ctx context.Context, l *Line, question string, valid func(string) (T, bool)) (T, error) {
	var zero T
	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		fmt.Fprint(l.out, question)
		answer, err := l.readLine(ctx)
		if err != nil {
			fmt.Fprintln(l.out)
			if errors.Is(err, io.EOF) {
				return zero, ErrCancelled
			}
			return zero, err
		}

		if v, ok := valid(answer); ok {
			return v, nil
		}
		fmt.Fprintf(l.out, "Invalid answer %q.\n", answer)
	}
}

// readLine returns the next line without its terminator. A final line
// without a newline is still returned. It gives up with the context error
// when ctx ends first.
func (l *Line) readLine(ctx context.Context) (string, error) {
	l.once.Do(func() {
		l.lines = make(chan string)
		go l.readLoop()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case s, ok := <-l.lines:
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !ok {
			return "", l.readErr
		}
		return s, nil
	}
}

func (l *Line) readLoop() {
	for {
		s, err := l.in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || s == "") {
			l.readErr = err
			close(l.lines)
			return
		}
		l.lines <- strings.TrimSpace(s)
	}
}

// matchOption accepts an empty answer (the default), a 1-based number or an
// option key.
func matchOption(answer string, options []Option, def int) (int, bool) {
	if answer == "" {
		return def, true
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(options) {
			return n - 1, true
		}
		return 0, false
	}
	for i, o := range options {
		if o.Key != "" && strings.EqualFold(o.Key, answer) {
			return i, true
		}
	}
	return 0, false
}

func parseYesNo(answer string, def bool) (bool, bool) {
	switch strings.ToLower(answer) {
	case "":
		return def, true
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	}
	return false, false
}

func clamp(i, n int) int {
	if i < 0 || i >= n {
		return 0
	}
	return i
}
