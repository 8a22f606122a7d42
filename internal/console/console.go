// Package console is the operator interaction boundary. Reconciliation and
// update logic talk to the Operator interface only, so the review flow can be
// driven headlessly by a scripted implementation in tests.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Operator is the capability surface the interactive flows need.
type Operator interface {
	// Printf renders output for the operator.
	Printf(format string, args ...any)
	// Choose asks the operator to pick one of the given single-letter
	// options; it re-prompts until a valid option is entered and returns
	// def on empty input.
	Choose(prompt string, options []string, def string) (string, error)
	// AskLine reads one free-form line.
	AskLine(prompt string) (string, error)
	// Confirm asks a yes/no question.
	Confirm(prompt string, def bool) (bool, error)
}

// Terminal is the stdin/stdout Operator used by the CLI binaries.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminal() *Terminal {
	return &Terminal{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

// NewTerminalWith wires explicit streams; the CLI uses NewTerminal.
func NewTerminalWith(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

func (t *Terminal) Printf(format string, args ...any) {
	fmt.Fprintf(t.out, format, args...)
}

func (t *Terminal) AskLine(prompt string) (string, error) {
	fmt.Fprintf(t.out, "%s: ", prompt)
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) Choose(prompt string, options []string, def string) (string, error) {
	for {
		line, err := t.AskLine(fmt.Sprintf("%s [%s]", prompt, strings.Join(options, "/")))
		if err != nil {
			return "", err
		}
		if line == "" {
			return def, nil
		}
		line = strings.ToLower(line)
		for _, opt := range options {
			if line == opt {
				return opt, nil
			}
		}
		fmt.Fprintf(t.out, "invalid option %q\n", line)
	}
}

func (t *Terminal) Confirm(prompt string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	line, err := t.AskLine(fmt.Sprintf("%s [%s]", prompt, hint))
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Scripted replays queued responses; used by tests and recorded sessions.
type Scripted struct {
	Responses []string
	Output    strings.Builder
	pos       int
}

func NewScripted(responses ...string) *Scripted {
	return &Scripted{Responses: responses}
}

func (s *Scripted) next() (string, error) {
	if s.pos >= len(s.Responses) {
		return "", io.EOF
	}
	r := s.Responses[s.pos]
	s.pos++
	return r, nil
}

func (s *Scripted) Printf(format string, args ...any) {
	fmt.Fprintf(&s.Output, format, args...)
}

func (s *Scripted) AskLine(prompt string) (string, error) {
	return s.next()
}

func (s *Scripted) Choose(prompt string, options []string, def string) (string, error) {
	for {
		r, err := s.next()
		if err != nil {
			return "", err
		}
		if r == "" {
			return def, nil
		}
		r = strings.ToLower(r)
		for _, opt := range options {
			if r == opt {
				return opt, nil
			}
		}
		s.Printf("invalid option %q\n", r)
	}
}

func (s *Scripted) Confirm(prompt string, def bool) (bool, error) {
	r, err := s.next()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(r) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
