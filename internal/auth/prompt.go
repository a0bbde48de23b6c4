// ABOUTME: Terminal secret prompting with masked input.
// ABOUTME: Falls back to plain line reading when stdin is not a terminal.

package auth

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// TerminalPrompter reads secrets from an input stream, masking the input
// when the stream is a real terminal.
type TerminalPrompter struct {
	in  *os.File
	out io.Writer
}

// NewTerminalPrompter creates a prompter on stdin/stdout.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{in: os.Stdin, out: os.Stdout}
}

// Secret prompts with label and reads one secret value. Input is masked on
// terminals via term.ReadPassword; in pipes and tests it degrades to a
// plain line read. The result is whitespace-trimmed.
func (p *TerminalPrompter) Secret(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", color.CyanString(label))

	fd := int(p.in.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	reader := bufio.NewReader(p.in)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}
