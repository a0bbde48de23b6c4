// ABOUTME: Terminal presentation layer: prompts, agent output, panels, tables.
// ABOUTME: Implements the chat loop's renderer and prompter over one console.

package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/2389/parley/internal/a2a"
	"github.com/2389/parley/internal/chat"
	"github.com/2389/parley/internal/registry"
)

const banner = `
                   _
  _ __   __ _ _ __| | ___ _   _
 | '_ \ / _' | '__| |/ _ \ | | |
 | |_) | (_| | |  | |  __/ |_| |
 | .__/ \__,_|_|  |_|\___|\__, |
 |_|                      |___/
`

// Console is a line-oriented terminal front end.
type Console struct {
	scanner *bufio.Scanner
	out     io.Writer

	userColor     *color.Color
	agentColor    *color.Color
	progressColor *color.Color
	hintColor     *color.Color
	okColor       *color.Color
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), 1024*1024) // 1MB max input

	return &Console{
		scanner:       scanner,
		out:           out,
		userColor:     color.New(color.FgGreen),
		agentColor:    color.New(color.FgCyan),
		progressColor: color.New(color.Faint, color.Italic),
		hintColor:     color.New(color.FgYellow),
		okColor:       color.New(color.FgGreen),
	}
}

// Banner prints the startup banner.
func (c *Console) Banner() {
	c.agentColor.Fprint(c.out, banner)
	fmt.Fprintln(c.out)
}

// ReadLine prompts with a timestamp and collects one utterance. Returns
// io.EOF on Ctrl+D.
func (c *Console) ReadLine() (string, error) {
	c.userColor.Fprintf(c.out, "You [%s] > ", time.Now().Format("15:04:05"))
	if !c.scanner.Scan() {
		fmt.Fprintln(c.out)
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return c.scanner.Text(), nil
}

// Ask prompts with label and reads one trimmed line. Empty on EOF.
func (c *Console) Ask(label string) string {
	c.userColor.Fprintf(c.out, "%s > ", label)
	if !c.scanner.Scan() {
		fmt.Fprintln(c.out)
		return ""
	}
	return strings.TrimSpace(c.scanner.Text())
}

// Confirm asks a yes/no question. Anything but y/yes is no.
func (c *Console) Confirm(question string) bool {
	c.hintColor.Fprintf(c.out, "%s [y/N] ", question)
	if !c.scanner.Scan() {
		fmt.Fprintln(c.out)
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(c.scanner.Text()))
	return answer == "y" || answer == "yes"
}

func (c *Console) AgentHeader(name string) {
	fmt.Fprintln(c.out)
	c.agentColor.Fprintf(c.out, "%s [%s]:\n", name, time.Now().Format("15:04:05"))
}

func (c *Console) Progress(text string) {
	c.progressColor.Fprintf(c.out, "  %s\n", text)
}

func (c *Console) Answer(text string) {
	fmt.Fprintf(c.out, "  %s\n", indent(text, "  "))
}

// Error renders a round failure with a hint matched to the failure class.
func (c *Console) Error(err error) {
	fmt.Fprintln(c.out)

	var transport *a2a.TransportError
	var rpc *a2a.RPCError
	var timeout *chat.TimeoutError

	switch {
	case errors.As(err, &transport):
		color.New(color.FgRed).Fprintf(c.out, "✗ %v\n", transport)
		switch transport.Kind {
		case a2a.TransportUnauthorized:
			c.hintColor.Fprintln(c.out, "  The agent rejected your credentials. Re-add it to update them.")
		case a2a.TransportRateLimited:
			c.hintColor.Fprintln(c.out, "  The agent is rate limiting requests. Wait a moment and retry.")
		case a2a.TransportUnavailable:
			c.hintColor.Fprintln(c.out, "  The agent appears to be down. Check the URL and try again.")
		}
	case errors.As(err, &rpc):
		color.New(color.FgRed).Fprintf(c.out, "✗ agent error %d: %s\n", rpc.Code, rpc.Message)
	case errors.As(err, &timeout):
		color.New(color.FgRed).Fprintf(c.out, "✗ %v\n", timeout)
		c.hintColor.Fprintln(c.out, "  Raise the timeout with --timeout if the agent is just slow.")
	default:
		color.New(color.FgRed).Fprintf(c.out, "✗ %v\n", err)
	}
}

// Clear wipes the screen and reprints the banner.
func (c *Console) Clear() {
	fmt.Fprint(c.out, "\033[2J\033[H")
	c.Banner()
}

// History renders recent task messages, oldest first.
func (c *Console) History(agentName string, messages []a2a.Message) {
	fmt.Fprintln(c.out)
	c.agentColor.Fprintln(c.out, "  Recent history")
	c.agentColor.Fprintln(c.out, "  --------------")
	for _, message := range messages {
		speaker := "You"
		if message.Role == "agent" {
			speaker = agentName
		}
		text := message.Text()
		if text == "" {
			continue
		}
		fmt.Fprintf(c.out, "  %s: %s\n", speaker, indent(text, "  "))
	}
}

// Success prints a green checkmark line.
func (c *Console) Success(format string, args ...any) {
	c.okColor.Fprintf(c.out, "✓ "+format+"\n", args...)
}

// Warn prints a yellow advisory line.
func (c *Console) Warn(format string, args ...any) {
	c.hintColor.Fprintf(c.out, format+"\n", args...)
}

// Info prints a plain line.
func (c *Console) Info(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// AgentPanel summarizes a resolved agent card.
func (c *Console) AgentPanel(url string, card *a2a.AgentCard) {
	fmt.Fprintln(c.out)
	c.agentColor.Fprintln(c.out, "  Agent")
	c.agentColor.Fprintln(c.out, "  -----")

	if card == nil {
		fmt.Fprintf(c.out, "  URL:        %s\n", url)
		c.hintColor.Fprintln(c.out, "  (no agent card available)")
		return
	}

	fmt.Fprintf(c.out, "  Name:       %s\n", card.Name)
	fmt.Fprintf(c.out, "  URL:        %s\n", url)
	if card.Description != "" {
		fmt.Fprintf(c.out, "  About:      %s\n", card.Description)
	}
	if card.Version != "" {
		fmt.Fprintf(c.out, "  Version:    %s\n", card.Version)
	}
	fmt.Fprintf(c.out, "  Streaming:  %v\n", card.Capabilities.Streaming)
	if card.Capabilities.PushNotifications {
		fmt.Fprintln(c.out, "  Push:       supported")
	}
	if len(card.Skills) > 0 {
		names := make([]string, 0, len(card.Skills))
		for _, skill := range card.Skills {
			names = append(names, skill.Name)
		}
		fmt.Fprintf(c.out, "  Skills:     %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintln(c.out)
}

// AgentTable lists saved agents in registration order by id.
func (c *Console) AgentTable(agents registry.Registry) {
	if len(agents) == 0 {
		fmt.Fprintln(c.out, "  (no saved agents)")
		return
	}

	ids := make([]string, 0, len(agents))
	for id := range agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tAUTH\tURL")
	fmt.Fprintln(w, "  --\t----\t----\t---")
	for _, id := range ids {
		profile := agents[id]
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", id, profile.Name, profile.AuthType, profile.URL)
	}
	w.Flush()
}

// SelectAgent shows the table and reads a numbered or id choice. Returns
// the chosen profile id, or "" when the user backs out.
func (c *Console) SelectAgent(agents registry.Registry) string {
	ids := make([]string, 0, len(agents))
	for id := range agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Fprintln(c.out)
	c.agentColor.Fprintln(c.out, "  Saved agents")
	c.agentColor.Fprintln(c.out, "  ------------")
	for i, id := range ids {
		profile := agents[id]
		fmt.Fprintf(c.out, "  %d) %s  %s (%s)\n", i+1, id, profile.Name, profile.URL)
	}
	fmt.Fprintln(c.out)

	c.userColor.Fprint(c.out, "Select an agent (number or id, empty to cancel) > ")
	if !c.scanner.Scan() {
		fmt.Fprintln(c.out)
		return ""
	}
	choice := strings.TrimSpace(c.scanner.Text())
	if choice == "" {
		return ""
	}

	var index int
	if _, err := fmt.Sscanf(choice, "%d", &index); err == nil && index >= 1 && index <= len(ids) {
		return ids[index-1]
	}
	if _, ok := agents[choice]; ok {
		return choice
	}
	c.Warn("No agent matches %q.", choice)
	return ""
}

// indent reindents continuation lines of multi-line text.
func indent(text, prefix string) string {
	return strings.ReplaceAll(text, "\n", "\n"+prefix)
}
