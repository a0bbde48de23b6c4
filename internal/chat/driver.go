// ABOUTME: Conversation driver state machine over a narrow transport contract.
// ABOUTME: One blocking round at a time; events rendered in arrival order.

package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/2389/parley/internal/a2a"
)

// State is the driver's position in the conversation loop.
type State int

const (
	AwaitingInput State = iota
	RoundInFlight
	AwaitingFollowUp
	Done
	SwitchRequested
	ClearRequested
)

// Outcome reports why the driver loop ended.
type Outcome int

const (
	// OutcomeQuit means the user ended the session or the round resolved it.
	OutcomeQuit Outcome = iota
	// OutcomeSwitch means the user asked to change agents.
	OutcomeSwitch
)

// historyLength is how many messages a per-round history fetch asks for.
const historyLength = 10

// Transport is the slice of the protocol client the driver needs: submit a
// message (buffered or incremental) and fetch a task's current status.
type Transport interface {
	SendMessage(ctx context.Context, params a2a.SendParams) (a2a.Event, error)
	StreamMessage(ctx context.Context, params a2a.SendParams) (<-chan a2a.Event, error)
	GetTask(ctx context.Context, taskID string, historyLength int) (*a2a.Task, error)
}

// Prompter collects one user utterance. io.EOF ends the session.
type Prompter interface {
	ReadLine() (string, error)
}

// Renderer turns driver events into terminal output.
type Renderer interface {
	// AgentHeader prints the "agent responding" header. The driver calls
	// it at most once per round, before the first renderable text.
	AgentHeader(name string)
	// Progress renders in-progress agent text (working status updates).
	Progress(text string)
	// Answer renders substantive agent text (artifacts, messages,
	// input-required prompts) at full visual weight.
	Answer(text string)
	// Error renders a round failure. The session continues afterwards
	// unless the driver decides otherwise.
	Error(err error)
	// Clear redraws the screen and session banner.
	Clear()
	// History renders fetched task history.
	History(agentName string, messages []a2a.Message)
}

// Session carries the client-side conversation identifiers. The session id
// is fixed for the life of one driver loop; the task id updates every round.
// A server-assigned context identifier travels with the task, not the
// session: it is adopted for follow-up sends and never replaces the id.
type Session struct {
	ID     string
	TaskID string
}

// Options configures one driver loop.
type Options struct {
	AgentName   string
	Streaming   bool
	Timeout     time.Duration
	Push        *a2a.PushNotificationConfig
	ShowHistory bool
	Log         *slog.Logger
}

// Driver runs the conversation loop for one session.
type Driver struct {
	transport Transport
	prompt    Prompter
	render    Renderer
	session   Session
	opts      Options
	log       *slog.Logger

	// taskCtx is the server-assigned context id for the current task.
	taskCtx string
}

// NewDriver wires a driver. Timeout defaults to 30s when unset.
func NewDriver(transport Transport, prompt Prompter, render Renderer, session Session, opts Options) *Driver {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.AgentName == "" {
		opts.AgentName = "Agent"
	}
	return &Driver{
		transport: transport,
		prompt:    prompt,
		render:    render,
		session:   session,
		opts:      opts,
		log:       opts.Log,
	}
}

// Session returns the current conversation identifiers.
func (d *Driver) Session() Session { return d.session }

// inputKind classifies one user utterance.
type inputKind int

const (
	inputSay inputKind = iota
	inputQuit
	inputSwitch
	inputClear
)

// classifyInput maps exit/switch/clear keywords; anything else is a message.
func classifyInput(input string) inputKind {
	switch strings.ToLower(input) {
	case "", "quit", "exit", "q":
		return inputQuit
	case "switch", "agents":
		return inputSwitch
	case "clear":
		return inputClear
	default:
		return inputSay
	}
}

// Run drives the loop until the user exits, asks to switch agents, or a
// round resolves the session. Cancelling ctx ends the loop cleanly.
func (d *Driver) Run(ctx context.Context) (Outcome, error) {
	state := AwaitingInput

	for {
		if ctx.Err() != nil {
			return OutcomeQuit, nil
		}

		switch state {
		case AwaitingInput, AwaitingFollowUp:
			input, err := d.prompt.ReadLine()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return OutcomeQuit, nil
				}
				return OutcomeQuit, err
			}
			input = strings.TrimSpace(input)

			switch classifyInput(input) {
			case inputQuit:
				state = Done
			case inputSwitch:
				state = SwitchRequested
			case inputClear:
				state = ClearRequested
			default:
				state = RoundInFlight
				state = d.round(ctx, input)
				if d.opts.ShowHistory && state != Done && d.session.TaskID != "" {
					d.showHistory(ctx)
				}
			}

		case ClearRequested:
			// Session and task identifiers survive a clear.
			d.render.Clear()
			state = AwaitingInput

		case SwitchRequested:
			return OutcomeSwitch, nil

		case Done:
			return OutcomeQuit, nil
		}
	}
}

// roundOutput tracks per-round rendering state: the agent header prints at
// most once, triggered by the first event carrying renderable text. taskID
// holds only an id seen during this round, and failed marks a round that
// already rendered an error.
type roundOutput struct {
	render   Renderer
	name     string
	headed   bool
	rendered bool
	taskID   string
	failed   bool
}

func (r *roundOutput) header() {
	if !r.headed {
		r.render.AgentHeader(r.name)
		r.headed = true
	}
}

func (r *roundOutput) progress(text string) {
	if text == "" {
		return
	}
	r.header()
	r.render.Progress(text)
	r.rendered = true
}

func (r *roundOutput) answer(text string) {
	if text == "" {
		return
	}
	r.header()
	r.render.Answer(text)
	r.rendered = true
}

// round submits one utterance and interprets the response events. Returns
// the next driver state. Every failure is rendered here, at the round
// boundary; identifiers stay intact on timeout or interrupt.
func (d *Driver) round(ctx context.Context, input string) State {
	roundCtx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	contextID := d.session.ID
	if d.session.TaskID != "" && d.taskCtx != "" {
		contextID = d.taskCtx
	}
	params := a2a.SendParams{
		Message:          a2a.NewUserMessage(input, contextID, d.session.TaskID),
		Configuration:    &a2a.SendConfiguration{AcceptedOutputModes: []string{"text"}},
		PushNotification: d.opts.Push,
	}

	out := &roundOutput{render: d.render, name: d.opts.AgentName}

	var next State
	if d.opts.Streaming {
		next = d.streamRound(roundCtx, params, out)
	} else {
		next = d.bufferedRound(roundCtx, params, out)
	}

	if next == Done {
		return next
	}

	if err := roundCtx.Err(); err != nil {
		return d.roundAborted(ctx, err)
	}

	// Fallback for transports that report results out of band: nothing was
	// rendered but this round produced a task, so fetch its status once.
	// A round that already rendered an error fetches nothing; a stale task
	// id from an earlier round would replay an old answer.
	if !out.rendered && !out.failed && out.taskID != "" {
		next = d.fetchTaskResult(ctx, out, next)
	}

	return next
}

// streamRound consumes the incremental event sequence for one round.
func (d *Driver) streamRound(ctx context.Context, params a2a.SendParams, out *roundOutput) State {
	events, err := d.transport.StreamMessage(ctx, params)
	if err != nil {
		// On deadline or interrupt the round boundary reports instead.
		if ctx.Err() != nil {
			return AwaitingInput
		}
		out.failed = true
		d.render.Error(err)
		return AwaitingInput
	}

	next := AwaitingInput
	for event := range events {
		d.trace(event)
		d.track(event, out)

		switch event.Kind {
		case a2a.KindStatus:
			status := event.Status.Status
			switch status.State {
			case a2a.TaskWorking:
				out.progress(status.Message.Text())
			case a2a.TaskInputRequired:
				out.answer(status.Message.Text())
				next = AwaitingFollowUp
			case a2a.TaskCompleted:
				// Terminal; whatever was rendered stands.
			}

		case a2a.KindArtifact:
			out.answer(event.Artifact.Artifact.Text())

		case a2a.KindMessage:
			out.answer(event.Message.Text())

		case a2a.KindError:
			out.failed = true
			d.render.Error(event.Err)
			return Done

		case a2a.KindTask, a2a.KindUnknown:
			// Task snapshots only update identifiers; unknown kinds are
			// skipped for forward compatibility.
		}
	}

	return next
}

// bufferedRound performs one blocking round for non-streaming transports.
func (d *Driver) bufferedRound(ctx context.Context, params a2a.SendParams, out *roundOutput) State {
	event, err := d.transport.SendMessage(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return AwaitingInput
		}
		out.failed = true
		d.render.Error(err)
		return AwaitingInput
	}

	d.trace(event)
	d.track(event, out)

	switch event.Kind {
	case a2a.KindTask:
		status := event.Task.Status
		switch status.State {
		case a2a.TaskInputRequired:
			out.answer(status.Message.Text())
			return AwaitingFollowUp
		default:
			out.answer(status.Message.Text())
		}

	case a2a.KindMessage:
		out.answer(event.Message.Text())

	case a2a.KindError:
		out.failed = true
		d.render.Error(event.Err)
		return Done
	}

	return AwaitingInput
}

// fetchTaskResult performs the one explicit status fetch of the fallback
// path and renders its message if present.
func (d *Driver) fetchTaskResult(ctx context.Context, out *roundOutput, next State) State {
	fetchCtx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	task, err := d.transport.GetTask(fetchCtx, out.taskID, 0)
	if err != nil {
		d.log.Debug("task fetch failed", "task_id", out.taskID, "error", err)
		return next
	}

	out.answer(task.Status.Message.Text())
	if task.Status.State == a2a.TaskInputRequired {
		return AwaitingFollowUp
	}
	return next
}

// roundAborted resolves a round cut short by timeout or interrupt. The
// session keeps its identifiers either way.
func (d *Driver) roundAborted(parent context.Context, err error) State {
	if parent.Err() != nil {
		// User interrupt: the outer loop will notice and exit cleanly.
		return AwaitingInput
	}
	if errors.Is(err, context.DeadlineExceeded) {
		d.render.Error(&TimeoutError{Timeout: d.opts.Timeout})
	}
	return AwaitingInput
}

// track updates task identifiers from an event. The session id is never
// touched: a server-assigned context id is adopted alongside the task for
// follow-up sends only.
func (d *Driver) track(event a2a.Event, out *roundOutput) {
	if id := event.TaskID(); id != "" {
		d.session.TaskID = id
		out.taskID = id
	}
	if id := event.ContextID(); id != "" {
		d.taskCtx = id
	}
}

// trace logs raw events in debug mode.
func (d *Driver) trace(event a2a.Event) {
	d.log.Debug("round event", "kind", event.Kind.String(), "raw", string(event.Raw))
}

// showHistory fetches and renders recent task history.
func (d *Driver) showHistory(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	task, err := d.transport.GetTask(fetchCtx, d.session.TaskID, historyLength)
	if err != nil {
		d.log.Debug("history fetch failed", "task_id", d.session.TaskID, "error", err)
		return
	}
	if len(task.History) > 0 {
		d.render.History(d.opts.AgentName, task.History)
	}
}
