// ABOUTME: Package doc for the chat package
// ABOUTME: Documents the conversation driver state machine

// Package chat drives the interactive conversation loop with one agent.
//
// # Overview
//
// The driver alternates between collecting one user utterance and running
// one round of exchange through an injected Transport, interpreting the
// round's events into Renderer calls. It is an explicit state loop:
//
//	AwaitingInput -> RoundInFlight -> AwaitingInput | AwaitingFollowUp | Done
//	AwaitingInput -> Done | SwitchRequested | ClearRequested
//
// AwaitingFollowUp means the server asked for more input before completing
// the task; the driver returns to input collection with the task and
// session identifiers preserved rather than retrying on its own.
//
// # Collaborators
//
// Transport, Prompter, and Renderer are defined here, at the point of use,
// so the loop is testable with scripted collaborators and no terminal.
// All failures inside one round are converted to rendered output; nothing
// in this package terminates the process.
package chat
