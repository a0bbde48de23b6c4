// ABOUTME: Package doc for the a2a package
// ABOUTME: Documents the agent transport client and its event model

// Package a2a implements the client side of the agent wire protocol.
//
// # Overview
//
// Agents expose a capability descriptor (the agent card) at
// /.well-known/agent.json and a JSON-RPC endpoint at their base URL.
// Responses to message sends arrive either as a single buffered result
// (message/send) or as a Server-Sent Events stream of incremental updates
// (message/stream). Task state can additionally be fetched by identifier
// (tasks/get).
//
// # Event Model
//
// Every protocol result is decoded exactly once, at this boundary, into a
// closed Event union:
//
//   - KindTask: a task snapshot carrying the server-assigned task id
//   - KindStatus: a task status update (working, input-required, completed, ...)
//   - KindArtifact: an artifact update carrying substantive answer text
//   - KindMessage: a direct message, the whole response for task-less agents
//   - KindError: a protocol-level error object
//   - KindUnknown: anything unrecognized, kept for forward compatibility
//
// Callers switch on Event.Kind and never inspect raw JSON.
//
// # Errors
//
// HTTP failures become TransportError, classified by status code into
// unauthorized, rate-limited, unavailable, or generic. Protocol error
// objects become RPCError.
package a2a
