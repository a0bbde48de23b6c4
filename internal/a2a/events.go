// ABOUTME: Closed event union decoded once at the transport boundary.
// ABOUTME: Dispatches on the protocol's "kind" discriminator field.

package a2a

import "encoding/json"

// Kind discriminates the recognized protocol event variants.
type Kind int

const (
	KindUnknown Kind = iota
	KindTask
	KindStatus
	KindArtifact
	KindMessage
	KindError
)

// String returns the kind name for logs and traces.
func (k Kind) String() string {
	switch k {
	case KindTask:
		return "task"
	case KindStatus:
		return "status-update"
	case KindArtifact:
		return "artifact-update"
	case KindMessage:
		return "message"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one decoded protocol event. Exactly the field matching Kind is
// populated; Raw always holds the original payload for debug traces.
type Event struct {
	Kind     Kind
	Task     *Task
	Status   *TaskStatusUpdate
	Artifact *TaskArtifactUpdate
	Message  *Message
	Err      *RPCError
	Raw      json.RawMessage
}

// TaskID returns the task identifier the event carries, if any.
func (e Event) TaskID() string {
	switch e.Kind {
	case KindTask:
		return e.Task.ID
	case KindStatus:
		return e.Status.TaskID
	case KindArtifact:
		return e.Artifact.TaskID
	case KindMessage:
		return e.Message.TaskID
	}
	return ""
}

// ContextID returns the session context identifier the event carries, if any.
func (e Event) ContextID() string {
	switch e.Kind {
	case KindTask:
		return e.Task.ContextID
	case KindStatus:
		return e.Status.ContextID
	case KindArtifact:
		return e.Artifact.ContextID
	case KindMessage:
		return e.Message.ContextID
	}
	return ""
}

// errorEvent wraps a protocol error object as an Event.
func errorEvent(rpcErr *RPCError, raw json.RawMessage) Event {
	return Event{Kind: KindError, Err: rpcErr, Raw: raw}
}

// decodeEvent interprets one JSON-RPC result payload. Unrecognized kinds
// become KindUnknown rather than an error so newer servers keep working.
func decodeEvent(raw json.RawMessage) (Event, error) {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Event{}, err
	}

	event := Event{Raw: raw}
	switch probe.Kind {
	case "task":
		var task Task
		if err := json.Unmarshal(raw, &task); err != nil {
			return Event{}, err
		}
		event.Kind = KindTask
		event.Task = &task
	case "status-update":
		var status TaskStatusUpdate
		if err := json.Unmarshal(raw, &status); err != nil {
			return Event{}, err
		}
		event.Kind = KindStatus
		event.Status = &status
	case "artifact-update":
		var artifact TaskArtifactUpdate
		if err := json.Unmarshal(raw, &artifact); err != nil {
			return Event{}, err
		}
		event.Kind = KindArtifact
		event.Artifact = &artifact
	case "message":
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			return Event{}, err
		}
		event.Kind = KindMessage
		event.Message = &msg
	default:
		event.Kind = KindUnknown
	}
	return event, nil
}
