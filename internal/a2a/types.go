// ABOUTME: Wire types for the agent protocol: card, messages, tasks, artifacts.
// ABOUTME: JSON field names follow the protocol's camelCase convention.

package a2a

import "strings"

// AgentCard is the capability descriptor served at /.well-known/agent.json.
type AgentCard struct {
	Name            string                    `json:"name"`
	Description     string                    `json:"description,omitempty"`
	Version         string                    `json:"version,omitempty"`
	URL             string                    `json:"url,omitempty"`
	Capabilities    Capabilities              `json:"capabilities"`
	SecuritySchemes map[string]SecurityScheme `json:"securitySchemes,omitempty"`
	Skills          []Skill                   `json:"skills,omitempty"`
}

// Capabilities advertises optional protocol features of an agent.
type Capabilities struct {
	Streaming         bool `json:"streaming,omitempty"`
	PushNotifications bool `json:"pushNotifications,omitempty"`
}

// SecurityScheme describes one authentication scheme declared by the card.
type SecurityScheme struct {
	Type        string `json:"type"`
	Name        string `json:"name,omitempty"`
	In          string `json:"in,omitempty"`
	Scheme      string `json:"scheme,omitempty"`
	Description string `json:"description,omitempty"`
}

// Skill is one advertised agent capability.
type Skill struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Part is one piece of message or artifact content. Only text parts are
// rendered; other kinds pass through untouched.
type Part struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
}

// TextPart builds a text content part.
func TextPart(text string) Part {
	return Part{Kind: "text", Text: text}
}

// Message is a single utterance from either side of the conversation.
type Message struct {
	Kind      string `json:"kind,omitempty"`
	Role      string `json:"role"`
	Parts     []Part `json:"parts"`
	MessageID string `json:"messageId"`
	TaskID    string `json:"taskId,omitempty"`
	ContextID string `json:"contextId,omitempty"`
}

// Text joins the message's text parts, in order, one per line.
func (m *Message) Text() string {
	if m == nil {
		return ""
	}
	return joinTextParts(m.Parts)
}

// TaskState is the lifecycle state carried by a task status.
type TaskState string

const (
	TaskSubmitted     TaskState = "submitted"
	TaskWorking       TaskState = "working"
	TaskInputRequired TaskState = "input-required"
	TaskCompleted     TaskState = "completed"
	TaskFailed        TaskState = "failed"
	TaskCanceled      TaskState = "canceled"
)

// TaskStatus pairs a state with an optional attached message.
type TaskStatus struct {
	State   TaskState `json:"state"`
	Message *Message  `json:"message,omitempty"`
}

// Task is the server-side unit of work correlating rounds of one exchange.
type Task struct {
	ID        string     `json:"id"`
	ContextID string     `json:"contextId,omitempty"`
	Status    TaskStatus `json:"status"`
	Artifacts []Artifact `json:"artifacts,omitempty"`
	History   []Message  `json:"history,omitempty"`
}

// Artifact is a substantive output of a task.
type Artifact struct {
	ArtifactID string `json:"artifactId,omitempty"`
	Name       string `json:"name,omitempty"`
	Parts      []Part `json:"parts"`
}

// Text joins the artifact's text parts, in order, one per line.
func (a *Artifact) Text() string {
	if a == nil {
		return ""
	}
	return joinTextParts(a.Parts)
}

// TaskStatusUpdate is a streamed status transition for a task.
type TaskStatusUpdate struct {
	TaskID    string     `json:"taskId"`
	ContextID string     `json:"contextId,omitempty"`
	Status    TaskStatus `json:"status"`
	Final     bool       `json:"final,omitempty"`
}

// TaskArtifactUpdate is a streamed artifact delivery for a task.
type TaskArtifactUpdate struct {
	TaskID    string   `json:"taskId"`
	ContextID string   `json:"contextId,omitempty"`
	Artifact  Artifact `json:"artifact"`
}

func joinTextParts(parts []Part) string {
	var texts []string
	for _, p := range parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}
