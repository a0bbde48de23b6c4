// ABOUTME: HTTP client for the agent protocol: card resolution, JSON-RPC calls,
// ABOUTME: and SSE streaming. Attaches caller-supplied headers to every request.

package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const (
	// CardPath is the well-known location of the capability descriptor.
	CardPath = "/.well-known/agent.json"

	// ExtensionsHeader declares protocol extension identifiers to the server.
	ExtensionsHeader = "X-A2A-Extensions"
)

// Client talks to one agent endpoint. Safe for sequential use by a single
// driver loop; it holds no mutable state between calls.
type Client struct {
	base    string
	http    *http.Client
	headers http.Header
	log     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHeaders attaches headers (auth, extensions, extras) to every request.
func WithHeaders(h http.Header) Option {
	return func(c *Client) { c.headers = h }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for debug event traces.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client for the agent at base URL.
func NewClient(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(base, "/"),
		http: http.DefaultClient,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResolveCard fetches the agent's capability descriptor.
func (c *Client) ResolveCard(ctx context.Context) (*AgentCard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+CardPath, nil)
	if err != nil {
		return nil, fmt.Errorf("creating card request: %w", err)
	}
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching agent card: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpError(resp)
	}

	var card AgentCard
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return nil, fmt.Errorf("parsing agent card: %w", err)
	}
	return &card, nil
}

// SendConfiguration narrows what the client accepts back.
type SendConfiguration struct {
	AcceptedOutputModes []string `json:"acceptedOutputModes,omitempty"`
}

// PushAuth declares how the server should authenticate to the push receiver.
type PushAuth struct {
	Schemes []string `json:"schemes"`
}

// PushNotificationConfig asks the server to deliver task updates out of band.
type PushNotificationConfig struct {
	URL            string    `json:"url"`
	Authentication *PushAuth `json:"authentication,omitempty"`
}

// SendParams is the payload for message/send and message/stream.
type SendParams struct {
	Message          Message                 `json:"message"`
	Configuration    *SendConfiguration      `json:"configuration,omitempty"`
	PushNotification *PushNotificationConfig `json:"pushNotification,omitempty"`
}

// NewUserMessage builds an outgoing user message bound to the given session
// context and, when continuing a task, the task identifier.
func NewUserMessage(text, contextID, taskID string) Message {
	return Message{
		Role:      "user",
		Parts:     []Part{TextPart(text)},
		MessageID: uuid.New().String(),
		TaskID:    taskID,
		ContextID: contextID,
	}
}

// SendMessage performs one buffered message/send round and returns the
// decoded result event (a task snapshot or a direct message).
func (c *Client) SendMessage(ctx context.Context, params SendParams) (Event, error) {
	resp, err := c.rpc(ctx, "message/send", params, "application/json")
	if err != nil {
		return Event{}, err
	}
	defer resp.Body.Close()

	var envelope rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return Event{}, fmt.Errorf("parsing send response: %w", err)
	}
	if envelope.Error != nil {
		return errorEvent(envelope.Error, envelope.Result), nil
	}

	event, err := decodeEvent(envelope.Result)
	if err != nil {
		return Event{}, fmt.Errorf("decoding send result: %w", err)
	}
	return event, nil
}

// StreamMessage performs one incremental message/stream round. Events are
// delivered in arrival order on the returned channel, which closes when the
// stream ends. Stream-level failures arrive as a final KindError event.
func (c *Client) StreamMessage(ctx context.Context, params SendParams) (<-chan Event, error) {
	resp, err := c.rpc(ctx, "message/stream", params, "text/event-stream")
	if err != nil {
		return nil, err
	}

	events := make(chan Event)
	go func() {
		defer close(events)
		defer resp.Body.Close()

		err := readSSE(ctx, resp.Body, func(data string) error {
			var envelope rpcResponse
			if err := json.Unmarshal([]byte(data), &envelope); err != nil {
				return fmt.Errorf("parsing stream event: %w", err)
			}

			var event Event
			if envelope.Error != nil {
				event = errorEvent(envelope.Error, envelope.Result)
			} else {
				decoded, err := decodeEvent(envelope.Result)
				if err != nil {
					return fmt.Errorf("decoding stream event: %w", err)
				}
				event = decoded
			}

			c.log.Debug("stream event", "kind", event.Kind.String(), "task_id", event.TaskID())
			select {
			case events <- event:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil && ctx.Err() == nil {
			select {
			case events <- errorEvent(&RPCError{Message: err.Error()}, nil):
			case <-ctx.Done():
			}
		}
	}()

	return events, nil
}

// GetTask fetches the current state of a task. historyLength > 0 asks the
// server to include that many history messages.
func (c *Client) GetTask(ctx context.Context, taskID string, historyLength int) (*Task, error) {
	params := map[string]any{"id": taskID}
	if historyLength > 0 {
		params["historyLength"] = historyLength
	}

	resp, err := c.rpc(ctx, "tasks/get", params, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var envelope rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("parsing task response: %w", err)
	}
	if envelope.Error != nil {
		return nil, envelope.Error
	}

	var task Task
	if err := json.Unmarshal(envelope.Result, &task); err != nil {
		return nil, fmt.Errorf("decoding task: %w", err)
	}
	return &task, nil
}

// rpcRequest is the outgoing JSON-RPC envelope.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// rpcResponse is the incoming JSON-RPC envelope.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// rpc issues one JSON-RPC call. The caller owns the response body on success;
// non-success statuses are drained and classified into TransportError.
func (c *Client) rpc(ctx context.Context, method string, params any, accept string) (*http.Response, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.New().String(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)
	c.applyHeaders(req)
	c.log.Debug("rpc request", "method", method, "url", c.base, "headers", maskHeaders(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, httpError(resp)
	}
	return resp, nil
}

// applyHeaders copies the configured headers onto a request without
// clobbering anything the request already set.
func (c *Client) applyHeaders(req *http.Request) {
	for name, values := range c.headers {
		if req.Header.Get(name) != "" {
			continue
		}
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
}

// maskHeaders renders headers for debug logs with credential values hidden.
// Only content negotiation headers pass through in the clear.
func maskHeaders(h http.Header) string {
	var parts []string
	for name, values := range h {
		switch name {
		case "Content-Type", "Accept":
			parts = append(parts, name+"="+strings.Join(values, ","))
		default:
			parts = append(parts, name+"=***")
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

// httpError reads a bounded amount of the response body and builds a
// classified TransportError.
func httpError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &TransportError{
		Status: resp.StatusCode,
		Kind:   classifyStatus(resp.StatusCode),
		Body:   strings.TrimSpace(string(body)),
	}
}
