// ABOUTME: Minimal Server-Sent Events reader for the streaming transport.
// ABOUTME: Delivers each event's data payload in arrival order.

package a2a

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// readSSE scans an event stream and invokes handle once per event with the
// joined data payload. Returns the handler's error, the scan error, or nil
// at end of stream. Comment lines and event/id/retry fields are skipped:
// the payload alone carries the JSON-RPC envelope.
func readSSE(ctx context.Context, body io.Reader, handle func(data string) error) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var dataLines []string
	flush := func() error {
		if len(dataLines) == 0 {
			return nil
		}
		data := strings.Join(dataLines, "\n")
		dataLines = nil
		return handle(data)
	}

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Text()

		// Empty line signals end of event
		if line == "" {
			if err := flush(); err != nil {
				return err
			}
			continue
		}

		if strings.HasPrefix(line, "data:") {
			dataLines = append(dataLines, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	// Stream ended without a trailing blank line
	return flush()
}
