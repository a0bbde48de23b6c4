// ABOUTME: Local HTTP receiver agents deliver push notifications to.
// ABOUTME: Decodes posted task snapshots, dedupes, and hands updates to a callback.

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/2389/parley/internal/a2a"
)

// Defaults for the sighting cache. An agent retrying deliveries for a few
// minutes should not replay updates the user already saw.
const (
	defaultSeenTTL  = 5 * time.Minute
	defaultSeenSize = 1000
)

// Update is one deduplicated task notification.
type Update struct {
	TaskID    string
	ContextID string
	State     a2a.TaskState
	Message   string
}

// Handler receives each first-sighted update. Called from the listener's
// serve goroutine; keep it quick.
type Handler func(Update)

// Listener is the push notification receiver. Zero value is not usable;
// construct with NewListener.
type Listener struct {
	addr   string
	handle Handler
	log    *slog.Logger

	seen *SeenCache
	srv  *http.Server
	ln   net.Listener
}

func NewListener(addr string, handle Handler, log *slog.Logger) *Listener {
	if log == nil {
		log = slog.Default()
	}
	return &Listener{
		addr:   addr,
		handle: handle,
		log:    log,
		seen:   NewSeenCache(defaultSeenTTL, defaultSeenSize),
	}
}

// Start binds the listen address and serves in the background. Returns an
// error immediately if the address cannot be bound.
func (l *Listener) Start() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("bind push receiver %s: %w", l.addr, err)
	}
	l.ln = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/notify", l.handleNotify)
	mux.HandleFunc("/", l.handleNotify)

	l.srv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	l.log.Info("push receiver listening", "addr", ln.Addr().String())
	go func() {
		if err := l.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			l.log.Error("push receiver stopped", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address, useful when the port was chosen by the OS.
func (l *Listener) Addr() string {
	if l.ln == nil {
		return l.addr
	}
	return l.ln.Addr().String()
}

// Shutdown stops the server and the sighting cache.
func (l *Listener) Shutdown(ctx context.Context) error {
	l.seen.Close()
	if l.srv == nil {
		return nil
	}
	return l.srv.Shutdown(ctx)
}

func (l *Listener) handleNotify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var task a2a.Task
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&task); err != nil {
		l.log.Debug("push notification rejected", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if task.ID == "" {
		http.Error(w, "missing task id", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)

	if !l.seen.FirstSighting(task.ID, task.Status.State) {
		l.log.Debug("duplicate push notification", "task_id", task.ID, "state", task.Status.State)
		return
	}

	l.log.Debug("push notification", "task_id", task.ID, "state", task.Status.State)
	if l.handle != nil {
		l.handle(Update{
			TaskID:    task.ID,
			ContextID: task.ContextID,
			State:     task.Status.State,
			Message:   task.Status.Message.Text(),
		})
	}
}
