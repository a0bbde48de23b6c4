// ABOUTME: Entry point for the parley terminal client.
// ABOUTME: Wires registry, auth, transport, push receiver, and the chat loop.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/2389/parley/internal/a2a"
	"github.com/2389/parley/internal/auth"
	"github.com/2389/parley/internal/chat"
	"github.com/2389/parley/internal/config"
	"github.com/2389/parley/internal/notify"
	"github.com/2389/parley/internal/registry"
	"github.com/2389/parley/internal/ui"
)

var version = "dev"

// getConfigDir returns the directory holding config.yaml, agents.json, and
// the env overlay.
// Priority: PARLEY_CONFIG_DIR env var > XDG_CONFIG_HOME/parley > ~/.config/parley
func getConfigDir() string {
	if envDir := os.Getenv("PARLEY_CONFIG_DIR"); envDir != "" {
		return envDir
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "." // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "parley")
}

// cliOptions carries the root command's flag values.
type cliOptions struct {
	agentID    string
	addURL     string
	list       bool
	removeID   string
	reset      bool
	sessionID  string
	history    bool
	usePush    bool
	pushRecv   string
	headers    []string
	extensions string
	timeout    time.Duration
	debug      bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:     "parley [agent-url]",
		Short:   "Chat with remote agents from your terminal",
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			directURL := ""
			if len(args) == 1 {
				directURL = args[0]
			}
			return run(cmd, opts, directURL)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.agentID, "agent", "", "connect to a saved agent by id")
	flags.StringVar(&opts.addURL, "add", "", "register a new agent at the given URL")
	flags.BoolVar(&opts.list, "list", false, "list saved agents and exit")
	flags.StringVar(&opts.removeID, "remove", "", "remove a saved agent by id")
	flags.BoolVar(&opts.reset, "reset", false, "delete all saved agents and credentials")
	flags.StringVar(&opts.sessionID, "session", "", "resume an existing session id")
	flags.BoolVar(&opts.history, "history", false, "show recent task history after each round")
	flags.BoolVar(&opts.usePush, "use-push-notifications", false, "receive task updates via a local push receiver")
	flags.StringVar(&opts.pushRecv, "push-notification-receiver", "", "base URL the agent should deliver push notifications to")
	flags.StringArrayVar(&opts.headers, "header", nil, "extra request header, KEY=VALUE (repeatable)")
	flags.StringVar(&opts.extensions, "enabled-extensions", "", "comma-separated protocol extension URIs to request")
	flags.DurationVar(&opts.timeout, "timeout", 0, "per-round timeout (default 30s)")
	flags.BoolVar(&opts.debug, "debug", false, "log raw protocol traffic")

	return cmd
}

func run(cmd *cobra.Command, opts *cliOptions, directURL string) error {
	ctx := cmd.Context()
	configDir := getConfigDir()

	cfg, err := config.Load(filepath.Join(configDir, "config.yaml"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyConfigDefaults(cmd, opts, cfg)

	logger := setupLogger(cfg.Logging, opts.debug)
	slog.SetDefault(logger)

	store := registry.NewStore(configDir)
	console := ui.NewConsole(os.Stdin, os.Stdout)

	// Maintenance flags short-circuit before any connection happens.
	if opts.reset {
		if err := store.Reset(); err != nil {
			return fmt.Errorf("resetting registry: %w", err)
		}
		console.Success("Removed all saved agents and credentials.")
		return nil
	}

	agents, err := store.Load()
	if err != nil {
		var corrupt *registry.ConfigCorruptError
		if errors.As(err, &corrupt) {
			return fmt.Errorf("%w\nFix or delete %s and try again", corrupt, store.Path())
		}
		return err
	}

	if opts.list {
		console.AgentTable(agents)
		return nil
	}

	if opts.removeID != "" {
		if err := store.Remove(agents, opts.removeID); err != nil {
			return err
		}
		console.Success("Removed agent %s.", opts.removeID)
		return nil
	}

	if opts.addURL != "" {
		_, err := addAgent(ctx, console, store, agents, opts.addURL, opts, true)
		return err
	}

	profile, err := pickProfile(ctx, console, store, agents, opts, directURL)
	if err != nil || profile == nil {
		return err
	}

	// The chat loop runs until quit; a switch request re-enters selection.
	for {
		outcome, err := runChat(ctx, console, cfg, opts, profile, logger)
		if err != nil {
			return err
		}
		if outcome != chat.OutcomeSwitch {
			return nil
		}

		agents, err = store.Load()
		if err != nil {
			return err
		}
		profile = pickSwitchTarget(console, agents)
		if profile == nil {
			return nil
		}
	}
}

// pickSwitchTarget resolves a switch request. With fewer than two saved
// agents there is nowhere to switch to, so the user is told how to add one
// instead of being shown a menu.
func pickSwitchTarget(console *ui.Console, agents registry.Registry) *registry.AgentProfile {
	if len(agents) < 2 {
		console.Warn("No other agents saved. Add one with: parley --add <url>")
		return nil
	}
	id := console.SelectAgent(agents)
	if id == "" {
		return nil
	}
	return agents[id]
}

// applyConfigDefaults fills flag values the user did not set from config.
func applyConfigDefaults(cmd *cobra.Command, opts *cliOptions, cfg *config.Config) {
	if !cmd.Flags().Changed("timeout") {
		opts.timeout = cfg.Agent.Timeout
	}
	if !cmd.Flags().Changed("use-push-notifications") {
		opts.usePush = cfg.Push.Enabled
	}
	if opts.pushRecv == "" {
		opts.pushRecv = cfg.Push.Receiver
	}
}

// pickProfile resolves which agent to talk to: an explicit URL, a saved
// agent, a selection menu, the env overlay, or the first-run notice.
func pickProfile(ctx context.Context, console *ui.Console, store *registry.Store, agents registry.Registry, opts *cliOptions, directURL string) (*registry.AgentProfile, error) {
	if directURL != "" {
		return addAgent(ctx, console, store, agents, directURL, opts, false)
	}

	if opts.agentID != "" {
		profile, ok := agents[opts.agentID]
		if !ok {
			return nil, fmt.Errorf("agent %q: %w", opts.agentID, registry.ErrNotFound)
		}
		return profile, nil
	}

	if len(agents) == 1 {
		for _, profile := range agents {
			return profile, nil
		}
	}
	if len(agents) > 1 {
		id := console.SelectAgent(agents)
		if id == "" {
			return nil, nil
		}
		return agents[id], nil
	}

	// Env overlay fallback for scripted setups.
	env, err := store.LoadEnv()
	if err != nil {
		return nil, err
	}
	if env.AgentURL != "" {
		return profileFromEnv(env), nil
	}

	// First run: nothing saved, nothing flagged. Ask for a URL directly.
	console.Banner()
	console.Info("No saved agents yet.")
	agentURL := console.Ask("Agent URL (empty to exit)")
	if agentURL == "" {
		return nil, nil
	}
	return addAgent(ctx, console, store, agents, agentURL, opts, false)
}

// profileFromEnv builds an unsaved profile from the env overlay.
func profileFromEnv(env registry.Env) *registry.AgentProfile {
	profile := &registry.AgentProfile{
		URL:      env.AgentURL,
		Name:     "Agent",
		AuthType: registry.AuthNone,
	}
	switch {
	case env.BearerToken != "":
		profile.AuthType = registry.AuthBearer
		profile.BearerToken = env.BearerToken
	case env.APIKey != "":
		profile.AuthType = registry.AuthAPIKey
		profile.APIKeyHeader = auth.DefaultAPIKeyHeader
		profile.APIKey = env.APIKey
	}
	return profile
}

// addAgent negotiates credentials for url and offers to save the profile.
// With saveAlways the save happens unconditionally and nothing connects.
func addAgent(ctx context.Context, console *ui.Console, store *registry.Store, agents registry.Registry, agentURL string, opts *cliOptions, saveAlways bool) (*registry.AgentProfile, error) {
	client := a2a.NewClient(agentURL, a2a.WithHeaders(parseHeaders(opts.headers)))
	negotiator := auth.NewNegotiator(auth.NewTerminalPrompter(), os.Stdout)

	profile, err := negotiator.Negotiate(ctx, client, agentURL)
	if err != nil {
		if errors.Is(err, auth.ErrMissingCredential) {
			return nil, fmt.Errorf("%s requires credentials: %w", agentURL, err)
		}
		return nil, err
	}

	save := saveAlways
	if !save {
		save = console.Confirm(fmt.Sprintf("Save %s for next time?", profile.Name))
	}
	if save {
		id, err := store.Add(agents, profile)
		if err != nil {
			return nil, fmt.Errorf("saving agent: %w", err)
		}
		console.Success("Saved %s as %s.", profile.Name, id)
	}

	if saveAlways {
		return nil, nil
	}
	return profile, nil
}

// runChat connects to one agent and drives the conversation loop.
func runChat(ctx context.Context, console *ui.Console, cfg *config.Config, opts *cliOptions, profile *registry.AgentProfile, logger *slog.Logger) (chat.Outcome, error) {
	headers := auth.Headers(profile, parseHeaders(opts.headers))
	if opts.extensions != "" {
		headers.Set(a2a.ExtensionsHeader, opts.extensions)
	}

	client := a2a.NewClient(profile.URL, a2a.WithHeaders(headers), a2a.WithLogger(logger))

	card, err := client.ResolveCard(ctx)
	if err != nil {
		console.Error(err)
		var transport *a2a.TransportError
		if errors.As(err, &transport) && transport.Kind == a2a.TransportUnauthorized {
			return chat.OutcomeQuit, fmt.Errorf("connecting to %s: %w", profile.URL, err)
		}
		console.Warn("Continuing without agent card; streaming disabled.")
	}

	console.Banner()
	console.AgentPanel(profile.URL, card)

	driverOpts := chat.Options{
		AgentName:   profile.Name,
		Streaming:   card != nil && card.Capabilities.Streaming,
		Timeout:     opts.timeout,
		ShowHistory: opts.history,
		Log:         logger,
	}
	if card != nil && card.Name != "" {
		driverOpts.AgentName = card.Name
	}

	if opts.usePush {
		pushCfg, shutdown, err := startPushReceiver(console, opts.pushRecv, card, logger)
		if err != nil {
			return chat.OutcomeQuit, err
		}
		if shutdown != nil {
			defer shutdown()
		}
		driverOpts.Push = pushCfg
	}

	sessionID := opts.sessionID
	if sessionID == "" {
		sessionID = ulid.Make().String()
	}
	logger.Debug("session starting", "session_id", sessionID, "agent", profile.URL)

	driver := chat.NewDriver(client, console, console, chat.Session{ID: sessionID}, driverOpts)
	return driver.Run(ctx)
}

// startPushReceiver binds the local notification listener and returns the
// push config to attach to outgoing messages.
func startPushReceiver(console *ui.Console, receiver string, card *a2a.AgentCard, logger *slog.Logger) (*a2a.PushNotificationConfig, func(), error) {
	if card != nil && !card.Capabilities.PushNotifications {
		console.Warn("Agent does not support push notifications; continuing without them.")
		return nil, nil, nil
	}

	parsed, err := url.Parse(receiver)
	if err != nil || parsed.Host == "" {
		return nil, nil, fmt.Errorf("invalid push notification receiver %q", receiver)
	}

	listener := notify.NewListener(parsed.Host, func(update notify.Update) {
		console.Info("")
		console.Warn("Task %s is now %s.", update.TaskID, update.State)
		if update.Message != "" {
			console.Info("  %s", update.Message)
		}
	}, logger)
	if err := listener.Start(); err != nil {
		return nil, nil, err
	}

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		listener.Shutdown(shutdownCtx)
	}

	notifyURL := (&url.URL{Scheme: "http", Host: listener.Addr(), Path: "/notify"}).String()
	return &a2a.PushNotificationConfig{URL: notifyURL}, shutdown, nil
}

// parseHeaders turns repeated KEY=VALUE (or KEY: VALUE) flags into headers.
func parseHeaders(entries []string) map[string][]string {
	if len(entries) == 0 {
		return nil
	}
	headers := map[string][]string{}
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			key, value, ok = strings.Cut(entry, ":")
		}
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key != "" {
			headers[key] = append(headers[key], value)
		}
	}
	return headers
}
