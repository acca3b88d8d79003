// ABOUTME: Executor runs catalog tools through the bridge convention
// ABOUTME: Records every invocation in the store and publishes lifecycle events

package server

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/toolbelt/internal/bridge"
	"github.com/2389/toolbelt/internal/events"
	"github.com/2389/toolbelt/internal/registry"
	"github.com/2389/toolbelt/internal/store"
)

// Executor executes tools by name on behalf of MCP sessions and the CLI.
// Each invocation gets a fresh tool instance, a recorded outcome, and a
// started/completed event pair on the broadcaster.
type Executor struct {
	registry    *registry.Registry
	runs        store.RunStore
	broadcaster *events.Broadcaster
	timeout     time.Duration
	logger      *slog.Logger
}

// NewExecutor creates an Executor. The store and broadcaster may be nil
// when recording or event push is not wanted. A zero timeout means
// invocations run without a deadline.
func NewExecutor(reg *registry.Registry, runs store.RunStore, broadcaster *events.Broadcaster, timeout time.Duration, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default().With("component", "executor")
	}
	return &Executor{
		registry:    reg,
		runs:        runs,
		broadcaster: broadcaster,
		timeout:     timeout,
		logger:      logger,
	}
}

// Run executes the named tool with the given arguments and returns the
// bridged text result. ok reports whether the tool succeeded; err is
// reserved for failures before execution starts, such as unknown tools.
func (e *Executor) Run(ctx context.Context, name string, arguments map[string]any) (string, bool, error) {
	tl, err := e.registry.Create(name)
	if err != nil {
		return "", false, err
	}

	id := uuid.New().String()
	e.publish(events.Event{
		ID:    id,
		Tool:  name,
		Phase: events.PhaseStarted,
		At:    time.Now(),
	})

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	text, ok := bridge.New(tl).Call(runCtx, arguments)
	elapsed := time.Since(start)

	var errText string
	if !ok {
		errText = strings.TrimPrefix(text, "Error: ")
	}

	e.record(&store.Invocation{
		ID:        id,
		Tool:      name,
		Action:    actionOf(arguments),
		Success:   ok,
		Error:     errText,
		ElapsedMS: elapsed.Milliseconds(),
	})

	e.publish(events.Event{
		ID:       id,
		Tool:     name,
		Phase:    events.PhaseCompleted,
		Success:  ok,
		Error:    errText,
		Duration: elapsed,
		At:       time.Now(),
	})

	e.logger.Info("tool executed", "tool", name, "success", ok, "elapsed_ms", elapsed.Milliseconds())
	return text, ok, nil
}

// record persists an invocation outcome. Uses a background context so
// records survive callers whose context already expired.
func (e *Executor) record(inv *store.Invocation) {
	if e.runs == nil {
		return
	}
	if err := e.runs.RecordInvocation(context.Background(), inv); err != nil {
		e.logger.Error("failed to record invocation", "tool", inv.Tool, "error", err)
	}
}

func (e *Executor) publish(ev events.Event) {
	if e.broadcaster == nil {
		return
	}
	e.broadcaster.Publish(ev)
}

// actionOf extracts the action argument for the invocation record.
func actionOf(arguments map[string]any) string {
	action, _ := arguments["action"].(string)
	return action
}
