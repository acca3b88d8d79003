// ABOUTME: The Tool interface every adapter implements, and the
// ABOUTME: run-to-completion primitive guarding the envelope contract.

package tool

import "context"

// Tool is the interface implemented by every adapter. Execute returns an
// envelope, never a Go error: adapter failures are data, not control flow.
// The contract assumes at most one in-flight Execute per instance;
// adapters do not lock against concurrent use.
type Tool interface {
	// Name returns the catalog identifier, e.g. "web_search".
	Name() string

	// Description returns the human- and model-readable summary.
	Description() string

	// Schema returns the static parameter declarations.
	Schema() Schema

	// Execute runs one invocation. Blocking work must honor ctx.
	Execute(ctx context.Context, args Args) Result
}

// Complete runs op to completion on the calling goroutine and converts a
// panic into a failed envelope. This is the only layer at which adapter
// faults are allowed to exist; above it, everything is a Result. It never
// spawns a second scheduler: callers block until op returns.
func Complete(ctx context.Context, op func(context.Context) Result) (res Result) {
	defer func() {
		if v := recover(); v != nil {
			res = Failf("tool execution panic: %v", v)
		}
	}()
	return op(ctx)
}
