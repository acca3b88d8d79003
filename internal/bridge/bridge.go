// ABOUTME: Synthesizes the synchronous host calling convention for adapters:
// ABOUTME: JSON-decoded arguments in, rendered text out, blocking until done.

// Package bridge adapts tool adapters to host frameworks that expect a
// synchronous call with an explicit parameter list. The adapter's static
// schema is that parameter list; the bridge consumes it to validate and
// normalize arguments, and nothing is reflected at call time.
package bridge

import (
	"context"
	"fmt"

	"github.com/2389/toolbelt/internal/tool"
)

// Callable wraps one adapter instance in the host calling convention.
// Calls run to completion on the calling goroutine; the bridge provides no
// concurrency coordination of its own, so at most one call may be in
// flight per wrapped instance.
type Callable struct {
	t tool.Tool
}

// New wraps t in a Callable.
func New(t tool.Tool) *Callable {
	return &Callable{t: t}
}

// Name returns the wrapped adapter's catalog identifier.
func (c *Callable) Name() string { return c.t.Name() }

// Description returns the wrapped adapter's summary.
func (c *Callable) Description() string { return c.t.Description() }

// Schema returns the explicit parameter list hosts introspect.
func (c *Callable) Schema() tool.Schema { return c.t.Schema() }

// Call runs one invocation and blocks until it completes. On success the
// envelope's output is returned with ok=true. Failures render as
// "Error: {message}". A panic escaping the adapter is recovered and
// rendered as "Error executing tool: {v}"; it never propagates to the
// host.
func (c *Callable) Call(ctx context.Context, arguments map[string]any) (text string, ok bool) {
	defer func() {
		if v := recover(); v != nil {
			text = fmt.Sprintf("Error executing tool: %v", v)
			ok = false
		}
	}()

	res := c.t.Execute(ctx, Prepare(c.t.Schema(), arguments))
	if !res.Success {
		return "Error: " + res.Error, false
	}
	return res.Output, true
}

// Prepare normalizes JSON-decoded arguments against a schema: declared
// numerics are coerced to their declared type, JSON null means absent, and
// declared defaults fill absent optionals. Unknown keys pass through
// untouched so adapters can reject them with their own messages.
func Prepare(s tool.Schema, arguments map[string]any) tool.Args {
	args := make(tool.Args, len(arguments))
	for k, v := range arguments {
		if v == nil {
			continue
		}
		if p, found := s.Lookup(k); found {
			v = coerce(p.Type, v)
		}
		args[k] = v
	}
	return s.ApplyDefaults(args)
}

// coerce converts a JSON-decoded value to the declared parameter type.
// encoding/json yields float64 for every number; adapters declaring an
// integer read an int.
func coerce(pt tool.ParamType, v any) any {
	switch pt {
	case tool.TypeInt:
		switch n := v.(type) {
		case float64:
			return int(n)
		case float32:
			return int(n)
		case int64:
			return int(n)
		}
	case tool.TypeFloat:
		switch n := v.(type) {
		case int:
			return float64(n)
		case int64:
			return float64(n)
		case float32:
			return float64(n)
		}
	}
	return v
}
