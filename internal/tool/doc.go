// Package tool defines the invocation contract shared by every adapter:
// the tri-field result envelope, failure classification kinds, the static
// parameter schema consumed by the bridge, argument coercion helpers, and
// the run-to-completion primitive that keeps panics out of caller stacks.
//
// Adapters never return Go errors to callers. Every failure is folded into
// a Result with success=false and a descriptive message; the envelope's
// JSON shape (success/output/error) is the host integration contract and
// must not grow fields.
package tool
