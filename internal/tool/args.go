// ABOUTME: Args is the decoded argument map handed to adapters, with coercion
// ABOUTME: helpers tolerant of JSON numeric widening and stringly inputs.

package tool

import (
	"fmt"
	"strconv"
)

// Args carries the named arguments for one invocation. Values originate
// from JSON decoding (MCP calls, CLI --args) or direct Go callers, so
// numeric values may arrive as float64 and lists as []any.
type Args map[string]any

// Has reports whether key is present with a non-nil value.
func (a Args) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// String returns the string value for key, or "" when absent or not a
// string-like value.
func (a Args) String(key string) string {
	switch v := a[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return ""
	}
}

// StringOr returns the string value for key, or def when absent or empty.
func (a Args) StringOr(key, def string) string {
	if s := a.String(key); s != "" {
		return s
	}
	return def
}

// Int returns the integer value for key, or def when absent or not
// coercible. JSON decoding yields float64 for all numbers.
func (a Args) Int(key string, def int) int {
	switch v := a[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Float returns the float value for key, or def when absent or not
// coercible.
func (a Args) Float(key string, def float64) float64 {
	switch v := a[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// Bool returns the boolean value for key, or def when absent. String
// values go through strconv.ParseBool so "true"/"1" work from flag-style
// callers.
func (a Args) Bool(key string, def bool) bool {
	switch v := a[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Ints returns the integer slice for key. JSON arrays decode as []any of
// float64; absent or malformed values yield nil.
func (a Args) Ints(key string) []int {
	switch v := a[key].(type) {
	case []int:
		return v
	case []any:
		out := make([]int, 0, len(v))
		for _, e := range v {
			switch n := e.(type) {
			case float64:
				out = append(out, int(n))
			case int:
				out = append(out, n)
			default:
				return nil
			}
		}
		return out
	}
	return nil
}

// Strings returns the string slice for key, tolerating []any elements.
func (a Args) Strings(key string) []string {
	switch v := a[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil
			}
			out = append(out, s)
		}
		return out
	}
	return nil
}
