// ABOUTME: Session lifecycle shared by the adapters that hold a live handle
// ABOUTME: (bash, browser, macos, vnc): Unopened -> Open -> Closed, one way.

package tool

// SessionState tracks a session-holding adapter's lifecycle. The machine
// only moves forward: once Closed, no action can reopen the instance and
// callers must construct a new one.
type SessionState int

const (
	SessionUnopened SessionState = iota
	SessionOpen
	SessionClosed
)

func (s SessionState) String() string {
	switch s {
	case SessionUnopened:
		return "unopened"
	case SessionOpen:
		return "open"
	case SessionClosed:
		return "closed"
	default:
		return "unknown"
	}
}
