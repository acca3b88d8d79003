// Package store provides persistent storage for toolbelt using SQLite.
//
// # Architecture
//
// The store package uses an interface-driven architecture with specialized
// interfaces:
//
//   - PlanStore: Plans, plan tasks, and task progress notes
//   - RunStore: Tool invocation records for the status page
//   - TokenStore: Long-lived API tokens, secrets hashed at rest
//
// SQLiteStore implements all interfaces in a single struct, allowing easy
// composition while maintaining clear interface boundaries. The composite
// Store interface is what the server wires through.
//
// # Data Models
//
//   - Plan: Task plan with sequential "plan_N" IDs and fixed task ordering
//   - PlanTask: Task within a plan ("task_N") with status, priority,
//     optional time estimate, and dependency list
//   - TaskUpdate: Timestamped progress note appended to a task
//   - Invocation: One tool execution (tool, action, outcome, elapsed time)
//   - APIToken: Access token record; the secret half is bcrypt-hashed
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Database file locations:
//
//   - Production: /var/lib/toolbelt/toolbelt.db
//   - Development: ~/.local/share/toolbelt/toolbelt.db
//   - Testing: :memory: (in-memory database)
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: Requested entity does not exist
//   - ErrInvalidToken: API token failed verification
//
// All methods accept context.Context for cancellation support.
//
// # Migrations
//
// The schema is created on open; column migrations for existing databases
// run automatically after that.
package store
