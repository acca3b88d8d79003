// ABOUTME: Store interfaces and data types for toolbelt persistence
// ABOUTME: Defines Plan, PlanTask, Invocation, APIToken and the Store interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrInvalidToken is returned when an API token fails verification
var ErrInvalidToken = errors.New("invalid token")

// Task status constants
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

// Plan represents a task plan created by the planning tool
type Plan struct {
	ID        string // sequential, "plan_N"
	Title     string
	Status    string // "active" or "archived"
	CreatedAt time.Time
	UpdatedAt time.Time
	Tasks     []*PlanTask
}

// Progress returns the number of completed tasks and the total task count
func (p *Plan) Progress() (completed, total int) {
	for _, t := range p.Tasks {
		if t.Status == TaskStatusCompleted {
			completed++
		}
	}
	return completed, len(p.Tasks)
}

// Task returns the task with the given ID, or nil if the plan has no such task
func (p *Plan) Task(id string) *PlanTask {
	for _, t := range p.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// PlanTask represents a single task within a plan
type PlanTask struct {
	ID            string // sequential, "task_N"
	PlanID        string
	Title         string
	Description   string
	Status        string // "pending", "in_progress", "completed"
	Priority      string // "high", "medium", "low"
	EstimatedTime string
	Dependencies  []string // task IDs this task depends on
	CreatedAt     time.Time
	CompletedAt   *time.Time
}

// TaskUpdate is a timestamped progress note appended to a task
type TaskUpdate struct {
	ID        int64
	PlanID    string
	TaskID    string
	Content   string
	CreatedAt time.Time
}

// Invocation records a single tool execution for audit and status reporting
type Invocation struct {
	ID        string
	Tool      string
	Action    string // empty for tools without an action parameter
	Success   bool
	Error     string // truncated error message, empty on success
	ElapsedMS int64
	CreatedAt time.Time
}

// APIToken is a long-lived access token record. The secret is bcrypt-hashed
// at rest; the plaintext token is only returned once at creation.
type APIToken struct {
	ID         string
	Name       string
	CreatedAt  time.Time
	LastUsedAt *time.Time
}

// PlanStore defines persistence for plans and their tasks
type PlanStore interface {
	// CreatePlan persists a plan and its initial tasks, assigning
	// sequential IDs to the plan and any task without one
	CreatePlan(ctx context.Context, plan *Plan) error

	// GetPlan returns a plan with its tasks loaded in creation order
	GetPlan(ctx context.Context, id string) (*Plan, error)

	// ListPlans returns the most recently created plans, tasks loaded
	ListPlans(ctx context.Context, limit int) ([]*Plan, error)

	// AddTask appends a task to an existing plan, assigning an ID if empty
	AddTask(ctx context.Context, task *PlanTask) error

	// SetTaskStatus updates a task's status, stamping completed_at when
	// the new status is "completed"
	SetTaskStatus(ctx context.Context, planID, taskID, status string) error

	// AppendTaskUpdate records a timestamped progress note on a task
	AppendTaskUpdate(ctx context.Context, planID, taskID, content string) error

	// ListTaskUpdates returns a task's progress notes, oldest first
	ListTaskUpdates(ctx context.Context, taskID string, limit int) ([]*TaskUpdate, error)
}

// RunStore records tool invocations for the status page
type RunStore interface {
	RecordInvocation(ctx context.Context, inv *Invocation) error
	ListInvocations(ctx context.Context, limit int) ([]*Invocation, error)
}

// TokenStore persists API tokens with secrets hashed at rest
type TokenStore interface {
	// CreateAPIToken mints a new token and returns its plaintext form.
	// The plaintext is not recoverable afterwards.
	CreateAPIToken(ctx context.Context, name string) (plaintext string, record *APIToken, err error)

	// VerifyAPIToken checks a plaintext token and returns its record.
	// Returns ErrInvalidToken for unknown or mismatched tokens.
	VerifyAPIToken(ctx context.Context, plaintext string) (*APIToken, error)

	ListAPITokens(ctx context.Context) ([]*APIToken, error)
	DeleteAPIToken(ctx context.Context, id string) error
}

// Store is the full persistence surface
type Store interface {
	PlanStore
	RunStore
	TokenStore

	// Close releases any resources held by the store
	Close() error
}
