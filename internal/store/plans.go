// ABOUTME: SQLite persistence for plans, plan tasks, and task progress notes.
// ABOUTME: Plan and task IDs are sequential (plan_N, task_N) via the counters table.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Plan status constants
const (
	PlanStatusActive   = "active"
	PlanStatusArchived = "archived"
)

// CreatePlan persists a plan and its initial tasks in one transaction.
// The plan and any task with an empty ID get sequential IDs assigned.
func (s *SQLiteStore) CreatePlan(ctx context.Context, plan *Plan) error {
	if plan.ID == "" {
		n, err := s.nextSequence(ctx, "plan")
		if err != nil {
			return err
		}
		plan.ID = fmt.Sprintf("plan_%d", n)
	}
	now := time.Now()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now
	if plan.Status == "" {
		plan.Status = PlanStatusActive
	}

	for _, task := range plan.Tasks {
		if err := s.prepareTask(ctx, plan.ID, task); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO plans (id, title, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, plan.ID, plan.Title, plan.Status,
		plan.CreatedAt.Format(time.RFC3339), plan.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting plan: %w", err)
	}

	for i, task := range plan.Tasks {
		if err := insertTask(ctx, tx, task, i); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// prepareTask fills in ID, plan linkage, and defaults before insert.
func (s *SQLiteStore) prepareTask(ctx context.Context, planID string, task *PlanTask) error {
	if task.ID == "" {
		n, err := s.nextSequence(ctx, "task")
		if err != nil {
			return err
		}
		task.ID = fmt.Sprintf("task_%d", n)
	}
	task.PlanID = planID
	if task.Status == "" {
		task.Status = TaskStatusPending
	}
	if task.Priority == "" {
		task.Priority = "medium"
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTask(ctx context.Context, db execer, task *PlanTask, position int) error {
	var depsJSON *string
	if len(task.Dependencies) > 0 {
		b, err := json.Marshal(task.Dependencies)
		if err != nil {
			return fmt.Errorf("marshaling dependencies: %w", err)
		}
		str := string(b)
		depsJSON = &str
	}

	var estimated *string
	if task.EstimatedTime != "" {
		estimated = &task.EstimatedTime
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO plan_tasks (id, plan_id, title, description, status, priority, estimated_time, dependencies, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, task.ID, task.PlanID, task.Title, task.Description, task.Status, task.Priority,
		estimated, depsJSON, position, task.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting task %s: %w", task.ID, err)
	}
	return nil
}

// GetPlan returns a plan with its tasks loaded in creation order.
func (s *SQLiteStore) GetPlan(ctx context.Context, id string) (*Plan, error) {
	var plan Plan
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, status, created_at, updated_at FROM plans WHERE id = ?
	`, id).Scan(&plan.ID, &plan.Title, &plan.Status, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	plan.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	plan.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	plan.Tasks, err = s.loadTasks(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListPlans returns the most recently created plans, tasks loaded.
func (s *SQLiteStore) ListPlans(ctx context.Context, limit int) ([]*Plan, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, status, created_at, updated_at FROM plans
		ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var plans []*Plan
	for rows.Next() {
		var plan Plan
		var createdAt, updatedAt string
		if err := rows.Scan(&plan.ID, &plan.Title, &plan.Status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		plan.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		plan.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		plans = append(plans, &plan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, plan := range plans {
		plan.Tasks, err = s.loadTasks(ctx, plan.ID)
		if err != nil {
			return nil, err
		}
	}
	return plans, nil
}

func (s *SQLiteStore) loadTasks(ctx context.Context, planID string) ([]*PlanTask, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, plan_id, title, description, status, priority, estimated_time, dependencies, created_at, completed_at
		FROM plan_tasks WHERE plan_id = ? ORDER BY position
	`, planID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tasks []*PlanTask
	for rows.Next() {
		var t PlanTask
		var estimated, depsJSON, completedAt sql.NullString
		var createdAt string
		if err := rows.Scan(&t.ID, &t.PlanID, &t.Title, &t.Description, &t.Status, &t.Priority,
			&estimated, &depsJSON, &createdAt, &completedAt); err != nil {
			return nil, err
		}
		t.EstimatedTime = estimated.String
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		if depsJSON.Valid {
			_ = json.Unmarshal([]byte(depsJSON.String), &t.Dependencies) // Best effort: invalid JSON leaves dependencies empty
		}
		if completedAt.Valid {
			done, err := time.Parse(time.RFC3339, completedAt.String)
			if err == nil {
				t.CompletedAt = &done
			}
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

// AddTask appends a task to an existing plan.
func (s *SQLiteStore) AddTask(ctx context.Context, task *PlanTask) error {
	if task.PlanID == "" {
		return fmt.Errorf("task has no plan ID")
	}

	var position int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM plan_tasks WHERE plan_id = ?
	`, task.PlanID).Scan(&position)
	if err != nil {
		return err
	}

	// Verify the plan exists so a typo'd plan ID fails loudly instead of
	// creating an orphan row.
	var one int
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM plans WHERE id = ?`, task.PlanID).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := s.prepareTask(ctx, task.PlanID, task); err != nil {
		return err
	}
	if err := insertTask(ctx, s.db, task, position); err != nil {
		return err
	}
	return s.touchPlan(ctx, task.PlanID)
}

// SetTaskStatus updates a task's status. Moving to "completed" stamps
// completed_at; moving away clears it.
func (s *SQLiteStore) SetTaskStatus(ctx context.Context, planID, taskID, status string) error {
	var completedAt *string
	if status == TaskStatusCompleted {
		now := time.Now().Format(time.RFC3339)
		completedAt = &now
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE plan_tasks SET status = ?, completed_at = ? WHERE id = ? AND plan_id = ?
	`, status, completedAt, taskID, planID)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return s.touchPlan(ctx, planID)
}

// AppendTaskUpdate records a timestamped progress note on a task.
func (s *SQLiteStore) AppendTaskUpdate(ctx context.Context, planID, taskID, content string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM plan_tasks WHERE id = ? AND plan_id = ?
	`, taskID, planID).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO task_updates (plan_id, task_id, content, created_at)
		VALUES (?, ?, ?, ?)
	`, planID, taskID, content, time.Now().Format(time.RFC3339))
	if err != nil {
		return err
	}
	return s.touchPlan(ctx, planID)
}

// ListTaskUpdates returns a task's progress notes, oldest first.
func (s *SQLiteStore) ListTaskUpdates(ctx context.Context, taskID string, limit int) ([]*TaskUpdate, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, plan_id, task_id, content, created_at FROM task_updates
		WHERE task_id = ? ORDER BY id LIMIT ?
	`, taskID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var updates []*TaskUpdate
	for rows.Next() {
		var u TaskUpdate
		var createdAt string
		if err := rows.Scan(&u.ID, &u.PlanID, &u.TaskID, &u.Content, &createdAt); err != nil {
			return nil, err
		}
		u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		updates = append(updates, &u)
	}
	return updates, rows.Err()
}

func (s *SQLiteStore) touchPlan(ctx context.Context, planID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE plans SET updated_at = ? WHERE id = ?
	`, time.Now().Format(time.RFC3339), planID)
	return err
}
