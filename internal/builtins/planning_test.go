// ABOUTME: Tests for the planning tool against a real SQLite store.
// ABOUTME: Exercises breakdown heuristics and the plan lifecycle.

package builtins

import (
	"context"
	"strings"
	"testing"

	"github.com/2389/toolbelt/internal/store"
	"github.com/2389/toolbelt/internal/tool"
)

func newPlanStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPlanningCreatePlanWebsiteBreakdown(t *testing.T) {
	s := newPlanStore(t)
	pt := NewPlanningTool(s)

	res := pt.Execute(context.Background(), tool.Args{
		"action":           "create_plan",
		"task_description": "Build a website for the team",
	})
	if !res.Success {
		t.Fatalf("create_plan failed: %s", res.Error)
	}
	if !strings.Contains(res.Output, "Created plan '") {
		t.Errorf("output missing plan header:\n%s", res.Output)
	}
	for _, title := range []string{"Plan and Design", "Implement Frontend", "Deployment"} {
		if !strings.Contains(res.Output, title) {
			t.Errorf("output missing subtask %q:\n%s", title, res.Output)
		}
	}

	plan := latestPlan(t, s)
	if len(plan.Tasks) != 6 {
		t.Errorf("expected 6 subtasks for website breakdown, got %d", len(plan.Tasks))
	}
}

func TestPlanningAddTask(t *testing.T) {
	s := newPlanStore(t)
	pt := NewPlanningTool(s)

	res := pt.Execute(context.Background(), tool.Args{
		"action":           "create_plan",
		"task_description": "Organize the launch",
	})
	if !res.Success {
		t.Fatalf("create_plan failed: %s", res.Error)
	}
	plan := latestPlan(t, s)

	res = pt.Execute(context.Background(), tool.Args{
		"action":              "add_task",
		"plan_id":             plan.ID,
		"subtask_title":       "Dry run",
		"subtask_description": "Rehearse the launch end to end",
		"priority":            "high",
		"dependencies":        "a, b",
	})
	if !res.Success {
		t.Fatalf("add_task failed: %s", res.Error)
	}
	if !strings.Contains(res.Output, "Added task 'Dry run'") {
		t.Errorf("output = %q", res.Output)
	}

	plan = latestPlan(t, s)
	added := plan.Tasks[len(plan.Tasks)-1]
	if added.Priority != "high" {
		t.Errorf("priority = %q", added.Priority)
	}
	if len(added.Dependencies) != 2 {
		t.Errorf("dependencies = %v", added.Dependencies)
	}
}

func TestPlanningCompleteTaskReportsProgress(t *testing.T) {
	s := newPlanStore(t)
	pt := NewPlanningTool(s)

	res := pt.Execute(context.Background(), tool.Args{
		"action":           "create_plan",
		"task_description": "Organize the launch",
	})
	if !res.Success {
		t.Fatalf("create_plan failed: %s", res.Error)
	}
	plan := latestPlan(t, s)

	res = pt.Execute(context.Background(), tool.Args{
		"action":  "complete_task",
		"plan_id": plan.ID,
		"task_id": plan.Tasks[0].ID,
	})
	if !res.Success {
		t.Fatalf("complete_task failed: %s", res.Error)
	}
	if !strings.Contains(res.Output, "Completed task") || !strings.Contains(res.Output, "Plan progress:") {
		t.Errorf("output = %q", res.Output)
	}

	plan = latestPlan(t, s)
	if plan.Tasks[0].Status != store.TaskStatusCompleted {
		t.Errorf("task status = %q", plan.Tasks[0].Status)
	}
}

func TestPlanningUpdateTask(t *testing.T) {
	s := newPlanStore(t)
	pt := NewPlanningTool(s)

	res := pt.Execute(context.Background(), tool.Args{
		"action":           "create_plan",
		"task_description": "Organize the launch",
	})
	if !res.Success {
		t.Fatalf("create_plan failed: %s", res.Error)
	}
	plan := latestPlan(t, s)

	res = pt.Execute(context.Background(), tool.Args{
		"action":         "update_task",
		"plan_id":        plan.ID,
		"task_id":        plan.Tasks[0].ID,
		"update_content": "blocked on vendor",
	})
	if !res.Success {
		t.Fatalf("update_task failed: %s", res.Error)
	}

	updates, err := s.ListTaskUpdates(context.Background(), plan.Tasks[0].ID, 10)
	if err != nil {
		t.Fatalf("ListTaskUpdates: %v", err)
	}
	if len(updates) != 1 || updates[0].Content != "blocked on vendor" {
		t.Errorf("updates = %+v", updates)
	}
}

func TestPlanningGetPlan(t *testing.T) {
	s := newPlanStore(t)
	pt := NewPlanningTool(s)

	res := pt.Execute(context.Background(), tool.Args{
		"action":           "create_plan",
		"task_description": "Design the billing API",
	})
	if !res.Success {
		t.Fatalf("create_plan failed: %s", res.Error)
	}
	plan := latestPlan(t, s)

	res = pt.Execute(context.Background(), tool.Args{"action": "get_plan", "plan_id": plan.ID})
	if !res.Success {
		t.Fatalf("get_plan failed: %s", res.Error)
	}
	for _, want := range []string{"Plan: Design the billing API", "Progress:", "Tasks:"} {
		if !strings.Contains(res.Output, want) {
			t.Errorf("output missing %q:\n%s", want, res.Output)
		}
	}
}

func TestPlanningNotFound(t *testing.T) {
	s := newPlanStore(t)
	pt := NewPlanningTool(s)

	res := pt.Execute(context.Background(), tool.Args{"action": "get_plan", "plan_id": "plan_999"})
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Kind() != tool.KindNotFound {
		t.Errorf("kind = %v, want KindNotFound", res.Kind())
	}
	if res.Error != "Plan plan_999 not found" {
		t.Errorf("error = %q", res.Error)
	}
}

func TestPlanningValidation(t *testing.T) {
	pt := NewPlanningTool(newPlanStore(t))

	cases := []tool.Args{
		{"action": "create_plan"},
		{"action": "add_task", "plan_id": "p"},
		{"action": "update_task", "plan_id": "p", "task_id": "t"},
		{"action": "complete_task", "plan_id": "p"},
		{"action": "get_plan"},
		{"action": "analyze_task"},
	}
	for _, args := range cases {
		res := pt.Execute(context.Background(), args)
		if res.Kind() != tool.KindMissingParameter {
			t.Errorf("args %v: kind = %v, want KindMissingParameter", args, res.Kind())
		}
	}

	res := pt.Execute(context.Background(), tool.Args{"action": "destroy_plan"})
	if res.Kind() != tool.KindInvalidAction {
		t.Errorf("unknown action: kind = %v", res.Kind())
	}
}

func TestPlanningAnalyzeTask(t *testing.T) {
	pt := NewPlanningTool(newPlanStore(t))

	res := pt.Execute(context.Background(), tool.Args{
		"action":           "analyze_task",
		"task_description": "Design the billing API",
	})
	if !res.Success {
		t.Fatalf("analyze_task failed: %s", res.Error)
	}
	for _, want := range []string{"Design API", "Total estimated subtasks: 6", "Use 'create_plan' action"} {
		if !strings.Contains(res.Output, want) {
			t.Errorf("output missing %q:\n%s", want, res.Output)
		}
	}
}

func latestPlan(t *testing.T, s *store.SQLiteStore) *store.Plan {
	t.Helper()
	plans, err := s.ListPlans(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListPlans: %v", err)
	}
	if len(plans) == 0 {
		t.Fatal("no plans in store")
	}
	plan, err := s.GetPlan(context.Background(), plans[0].ID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	return plan
}
