// ABOUTME: Store-backed planning tool: heuristic task breakdown plus plan CRUD.
// ABOUTME: Plans and tasks carry sequential IDs assigned by the store.

package builtins

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/2389/toolbelt/internal/store"
	"github.com/2389/toolbelt/internal/tool"
)

// PlanningTool creates and tracks task plans.
type PlanningTool struct {
	store store.PlanStore
}

var _ tool.Tool = (*PlanningTool)(nil)

func NewPlanningTool(s store.PlanStore) *PlanningTool {
	return &PlanningTool{store: s}
}

func (t *PlanningTool) Name() string { return "planning" }

func (t *PlanningTool) Description() string {
	return "A tool for creating, managing, and tracking task plans and workflows. Can break down complex tasks into subtasks."
}

func (t *PlanningTool) Schema() tool.Schema {
	return tool.Schema{
		{Name: "action", Type: tool.TypeString, Required: true, Description: "Action to perform: create_plan, add_task, update_task, complete_task, get_plan, analyze_task"},
		{Name: "task_description", Type: tool.TypeString, Description: "Description of the main task or goal (required for create_plan and analyze_task)"},
		{Name: "plan_id", Type: tool.TypeString, Description: "ID of the plan to work with (required for most actions except create_plan)"},
		{Name: "task_id", Type: tool.TypeString, Description: "ID of specific task within plan (required for update_task, complete_task)"},
		{Name: "subtask_title", Type: tool.TypeString, Description: "Title for new subtask (required for add_task)"},
		{Name: "subtask_description", Type: tool.TypeString, Description: "Description for new subtask (required for add_task)"},
		{Name: "priority", Type: tool.TypeString, Default: "medium", Description: "Priority level: high, medium, low"},
		{Name: "estimated_time", Type: tool.TypeString, Description: "Estimated time to complete (e.g., '2 hours', '30 minutes')"},
		{Name: "dependencies", Type: tool.TypeString, Description: "Comma-separated list of task IDs this task depends on"},
		{Name: "update_content", Type: tool.TypeString, Description: "Content to update task with (for update_task action)"},
	}
}

func (t *PlanningTool) Execute(ctx context.Context, args tool.Args) tool.Result {
	return tool.Complete(ctx, func(ctx context.Context) tool.Result {
		action := args.String("action")
		switch action {
		case "create_plan":
			if args.String("task_description") == "" {
				return tool.FailWith(tool.KindMissingParameter, "task_description is required for create_plan action")
			}
			return t.createPlan(ctx, args.String("task_description"))
		case "add_task":
			if args.String("plan_id") == "" || args.String("subtask_title") == "" || args.String("subtask_description") == "" {
				return tool.FailWith(tool.KindMissingParameter, "plan_id, subtask_title, and subtask_description are required for add_task action")
			}
			return t.addTask(ctx, args)
		case "update_task":
			if args.String("plan_id") == "" || args.String("task_id") == "" || args.String("update_content") == "" {
				return tool.FailWith(tool.KindMissingParameter, "plan_id, task_id, and update_content are required for update_task action")
			}
			return t.updateTask(ctx, args.String("plan_id"), args.String("task_id"), args.String("update_content"))
		case "complete_task":
			if args.String("plan_id") == "" || args.String("task_id") == "" {
				return tool.FailWith(tool.KindMissingParameter, "plan_id and task_id are required for complete_task action")
			}
			return t.completeTask(ctx, args.String("plan_id"), args.String("task_id"))
		case "get_plan":
			if args.String("plan_id") == "" {
				return tool.FailWith(tool.KindMissingParameter, "plan_id is required for get_plan action")
			}
			return t.getPlan(ctx, args.String("plan_id"))
		case "analyze_task":
			if args.String("task_description") == "" {
				return tool.FailWith(tool.KindMissingParameter, "task_description is required for analyze_task action")
			}
			return t.analyzeTask(args.String("task_description"))
		default:
			return tool.FailWith(tool.KindInvalidAction, "Unknown action: %s", action)
		}
	})
}

// subtaskSeed is one entry of a heuristic breakdown before IDs exist.
type subtaskSeed struct {
	title       string
	description string
}

// breakdownTask maps a description onto a fixed subtask list by keyword.
func breakdownTask(description string) []subtaskSeed {
	lower := strings.ToLower(description)

	switch {
	case strings.Contains(lower, "website") || strings.Contains(lower, "web app"):
		return []subtaskSeed{
			{"Plan and Design", "Create wireframes and plan the structure"},
			{"Setup Project", "Initialize project structure and dependencies"},
			{"Implement Frontend", "Create user interface components"},
			{"Implement Backend", "Create server-side logic and APIs"},
			{"Testing", "Test functionality and fix bugs"},
			{"Deployment", "Deploy to production environment"},
		}
	case strings.Contains(lower, "api"):
		return []subtaskSeed{
			{"Design API", "Define endpoints and data structures"},
			{"Setup Framework", "Initialize API framework and dependencies"},
			{"Implement Endpoints", "Create API endpoints and logic"},
			{"Add Authentication", "Implement security and authentication"},
			{"Testing", "Test API endpoints and functionality"},
			{"Documentation", "Create API documentation"},
		}
	case strings.Contains(lower, "data analysis") || strings.Contains(lower, "analysis"):
		return []subtaskSeed{
			{"Data Collection", "Gather and prepare data sources"},
			{"Data Cleaning", "Clean and preprocess the data"},
			{"Exploratory Analysis", "Perform initial data exploration"},
			{"Analysis", "Conduct detailed analysis"},
			{"Visualization", "Create charts and visualizations"},
			{"Report", "Compile findings into a report"},
		}
	default:
		return []subtaskSeed{
			{"Research and Planning", "Research requirements and plan approach"},
			{"Setup and Preparation", "Prepare tools and environment"},
			{"Implementation", "Execute the main work"},
			{"Testing and Validation", "Test and validate the results"},
			{"Documentation", "Document the process and results"},
		}
	}
}

func (t *PlanningTool) createPlan(ctx context.Context, description string) tool.Result {
	plan := &store.Plan{Title: description}
	for _, seed := range breakdownTask(description) {
		plan.Tasks = append(plan.Tasks, &store.PlanTask{
			Title:       seed.title,
			Description: seed.description,
		})
	}

	if err := t.store.CreatePlan(ctx, plan); err != nil {
		return tool.Failf("Failed to create plan: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Created plan '%s' for: %s\n\n", plan.ID, description)
	b.WriteString("Subtasks:\n")
	for i, task := range plan.Tasks {
		fmt.Fprintf(&b, "%d. %s (ID: %s)\n", i+1, task.Title, task.ID)
		fmt.Fprintf(&b, "   Description: %s\n", task.Description)
		fmt.Fprintf(&b, "   Status: %s\n\n", task.Status)
	}
	return tool.Ok(b.String())
}

func (t *PlanningTool) addTask(ctx context.Context, args tool.Args) tool.Result {
	planID := args.String("plan_id")

	var deps []string
	for _, dep := range strings.Split(args.String("dependencies"), ",") {
		if d := strings.TrimSpace(dep); d != "" {
			deps = append(deps, d)
		}
	}

	task := &store.PlanTask{
		PlanID:        planID,
		Title:         args.String("subtask_title"),
		Description:   args.String("subtask_description"),
		Priority:      args.StringOr("priority", "medium"),
		EstimatedTime: args.String("estimated_time"),
		Dependencies:  deps,
	}

	if err := t.store.AddTask(ctx, task); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return tool.FailWith(tool.KindNotFound, "Plan %s not found", planID)
		}
		return tool.Failf("Failed to add task: %v", err)
	}
	return tool.Okf("Added task '%s' (ID: %s) to plan %s", task.Title, task.ID, planID)
}

func (t *PlanningTool) updateTask(ctx context.Context, planID, taskID, content string) tool.Result {
	plan, err := t.store.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return tool.FailWith(tool.KindNotFound, "Plan %s not found", planID)
		}
		return tool.Failf("Failed to update task: %v", err)
	}
	if plan.Task(taskID) == nil {
		return tool.FailWith(tool.KindNotFound, "Task %s not found in plan %s", taskID, planID)
	}

	if err := t.store.AppendTaskUpdate(ctx, planID, taskID, content); err != nil {
		return tool.Failf("Failed to update task: %v", err)
	}
	return tool.Okf("Updated task %s in plan %s", taskID, planID)
}

func (t *PlanningTool) completeTask(ctx context.Context, planID, taskID string) tool.Result {
	plan, err := t.store.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return tool.FailWith(tool.KindNotFound, "Plan %s not found", planID)
		}
		return tool.Failf("Failed to complete task: %v", err)
	}
	task := plan.Task(taskID)
	if task == nil {
		return tool.FailWith(tool.KindNotFound, "Task %s not found in plan %s", taskID, planID)
	}

	if err := t.store.SetTaskStatus(ctx, planID, taskID, store.TaskStatusCompleted); err != nil {
		return tool.Failf("Failed to complete task: %v", err)
	}

	plan, err = t.store.GetPlan(ctx, planID)
	if err != nil {
		return tool.Failf("Failed to complete task: %v", err)
	}
	completed, total := plan.Progress()
	pct := percent(completed, total)

	return tool.Okf("Completed task '%s' (ID: %s)\nPlan progress: %.1f%% complete", task.Title, taskID, pct)
}

func (t *PlanningTool) getPlan(ctx context.Context, planID string) tool.Result {
	plan, err := t.store.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return tool.FailWith(tool.KindNotFound, "Plan %s not found", planID)
		}
		return tool.Failf("Failed to get plan: %v", err)
	}

	completed, total := plan.Progress()

	var b strings.Builder
	fmt.Fprintf(&b, "Plan: %s (ID: %s)\n", plan.Title, plan.ID)
	fmt.Fprintf(&b, "Status: %s\n", plan.Status)
	fmt.Fprintf(&b, "Created: %s\n", plan.CreatedAt.Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&b, "Progress: %.1f%% complete (%d/%d tasks)\n\n", percent(completed, total), completed, total)

	b.WriteString("Tasks:\n")
	for _, task := range plan.Tasks {
		icon := "◐"
		switch task.Status {
		case store.TaskStatusCompleted:
			icon = "✓"
		case store.TaskStatusPending:
			icon = "○"
		}
		fmt.Fprintf(&b, "%s %s (ID: %s) - %s\n", icon, task.Title, task.ID, task.Status)
		fmt.Fprintf(&b, "   %s\n", task.Description)
		if task.Priority != "medium" {
			fmt.Fprintf(&b, "   Priority: %s\n", task.Priority)
		}
		if task.EstimatedTime != "" {
			fmt.Fprintf(&b, "   Estimated time: %s\n", task.EstimatedTime)
		}
		if len(task.Dependencies) > 0 {
			fmt.Fprintf(&b, "   Dependencies: %s\n", strings.Join(task.Dependencies, ", "))
		}
		b.WriteString("\n")
	}
	return tool.Ok(b.String())
}

func (t *PlanningTool) analyzeTask(description string) tool.Result {
	seeds := breakdownTask(description)

	var b strings.Builder
	fmt.Fprintf(&b, "Analysis for task: %s\n\n", description)
	b.WriteString("Suggested breakdown:\n")
	for i, seed := range seeds {
		fmt.Fprintf(&b, "%d. %s\n", i+1, seed.title)
		fmt.Fprintf(&b, "   Description: %s\n", seed.description)
		b.WriteString("   Priority: medium\n\n")
	}
	fmt.Fprintf(&b, "Total estimated subtasks: %d\n", len(seeds))
	b.WriteString("Use 'create_plan' action to create an actual plan from this analysis.")
	return tool.Ok(b.String())
}

func percent(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}
