package dto

import (
	"time"

	"kpiflow/internal/models"
	"kpiflow/internal/workflow"
)

// TaskView is a task annotated with the expected-progress benchmark the UI
// shows next to the owner's self-reported progress.
type TaskView struct {
	models.Task
	ExpectedPct int `json:"expected_pct"`
	DelayPct    int `json:"delay_pct"`
}

// NewTaskView annotates one task as of today.
func NewTaskView(t models.Task, today time.Time) TaskView {
	expected := workflow.ExpectedProgress(t.StartDate, t.EndDate, today)
	return TaskView{
		Task:        t,
		ExpectedPct: expected,
		DelayPct:    t.ProgressPct - expected,
	}
}

// NewTaskViews annotates a task list as of today.
func NewTaskViews(tasks []models.Task, today time.Time) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, NewTaskView(t, today))
	}
	return views
}
