package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kpiflow/internal/models"
	"kpiflow/internal/notify"
	"kpiflow/internal/repository"
	"kpiflow/internal/workflow"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrNotTaskOwner = errors.New("only the task owner can perform this action")
)

// TaskService handles the owner-side task operations: create, submit,
// resubmit, progress reports and deletion.
type TaskService struct {
	store     repository.TaskStore
	directory repository.EmployeeDirectory
	sender    notify.NotificationSender
	logger    *zap.Logger
	now       func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(store repository.TaskStore, directory repository.EmployeeDirectory, sender notify.NotificationSender, logger *zap.Logger) *TaskService {
	return &TaskService{
		store:     store,
		directory: directory,
		sender:    sender,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	Owner       string
	OwnerName   string
	Title       string
	Description string
	StartDate   string
	EndDate     string
	Size        models.TaskSize
	SubmitNow   bool
}

// CreateTask creates a task in Draft, or directly in Submitted when the
// owner sends it straight to review, in which case the manager is notified.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	task, err := workflow.CreateTask(workflow.CreateTaskInput{
		Owner:       input.Owner,
		Title:       input.Title,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Size:        input.Size,
		SubmitNow:   input.SubmitNow,
	}, uuid.NewString(), s.now())
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, &task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if input.SubmitNow {
		s.notifyManager(ctx, input.Owner,
			fmt.Sprintf("%s submitted a new task: %s", input.OwnerName, task.Title),
			fmt.Sprintf("%s submitted the task %q for your review.", input.OwnerName, task.Title))
	}

	return &task, nil
}

// Submit moves the owner's Draft task into review and notifies the manager.
func (s *TaskService) Submit(ctx context.Context, taskID, owner string) (*models.Task, error) {
	task, err := s.ownedTask(ctx, taskID, owner)
	if err != nil {
		return nil, err
	}

	if err := workflow.Submit(task); err != nil {
		return nil, err
	}

	if err := s.store.WriteFields(ctx, task.ID, map[string]interface{}{
		"status": task.Status,
	}); err != nil {
		return nil, fmt.Errorf("failed to submit task: %w", err)
	}

	s.notifyManager(ctx, owner,
		fmt.Sprintf("Task submitted: %s", task.Title),
		fmt.Sprintf("The task %q awaits your review.", task.Title))
	return task, nil
}

// ResubmitInput carries the owner's optional edits for a rejected task.
type ResubmitInput struct {
	Title       *string
	Description *string
	StartDate   *string
	EndDate     *string
	Size        *models.TaskSize
}

// Resubmit applies edits to the owner's Rejected task, returns it to
// review and notifies the manager. The prior manager comment is cleared.
func (s *TaskService) Resubmit(ctx context.Context, taskID, owner string, input ResubmitInput) (*models.Task, error) {
	task, err := s.ownedTask(ctx, taskID, owner)
	if err != nil {
		return nil, err
	}

	if err := workflow.Resubmit(task, workflow.ResubmitEdit{
		Title:       input.Title,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Size:        input.Size,
	}); err != nil {
		return nil, err
	}

	if err := s.store.WriteFields(ctx, task.ID, map[string]interface{}{
		"title":           task.Title,
		"description":     task.Description,
		"start_date":      task.StartDate,
		"end_date":        task.EndDate,
		"size":            task.Size,
		"manager_comment": task.ManagerComment,
		"status":          task.Status,
	}); err != nil {
		return nil, fmt.Errorf("failed to resubmit task: %w", err)
	}

	s.notifyManager(ctx, owner,
		fmt.Sprintf("Task resubmitted: %s", task.Title),
		fmt.Sprintf("The task %q was revised and awaits your review.", task.Title))
	return task, nil
}

// ReportProgress records the owner's progress on an Approved task through
// the single-row fast path.
func (s *TaskService) ReportProgress(ctx context.Context, taskID, owner string, pct int, desc string) (*models.Task, error) {
	task, err := s.ownedTask(ctx, taskID, owner)
	if err != nil {
		return nil, err
	}

	if err := workflow.ReportProgress(task, pct, desc); err != nil {
		return nil, err
	}

	if err := s.store.WriteFields(ctx, task.ID, map[string]interface{}{
		"progress_pct":  task.ProgressPct,
		"progress_desc": task.ProgressDesc,
	}); err != nil {
		return nil, fmt.Errorf("failed to report progress: %w", err)
	}

	return task, nil
}

// DeleteTask removes the owner's Draft or Rejected task.
func (s *TaskService) DeleteTask(ctx context.Context, taskID, owner string) error {
	task, err := s.ownedTask(ctx, taskID, owner)
	if err != nil {
		return err
	}

	if err := workflow.EnsureDeletable(task); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// ListTasks returns the owner's tasks, optionally filtered to the month the
// task starts in. Year 0 disables the filter.
func (s *TaskService) ListTasks(ctx context.Context, owner string, year, month int) ([]models.Task, error) {
	snap, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0)
	for _, task := range snap {
		if task.OwnerEmail != owner {
			continue
		}
		if !matchesMonth(task.StartDate, year, month) {
			continue
		}
		tasks = append(tasks, task)
	}

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedOn != tasks[j].CreatedOn {
			return tasks[i].CreatedOn > tasks[j].CreatedOn
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

// DashboardStats is the owner's month summary.
type DashboardStats struct {
	TotalTasks      int            `json:"total_tasks"`
	ApprovedTasks   int            `json:"approved_tasks"`
	TotalPoints     int            `json:"total_points"`
	ApprovalRatePct int            `json:"approval_rate_pct"`
	AvgProgressPct  int            `json:"avg_progress_pct"`
	StatusCounts    map[string]int `json:"status_counts"`
}

// Dashboard aggregates the owner's KPI numbers for a month: total points,
// approval rate and average progress over approved tasks.
func (s *TaskService) Dashboard(ctx context.Context, owner string, year, month int) (*DashboardStats, error) {
	tasks, err := s.ListTasks(ctx, owner, year, month)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{StatusCounts: make(map[string]int)}
	progressSum := 0
	for _, task := range tasks {
		stats.TotalTasks++
		stats.StatusCounts[string(task.Status)]++
		if task.Status == models.TaskStatusApproved {
			stats.ApprovedTasks++
			stats.TotalPoints += task.Points
			progressSum += task.ProgressPct
		}
	}
	if stats.TotalTasks > 0 {
		stats.ApprovalRatePct = stats.ApprovedTasks * 100 / stats.TotalTasks
	}
	if stats.ApprovedTasks > 0 {
		stats.AvgProgressPct = progressSum / stats.ApprovedTasks
	}
	return stats, nil
}

// ownedTask loads a task and checks ownership.
func (s *TaskService) ownedTask(ctx context.Context, taskID, owner string) (*models.Task, error) {
	task, err := s.store.ReadOne(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task.OwnerEmail != owner {
		return nil, ErrNotTaskOwner
	}
	return task, nil
}

// notifyManager sends a best-effort notification to the owner's manager.
// Missing managers and delivery failures are logged, never surfaced.
func (s *TaskService) notifyManager(ctx context.Context, owner, subject, body string) {
	adj, err := s.directory.Adjacency(ctx)
	if err != nil {
		s.logger.Warn("failed to load directory for notification", zap.Error(err))
		return
	}
	mgr := adj.ManagerOf(owner)
	if mgr == "" {
		s.logger.Info("no manager configured, skipping notification", zap.String("owner", owner))
		return
	}
	if err := s.sender.Send(mgr, subject, body); err != nil {
		s.logger.Warn("manager notification failed", zap.String("manager", mgr), zap.Error(err))
	}
}

// matchesMonth reports whether the date string falls in the given year and
// month. Year 0 matches everything; unparsable dates match nothing when a
// filter is active.
func matchesMonth(date string, year, month int) bool {
	if year == 0 {
		return true
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	if t.Year() != year {
		return false
	}
	return month == 0 || int(t.Month()) == month
}
