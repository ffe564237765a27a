package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"kpiflow/internal/models"
	"kpiflow/internal/notify"
	"kpiflow/internal/repository"
	"kpiflow/internal/workflow"
)

var ErrNotAManager = errors.New("employee has no direct reports")

// ReviewService handles the manager-side operations: the pending queue,
// batch approve/reject and the team overview.
type ReviewService struct {
	store     repository.TaskStore
	directory repository.EmployeeDirectory
	sender    notify.NotificationSender
	calendar  notify.CalendarIntegrator
	logger    *zap.Logger
	now       func() time.Time
}

// NewReviewService creates a new ReviewService.
func NewReviewService(store repository.TaskStore, directory repository.EmployeeDirectory, sender notify.NotificationSender, calendar notify.CalendarIntegrator, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		store:     store,
		directory: directory,
		sender:    sender,
		calendar:  calendar,
		logger:    logger,
		now:       time.Now,
	}
}

// PendingTask is one entry in the manager's review queue, with the default
// point award pre-filled for the form.
type PendingTask struct {
	models.Task
	SuggestedPoints int `json:"suggested_points"`
}

// Pending returns the Submitted tasks of the manager's direct reports.
func (s *ReviewService) Pending(ctx context.Context, managerEmail string) ([]PendingTask, error) {
	adj, err := s.directory.Adjacency(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load directory: %w", err)
	}
	if !adj.IsManager(managerEmail) {
		return nil, ErrNotAManager
	}

	snap, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	team := make(map[string]bool)
	for _, email := range adj.DirectReports(managerEmail) {
		team[email] = true
	}

	pending := make([]PendingTask, 0)
	for _, task := range snap {
		if task.Status != models.TaskStatusSubmitted || !team[task.OwnerEmail] {
			continue
		}
		pending = append(pending, PendingTask{
			Task:            task,
			SuggestedPoints: workflow.DefaultPoints(task.Size),
		})
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })
	return pending, nil
}

// BatchOutcome reports what a batch review call did: how many requests
// applied, how many referenced unknown tasks, itemized per-request
// failures, and non-fatal side-effect warnings.
type BatchOutcome struct {
	Applied  int                `json:"applied"`
	Skipped  int                `json:"skipped"`
	Failures []workflow.Failure `json:"failures"`
	Warnings []string           `json:"warnings"`
}

// ApplyBatch runs a batch of change requests through the reconciler:
// snapshot read, in-memory reconciliation, whole-table write-back, then
// side-effect dispatch. The write is skipped when nothing changed, and side
// effects run only after a successful write.
func (s *ReviewService) ApplyBatch(ctx context.Context, managerEmail string, requests []workflow.ChangeRequest) (*BatchOutcome, error) {
	adj, err := s.directory.Adjacency(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load directory: %w", err)
	}
	if !adj.IsManager(managerEmail) {
		return nil, ErrNotAManager
	}

	team := make(map[string]bool)
	for _, email := range adj.DirectReports(managerEmail) {
		team[email] = true
	}

	snap, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	rec := workflow.Reconciler{
		ManagerOf: adj.ManagerOf,
		Authorize: func(t models.Task) error {
			if !team[t.OwnerEmail] {
				return fmt.Errorf("task owner %s is not a direct report of %s", t.OwnerEmail, managerEmail)
			}
			return nil
		},
		Now: s.now,
	}
	res := rec.Reconcile(snap, requests)

	if res.Changed {
		if err := s.store.WriteAll(ctx, res.Snapshot); err != nil {
			return nil, err
		}
	}

	s.dispatchSideEffects(&res)

	return &BatchOutcome{
		Applied:  res.Applied,
		Skipped:  res.Skipped,
		Failures: res.Failures,
		Warnings: res.Warnings,
	}, nil
}

// ApprovalRequest is one approve decision in the manager's review grid.
type ApprovalRequest struct {
	TaskID  string          `json:"task_id"`
	Size    models.TaskSize `json:"size"`
	Points  int             `json:"points"`
	Comment string          `json:"comment"`
}

// ApproveBatch applies a list of approvals.
func (s *ReviewService) ApproveBatch(ctx context.Context, managerEmail string, approvals []ApprovalRequest) (*BatchOutcome, error) {
	requests := make([]workflow.ChangeRequest, 0, len(approvals))
	for _, a := range approvals {
		a := a
		req := workflow.ChangeRequest{
			TaskID:    a.TaskID,
			NewStatus: models.TaskStatusApproved,
			Points:    &a.Points,
			Comment:   a.Comment,
		}
		if a.Size != "" {
			req.Size = &a.Size
		}
		requests = append(requests, req)
	}
	return s.ApplyBatch(ctx, managerEmail, requests)
}

// RejectionRequest is one reject decision in the manager's review grid.
// The comment may be empty.
type RejectionRequest struct {
	TaskID  string `json:"task_id"`
	Comment string `json:"comment"`
}

// RejectBatch applies a list of rejections.
func (s *ReviewService) RejectBatch(ctx context.Context, managerEmail string, rejections []RejectionRequest) (*BatchOutcome, error) {
	requests := make([]workflow.ChangeRequest, 0, len(rejections))
	for _, r := range rejections {
		requests = append(requests, workflow.ChangeRequest{
			TaskID:    r.TaskID,
			NewStatus: models.TaskStatusRejected,
			Comment:   r.Comment,
		})
	}
	return s.ApplyBatch(ctx, managerEmail, requests)
}

// dispatchSideEffects delivers the collected notification and calendar
// intents after the authoritative write. Failures become warnings on the
// result, never rollbacks.
func (s *ReviewService) dispatchSideEffects(res *workflow.Result) {
	for _, n := range res.Notifications {
		if err := s.sender.Send(n.Recipient, "KPI review update", n.Message); err != nil {
			s.logger.Warn("review notification failed", zap.String("recipient", n.Recipient), zap.Error(err))
			res.Warnings = append(res.Warnings, fmt.Sprintf("notification to %s failed: %v", n.Recipient, err))
		}
	}
	for _, ev := range res.Calendar {
		if err := s.calendar.AddEvent(ev.Owner, ev.Title, ev.Description, ev.StartDate, ev.EndDate); err != nil {
			s.logger.Warn("calendar write failed", zap.String("owner", ev.Owner), zap.Error(err))
			res.Warnings = append(res.Warnings, fmt.Sprintf("calendar event for %s failed: %v", ev.Owner, err))
		}
	}
}

// TeamTask is one row of the manager's team overview, annotated with the
// expected-progress benchmark and the delay against it.
type TeamTask struct {
	models.Task
	ExpectedPct int `json:"expected_pct"`
	DelayPct    int `json:"delay_pct"`
}

// TeamOverview is the manager's month view: annotated task list plus a
// point ranking over approved tasks.
type TeamOverview struct {
	Tasks   []TeamTask     `json:"tasks"`
	Ranking map[string]int `json:"ranking"`
}

// Team builds the month overview for a manager's direct reports.
func (s *ReviewService) Team(ctx context.Context, managerEmail string, year, month int) (*TeamOverview, error) {
	adj, err := s.directory.Adjacency(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load directory: %w", err)
	}
	if !adj.IsManager(managerEmail) {
		return nil, ErrNotAManager
	}

	team := make(map[string]bool)
	for _, email := range adj.DirectReports(managerEmail) {
		team[email] = true
	}

	snap, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	today := s.now()
	overview := &TeamOverview{
		Tasks:   make([]TeamTask, 0),
		Ranking: make(map[string]int),
	}
	for _, task := range snap {
		if !team[task.OwnerEmail] || !matchesMonth(task.StartDate, year, month) {
			continue
		}
		expected := workflow.ExpectedProgress(task.StartDate, task.EndDate, today)
		overview.Tasks = append(overview.Tasks, TeamTask{
			Task:        task,
			ExpectedPct: expected,
			DelayPct:    task.ProgressPct - expected,
		})
		if task.Status == models.TaskStatusApproved {
			overview.Ranking[task.OwnerEmail] += task.Points
		}
	}
	sort.Slice(overview.Tasks, func(i, j int) bool {
		if overview.Tasks[i].OwnerEmail != overview.Tasks[j].OwnerEmail {
			return overview.Tasks[i].OwnerEmail < overview.Tasks[j].OwnerEmail
		}
		return overview.Tasks[i].ID < overview.Tasks[j].ID
	})
	return overview, nil
}
