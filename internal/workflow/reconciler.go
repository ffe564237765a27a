package workflow

import (
	"fmt"
	"strings"
	"time"

	"kpiflow/internal/models"
)

// Snapshot is a full in-memory copy of the task table, keyed by task ID.
// Batch operations compute against a snapshot and write the whole table
// back in one operation.
type Snapshot map[string]models.Task

// Clone returns an independent copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for id, t := range s {
		out[id] = t
	}
	return out
}

// ChangeRequest is one proposed status change within a batch. Size and
// Points apply only to approvals; a nil Points falls back to the default
// award for the effective size.
type ChangeRequest struct {
	TaskID    string
	NewStatus models.TaskStatus
	Size      *models.TaskSize
	Points    *int
	Comment   string
}

// Failure is one request that could not be applied, with its reason.
type Failure struct {
	TaskID string `json:"task_id"`
	Reason string `json:"reason"`
}

// Notification is one coalesced message for a single recipient.
type Notification struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

// CalendarEvent is the calendar-add intent emitted on approval.
type CalendarEvent struct {
	Owner       string
	Title       string
	Description string
	StartDate   string
	EndDate     string
}

// Result is the outcome of one reconciliation pass. Changed distinguishes
// "nothing applied" from "changes applied" so callers can skip the
// whole-table write when the snapshot is untouched. Warnings is filled in
// by the side-effect dispatch phase after write-back.
type Result struct {
	Snapshot      Snapshot
	Applied       int
	Skipped       int
	Failures      []Failure
	Notifications []Notification
	Calendar      []CalendarEvent
	Changed       bool
	Warnings      []string
}

// Reconciler applies a batch of change requests against a task snapshot.
// Requests are applied sequentially; a later request targeting the same
// task sees the earlier one's result and wins. Each request is isolated: a
// guard failure names its reason without aborting or rolling back the rest
// of the batch.
type Reconciler struct {
	// ManagerOf resolves an owner's manager for notification routing. It
	// may return "" when no manager is configured; such intents are dropped.
	ManagerOf func(ownerEmail string) string

	// Authorize, when set, is consulted before each request is applied.
	// A non-nil error fails that request only.
	Authorize func(t models.Task) error

	Now func() time.Time
}

func (r *Reconciler) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Reconcile computes a new snapshot from the current one plus a list of
// change requests. Unknown task IDs are skipped and counted, never fatal.
func (r *Reconciler) Reconcile(snap Snapshot, requests []ChangeRequest) Result {
	res := Result{Snapshot: snap.Clone()}
	intents := newIntentBuffer()
	today := r.now()

	for _, req := range requests {
		task, ok := res.Snapshot[req.TaskID]
		if !ok {
			res.Skipped++
			continue
		}

		if r.Authorize != nil {
			if err := r.Authorize(task); err != nil {
				res.Failures = append(res.Failures, Failure{TaskID: req.TaskID, Reason: err.Error()})
				continue
			}
		}

		switch req.NewStatus {
		case models.TaskStatusApproved:
			size := task.Size
			if req.Size != nil {
				size = *req.Size
			}
			points := DefaultPoints(size)
			if req.Points != nil {
				points = *req.Points
			}
			if err := Approve(&task, size, points, req.Comment, today); err != nil {
				res.Failures = append(res.Failures, Failure{TaskID: req.TaskID, Reason: err.Error()})
				continue
			}
			intents.add(task.OwnerEmail,
				fmt.Sprintf("Task %q approved: %d points (size %s).", task.Title, task.Points, task.Size))
			res.Calendar = append(res.Calendar, CalendarEvent{
				Owner:       task.OwnerEmail,
				Title:       task.Title,
				Description: task.Description,
				StartDate:   task.StartDate,
				EndDate:     task.EndDate,
			})

		case models.TaskStatusRejected:
			if err := Reject(&task, req.Comment); err != nil {
				res.Failures = append(res.Failures, Failure{TaskID: req.TaskID, Reason: err.Error()})
				continue
			}
			line := fmt.Sprintf("Task %q was rejected.", task.Title)
			if req.Comment != "" {
				line += " Comment: " + req.Comment
			}
			intents.add(task.OwnerEmail, line)

		case models.TaskStatusSubmitted:
			if err := Submit(&task); err != nil {
				res.Failures = append(res.Failures, Failure{TaskID: req.TaskID, Reason: err.Error()})
				continue
			}
			if r.ManagerOf != nil {
				if mgr := r.ManagerOf(task.OwnerEmail); mgr != "" {
					intents.add(mgr, fmt.Sprintf("Task %q from %s awaits your review.", task.Title, task.OwnerEmail))
				}
			}

		default:
			res.Failures = append(res.Failures, Failure{
				TaskID: req.TaskID,
				Reason: fmt.Sprintf("unsupported status change to %s", req.NewStatus),
			})
			continue
		}

		res.Snapshot[req.TaskID] = task
		res.Applied++
	}

	res.Changed = res.Applied > 0
	res.Notifications = intents.coalesce()
	return res
}

// intentBuffer accumulates notification lines per recipient, preserving
// first-seen recipient order, and coalesces them into one multi-line
// message each.
type intentBuffer struct {
	order []string
	lines map[string][]string
}

func newIntentBuffer() *intentBuffer {
	return &intentBuffer{lines: make(map[string][]string)}
}

func (b *intentBuffer) add(recipient, line string) {
	if _, seen := b.lines[recipient]; !seen {
		b.order = append(b.order, recipient)
	}
	b.lines[recipient] = append(b.lines[recipient], line)
}

func (b *intentBuffer) coalesce() []Notification {
	if len(b.order) == 0 {
		return nil
	}
	out := make([]Notification, 0, len(b.order))
	for _, recipient := range b.order {
		out = append(out, Notification{
			Recipient: recipient,
			Message:   strings.Join(b.lines[recipient], "\n"),
		})
	}
	return out
}
