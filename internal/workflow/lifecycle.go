package workflow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"kpiflow/internal/constants"
	"kpiflow/internal/models"
)

var (
	ErrTitleRequired      = errors.New("title is required")
	ErrInvalidSize        = errors.New("invalid task size")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEndBeforeStart     = errors.New("end date must not be before start date")
	ErrProgressOutOfRange = errors.New("progress must be between 0 and 100")
	ErrNotDeletable       = errors.New("only draft or rejected tasks can be deleted")
)

// InvalidTransitionError reports an event applied to a task in the wrong
// source status. Only a Submitted task may be approved or rejected.
type InvalidTransitionError struct {
	From  models.TaskStatus
	Event string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a task in status %s", e.Event, e.From)
}

// validateWindow checks that both dates parse and the window is not inverted.
func validateWindow(startDate, endDate string) error {
	start, err := parseDate(startDate)
	if err != nil {
		return fmt.Errorf("%w: start %q", ErrInvalidDate, startDate)
	}
	end, err := parseDate(endDate)
	if err != nil {
		return fmt.Errorf("%w: end %q", ErrInvalidDate, endDate)
	}
	if end.Before(start) {
		return ErrEndBeforeStart
	}
	return nil
}

// CreateTaskInput carries the owner-supplied fields for a new task.
type CreateTaskInput struct {
	Owner       string
	Title       string
	Description string
	StartDate   string
	EndDate     string
	Size        models.TaskSize
	SubmitNow   bool
}

// CreateTask builds a new task in Draft, or directly in Submitted when the
// owner sends it straight to review.
func CreateTask(in CreateTaskInput, id string, today time.Time) (models.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.Task{}, ErrTitleRequired
	}
	if !models.ValidSize(in.Size) {
		return models.Task{}, fmt.Errorf("%w: %s", ErrInvalidSize, in.Size)
	}
	if err := validateWindow(in.StartDate, in.EndDate); err != nil {
		return models.Task{}, err
	}

	status := models.TaskStatusDraft
	if in.SubmitNow {
		status = models.TaskStatusSubmitted
	}

	return models.Task{
		ID:          id,
		OwnerEmail:  in.Owner,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Size:        in.Size,
		Status:      status,
		CreatedOn:   today.Format(constants.DateLayout),
	}, nil
}

// Submit moves a Draft task into review.
func Submit(t *models.Task) error {
	if t.Status != models.TaskStatusDraft {
		return &InvalidTransitionError{From: t.Status, Event: "submit"}
	}
	t.Status = models.TaskStatusSubmitted
	return nil
}

// ResubmitEdit carries the optional content changes an owner may make when
// sending a rejected task back to review. Nil fields are left untouched.
type ResubmitEdit struct {
	Title       *string
	Description *string
	StartDate   *string
	EndDate     *string
	Size        *models.TaskSize
}

// Resubmit applies the owner's edits to a Rejected task and returns it to
// Submitted, clearing the prior manager comment.
func Resubmit(t *models.Task, edit ResubmitEdit) error {
	if t.Status != models.TaskStatusRejected {
		return &InvalidTransitionError{From: t.Status, Event: "resubmit"}
	}

	title := t.Title
	if edit.Title != nil {
		title = strings.TrimSpace(*edit.Title)
	}
	if title == "" {
		return ErrTitleRequired
	}

	size := t.Size
	if edit.Size != nil {
		size = *edit.Size
	}
	if !models.ValidSize(size) {
		return fmt.Errorf("%w: %s", ErrInvalidSize, size)
	}

	startDate, endDate := t.StartDate, t.EndDate
	if edit.StartDate != nil {
		startDate = *edit.StartDate
	}
	if edit.EndDate != nil {
		endDate = *edit.EndDate
	}
	if err := validateWindow(startDate, endDate); err != nil {
		return err
	}

	t.Title = title
	if edit.Description != nil {
		t.Description = *edit.Description
	}
	t.StartDate = startDate
	t.EndDate = endDate
	t.Size = size
	t.ManagerComment = ""
	t.Status = models.TaskStatusSubmitted
	return nil
}

// Approve finalizes review of a Submitted task. The manager's size override
// replaces the owner's self-assessment and the point award is validated
// against that new size. ApprovedOn is stamped only on the first approval.
func Approve(t *models.Task, size models.TaskSize, points int, comment string, today time.Time) error {
	if t.Status != models.TaskStatusSubmitted {
		return &InvalidTransitionError{From: t.Status, Event: "approve"}
	}
	if err := ValidatePoints(size, points); err != nil {
		return err
	}

	t.Size = size
	t.Points = points
	t.ManagerComment = comment
	t.Status = models.TaskStatusApproved
	if t.ApprovedOn == "" {
		t.ApprovedOn = today.Format(constants.DateLayout)
	}
	return nil
}

// Reject returns a Submitted task to its owner. The comment is optional.
func Reject(t *models.Task, comment string) error {
	if t.Status != models.TaskStatusSubmitted {
		return &InvalidTransitionError{From: t.Status, Event: "reject"}
	}
	t.ManagerComment = comment
	t.Status = models.TaskStatusRejected
	return nil
}

// ReportProgress records the owner's self-reported progress on an Approved
// task. Monotonicity is deliberately not enforced.
func ReportProgress(t *models.Task, pct int, desc string) error {
	if t.Status != models.TaskStatusApproved {
		return &InvalidTransitionError{From: t.Status, Event: "report progress"}
	}
	if pct < 0 || pct > 100 {
		return ErrProgressOutOfRange
	}
	t.ProgressPct = pct
	t.ProgressDesc = desc
	return nil
}

// EnsureDeletable checks that the owner may remove the task. Only Draft and
// Rejected tasks can be deleted.
func EnsureDeletable(t *models.Task) error {
	if t.Status != models.TaskStatusDraft && t.Status != models.TaskStatusRejected {
		return ErrNotDeletable
	}
	return nil
}
