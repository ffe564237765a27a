package repository

import (
	"context"
	"errors"

	"kpiflow/internal/models"
	"kpiflow/internal/workflow"
)

// ErrStoreUnavailable signals that the store could not be reached after the
// read retry budget was exhausted. It is fatal for the current operation;
// no partial write is ever attempted after it.
var ErrStoreUnavailable = errors.New("task store unavailable")

// ErrTaskNotFound is returned by single-row task lookups.
var ErrTaskNotFound = errors.New("task not found")

// ErrEmployeeNotFound is returned by directory lookups.
var ErrEmployeeNotFound = errors.New("employee not found")

// TaskStore is the row-oriented persistent task table. Batch operations use
// the ReadAll/WriteAll pair: read a full snapshot, mutate in memory, write
// the whole table back. Single-row fast paths exist for creation, progress
// reports and deletion.
type TaskStore interface {
	// ReadAll loads the full task table as a snapshot, retrying transient
	// errors a fixed number of times before reporting ErrStoreUnavailable.
	ReadAll(ctx context.Context) (workflow.Snapshot, error)

	// WriteAll overwrites the whole task table with the snapshot in one
	// transaction. Write failures are surfaced immediately, never retried.
	WriteAll(ctx context.Context, snap workflow.Snapshot) error

	// ReadOne loads a single task by ID.
	ReadOne(ctx context.Context, id string) (*models.Task, error)

	// Create appends a single task row.
	Create(ctx context.Context, task *models.Task) error

	// WriteFields updates named columns of a single row.
	WriteFields(ctx context.Context, id string, fields map[string]interface{}) error

	// Delete removes a single row.
	Delete(ctx context.Context, id string) error
}

// Adjacency is the manager relation precomputed from one directory load:
// owner to manager, and manager to direct reports. It replaces ad-hoc
// rescans of the employee table.
type Adjacency struct {
	managerOf map[string]string
	reports   map[string][]string
}

// ManagerOf returns the manager's email for an employee, or "" when none is
// configured.
func (a *Adjacency) ManagerOf(email string) string {
	return a.managerOf[email]
}

// DirectReports returns the employees who list the given email as manager.
func (a *Adjacency) DirectReports(managerEmail string) []string {
	return a.reports[managerEmail]
}

// IsManager reports whether at least one employee lists the given email as
// manager.
func (a *Adjacency) IsManager(email string) bool {
	return len(a.reports[email]) > 0
}

// EmployeeDirectory is the employee table plus the derived manager
// adjacency.
type EmployeeDirectory interface {
	Find(ctx context.Context, email string) (*models.Employee, error)
	Upsert(ctx context.Context, emp *models.Employee) error
	List(ctx context.Context) ([]models.Employee, error)
	BulkImport(ctx context.Context, emps []models.Employee) (int, error)
	Adjacency(ctx context.Context) (*Adjacency, error)
}

// DepartmentStore is the flat org-chart table. Imports replace the whole
// table.
type DepartmentStore interface {
	List(ctx context.Context) ([]models.Department, error)
	ReplaceAll(ctx context.Context, depts []models.Department) error
}

// SettingsStore is the flat key-value settings table.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
