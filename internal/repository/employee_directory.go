package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kpiflow/internal/models"
)

// GormEmployeeDirectory is a GORM implementation of EmployeeDirectory.
type GormEmployeeDirectory struct {
	db *gorm.DB
}

// NewEmployeeDirectory creates a new EmployeeDirectory.
func NewEmployeeDirectory(db *gorm.DB) EmployeeDirectory {
	return &GormEmployeeDirectory{db: db}
}

// Find looks up an employee by email.
func (d *GormEmployeeDirectory) Find(ctx context.Context, email string) (*models.Employee, error) {
	var emp models.Employee
	if err := d.db.WithContext(ctx).First(&emp, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return &emp, nil
}

// Upsert inserts or updates an employee row keyed by email.
func (d *GormEmployeeDirectory) Upsert(ctx context.Context, emp *models.Employee) error {
	return d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "password_hash", "department", "manager_email", "role"}),
		}).
		Create(emp).Error
}

// List returns all employees.
func (d *GormEmployeeDirectory) List(ctx context.Context) ([]models.Employee, error) {
	var emps []models.Employee
	if err := d.db.WithContext(ctx).Order("email").Find(&emps).Error; err != nil {
		return nil, err
	}
	return emps, nil
}

// BulkImport upserts a batch of employees, skipping rows without an email.
// It returns the number of rows imported.
func (d *GormEmployeeDirectory) BulkImport(ctx context.Context, emps []models.Employee) (int, error) {
	count := 0
	for _, emp := range emps {
		emp.Email = strings.TrimSpace(emp.Email)
		if emp.Email == "" {
			continue
		}
		if emp.Role == "" {
			emp.Role = "user"
		}
		if err := d.Upsert(ctx, &emp); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Adjacency loads the employee table once and precomputes the manager
// relation in both directions.
func (d *GormEmployeeDirectory) Adjacency(ctx context.Context) (*Adjacency, error) {
	emps, err := d.List(ctx)
	if err != nil {
		return nil, err
	}

	adj := &Adjacency{
		managerOf: make(map[string]string, len(emps)),
		reports:   make(map[string][]string),
	}
	for _, emp := range emps {
		if emp.ManagerEmail == "" {
			continue
		}
		adj.managerOf[emp.Email] = emp.ManagerEmail
		adj.reports[emp.ManagerEmail] = append(adj.reports[emp.ManagerEmail], emp.Email)
	}
	return adj, nil
}
