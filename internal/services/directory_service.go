package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"kpiflow/internal/models"
	"kpiflow/internal/repository"
)

var ErrEmailRequired = errors.New("email is required")

// DirectoryService handles the admin-side employee and org-chart
// maintenance.
type DirectoryService struct {
	directory   repository.EmployeeDirectory
	departments repository.DepartmentStore
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(directory repository.EmployeeDirectory, departments repository.DepartmentStore) *DirectoryService {
	return &DirectoryService{directory: directory, departments: departments}
}

// EmployeeInput is one employee row for upsert or import. An empty
// password defaults to the email, mirroring the import template rules.
type EmployeeInput struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Password     string `json:"password"`
	Department   string `json:"department"`
	ManagerEmail string `json:"manager_email"`
	Role         string `json:"role"`
}

func (in EmployeeInput) toModel() (*models.Employee, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	password := in.Password
	if password == "" {
		password = email
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := in.Role
	if role == "" {
		role = "user"
	}

	return &models.Employee{
		Email:        email,
		Name:         in.Name,
		PasswordHash: string(hash),
		Department:   in.Department,
		ManagerEmail: strings.TrimSpace(in.ManagerEmail),
		Role:         role,
	}, nil
}

// UpsertEmployee inserts or updates one employee.
func (s *DirectoryService) UpsertEmployee(ctx context.Context, input EmployeeInput) (*models.Employee, error) {
	emp, err := input.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.directory.Upsert(ctx, emp); err != nil {
		return nil, fmt.Errorf("failed to upsert employee: %w", err)
	}
	return emp, nil
}

// ImportEmployees upserts a batch of employee rows, skipping rows without
// an email, and returns the number imported.
func (s *DirectoryService) ImportEmployees(ctx context.Context, inputs []EmployeeInput) (int, error) {
	emps := make([]models.Employee, 0, len(inputs))
	for _, in := range inputs {
		if strings.TrimSpace(in.Email) == "" {
			continue
		}
		emp, err := in.toModel()
		if err != nil {
			return 0, err
		}
		emps = append(emps, *emp)
	}
	count, err := s.directory.BulkImport(ctx, emps)
	if err != nil {
		return count, fmt.Errorf("failed to import employees: %w", err)
	}
	return count, nil
}

// ListEmployees returns the employee table.
func (s *DirectoryService) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	return s.directory.List(ctx)
}

// ImportDepartments resets the org chart and loads the given rows.
func (s *DirectoryService) ImportDepartments(ctx context.Context, depts []models.Department) (int, error) {
	if err := s.departments.ReplaceAll(ctx, depts); err != nil {
		return 0, fmt.Errorf("failed to import departments: %w", err)
	}
	return len(depts), nil
}

// ListDepartments returns the org chart.
func (s *DirectoryService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	return s.departments.List(ctx)
}
