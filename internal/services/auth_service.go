package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"kpiflow/internal/constants"
	"kpiflow/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Identity is the authenticated principal stored in the session.
type Identity struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	ManagerEmail string `json:"manager_email,omitempty"`
}

// AuthService handles authentication against the employee table and the
// reserved admin credential in the settings table.
type AuthService struct {
	directory repository.EmployeeDirectory
	settings  repository.SettingsStore
}

// NewAuthService creates a new AuthService.
func NewAuthService(directory repository.EmployeeDirectory, settings repository.SettingsStore) *AuthService {
	return &AuthService{directory: directory, settings: settings}
}

// Login verifies credentials and returns the authenticated identity.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Identity, error) {
	if email == constants.AdminAccount {
		return s.loginAdmin(ctx, password)
	}

	emp, err := s.directory.Find(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &Identity{
		Email:        emp.Email,
		Name:         emp.Name,
		Role:         emp.Role,
		ManagerEmail: emp.ManagerEmail,
	}, nil
}

// Identity resolves the stored session principal back to a full identity.
func (s *AuthService) Identity(ctx context.Context, email string) (*Identity, error) {
	if email == constants.AdminAccount {
		return &Identity{
			Email: constants.AdminAccount,
			Name:  "Administrator",
			Role:  constants.RoleAdmin,
		}, nil
	}

	emp, err := s.directory.Find(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}
	return &Identity{
		Email:        emp.Email,
		Name:         emp.Name,
		Role:         emp.Role,
		ManagerEmail: emp.ManagerEmail,
	}, nil
}

func (s *AuthService) loginAdmin(ctx context.Context, password string) (*Identity, error) {
	hash, err := s.settings.Get(ctx, constants.SettingKeyAdminPassword)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to read admin credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &Identity{
		Email: constants.AdminAccount,
		Name:  "Administrator",
		Role:  constants.RoleAdmin,
	}, nil
}
