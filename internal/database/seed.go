package database

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"kpiflow/internal/constants"
	"kpiflow/internal/models"
)

// SeedAdminCredential stores a bcrypt hash of the configured admin password
// in the settings table on first startup. An existing credential is never
// overwritten.
func SeedAdminCredential(db *gorm.DB, password string) error {
	var setting models.Setting
	err := db.Where(map[string]interface{}{"key": constants.SettingKeyAdminPassword}).First(&setting).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to read admin credential: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	setting = models.Setting{Key: constants.SettingKeyAdminPassword, Value: string(hash)}
	if err := db.Create(&setting).Error; err != nil {
		return fmt.Errorf("failed to seed admin credential: %w", err)
	}
	return nil
}
