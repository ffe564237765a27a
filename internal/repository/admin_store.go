package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kpiflow/internal/models"
)

// GormDepartmentStore is a GORM implementation of DepartmentStore.
type GormDepartmentStore struct {
	db *gorm.DB
}

// NewDepartmentStore creates a new DepartmentStore.
func NewDepartmentStore(db *gorm.DB) DepartmentStore {
	return &GormDepartmentStore{db: db}
}

// List returns all departments.
func (s *GormDepartmentStore) List(ctx context.Context) ([]models.Department, error) {
	var depts []models.Department
	if err := s.db.WithContext(ctx).Order("dept_id").Find(&depts).Error; err != nil {
		return nil, err
	}
	return depts, nil
}

// ReplaceAll resets the org chart and imports the given rows in one
// transaction.
func (s *GormDepartmentStore) ReplaceAll(ctx context.Context, depts []models.Department) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Department{}).Error; err != nil {
			return err
		}
		if len(depts) == 0 {
			return nil
		}
		return tx.Create(&depts).Error
	})
}

// GormSettingsStore is a GORM implementation of SettingsStore.
type GormSettingsStore struct {
	db *gorm.DB
}

// NewSettingsStore creates a new SettingsStore.
func NewSettingsStore(db *gorm.DB) SettingsStore {
	return &GormSettingsStore{db: db}
}

// Get returns the value for a key, or gorm.ErrRecordNotFound.
func (s *GormSettingsStore) Get(ctx context.Context, key string) (string, error) {
	var setting models.Setting
	err := s.db.WithContext(ctx).
		Where(map[string]interface{}{"key": key}).
		First(&setting).Error
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

// Set inserts or updates a key.
func (s *GormSettingsStore) Set(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&models.Setting{Key: key, Value: value}).Error
}
