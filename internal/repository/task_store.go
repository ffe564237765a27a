package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"kpiflow/internal/models"
	"kpiflow/internal/workflow"
)

const readRetries = 3

// retryDelay is a variable so tests can shorten it.
var retryDelay = time.Second

// GormTaskStore is a GORM implementation of TaskStore.
type GormTaskStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTaskStore creates a new TaskStore.
func NewTaskStore(db *gorm.DB, logger *zap.Logger) TaskStore {
	return &GormTaskStore{db: db, logger: logger}
}

// ReadAll loads every task row into a snapshot. Transient read errors are
// retried with a brief fixed delay before the operation gives up.
func (s *GormTaskStore) ReadAll(ctx context.Context) (workflow.Snapshot, error) {
	var lastErr error
	for attempt := 1; attempt <= readRetries; attempt++ {
		var rows []models.Task
		err := s.db.WithContext(ctx).Find(&rows).Error
		if err == nil {
			snap := make(workflow.Snapshot, len(rows))
			for _, row := range rows {
				snap[row.ID] = normalizeTask(row)
			}
			return snap, nil
		}

		lastErr = err
		s.logger.Warn("task table read failed",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt < readRetries {
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, ctx.Err())
			}
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, lastErr)
}

// WriteAll replaces the whole task table with the snapshot in a single
// transaction. Last writer wins; there is no row versioning.
func (s *GormTaskStore) WriteAll(ctx context.Context, snap workflow.Snapshot) error {
	rows := make([]models.Task, 0, len(snap))
	for _, task := range snap {
		rows = append(rows, task)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to write task table: %w", err)
	}
	return nil
}

// ReadOne loads a single task by ID.
func (s *GormTaskStore) ReadOne(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	task = normalizeTask(task)
	return &task, nil
}

// Create appends a single task row.
func (s *GormTaskStore) Create(ctx context.Context, task *models.Task) error {
	return s.db.WithContext(ctx).Create(task).Error
}

// WriteFields updates named columns of a single row (the progress-report
// fast path).
func (s *GormTaskStore) WriteFields(ctx context.Context, id string, fields map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes a single row.
func (s *GormTaskStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// normalizeTask applies defaulting rules at the store boundary so schema
// drift in old rows never reaches the core.
func normalizeTask(t models.Task) models.Task {
	if !models.ValidStatus(t.Status) {
		t.Status = models.TaskStatusDraft
	}
	if t.ProgressPct < 0 {
		t.ProgressPct = 0
	}
	if t.ProgressPct > 100 {
		t.ProgressPct = 100
	}
	return t
}
