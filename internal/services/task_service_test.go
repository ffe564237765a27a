package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kpiflow/internal/models"
	"kpiflow/internal/repository"
	"kpiflow/internal/workflow"
)

type TaskServiceTestSuite struct {
	suite.Suite
	db     *gorm.DB
	store  repository.TaskStore
	sender *stubSender
	svc    *TaskService
}

func (s *TaskServiceTestSuite) SetupTest() {
	db, err := openTestDB()
	s.Require().NoError(err)
	s.db = db

	s.store = repository.NewTaskStore(db, zap.NewNop())
	directory := repository.NewEmployeeDirectory(db)
	s.sender = &stubSender{}

	s.svc = NewTaskService(s.store, directory, s.sender, zap.NewNop())
	s.svc.now = func() time.Time {
		t, _ := time.Parse("2006-01-02", "2025-01-15")
		return t
	}

	s.Require().NoError(db.Create(&models.Employee{
		Email:        "boss@example.com",
		Name:         "Boss",
		PasswordHash: "x",
		Role:         "user",
	}).Error)
	s.Require().NoError(db.Create(&models.Employee{
		Email:        "alice@example.com",
		Name:         "Alice",
		PasswordHash: "x",
		ManagerEmail: "boss@example.com",
		Role:         "user",
	}).Error)
}

func (s *TaskServiceTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *TaskServiceTestSuite) draftInput() CreateTaskInput {
	return CreateTaskInput{
		Owner:     "alice@example.com",
		OwnerName: "Alice",
		Title:     "Quarterly report",
		StartDate: "2025-01-01",
		EndDate:   "2025-01-31",
		Size:      models.TaskSizeM,
	}
}

func (s *TaskServiceTestSuite) TestCreateTask_Draft() {
	task, err := s.svc.CreateTask(context.Background(), s.draftInput())
	s.Require().NoError(err)
	s.NotEmpty(task.ID)
	s.Equal(models.TaskStatusDraft, task.Status)
	s.Equal("2025-01-15", task.CreatedOn)
	s.Empty(s.sender.sent, "draft creation must not notify anyone")

	stored, err := s.store.ReadOne(context.Background(), task.ID)
	s.Require().NoError(err)
	s.Equal(task.Title, stored.Title)
}

func (s *TaskServiceTestSuite) TestCreateTask_SubmitNowNotifiesManager() {
	input := s.draftInput()
	input.SubmitNow = true

	task, err := s.svc.CreateTask(context.Background(), input)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusSubmitted, task.Status)

	s.Require().Len(s.sender.sent, 1)
	s.Equal("boss@example.com", s.sender.sent[0].Recipient)
	s.Contains(s.sender.sent[0].Body, "Quarterly report")
}

func (s *TaskServiceTestSuite) TestCreateTask_NoManagerIsSilent() {
	input := s.draftInput()
	input.Owner = "boss@example.com"
	input.SubmitNow = true

	_, err := s.svc.CreateTask(context.Background(), input)
	s.Require().NoError(err)
	s.Empty(s.sender.sent)
}

func (s *TaskServiceTestSuite) TestCreateTask_Validation() {
	input := s.draftInput()
	input.Title = ""
	_, err := s.svc.CreateTask(context.Background(), input)
	s.ErrorIs(err, workflow.ErrTitleRequired)

	input = s.draftInput()
	input.EndDate = "2024-12-01"
	_, err = s.svc.CreateTask(context.Background(), input)
	s.ErrorIs(err, workflow.ErrEndBeforeStart)
}

func (s *TaskServiceTestSuite) TestSubmit() {
	task, err := s.svc.CreateTask(context.Background(), s.draftInput())
	s.Require().NoError(err)

	submitted, err := s.svc.Submit(context.Background(), task.ID, "alice@example.com")
	s.Require().NoError(err)
	s.Equal(models.TaskStatusSubmitted, submitted.Status)

	stored, err := s.store.ReadOne(context.Background(), task.ID)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusSubmitted, stored.Status)
	s.Len(s.sender.sent, 1)
}

func (s *TaskServiceTestSuite) TestSubmit_OwnershipGuard() {
	task, err := s.svc.CreateTask(context.Background(), s.draftInput())
	s.Require().NoError(err)

	_, err = s.svc.Submit(context.Background(), task.ID, "boss@example.com")
	s.ErrorIs(err, ErrNotTaskOwner)
}

func (s *TaskServiceTestSuite) TestSubmit_NotFound() {
	_, err := s.svc.Submit(context.Background(), "missing", "alice@example.com")
	s.ErrorIs(err, ErrTaskNotFound)
}

func (s *TaskServiceTestSuite) TestResubmit() {
	task, err := s.svc.CreateTask(context.Background(), s.draftInput())
	s.Require().NoError(err)
	s.Require().NoError(s.db.Model(&models.Task{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
		"status":          models.TaskStatusRejected,
		"manager_comment": "too vague",
	}).Error)

	title := "Quarterly report v2"
	size := models.TaskSizeL
	revised, err := s.svc.Resubmit(context.Background(), task.ID, "alice@example.com", ResubmitInput{
		Title: &title,
		Size:  &size,
	})
	s.Require().NoError(err)
	s.Equal(models.TaskStatusSubmitted, revised.Status)
	s.Equal("Quarterly report v2", revised.Title)
	s.Equal(models.TaskSizeL, revised.Size)
	s.Empty(revised.ManagerComment)

	stored, err := s.store.ReadOne(context.Background(), task.ID)
	s.Require().NoError(err)
	s.Equal("Quarterly report v2", stored.Title)
	s.Empty(stored.ManagerComment)
}

func (s *TaskServiceTestSuite) TestResubmit_OnlyFromRejected() {
	task, err := s.svc.CreateTask(context.Background(), s.draftInput())
	s.Require().NoError(err)

	_, err = s.svc.Resubmit(context.Background(), task.ID, "alice@example.com", ResubmitInput{})
	var transitionErr *workflow.InvalidTransitionError
	s.ErrorAs(err, &transitionErr)
}

func (s *TaskServiceTestSuite) TestReportProgress() {
	task, err := s.svc.CreateTask(context.Background(), s.draftInput())
	s.Require().NoError(err)
	s.Require().NoError(s.db.Model(&models.Task{}).Where("id = ?", task.ID).
		Update("status", models.TaskStatusApproved).Error)

	updated, err := s.svc.ReportProgress(context.Background(), task.ID, "alice@example.com", 60, "draft done")
	s.Require().NoError(err)
	s.Equal(60, updated.ProgressPct)

	stored, err := s.store.ReadOne(context.Background(), task.ID)
	s.Require().NoError(err)
	s.Equal(60, stored.ProgressPct)
	s.Equal("draft done", stored.ProgressDesc)
}

func (s *TaskServiceTestSuite) TestReportProgress_RequiresApproved() {
	task, err := s.svc.CreateTask(context.Background(), s.draftInput())
	s.Require().NoError(err)

	_, err = s.svc.ReportProgress(context.Background(), task.ID, "alice@example.com", 50, "")
	var transitionErr *workflow.InvalidTransitionError
	s.ErrorAs(err, &transitionErr)
}

func (s *TaskServiceTestSuite) TestDeleteTask() {
	task, err := s.svc.CreateTask(context.Background(), s.draftInput())
	s.Require().NoError(err)

	s.Require().NoError(s.svc.DeleteTask(context.Background(), task.ID, "alice@example.com"))

	_, err = s.store.ReadOne(context.Background(), task.ID)
	s.ErrorIs(err, repository.ErrTaskNotFound)
}

func (s *TaskServiceTestSuite) TestDeleteTask_BlockedOnceSubmitted() {
	input := s.draftInput()
	input.SubmitNow = true
	task, err := s.svc.CreateTask(context.Background(), input)
	s.Require().NoError(err)

	err = s.svc.DeleteTask(context.Background(), task.ID, "alice@example.com")
	s.ErrorIs(err, workflow.ErrNotDeletable)
}

func (s *TaskServiceTestSuite) TestListTasks_MonthFilterAndOrder() {
	older := s.draftInput()
	older.Title = "January work"
	first, err := s.svc.CreateTask(context.Background(), older)
	s.Require().NoError(err)

	s.svc.now = func() time.Time {
		t, _ := time.Parse("2006-01-02", "2025-02-10")
		return t
	}
	newer := s.draftInput()
	newer.Title = "February work"
	newer.StartDate = "2025-02-01"
	newer.EndDate = "2025-02-28"
	second, err := s.svc.CreateTask(context.Background(), newer)
	s.Require().NoError(err)

	all, err := s.svc.ListTasks(context.Background(), "alice@example.com", 0, 0)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(second.ID, all[0].ID, "newest creation first")
	s.Equal(first.ID, all[1].ID)

	january, err := s.svc.ListTasks(context.Background(), "alice@example.com", 2025, 1)
	s.Require().NoError(err)
	s.Require().Len(january, 1)
	s.Equal("January work", january[0].Title)
}

func (s *TaskServiceTestSuite) TestDashboard() {
	for i, row := range []struct {
		status models.TaskStatus
		points int
		pct    int
	}{
		{models.TaskStatusApproved, 5, 80},
		{models.TaskStatusApproved, 8, 40},
		{models.TaskStatusSubmitted, 0, 0},
		{models.TaskStatusDraft, 0, 0},
	} {
		s.Require().NoError(s.db.Create(&models.Task{
			ID:          string(rune('a' + i)),
			OwnerEmail:  "alice@example.com",
			Title:       "Task",
			StartDate:   "2025-01-01",
			EndDate:     "2025-01-31",
			Size:        models.TaskSizeM,
			Points:      row.points,
			Status:      row.status,
			ProgressPct: row.pct,
			CreatedOn:   "2025-01-01",
		}).Error)
	}

	stats, err := s.svc.Dashboard(context.Background(), "alice@example.com", 2025, 1)
	s.Require().NoError(err)
	s.Equal(4, stats.TotalTasks)
	s.Equal(2, stats.ApprovedTasks)
	s.Equal(13, stats.TotalPoints)
	s.Equal(50, stats.ApprovalRatePct)
	s.Equal(60, stats.AvgProgressPct)
	s.Equal(1, stats.StatusCounts[string(models.TaskStatusDraft)])
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
