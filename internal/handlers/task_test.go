package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kpiflow/internal/constants"
	"kpiflow/internal/models"
	"kpiflow/internal/repository"
	"kpiflow/internal/services"
)

type taskTestEnv struct {
	db      *gorm.DB
	handler *TaskHandler
	sender  *fakeSender
	router  *gin.Engine
}

func setupTaskTestEnv(t *testing.T) taskTestEnv {
	t.Helper()

	db := openHandlerTestDB(t)

	store := repository.NewTaskStore(db, zap.NewNop())
	directory := repository.NewEmployeeDirectory(db)
	sender := &fakeSender{}
	handler := NewTaskHandler(services.NewTaskService(store, directory, sender, zap.NewNop()))

	require.NoError(t, db.Create(&models.Employee{
		Email:        "alice@example.com",
		Name:         "Alice",
		PasswordHash: "x",
		ManagerEmail: "boss@example.com",
		Role:         "user",
	}).Error)
	require.NoError(t, db.Create(&models.Employee{
		Email:        "boss@example.com",
		Name:         "Boss",
		PasswordHash: "x",
		Role:         "user",
	}).Error)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyUserEmail, "alice@example.com")
		c.Set(constants.ContextKeyUserName, "Alice")
	})
	r.GET("/api/tasks", handler.ListTasks)
	r.POST("/api/tasks", handler.CreateTask)
	r.POST("/api/tasks/:id/submit", handler.SubmitTask)
	r.POST("/api/tasks/:id/resubmit", handler.ResubmitTask)
	r.POST("/api/tasks/:id/progress", handler.ReportProgress)
	r.DELETE("/api/tasks/:id", handler.DeleteTask)
	r.GET("/api/dashboard", handler.Dashboard)

	return taskTestEnv{db: db, handler: handler, sender: sender, router: r}
}

func (env taskTestEnv) seedTask(t *testing.T, id string, status models.TaskStatus) {
	t.Helper()
	require.NoError(t, env.db.Create(&models.Task{
		ID:         id,
		OwnerEmail: "alice@example.com",
		Title:      "Seeded task",
		StartDate:  "2025-01-01",
		EndDate:    "2025-01-31",
		Size:       models.TaskSizeM,
		Status:     status,
		CreatedOn:  "2025-01-01",
	}).Error)
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTaskHandler_CreateTask(t *testing.T) {
	env := setupTaskTestEnv(t)

	w := postJSON(t, env.router, "/api/tasks", map[string]interface{}{
		"title":      "Write onboarding guide",
		"start_date": "2025-01-01",
		"end_date":   "2025-01-31",
		"size":       "M",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var task models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	require.NotEmpty(t, task.ID)
	require.Equal(t, models.TaskStatusDraft, task.Status)
	require.Empty(t, env.sender.sent)
}

func TestTaskHandler_CreateTask_SubmitNow(t *testing.T) {
	env := setupTaskTestEnv(t)

	w := postJSON(t, env.router, "/api/tasks", map[string]interface{}{
		"title":      "Write onboarding guide",
		"start_date": "2025-01-01",
		"end_date":   "2025-01-31",
		"size":       "M",
		"submit":     true,
	})

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, env.sender.sent, 1)
}

func TestTaskHandler_CreateTask_InvalidWindow(t *testing.T) {
	env := setupTaskTestEnv(t)

	w := postJSON(t, env.router, "/api/tasks", map[string]interface{}{
		"title":      "Backwards task",
		"start_date": "2025-01-31",
		"end_date":   "2025-01-01",
		"size":       "M",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_SubmitTask(t *testing.T) {
	env := setupTaskTestEnv(t)
	env.seedTask(t, "t1", models.TaskStatusDraft)

	w := postJSON(t, env.router, "/api/tasks/t1/submit", map[string]interface{}{})

	require.Equal(t, http.StatusOK, w.Code)

	var task models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	require.Equal(t, models.TaskStatusSubmitted, task.Status)
}

func TestTaskHandler_SubmitTask_NotFound(t *testing.T) {
	env := setupTaskTestEnv(t)

	w := postJSON(t, env.router, "/api/tasks/missing/submit", map[string]interface{}{})

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskHandler_ResubmitTask(t *testing.T) {
	env := setupTaskTestEnv(t)
	env.seedTask(t, "t1", models.TaskStatusRejected)

	w := postJSON(t, env.router, "/api/tasks/t1/resubmit", map[string]interface{}{
		"title": "Seeded task, revised",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var task models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	require.Equal(t, models.TaskStatusSubmitted, task.Status)
	require.Equal(t, "Seeded task, revised", task.Title)
}

func TestTaskHandler_ReportProgress(t *testing.T) {
	env := setupTaskTestEnv(t)
	env.seedTask(t, "t1", models.TaskStatusApproved)

	w := postJSON(t, env.router, "/api/tasks/t1/progress", map[string]interface{}{
		"progress_pct":  45,
		"progress_desc": "halfway there",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var task models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	require.Equal(t, 45, task.ProgressPct)
}

func TestTaskHandler_ReportProgress_WrongStatus(t *testing.T) {
	env := setupTaskTestEnv(t)
	env.seedTask(t, "t1", models.TaskStatusDraft)

	w := postJSON(t, env.router, "/api/tasks/t1/progress", map[string]interface{}{
		"progress_pct": 45,
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_DeleteTask_BlockedOnceSubmitted(t *testing.T) {
	env := setupTaskTestEnv(t)
	env.seedTask(t, "t1", models.TaskStatusSubmitted)

	req := httptest.NewRequest(http.MethodDelete, "/api/tasks/t1", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_ListTasks(t *testing.T) {
	env := setupTaskTestEnv(t)
	env.seedTask(t, "t1", models.TaskStatusDraft)
	env.seedTask(t, "t2", models.TaskStatusSubmitted)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks?year=2025&month=1", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Tasks []struct {
			ID          string `json:"id"`
			ExpectedPct int    `json:"expected_pct"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Tasks, 2)
}

func TestTaskHandler_Dashboard(t *testing.T) {
	env := setupTaskTestEnv(t)
	require.NoError(t, env.db.Create(&models.Task{
		ID:          "t1",
		OwnerEmail:  "alice@example.com",
		Title:       "Approved work",
		StartDate:   "2025-01-01",
		EndDate:     "2025-01-31",
		Size:        models.TaskSizeL,
		Points:      8,
		Status:      models.TaskStatusApproved,
		ProgressPct: 50,
		CreatedOn:   "2025-01-01",
	}).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard?year=2025&month=1", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var stats services.DashboardStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Equal(t, 1, stats.TotalTasks)
	require.Equal(t, 8, stats.TotalPoints)
	require.Equal(t, 100, stats.ApprovalRatePct)
}
