package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kpiflow/internal/dto"
	apierrors "kpiflow/internal/errors"
	"kpiflow/internal/middleware"
	"kpiflow/internal/models"
	"kpiflow/internal/services"
	"kpiflow/internal/utils"
)

type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// ListTasks returns the current user's tasks, annotated with expected
// progress, filtered by the optional year/month query parameters.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	owner, ok := middleware.GetUserEmail(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	filter := utils.GetMonthFilter(c)
	tasks, err := h.tasks.ListTasks(c.Request.Context(), owner, filter.Year, filter.Month)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	params := utils.GetPaginationParams(c)
	total := int64(len(tasks))
	if params.Offset >= len(tasks) {
		tasks = nil
	} else {
		end := params.Offset + params.Limit
		if end > len(tasks) {
			end = len(tasks)
		}
		tasks = tasks[params.Offset:end]
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.NewTaskViews(tasks, time.Now()),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// CreateTask creates a new task for the current user, optionally sending it
// straight to review.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	owner, ok := middleware.GetUserEmail(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title       string          `json:"title" binding:"required"`
		Description string          `json:"description"`
		StartDate   string          `json:"start_date" binding:"required"`
		EndDate     string          `json:"end_date" binding:"required"`
		Size        models.TaskSize `json:"size" binding:"required"`
		Submit      bool            `json:"submit"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), services.CreateTaskInput{
		Owner:       owner,
		OwnerName:   middleware.GetUserName(c),
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Size:        req.Size,
		SubmitNow:   req.Submit,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// SubmitTask sends a Draft task to review.
func (h *TaskHandler) SubmitTask(c *gin.Context) {
	owner, ok := middleware.GetUserEmail(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	task, err := h.tasks.Submit(c.Request.Context(), c.Param("id"), owner)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// ResubmitTask edits a Rejected task and returns it to review.
func (h *TaskHandler) ResubmitTask(c *gin.Context) {
	owner, ok := middleware.GetUserEmail(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type ResubmitRequest struct {
		Title       *string          `json:"title"`
		Description *string          `json:"description"`
		StartDate   *string          `json:"start_date"`
		EndDate     *string          `json:"end_date"`
		Size        *models.TaskSize `json:"size"`
	}

	var req ResubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.tasks.Resubmit(c.Request.Context(), c.Param("id"), owner, services.ResubmitInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Size:        req.Size,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// ReportProgress records self-reported progress on an Approved task.
func (h *TaskHandler) ReportProgress(c *gin.Context) {
	owner, ok := middleware.GetUserEmail(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type ProgressRequest struct {
		ProgressPct  *int   `json:"progress_pct" binding:"required"`
		ProgressDesc string `json:"progress_desc"`
	}

	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.tasks.ReportProgress(c.Request.Context(), c.Param("id"), owner, *req.ProgressPct, req.ProgressDesc)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask removes a Draft or Rejected task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	owner, ok := middleware.GetUserEmail(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.tasks.DeleteTask(c.Request.Context(), c.Param("id"), owner); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// Dashboard returns the current user's KPI summary for a month.
func (h *TaskHandler) Dashboard(c *gin.Context) {
	owner, ok := middleware.GetUserEmail(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	filter := utils.GetMonthFilter(c)
	stats, err := h.tasks.Dashboard(c.Request.Context(), owner, filter.Year, filter.Month)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
