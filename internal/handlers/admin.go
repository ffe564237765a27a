package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "kpiflow/internal/errors"
	"kpiflow/internal/models"
	"kpiflow/internal/services"
)

type AdminHandler struct {
	directory *services.DirectoryService
}

func NewAdminHandler(directory *services.DirectoryService) *AdminHandler {
	return &AdminHandler{directory: directory}
}

// ListEmployees returns the employee table.
func (h *AdminHandler) ListEmployees(c *gin.Context) {
	emps, err := h.directory.ListEmployees(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": emps})
}

// UpsertEmployee inserts or updates one employee.
func (h *AdminHandler) UpsertEmployee(c *gin.Context) {
	var req services.EmployeeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	emp, err := h.directory.UpsertEmployee(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, emp)
}

// ImportEmployees bulk-upserts employee rows parsed from the import
// template.
func (h *AdminHandler) ImportEmployees(c *gin.Context) {
	type ImportRequest struct {
		Employees []services.EmployeeInput `json:"employees" binding:"required"`
	}

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	count, err := h.directory.ImportEmployees(c.Request.Context(), req.Employees)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": count})
}

// ListDepartments returns the org chart.
func (h *AdminHandler) ListDepartments(c *gin.Context) {
	depts, err := h.directory.ListDepartments(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": depts})
}

// ImportDepartments resets and reloads the org chart.
func (h *AdminHandler) ImportDepartments(c *gin.Context) {
	type ImportRequest struct {
		Departments []models.Department `json:"departments" binding:"required"`
	}

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	count, err := h.directory.ImportDepartments(c.Request.Context(), req.Departments)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": count})
}
