package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "kpiflow/internal/errors"
	"kpiflow/internal/middleware"
	"kpiflow/internal/services"
	"kpiflow/internal/utils"
)

type ReviewHandler struct {
	reviews *services.ReviewService
}

func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Pending returns the Submitted tasks of the manager's direct reports with
// suggested point awards.
func (h *ReviewHandler) Pending(c *gin.Context) {
	manager, ok := middleware.GetUserEmail(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	pending, err := h.reviews.Pending(c.Request.Context(), manager)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": pending})
}

// Approve applies a batch of approvals and reports the outcome.
func (h *ReviewHandler) Approve(c *gin.Context) {
	manager, ok := middleware.GetUserEmail(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type ApproveRequest struct {
		Approvals []services.ApprovalRequest `json:"approvals" binding:"required"`
	}

	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	outcome, err := h.reviews.ApproveBatch(c.Request.Context(), manager, req.Approvals)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// Reject applies a batch of rejections and reports the outcome.
func (h *ReviewHandler) Reject(c *gin.Context) {
	manager, ok := middleware.GetUserEmail(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type RejectRequest struct {
		Rejections []services.RejectionRequest `json:"rejections" binding:"required"`
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	outcome, err := h.reviews.RejectBatch(c.Request.Context(), manager, req.Rejections)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// Team returns the manager's month overview: annotated task list and point
// ranking.
func (h *ReviewHandler) Team(c *gin.Context) {
	manager, ok := middleware.GetUserEmail(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	filter := utils.GetMonthFilter(c)
	overview, err := h.reviews.Team(c.Request.Context(), manager, filter.Year, filter.Month)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
