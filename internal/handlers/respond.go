package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	apierrors "kpiflow/internal/errors"
	"kpiflow/internal/repository"
	"kpiflow/internal/services"
	"kpiflow/internal/workflow"
)

// respondServiceError maps service and workflow errors onto the API error
// envelope. Per-item batch failures never reach here; this handles errors
// that fail a whole call.
func respondServiceError(c *gin.Context, err error) {
	var transitionErr *workflow.InvalidTransitionError
	var rangeErr *workflow.PointRangeError

	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrNotTaskOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrNotAManager):
		apierrors.Forbidden(c, err.Error())
	case errors.As(err, &transitionErr):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidTransition, err.Error())
	case errors.As(err, &rangeErr):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodePointsOutOfRange, err.Error())
	case errors.Is(err, workflow.ErrTitleRequired),
		errors.Is(err, workflow.ErrInvalidSize),
		errors.Is(err, workflow.ErrInvalidDate),
		errors.Is(err, workflow.ErrEndBeforeStart),
		errors.Is(err, workflow.ErrProgressOutOfRange),
		errors.Is(err, workflow.ErrNotDeletable),
		errors.Is(err, services.ErrEmailRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, repository.ErrStoreUnavailable):
		apierrors.ServiceUnavailable(c, "Task store unavailable, please retry")
	default:
		apierrors.InternalError(c, "")
	}
}
