package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"kpiflow/internal/constants"
)

// MonthFilter holds the year/month query filter used by task lists and
// dashboards. A zero year disables the filter.
type MonthFilter struct {
	Year  int
	Month int
}

// GetMonthFilter extracts and validates the year/month query parameters.
func GetMonthFilter(c *gin.Context) MonthFilter {
	year, _ := strconv.Atoi(c.DefaultQuery("year", "0"))
	month, _ := strconv.Atoi(c.DefaultQuery("month", "0"))

	if year < 0 {
		year = 0
	}
	if month < 1 || month > 12 {
		month = 0
	}
	return MonthFilter{Year: year, Month: month}
}

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse represents the pagination metadata in API responses
type PaginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// GetPaginationParams extracts and validates pagination parameters from the request
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPageSize)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))

	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	offset := (page - 1) * limit

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: offset,
	}
}
