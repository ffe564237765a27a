package workflow

import (
	"fmt"

	"kpiflow/internal/models"
)

// pointRanges maps each effort tag to its closed [min, max] point range.
var pointRanges = map[models.TaskSize][2]int{
	models.TaskSizeS:  {1, 3},
	models.TaskSizeM:  {4, 6},
	models.TaskSizeL:  {7, 9},
	models.TaskSizeXL: {10, 12},
}

// PointRangeError reports a point award outside the range permitted by the
// task's size, naming the permitted bounds.
type PointRangeError struct {
	Size   models.TaskSize
	Points int
	Min    int
	Max    int
}

func (e *PointRangeError) Error() string {
	return fmt.Sprintf("points %d out of range for size %s: must be between %d and %d",
		e.Points, e.Size, e.Min, e.Max)
}

// PointRange returns the closed point range for a size.
func PointRange(size models.TaskSize) (min, max int, ok bool) {
	r, ok := pointRanges[size]
	if !ok {
		return 0, 0, false
	}
	return r[0], r[1], true
}

// ValidatePoints checks a point award against the range assigned to size.
// When a manager overrides the size during review, validation runs against
// the new size, not the one the owner requested.
func ValidatePoints(size models.TaskSize, points int) error {
	min, max, ok := PointRange(size)
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidSize, size)
	}
	if points < min || points > max {
		return &PointRangeError{Size: size, Points: points, Min: min, Max: max}
	}
	return nil
}

// DefaultPoints returns the midpoint of the size's range, used to
// pre-populate the manager's review form. Unknown sizes yield 0.
func DefaultPoints(size models.TaskSize) int {
	min, max, ok := PointRange(size)
	if !ok {
		return 0
	}
	return (min + max) / 2
}
