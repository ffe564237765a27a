package models

type TaskStatus string

const (
	TaskStatusDraft     TaskStatus = "Draft"
	TaskStatusSubmitted TaskStatus = "Submitted"
	TaskStatusApproved  TaskStatus = "Approved"
	TaskStatusRejected  TaskStatus = "Rejected"
)

// ValidStatus reports whether s is one of the four workflow statuses.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusDraft, TaskStatusSubmitted, TaskStatusApproved, TaskStatusRejected:
		return true
	}
	return false
}

type TaskSize string

const (
	TaskSizeS  TaskSize = "S"
	TaskSizeM  TaskSize = "M"
	TaskSizeL  TaskSize = "L"
	TaskSizeXL TaskSize = "XL"
)

// ValidSize reports whether s is one of the four effort tags.
func ValidSize(s TaskSize) bool {
	switch s {
	case TaskSizeS, TaskSizeM, TaskSizeL, TaskSizeXL:
		return true
	}
	return false
}

// Task is one row of the task table. Calendar dates are kept as
// "2006-01-02" strings: the store historically held free-form text and the
// schedule calculation is specified to degrade to zero on anything it
// cannot parse rather than fail.
type Task struct {
	ID             string     `gorm:"type:varchar(36);primarykey" json:"id"`
	OwnerEmail     string     `gorm:"type:varchar(255);not null;index" json:"owner_email"`
	Title          string     `gorm:"type:varchar(255);not null" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	StartDate      string     `gorm:"type:varchar(10)" json:"start_date"`
	EndDate        string     `gorm:"type:varchar(10)" json:"end_date"`
	Size           TaskSize   `gorm:"type:varchar(4);not null" json:"size"`
	Points         int        `json:"points"`
	Status         TaskStatus `gorm:"type:varchar(20);not null;default:'Draft';index" json:"status"`
	ProgressPct    int        `json:"progress_pct"`
	ProgressDesc   string     `gorm:"type:varchar(255)" json:"progress_desc"`
	ManagerComment string     `gorm:"type:varchar(255)" json:"manager_comment"`
	CreatedOn      string     `gorm:"type:varchar(10)" json:"created_on"`
	ApprovedOn     string     `gorm:"type:varchar(10)" json:"approved_on"`
}
