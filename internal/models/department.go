package models

// Department is one row of the flat org-chart table. ParentDeptID refers to
// another department's DeptID; the root has an empty parent.
type Department struct {
	DeptID       string `gorm:"type:varchar(32);primarykey" json:"dept_id"`
	DeptName     string `gorm:"type:varchar(255);not null" json:"dept_name"`
	Level        string `gorm:"type:varchar(64)" json:"level"`
	ParentDeptID string `gorm:"type:varchar(32)" json:"parent_dept_id"`
}
