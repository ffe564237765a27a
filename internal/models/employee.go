package models

// Employee is one row of the employees table. ManagerEmail is a
// back-reference into the same table; an employee counts as a manager when
// at least one other employee lists them as manager.
type Employee struct {
	Email        string `gorm:"type:varchar(255);primarykey" json:"email"`
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	Department   string `gorm:"type:varchar(255)" json:"department"`
	ManagerEmail string `gorm:"type:varchar(255);index" json:"manager_email"`
	Role         string `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
}
