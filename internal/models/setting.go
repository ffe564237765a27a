package models

// Setting is one row of the flat key-value settings table (admin
// credential, branding keys and similar).
type Setting struct {
	Key   string `gorm:"type:varchar(64);primarykey" json:"key"`
	Value string `gorm:"type:varchar(255)" json:"value"`
}
