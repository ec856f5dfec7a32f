package models

import "time"

// Patient is the registration-system view of a patient, consumed here only
// for lookup by UHID. Registration owns this table.
type Patient struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UHID        string    `gorm:"column:uhid;size:30;uniqueIndex;not null" json:"uhid"`
	FullName    string    `gorm:"size:150;not null" json:"full_name"`
	Gender      string    `gorm:"size:10" json:"gender,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Phone       string    `gorm:"size:20" json:"phone,omitempty"`
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
}

// TableName specifies the table name for Patient model
func (Patient) TableName() string {
	return "patients"
}

// Doctor is the doctor-directory view, consumed here only for lookup by id.
type Doctor struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Code       string    `gorm:"size:30;uniqueIndex" json:"code"`
	FullName   string    `gorm:"size:150;not null" json:"full_name"`
	Department string    `gorm:"size:100" json:"department,omitempty"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
}

// TableName specifies the table name for Doctor model
func (Doctor) TableName() string {
	return "doctors"
}
