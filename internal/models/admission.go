package models

import "time"

// IPDAdmission represents one in-patient stay from admit to discharge/cancel.
// ActivePatientKey mirrors PatientID while the admission is non-terminal and
// is NULLed on discharge/cancel; its unique index enforces at most one
// non-terminal admission per patient at the database level.
type IPDAdmission struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	AdmissionNumber string          `gorm:"size:20;uniqueIndex;not null" json:"admission_number"`
	PatientID       uint            `gorm:"not null;index" json:"patient_id"`
	DoctorID        uint            `gorm:"not null;index" json:"doctor_id"`
	AdmissionType   AdmissionType   `gorm:"size:20;not null" json:"admission_type"`
	Status          AdmissionStatus `gorm:"size:25;not null;default:'ADMITTED'" json:"status"`
	ActivePatientKey *uint          `gorm:"uniqueIndex:uniq_active_patient" json:"-"`

	AdmittedAt   time.Time  `gorm:"not null" json:"admitted_at"`
	ShiftedAt    *time.Time `json:"shifted_at,omitempty"`
	DischargedAt *time.Time `json:"discharged_at,omitempty"`

	// Clinical fields
	Diagnosis     string  `gorm:"type:text" json:"diagnosis,omitempty"`
	Remarks       string  `gorm:"type:text" json:"remarks,omitempty"`
	DepositAmount float64 `gorm:"default:0" json:"deposit_amount"`

	// Priority block, written by the evaluator at admit and by overrides after
	PriorityCode       PriorityCode `gorm:"size:5" json:"priority_code,omitempty"`
	PriorityReason     string       `gorm:"size:500" json:"priority_reason,omitempty"`
	PriorityOverridden bool         `gorm:"default:false" json:"priority_overridden"`
	OverrideBy         *uint        `json:"override_by,omitempty"`
	OverrideAt         *time.Time   `json:"override_at,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP" json:"updated_at"`

	// Relationships
	Patient Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  Doctor  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

// TableName specifies the table name for IPDAdmission model
func (IPDAdmission) TableName() string {
	return "ipd_admissions"
}

// BedAllocation binds one bed to one admission for a span of time. Rows are
// never deleted; ReleasedAt closes them. ActiveBedID/ActiveAdmissionID mirror
// BedID/AdmissionID while ReleasedAt is NULL; their unique indexes enforce at
// most one active allocation per bed and per admission.
type BedAllocation struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	BedID             uint       `gorm:"not null;index" json:"bed_id"`
	AdmissionID       uint       `gorm:"not null;index" json:"admission_id"`
	ActiveBedID       *uint      `gorm:"uniqueIndex:uniq_active_bed" json:"-"`
	ActiveAdmissionID *uint      `gorm:"uniqueIndex:uniq_active_admission" json:"-"`
	AllocatedAt       time.Time  `gorm:"not null" json:"allocated_at"`
	ReleasedAt        *time.Time `json:"released_at,omitempty"`

	// Relationships
	Bed       Bed          `gorm:"foreignKey:BedID" json:"bed,omitempty"`
	Admission IPDAdmission `gorm:"foreignKey:AdmissionID" json:"admission,omitempty"`
}

// TableName specifies the table name for BedAllocation model
func (BedAllocation) TableName() string {
	return "bed_allocations"
}
