package models

import "time"

// TransferRecommendation is a doctor's proposal to move an admission between
// ward types. Emergency recommendations may defer consent but owe a written
// justification afterwards.
type TransferRecommendation struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	TrackingCode string         `gorm:"size:40;uniqueIndex;not null" json:"tracking_code"`
	AdmissionID  uint           `gorm:"not null;index" json:"admission_id"`
	DoctorID     uint           `gorm:"not null;index" json:"doctor_id"`
	FromWardType string         `gorm:"size:30;not null" json:"from_ward_type"`
	ToWardType   string         `gorm:"size:30;not null" json:"to_ward_type"`
	Reason       string         `gorm:"type:text" json:"reason,omitempty"`
	IsEmergency  bool           `gorm:"default:false" json:"is_emergency"`
	Status       TransferStatus `gorm:"size:20;not null;default:'RECOMMENDED'" json:"status"`

	// Deferred written justification for emergency transfers
	Justification   string     `gorm:"type:text" json:"justification,omitempty"`
	JustificationBy *uint      `json:"justification_by,omitempty"`
	JustificationAt *time.Time `json:"justification_at,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP" json:"updated_at"`

	// Relationships
	Admission IPDAdmission `gorm:"foreignKey:AdmissionID" json:"admission,omitempty"`
	Doctor    Doctor       `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

// TableName specifies the table name for TransferRecommendation model
func (TransferRecommendation) TableName() string {
	return "transfer_recommendations"
}

// NeedsJustification reports whether this recommendation still owes its
// written emergency justification.
func (r *TransferRecommendation) NeedsJustification() bool {
	return r.IsEmergency && r.Justification == ""
}

// TransferConsent is the family/patient consent tied to one recommendation.
type TransferConsent struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	RecommendationID uint        `gorm:"uniqueIndex;not null" json:"recommendation_id"`
	ConsentGiven     bool        `gorm:"not null" json:"consent_given"`
	Mode             ConsentMode `gorm:"size:10;not null" json:"mode"`
	GivenByName      string      `gorm:"size:150;not null" json:"given_by_name"`
	GivenByRelation  string      `gorm:"size:50" json:"given_by_relation,omitempty"`
	Remarks          string      `gorm:"type:text" json:"remarks,omitempty"`
	CreatedAt        time.Time   `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for TransferConsent model
func (TransferConsent) TableName() string {
	return "transfer_consents"
}

// TransferBedReservation holds a target bed in RESERVED state during the
// consent-to-execute window. ReservedBedID mirrors BedID while the status is
// RESERVED and is NULLed otherwise; its unique index guarantees at most one
// RESERVED hold per bed, so of two concurrent confirm-bed calls exactly one
// can commit.
type TransferBedReservation struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	RecommendationID uint              `gorm:"uniqueIndex;not null" json:"recommendation_id"`
	BedID            uint              `gorm:"not null;index" json:"bed_id"`
	ReservedBedID    *uint             `gorm:"uniqueIndex:uniq_reserved_bed" json:"-"`
	Status           ReservationStatus `gorm:"size:15;not null;default:'RESERVED'" json:"status"`
	ReservedAt       time.Time         `gorm:"not null" json:"reserved_at"`
	ClosedAt         *time.Time        `json:"closed_at,omitempty"`

	// Relationships
	Bed            Bed                    `gorm:"foreignKey:BedID" json:"bed,omitempty"`
	Recommendation TransferRecommendation `gorm:"foreignKey:RecommendationID" json:"recommendation,omitempty"`
}

// TableName specifies the table name for TransferBedReservation model
func (TransferBedReservation) TableName() string {
	return "transfer_bed_reservations"
}

// PatientTransfer is the execution record of the actual movement.
type PatientTransfer struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	RecommendationID uint           `gorm:"uniqueIndex;not null" json:"recommendation_id"`
	AdmissionID      uint           `gorm:"not null;index" json:"admission_id"`
	FromBedID        uint           `gorm:"not null" json:"from_bed_id"`
	ToBedID          uint           `gorm:"not null" json:"to_bed_id"`
	NurseName        string         `gorm:"size:150" json:"nurse_name,omitempty"`
	AttendantName    string         `gorm:"size:150" json:"attendant_name,omitempty"`
	Equipment        string         `gorm:"type:text" json:"equipment,omitempty"`
	ShiftBand        string         `gorm:"size:10" json:"shift_band,omitempty"`
	Status           TransferStatus `gorm:"size:20;not null" json:"status"`
	ExecutedAt       *time.Time     `json:"executed_at,omitempty"`
	CreatedAt        time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for PatientTransfer model
func (PatientTransfer) TableName() string {
	return "patient_transfers"
}
