package models

import "time"

// Audit tables are append-only: one row per decision/transition, inserted in
// the same transaction as the mutation it describes, never updated or deleted.

// PriorityAuditLog records every priority evaluation and override
type PriorityAuditLog struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	AdmissionID   uint          `gorm:"not null;index" json:"admission_id"`
	PriorityCode  PriorityCode  `gorm:"size:5;not null" json:"priority_code"`
	ConditionType ConditionType `gorm:"size:30" json:"condition_type,omitempty"`
	Reason        string        `gorm:"size:500" json:"reason"`
	IsOverride    bool          `gorm:"default:false" json:"is_override"`
	ActorID       *uint         `json:"actor_id,omitempty"`
	CreatedAt     time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for PriorityAuditLog model
func (PriorityAuditLog) TableName() string {
	return "priority_audit_logs"
}

// AdmissionStatusAuditLog records every admission status transition
type AdmissionStatusAuditLog struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	AdmissionID uint            `gorm:"not null;index" json:"admission_id"`
	FromStatus  AdmissionStatus `gorm:"size:25" json:"from_status,omitempty"`
	ToStatus    AdmissionStatus `gorm:"size:25;not null" json:"to_status"`
	Remarks     string          `gorm:"size:500" json:"remarks,omitempty"`
	ActorID     *uint           `json:"actor_id,omitempty"`
	CreatedAt   time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for AdmissionStatusAuditLog model
func (AdmissionStatusAuditLog) TableName() string {
	return "admission_status_audit_logs"
}

// TransferAuditLog records every transfer workflow step
type TransferAuditLog struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	RecommendationID uint           `gorm:"not null;index" json:"recommendation_id"`
	Step             string         `gorm:"size:50;not null" json:"step"`
	Status           TransferStatus `gorm:"size:20" json:"status"`
	Details          string         `gorm:"type:text" json:"details,omitempty"`
	ActorID          *uint          `json:"actor_id,omitempty"`
	CreatedAt        time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for TransferAuditLog model
func (TransferAuditLog) TableName() string {
	return "transfer_audit_logs"
}
