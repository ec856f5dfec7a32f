package repository

import (
	"hms-ipd-backend/internal/models"

	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// AppendPriority appends a priority decision entry
func (r *AuditRepository) AppendPriority(entry *models.PriorityAuditLog) error {
	return r.db.Create(entry).Error
}

// AppendStatus appends a status transition entry
func (r *AuditRepository) AppendStatus(entry *models.AdmissionStatusAuditLog) error {
	return r.db.Create(entry).Error
}

// AppendTransfer appends a transfer workflow step entry
func (r *AuditRepository) AppendTransfer(entry *models.TransferAuditLog) error {
	return r.db.Create(entry).Error
}

// ListPriorityByAdmission returns the admission's priority decision history
func (r *AuditRepository) ListPriorityByAdmission(admissionID uint) ([]models.PriorityAuditLog, error) {
	var entries []models.PriorityAuditLog
	err := r.db.Where("admission_id = ?", admissionID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

// ListStatusByAdmission returns the admission's status transition history,
// totally ordered by insertion time.
func (r *AuditRepository) ListStatusByAdmission(admissionID uint) ([]models.AdmissionStatusAuditLog, error) {
	var entries []models.AdmissionStatusAuditLog
	err := r.db.Where("admission_id = ?", admissionID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

// ListTransferByRecommendation returns the workflow step history for one
// recommendation.
func (r *AuditRepository) ListTransferByRecommendation(recommendationID uint) ([]models.TransferAuditLog, error) {
	var entries []models.TransferAuditLog
	err := r.db.Where("recommendation_id = ?", recommendationID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}
