package repository

import (
	"errors"
	"time"

	"hms-ipd-backend/internal/apperr"
	"hms-ipd-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransferRepository struct {
	db *gorm.DB
}

func NewTransferRepo(db *gorm.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

// CreateRecommendation inserts a new transfer recommendation
func (r *TransferRepository) CreateRecommendation(rec *models.TransferRecommendation) error {
	return r.db.Create(rec).Error
}

// GetRecommendation retrieves a recommendation by ID
func (r *TransferRepository) GetRecommendation(id uint) (*models.TransferRecommendation, error) {
	var rec models.TransferRecommendation
	err := r.db.Preload("Admission").Preload("Doctor").First(&rec, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.ErrNotFound, "transfer recommendation %d not found", id)
		}
		return nil, err
	}
	return &rec, nil
}

// GetRecommendationForUpdate locks the recommendation row for the remainder
// of the transaction so concurrent workflow steps serialize on it.
func (r *TransferRepository) GetRecommendationForUpdate(id uint) (*models.TransferRecommendation, error) {
	var rec models.TransferRecommendation
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rec, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.ErrNotFound, "transfer recommendation %d not found", id)
		}
		return nil, err
	}
	return &rec, nil
}

// UpdateRecommendation saves the full recommendation row
func (r *TransferRepository) UpdateRecommendation(rec *models.TransferRecommendation) error {
	return r.db.Save(rec).Error
}

// ListPendingJustifications returns emergency recommendations that still owe
// their written justification.
func (r *TransferRepository) ListPendingJustifications() ([]models.TransferRecommendation, error) {
	var recs []models.TransferRecommendation
	err := r.db.Preload("Admission").Preload("Doctor").
		Where("is_emergency = ? AND (justification IS NULL OR justification = '') AND status <> ?",
			true, models.TransferCancelled).
		Order("created_at ASC").
		Find(&recs).Error
	return recs, err
}

// CreateConsent records consent for a recommendation. The unique index on
// recommendation_id makes a replay surface as Conflict.
func (r *TransferRepository) CreateConsent(consent *models.TransferConsent) error {
	if err := r.db.Create(consent).Error; err != nil {
		if isDuplicate(err) {
			return apperr.Newf(apperr.ErrConflict, "consent already recorded for recommendation %d", consent.RecommendationID)
		}
		return err
	}
	return nil
}

// GetConsentByRecommendation retrieves the consent tied to a recommendation
func (r *TransferRepository) GetConsentByRecommendation(recommendationID uint) (*models.TransferConsent, error) {
	var consent models.TransferConsent
	err := r.db.Where("recommendation_id = ?", recommendationID).First(&consent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.ErrNotFound, "no consent recorded for recommendation %d", recommendationID)
		}
		return nil, err
	}
	return &consent, nil
}

// CreateReservation holds a bed for a recommendation. The unique index on
// reserved_bed_id guarantees at most one RESERVED hold per bed: of two
// concurrent confirm-bed calls exactly one insert commits.
func (r *TransferRepository) CreateReservation(res *models.TransferBedReservation) error {
	res.ReservedBedID = &res.BedID
	if err := r.db.Create(res).Error; err != nil {
		if isDuplicate(err) {
			return apperr.Newf(apperr.ErrConflict, "bed %d is already reserved", res.BedID)
		}
		return err
	}
	return nil
}

// GetReservationByRecommendation retrieves the reservation for a recommendation
func (r *TransferRepository) GetReservationByRecommendation(recommendationID uint) (*models.TransferBedReservation, error) {
	var res models.TransferBedReservation
	err := r.db.Where("recommendation_id = ?", recommendationID).First(&res).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.ErrNotFound, "no bed reservation for recommendation %d", recommendationID)
		}
		return nil, err
	}
	return &res, nil
}

// CloseReservation moves the reservation out of RESERVED, freeing the bed's
// unique hold slot.
func (r *TransferRepository) CloseReservation(id uint, status models.ReservationStatus, at time.Time) error {
	return r.db.Model(&models.TransferBedReservation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          status,
			"reserved_bed_id": nil,
			"closed_at":       at,
		}).Error
}

// CreatePatientTransfer inserts the execution record
func (r *TransferRepository) CreatePatientTransfer(pt *models.PatientTransfer) error {
	if err := r.db.Create(pt).Error; err != nil {
		if isDuplicate(err) {
			return apperr.Newf(apperr.ErrConflict, "transfer already executed for recommendation %d", pt.RecommendationID)
		}
		return err
	}
	return nil
}

// GetPatientTransferByRecommendation retrieves the execution record
func (r *TransferRepository) GetPatientTransferByRecommendation(recommendationID uint) (*models.PatientTransfer, error) {
	var pt models.PatientTransfer
	err := r.db.Where("recommendation_id = ?", recommendationID).First(&pt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.ErrNotFound, "no transfer execution for recommendation %d", recommendationID)
		}
		return nil, err
	}
	return &pt, nil
}

// UpdatePatientTransfer saves the full execution record
func (r *TransferRepository) UpdatePatientTransfer(pt *models.PatientTransfer) error {
	return r.db.Save(pt).Error
}
