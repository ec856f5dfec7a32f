package repository

import (
	"errors"

	"hms-ipd-backend/internal/apperr"
	"hms-ipd-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// isDuplicate reports whether err is a unique-constraint violation. Requires
// TranslateError to be enabled on the gorm connection.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

type BedRepository struct {
	db *gorm.DB
}

func NewBedRepo(db *gorm.DB) *BedRepository {
	return &BedRepository{db: db}
}

// Create inserts a new bed
func (r *BedRepository) Create(bed *models.Bed) error {
	if err := r.db.Create(bed).Error; err != nil {
		if isDuplicate(err) {
			return apperr.Newf(apperr.ErrConflict, "bed number %s already exists in ward %d", bed.BedNumber, bed.WardID)
		}
		return err
	}
	return nil
}

// Get retrieves a bed by ID
func (r *BedRepository) Get(id uint) (*models.Bed, error) {
	var bed models.Bed
	err := r.db.Preload("Ward").First(&bed, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.ErrNotFound, "bed %d not found", id)
		}
		return nil, err
	}
	return &bed, nil
}

// GetForUpdate locks the bed row for the remainder of the transaction so
// concurrent admit/transfer/reserve calls serialize on the bed.
func (r *BedRepository) GetForUpdate(id uint) (*models.Bed, error) {
	var bed models.Bed
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&bed, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.ErrNotFound, "bed %d not found", id)
		}
		return nil, err
	}
	return &bed, nil
}

// UpdateStatus sets the bed status
func (r *BedRepository) UpdateStatus(id uint, status models.BedStatus) error {
	return r.db.Model(&models.Bed{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Deactivate soft deletes a bed by setting is_active to false
func (r *BedRepository) Deactivate(id uint) error {
	res := r.db.Model(&models.Bed{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.ErrNotFound, "bed %d not found", id)
	}
	return nil
}

// ListByWard retrieves all beds in a ward
func (r *BedRepository) ListByWard(wardID uint) ([]models.Bed, error) {
	var beds []models.Bed
	err := r.db.Where("ward_id = ?", wardID).
		Order("bed_number ASC").
		Find(&beds).Error
	return beds, err
}

type WardRepository struct {
	db *gorm.DB
}

func NewWardRepo(db *gorm.DB) *WardRepository {
	return &WardRepository{db: db}
}

// Create inserts a new ward
func (r *WardRepository) Create(ward *models.Ward) error {
	if err := r.db.Create(ward).Error; err != nil {
		if isDuplicate(err) {
			return apperr.Newf(apperr.ErrConflict, "ward code %s already exists", ward.Code)
		}
		return err
	}
	return nil
}

// Get retrieves a ward by ID
func (r *WardRepository) Get(id uint) (*models.Ward, error) {
	var ward models.Ward
	err := r.db.First(&ward, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.ErrNotFound, "ward %d not found", id)
		}
		return nil, err
	}
	return &ward, nil
}

// List retrieves all active wards
func (r *WardRepository) List() ([]models.Ward, error) {
	var wards []models.Ward
	err := r.db.Where("is_active = ?", true).
		Order("code ASC").
		Find(&wards).Error
	return wards, err
}
