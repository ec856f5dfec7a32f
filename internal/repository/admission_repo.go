package repository

import (
	"errors"
	"fmt"
	"time"

	"hms-ipd-backend/internal/apperr"
	"hms-ipd-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdmissionRepository struct {
	db *gorm.DB
}

func NewAdmissionRepo(db *gorm.DB) *AdmissionRepository {
	return &AdmissionRepository{db: db}
}

// Create inserts a new admission. A duplicate-key error surfaces as Conflict;
// the caller decides whether the collision was the active-patient guard or
// the admission number and reacts accordingly.
func (r *AdmissionRepository) Create(adm *models.IPDAdmission) error {
	if err := r.db.Create(adm).Error; err != nil {
		if isDuplicate(err) {
			return apperr.New(apperr.ErrConflict, "admission conflicts with an existing row")
		}
		return err
	}
	return nil
}

// Get retrieves an admission by ID
func (r *AdmissionRepository) Get(id uint) (*models.IPDAdmission, error) {
	var adm models.IPDAdmission
	err := r.db.Preload("Patient").Preload("Doctor").First(&adm, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.ErrNotFound, "admission %d not found", id)
		}
		return nil, err
	}
	return &adm, nil
}

// GetForUpdate locks the admission row for the remainder of the transaction.
func (r *AdmissionRepository) GetForUpdate(id uint) (*models.IPDAdmission, error) {
	var adm models.IPDAdmission
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&adm, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.ErrNotFound, "admission %d not found", id)
		}
		return nil, err
	}
	return &adm, nil
}

// GetByNumber retrieves an admission by its admission number
func (r *AdmissionRepository) GetByNumber(number string) (*models.IPDAdmission, error) {
	var adm models.IPDAdmission
	err := r.db.Preload("Patient").Preload("Doctor").
		Where("admission_number = ?", number).
		First(&adm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.ErrNotFound, "admission %s not found", number)
		}
		return nil, err
	}
	return &adm, nil
}

// Update saves the full admission row
func (r *AdmissionRepository) Update(adm *models.IPDAdmission) error {
	if err := r.db.Save(adm).Error; err != nil {
		if isDuplicate(err) {
			return apperr.New(apperr.ErrConflict, "admission conflicts with an existing row")
		}
		return err
	}
	return nil
}

// FindActiveByPatient returns the patient's non-terminal admission, if any
func (r *AdmissionRepository) FindActiveByPatient(patientID uint) (*models.IPDAdmission, error) {
	var adm models.IPDAdmission
	err := r.db.Where("active_patient_key = ?", patientID).First(&adm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.ErrNotFound, "no active admission for patient %d", patientID)
		}
		return nil, err
	}
	return &adm, nil
}

// ListActive retrieves all admissions in a non-terminal status
func (r *AdmissionRepository) ListActive() ([]models.IPDAdmission, error) {
	var adms []models.IPDAdmission
	err := r.db.Preload("Patient").Preload("Doctor").
		Where("status IN ?", []models.AdmissionStatus{
			models.AdmissionAdmitted,
			models.AdmissionActive,
			models.AdmissionTransferred,
			models.AdmissionDischargeInitiated,
		}).
		Find(&adms).Error
	return adms, err
}

// ListByStatus retrieves admissions with the given status
func (r *AdmissionRepository) ListByStatus(status models.AdmissionStatus) ([]models.IPDAdmission, error) {
	var adms []models.IPDAdmission
	err := r.db.Preload("Patient").Preload("Doctor").
		Where("status = ?", status).
		Order("admitted_at ASC").
		Find(&adms).Error
	return adms, err
}

// NextSequence returns 1 + the highest sequence already issued within the
// year's IPD-<year>-NNNNNN numbers. Runs inside the admit transaction; the
// unique index on admission_number backstops concurrent allocators.
func (r *AdmissionRepository) NextSequence(year int) (int, error) {
	prefix := fmt.Sprintf("IPD-%d-", year)
	var max *int
	err := r.db.Model(&models.IPDAdmission{}).
		Where("admission_number LIKE ?", prefix+"%").
		Select("MAX(CAST(SUBSTRING(admission_number, ?) AS UNSIGNED))", len(prefix)+1).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}

// FormatAdmissionNumber renders the canonical IPD-<year>-<6-digit-seq> form.
func FormatAdmissionNumber(year, seq int) string {
	return fmt.Sprintf("IPD-%d-%06d", year, seq)
}

type AllocationRepository struct {
	db *gorm.DB
}

func NewAllocationRepo(db *gorm.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// Create opens a new allocation. The unique indexes on active_bed_id and
// active_admission_id reject a second live allocation for either side.
func (r *AllocationRepository) Create(alloc *models.BedAllocation) error {
	alloc.ActiveBedID = &alloc.BedID
	alloc.ActiveAdmissionID = &alloc.AdmissionID
	if err := r.db.Create(alloc).Error; err != nil {
		if isDuplicate(err) {
			return apperr.Newf(apperr.ErrConflict, "bed %d already has an active allocation", alloc.BedID)
		}
		return err
	}
	return nil
}

// GetActiveByAdmission returns the admission's open allocation
func (r *AllocationRepository) GetActiveByAdmission(admissionID uint) (*models.BedAllocation, error) {
	var alloc models.BedAllocation
	err := r.db.Where("active_admission_id = ?", admissionID).First(&alloc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.ErrNotFound, "no active bed allocation for admission %d", admissionID)
		}
		return nil, err
	}
	return &alloc, nil
}

// GetActiveByBed returns the bed's open allocation
func (r *AllocationRepository) GetActiveByBed(bedID uint) (*models.BedAllocation, error) {
	var alloc models.BedAllocation
	err := r.db.Where("active_bed_id = ?", bedID).First(&alloc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.ErrNotFound, "no active allocation on bed %d", bedID)
		}
		return nil, err
	}
	return &alloc, nil
}

// Release closes an allocation; the row stays as history.
func (r *AllocationRepository) Release(id uint, at time.Time) error {
	return r.db.Model(&models.BedAllocation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"released_at":         at,
			"active_bed_id":       nil,
			"active_admission_id": nil,
		}).Error
}

// ListByAdmission returns the admission's full allocation history
func (r *AllocationRepository) ListByAdmission(admissionID uint) ([]models.BedAllocation, error) {
	var allocs []models.BedAllocation
	err := r.db.Preload("Bed").
		Where("admission_id = ?", admissionID).
		Order("allocated_at ASC").
		Find(&allocs).Error
	return allocs, err
}
