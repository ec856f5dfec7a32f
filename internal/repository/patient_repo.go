package repository

import (
	"errors"

	"hms-ipd-backend/internal/apperr"
	"hms-ipd-backend/internal/models"

	"gorm.io/gorm"
)

// Patient and doctor lookups sit at the boundary with registration and the
// doctor directory; the engine only validates existence.

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepo(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// FindByUHID finds an active patient by UHID
func (r *PatientRepository) FindByUHID(uhid string) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.Where("uhid = ? AND is_active = ?", uhid, true).First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.ErrNotFound, "patient with UHID %s not found", uhid)
		}
		return nil, err
	}
	return &patient, nil
}

type DoctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepo(db *gorm.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

// FindByID finds an active doctor by ID
func (r *DoctorRepository) FindByID(id uint) (*models.Doctor, error) {
	var doctor models.Doctor
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.ErrNotFound, "doctor %d not found", id)
		}
		return nil, err
	}
	return &doctor, nil
}
