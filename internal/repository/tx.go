package repository

import (
	"time"

	"hms-ipd-backend/internal/models"

	"gorm.io/gorm"
)

// Stores bundles the per-aggregate stores that participate in one unit of
// work. Inside TxManager.Do every store is bound to the same transaction, so
// a mutation touching admission, bed, allocation and audit rows either
// commits whole or not at all.
type Stores interface {
	Beds() BedStore
	Admissions() AdmissionStore
	Allocations() AllocationStore
	Transfers() TransferStore
	Audits() AuditStore
}

// TxManager runs a function against Stores inside one database transaction.
// Reads that need no atomicity may use the Stores returned by NewStores
// directly.
type TxManager interface {
	Do(fn func(s Stores) error) error
}

// BedStore owns bed rows and their status
type BedStore interface {
	Create(bed *models.Bed) error
	Get(id uint) (*models.Bed, error)
	// GetForUpdate locks the bed row for the rest of the transaction.
	GetForUpdate(id uint) (*models.Bed, error)
	UpdateStatus(id uint, status models.BedStatus) error
	Deactivate(id uint) error
	ListByWard(wardID uint) ([]models.Bed, error)
}

// AdmissionStore owns ipd_admissions rows
type AdmissionStore interface {
	Create(adm *models.IPDAdmission) error
	Get(id uint) (*models.IPDAdmission, error)
	GetForUpdate(id uint) (*models.IPDAdmission, error)
	GetByNumber(number string) (*models.IPDAdmission, error)
	Update(adm *models.IPDAdmission) error
	FindActiveByPatient(patientID uint) (*models.IPDAdmission, error)
	ListActive() ([]models.IPDAdmission, error)
	ListByStatus(status models.AdmissionStatus) ([]models.IPDAdmission, error)
	// NextSequence returns 1 + the highest admission-number sequence already
	// issued for the given year.
	NextSequence(year int) (int, error)
}

// AllocationStore owns bed_allocations rows
type AllocationStore interface {
	Create(alloc *models.BedAllocation) error
	GetActiveByAdmission(admissionID uint) (*models.BedAllocation, error)
	GetActiveByBed(bedID uint) (*models.BedAllocation, error)
	Release(id uint, at time.Time) error
	ListByAdmission(admissionID uint) ([]models.BedAllocation, error)
}

// TransferStore owns the transfer workflow rows
type TransferStore interface {
	CreateRecommendation(rec *models.TransferRecommendation) error
	GetRecommendation(id uint) (*models.TransferRecommendation, error)
	GetRecommendationForUpdate(id uint) (*models.TransferRecommendation, error)
	UpdateRecommendation(rec *models.TransferRecommendation) error
	ListPendingJustifications() ([]models.TransferRecommendation, error)

	CreateConsent(consent *models.TransferConsent) error
	GetConsentByRecommendation(recommendationID uint) (*models.TransferConsent, error)

	CreateReservation(res *models.TransferBedReservation) error
	GetReservationByRecommendation(recommendationID uint) (*models.TransferBedReservation, error)
	CloseReservation(id uint, status models.ReservationStatus, at time.Time) error

	CreatePatientTransfer(pt *models.PatientTransfer) error
	GetPatientTransferByRecommendation(recommendationID uint) (*models.PatientTransfer, error)
	UpdatePatientTransfer(pt *models.PatientTransfer) error
}

// AuditStore appends to the audit tables. Append-only: no update or delete.
type AuditStore interface {
	AppendPriority(entry *models.PriorityAuditLog) error
	AppendStatus(entry *models.AdmissionStatusAuditLog) error
	AppendTransfer(entry *models.TransferAuditLog) error
	ListPriorityByAdmission(admissionID uint) ([]models.PriorityAuditLog, error)
	ListStatusByAdmission(admissionID uint) ([]models.AdmissionStatusAuditLog, error)
	ListTransferByRecommendation(recommendationID uint) ([]models.TransferAuditLog, error)
}

type gormStores struct {
	db *gorm.DB
}

// NewStores returns Stores bound to db, outside any transaction. Use for
// reads; every multi-entity mutation must go through a TxManager.
func NewStores(db *gorm.DB) Stores {
	return &gormStores{db: db}
}

func (s *gormStores) Beds() BedStore               { return &BedRepository{db: s.db} }
func (s *gormStores) Admissions() AdmissionStore   { return &AdmissionRepository{db: s.db} }
func (s *gormStores) Allocations() AllocationStore { return &AllocationRepository{db: s.db} }
func (s *gormStores) Transfers() TransferStore     { return &TransferRepository{db: s.db} }
func (s *gormStores) Audits() AuditStore           { return &AuditRepository{db: s.db} }

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager returns a TxManager backed by gorm transactions.
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

// Do runs fn inside one transaction; any error rolls the whole unit back.
func (m *gormTxManager) Do(fn func(s Stores) error) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormStores{db: tx})
	})
}
