package service

import (
	"hms-ipd-backend/internal/apperr"
	"hms-ipd-backend/internal/models"
	"hms-ipd-backend/internal/repository"

	"go.uber.org/zap"
)

// WardLookup resolves wards for bed setup and priority evaluation.
type WardLookup interface {
	Create(ward *models.Ward) error
	Get(id uint) (*models.Ward, error)
	List() ([]models.Ward, error)
}

// administrative statuses an operator may set directly; OCCUPIED and
// RESERVED belong to the lifecycle and transfer services
var adminSettable = map[models.BedStatus]bool{
	models.BedAvailable:   true,
	models.BedCleaning:    true,
	models.BedMaintenance: true,
	models.BedIsolation:   true,
}

// BedService covers ward setup and administrative bed status changes.
// Allocation-driven status changes happen inside the lifecycle and transfer
// transactions, not here.
type BedService struct {
	tx     repository.TxManager
	stores repository.Stores
	wards  WardLookup
	logger *zap.Logger
}

func NewBedService(tx repository.TxManager, stores repository.Stores, wards WardLookup, logger *zap.Logger) *BedService {
	return &BedService{tx: tx, stores: stores, wards: wards, logger: logger}
}

// CreateWard registers a new ward
func (s *BedService) CreateWard(ward *models.Ward) error {
	if ward.Code == "" || ward.Name == "" || ward.WardType == "" {
		return apperr.New(apperr.ErrInvalidInput, "ward code, name and ward type are required")
	}
	ward.IsActive = true
	return s.wards.Create(ward)
}

// ListWards returns all active wards
func (s *BedService) ListWards() ([]models.Ward, error) {
	return s.wards.List()
}

// CreateBed adds a bed to a ward, starting AVAILABLE
func (s *BedService) CreateBed(bed *models.Bed) error {
	if bed.BedNumber == "" {
		return apperr.New(apperr.ErrInvalidInput, "bed number is required")
	}
	if _, err := s.wards.Get(bed.WardID); err != nil {
		return err
	}
	bed.Status = models.BedAvailable
	bed.IsActive = true
	return s.tx.Do(func(st repository.Stores) error {
		return st.Beds().Create(bed)
	})
}

// ListBeds returns all beds in a ward
func (s *BedService) ListBeds(wardID uint) ([]models.Bed, error) {
	if _, err := s.wards.Get(wardID); err != nil {
		return nil, err
	}
	return s.stores.Beds().ListByWard(wardID)
}

// SetStatus applies an administrative status change (cleaning, maintenance,
// isolation, back to available). Rejected while the bed has an active
// allocation or a live reservation hold.
func (s *BedService) SetStatus(bedID uint, status models.BedStatus, actor Actor) error {
	if !adminSettable[status] {
		return apperr.Newf(apperr.ErrInvalidInput,
			"status %s cannot be set administratively", status)
	}

	err := s.tx.Do(func(st repository.Stores) error {
		bed, err := st.Beds().GetForUpdate(bedID)
		if err != nil {
			return err
		}
		if _, err := st.Allocations().GetActiveByBed(bed.ID); err == nil {
			return apperr.Newf(apperr.ErrConflict,
				"bed %d has an active allocation; discharge or transfer the patient first", bed.ID)
		} else if !apperr.NotFound(err) {
			return err
		}
		if bed.Status == models.BedReserved {
			return apperr.Newf(apperr.ErrConflict,
				"bed %d is held by a transfer reservation", bed.ID)
		}
		return st.Beds().UpdateStatus(bed.ID, status)
	})
	if err != nil {
		return err
	}

	s.logger.Info("bed status changed",
		zap.Uint("bed_id", bedID),
		zap.String("status", string(status)),
		zap.Uint("actor_id", actor.UserID))
	return nil
}

// Deactivate retires a bed. Beds are never deleted; history keeps referring
// to them.
func (s *BedService) Deactivate(bedID uint, actor Actor) error {
	err := s.tx.Do(func(st repository.Stores) error {
		bed, err := st.Beds().GetForUpdate(bedID)
		if err != nil {
			return err
		}
		if _, err := st.Allocations().GetActiveByBed(bed.ID); err == nil {
			return apperr.Newf(apperr.ErrConflict,
				"bed %d has an active allocation and cannot be deactivated", bed.ID)
		} else if !apperr.NotFound(err) {
			return err
		}
		if bed.Status == models.BedReserved {
			return apperr.Newf(apperr.ErrConflict,
				"bed %d is held by a transfer reservation", bed.ID)
		}
		return st.Beds().Deactivate(bed.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("bed deactivated",
		zap.Uint("bed_id", bedID),
		zap.Uint("actor_id", actor.UserID))
	return nil
}
