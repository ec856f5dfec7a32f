package service

import (
	"fmt"
	"time"

	"hms-ipd-backend/internal/apperr"
	"hms-ipd-backend/internal/models"
	"hms-ipd-backend/internal/repository"

	"go.uber.org/zap"
)

// Actor identifies the authenticated caller. Services never inspect auth
// state themselves; handlers build the Actor from the request context.
type Actor struct {
	UserID uint
	Role   string
}

// PatientLookup resolves patients at the registration boundary.
type PatientLookup interface {
	FindByUHID(uhid string) (*models.Patient, error)
}

// DoctorLookup resolves doctors at the directory boundary.
type DoctorLookup interface {
	FindByID(id uint) (*models.Doctor, error)
}

// AdmitRequest carries everything needed to open an admission.
type AdmitRequest struct {
	PatientUHID   string               `json:"patient_uhid" binding:"required"`
	DoctorID      uint                 `json:"doctor_id" binding:"required"`
	BedID         uint                 `json:"bed_id" binding:"required"`
	AdmissionType models.AdmissionType `json:"admission_type" binding:"required"`
	Diagnosis     string               `json:"diagnosis"`
	Remarks       string               `json:"remarks"`
	DepositAmount float64              `json:"deposit_amount"`
	SeniorCitizen bool                 `json:"senior_citizen"`
	Pregnant      bool                 `json:"pregnant"`
	Child         bool                 `json:"child"`
	Disabled      bool                 `json:"disabled"`
}

const admissionNumberRetries = 3

// AdmissionService is the admission lifecycle manager: it owns every status
// transition and mutates bed state in the same transaction as the admission.
type AdmissionService struct {
	tx        repository.TxManager
	stores    repository.Stores
	patients  PatientLookup
	doctors   DoctorLookup
	evaluator *PriorityEvaluator
	logger    *zap.Logger
}

func NewAdmissionService(
	tx repository.TxManager,
	stores repository.Stores,
	patients PatientLookup,
	doctors DoctorLookup,
	evaluator *PriorityEvaluator,
	logger *zap.Logger,
) *AdmissionService {
	return &AdmissionService{
		tx:        tx,
		stores:    stores,
		patients:  patients,
		doctors:   doctors,
		evaluator: evaluator,
		logger:    logger,
	}
}

// invalidTransition builds the Conflict error naming the allowed set.
func invalidTransition(from, to models.AdmissionStatus) error {
	allowed := models.AllowedFrom(to)
	names := make([]string, len(allowed))
	for i, s := range allowed {
		if s == "" {
			names[i] = "<none>"
		} else {
			names[i] = string(s)
		}
	}
	return apperr.Newf(apperr.ErrConflict,
		"invalid transition %s → %s; %s is reachable only from %v", from, to, to, names)
}

// Admit opens a new admission: generates the admission number, evaluates
// priority, allocates the bed and reserves it, all in one transaction.
func (s *AdmissionService) Admit(req AdmitRequest, actor Actor) (*models.IPDAdmission, error) {
	if !models.ValidAdmissionType(req.AdmissionType) {
		return nil, apperr.Newf(apperr.ErrInvalidInput, "unknown admission type %q", req.AdmissionType)
	}

	patient, err := s.patients.FindByUHID(req.PatientUHID)
	if err != nil {
		return nil, err
	}
	if _, err := s.doctors.FindByID(req.DoctorID); err != nil {
		return nil, err
	}

	now := time.Now()
	var admission *models.IPDAdmission

	err = s.tx.Do(func(st repository.Stores) error {
		bed, err := st.Beds().GetForUpdate(req.BedID)
		if err != nil {
			return err
		}
		if !bed.Allocatable() {
			return apperr.Newf(apperr.ErrConflict,
				"bed %d must be AVAILABLE and active at admit time; current status %s", bed.ID, bed.Status)
		}
		if _, err := st.Allocations().GetActiveByBed(bed.ID); err == nil {
			return apperr.Newf(apperr.ErrConflict, "bed %d already has an active allocation", bed.ID)
		} else if !apperr.NotFound(err) {
			return err
		}
		if existing, err := st.Admissions().FindActiveByPatient(patient.ID); err == nil {
			return apperr.Newf(apperr.ErrConflict,
				"patient %s already has active admission %s", patient.UHID, existing.AdmissionNumber)
		} else if !apperr.NotFound(err) {
			return err
		}

		ward, err := s.wardOf(st, bed)
		if err != nil {
			return err
		}
		result := s.evaluator.Evaluate(PriorityInput{
			AdmissionSource: string(req.AdmissionType),
			WardType:        ward.WardType,
			Referred:        req.AdmissionType == models.AdmissionOPDReferral,
			SeniorCitizen:   req.SeniorCitizen,
			Pregnant:        req.Pregnant,
			Child:           req.Child,
			Disabled:        req.Disabled,
		})

		adm := &models.IPDAdmission{
			PatientID:        patient.ID,
			DoctorID:         req.DoctorID,
			AdmissionType:    req.AdmissionType,
			Status:           models.AdmissionAdmitted,
			ActivePatientKey: &patient.ID,
			AdmittedAt:       now,
			Diagnosis:        req.Diagnosis,
			Remarks:          req.Remarks,
			DepositAmount:    req.DepositAmount,
			PriorityCode:     result.Code,
			PriorityReason:   result.Rationale,
		}
		if err := s.createWithNumber(st, adm, patient); err != nil {
			return err
		}

		if err := st.Allocations().Create(&models.BedAllocation{
			BedID:       bed.ID,
			AdmissionID: adm.ID,
			AllocatedAt: now,
		}); err != nil {
			return err
		}
		if err := st.Beds().UpdateStatus(bed.ID, models.BedReserved); err != nil {
			return err
		}

		actorID := actor.UserID
		if err := st.Audits().AppendStatus(&models.AdmissionStatusAuditLog{
			AdmissionID: adm.ID,
			FromStatus:  "",
			ToStatus:    models.AdmissionAdmitted,
			Remarks:     fmt.Sprintf("admitted to bed %d", bed.ID),
			ActorID:     &actorID,
		}); err != nil {
			return err
		}
		if err := st.Audits().AppendPriority(&models.PriorityAuditLog{
			AdmissionID:   adm.ID,
			PriorityCode:  result.Code,
			ConditionType: result.Condition,
			Reason:        result.Rationale,
			ActorID:       &actorID,
		}); err != nil {
			return err
		}

		admission = adm
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("admission created",
		zap.String("admission_number", admission.AdmissionNumber),
		zap.String("patient_uhid", patient.UHID),
		zap.String("priority", string(admission.PriorityCode)))
	return admission, nil
}

// createWithNumber allocates the next IPD-<year>-NNNNNN number and inserts
// the admission, retrying a bounded number of times on number collision.
func (s *AdmissionService) createWithNumber(st repository.Stores, adm *models.IPDAdmission, patient *models.Patient) error {
	year := adm.AdmittedAt.Year()
	for attempt := 0; attempt < admissionNumberRetries; attempt++ {
		seq, err := st.Admissions().NextSequence(year)
		if err != nil {
			return err
		}
		adm.AdmissionNumber = repository.FormatAdmissionNumber(year, seq)
		err = st.Admissions().Create(adm)
		if err == nil {
			return nil
		}
		if !apperr.Conflict(err) {
			return err
		}
		// distinguish the active-patient guard from a number collision
		if existing, ferr := st.Admissions().FindActiveByPatient(patient.ID); ferr == nil {
			return apperr.Newf(apperr.ErrConflict,
				"patient %s already has active admission %s", patient.UHID, existing.AdmissionNumber)
		}
	}
	return apperr.Newf(apperr.ErrConflict, "could not allocate a unique admission number after %d attempts", admissionNumberRetries)
}

// ShiftToWard moves a freshly admitted patient onto the ward: ADMITTED →
// ACTIVE, bed RESERVED → OCCUPIED.
func (s *AdmissionService) ShiftToWard(admissionID uint, shiftedAt time.Time, actor Actor) (*models.IPDAdmission, error) {
	var admission *models.IPDAdmission
	err := s.tx.Do(func(st repository.Stores) error {
		adm, err := st.Admissions().GetForUpdate(admissionID)
		if err != nil {
			return err
		}
		if adm.Status != models.AdmissionAdmitted {
			return invalidTransition(adm.Status, models.AdmissionActive)
		}

		from := adm.Status
		adm.Status = models.AdmissionActive
		adm.ShiftedAt = &shiftedAt
		if err := st.Admissions().Update(adm); err != nil {
			return err
		}

		alloc, err := st.Allocations().GetActiveByAdmission(adm.ID)
		if err != nil {
			return err
		}
		if err := st.Beds().UpdateStatus(alloc.BedID, models.BedOccupied); err != nil {
			return err
		}

		actorID := actor.UserID
		if err := st.Audits().AppendStatus(&models.AdmissionStatusAuditLog{
			AdmissionID: adm.ID,
			FromStatus:  from,
			ToStatus:    models.AdmissionActive,
			Remarks:     "patient shifted to ward",
			ActorID:     &actorID,
		}); err != nil {
			return err
		}
		admission = adm
		return nil
	})
	if err != nil {
		return nil, err
	}
	return admission, nil
}

// Transfer swaps the admission onto a new bed: the current allocation closes
// (old bed AVAILABLE), a new one opens (new bed OCCUPIED), and the status
// moves to TRANSFERRED (surfaced as SHIFTED).
func (s *AdmissionService) Transfer(admissionID, targetBedID uint, remarks string, actor Actor) (*models.IPDAdmission, error) {
	var admission *models.IPDAdmission
	err := s.tx.Do(func(st repository.Stores) error {
		adm, err := s.transferLocked(st, admissionID, targetBedID, remarks, actor, false)
		if err != nil {
			return err
		}
		admission = adm
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("admission transferred",
		zap.Uint("admission_id", admissionID),
		zap.Uint("target_bed_id", targetBedID))
	return admission, nil
}

// TransferWithin performs the bed swap inside an already-open unit of work.
// The transfer workflow's execute step uses it so reservation confirmation
// and the swap commit together; the target bed may be RESERVED because the
// workflow's own hold put it there.
func (s *AdmissionService) TransferWithin(st repository.Stores, admissionID, targetBedID uint, remarks string, actor Actor) (*models.IPDAdmission, error) {
	return s.transferLocked(st, admissionID, targetBedID, remarks, actor, true)
}

func (s *AdmissionService) transferLocked(st repository.Stores, admissionID, targetBedID uint, remarks string, actor Actor, viaReservation bool) (*models.IPDAdmission, error) {
	adm, err := st.Admissions().GetForUpdate(admissionID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(adm.Status, models.AdmissionTransferred) {
		return nil, invalidTransition(adm.Status, models.AdmissionTransferred)
	}

	target, err := st.Beds().GetForUpdate(targetBedID)
	if err != nil {
		return nil, err
	}
	statusOK := target.Status == models.BedAvailable ||
		(viaReservation && target.Status == models.BedReserved)
	if !target.IsActive || !statusOK {
		return nil, apperr.Newf(apperr.ErrConflict,
			"target bed %d must be AVAILABLE and active; current status %s", target.ID, target.Status)
	}
	if _, err := st.Allocations().GetActiveByBed(target.ID); err == nil {
		return nil, apperr.Newf(apperr.ErrConflict, "target bed %d already has an active allocation", target.ID)
	} else if !apperr.NotFound(err) {
		return nil, err
	}

	current, err := st.Allocations().GetActiveByAdmission(adm.ID)
	if err != nil {
		return nil, err
	}
	if current.BedID == target.ID {
		return nil, apperr.Newf(apperr.ErrConflict, "admission %d is already on bed %d", adm.ID, target.ID)
	}

	now := time.Now()
	if err := st.Allocations().Release(current.ID, now); err != nil {
		return nil, err
	}
	if err := st.Beds().UpdateStatus(current.BedID, models.BedAvailable); err != nil {
		return nil, err
	}
	if err := st.Allocations().Create(&models.BedAllocation{
		BedID:       target.ID,
		AdmissionID: adm.ID,
		AllocatedAt: now,
	}); err != nil {
		return nil, err
	}
	if err := st.Beds().UpdateStatus(target.ID, models.BedOccupied); err != nil {
		return nil, err
	}

	from := adm.Status
	adm.Status = models.AdmissionTransferred
	if err := st.Admissions().Update(adm); err != nil {
		return nil, err
	}

	actorID := actor.UserID
	details := fmt.Sprintf("moved from bed %d to bed %d", current.BedID, target.ID)
	if remarks != "" {
		details += "; " + remarks
	}
	if err := st.Audits().AppendStatus(&models.AdmissionStatusAuditLog{
		AdmissionID: adm.ID,
		FromStatus:  from,
		ToStatus:    models.AdmissionTransferred,
		Remarks:     details,
		ActorID:     &actorID,
	}); err != nil {
		return nil, err
	}
	return adm, nil
}

// Discharge is two-phase: the first call from an active status only marks
// DISCHARGE_INITIATED; the second call finalizes DISCHARGED and releases the
// bed back to AVAILABLE.
func (s *AdmissionService) Discharge(admissionID uint, remarks string, actor Actor) (*models.IPDAdmission, error) {
	var admission *models.IPDAdmission
	err := s.tx.Do(func(st repository.Stores) error {
		adm, err := st.Admissions().GetForUpdate(admissionID)
		if err != nil {
			return err
		}
		actorID := actor.UserID

		if adm.Status == models.AdmissionDischargeInitiated {
			now := time.Now()
			from := adm.Status
			adm.Status = models.AdmissionDischarged
			adm.DischargedAt = &now
			adm.ActivePatientKey = nil
			if err := st.Admissions().Update(adm); err != nil {
				return err
			}

			alloc, err := st.Allocations().GetActiveByAdmission(adm.ID)
			if err != nil {
				return err
			}
			if err := st.Allocations().Release(alloc.ID, now); err != nil {
				return err
			}
			if err := st.Beds().UpdateStatus(alloc.BedID, models.BedAvailable); err != nil {
				return err
			}

			if err := st.Audits().AppendStatus(&models.AdmissionStatusAuditLog{
				AdmissionID: adm.ID,
				FromStatus:  from,
				ToStatus:    models.AdmissionDischarged,
				Remarks:     remarks,
				ActorID:     &actorID,
			}); err != nil {
				return err
			}
			admission = adm
			return nil
		}

		if !models.CanTransition(adm.Status, models.AdmissionDischargeInitiated) {
			return invalidTransition(adm.Status, models.AdmissionDischargeInitiated)
		}
		from := adm.Status
		adm.Status = models.AdmissionDischargeInitiated
		if err := st.Admissions().Update(adm); err != nil {
			return err
		}
		if err := st.Audits().AppendStatus(&models.AdmissionStatusAuditLog{
			AdmissionID: adm.ID,
			FromStatus:  from,
			ToStatus:    models.AdmissionDischargeInitiated,
			Remarks:     remarks,
			ActorID:     &actorID,
		}); err != nil {
			return err
		}
		admission = adm
		return nil
	})
	if err != nil {
		return nil, err
	}
	return admission, nil
}

// Cancel voids an admission still in an early state and frees its bed.
func (s *AdmissionService) Cancel(admissionID uint, remarks string, actor Actor) (*models.IPDAdmission, error) {
	var admission *models.IPDAdmission
	err := s.tx.Do(func(st repository.Stores) error {
		adm, err := st.Admissions().GetForUpdate(admissionID)
		if err != nil {
			return err
		}
		if !models.CanTransition(adm.Status, models.AdmissionCancelled) {
			return invalidTransition(adm.Status, models.AdmissionCancelled)
		}

		now := time.Now()
		from := adm.Status
		adm.Status = models.AdmissionCancelled
		adm.ActivePatientKey = nil
		if err := st.Admissions().Update(adm); err != nil {
			return err
		}

		alloc, err := st.Allocations().GetActiveByAdmission(adm.ID)
		if err == nil {
			if err := st.Allocations().Release(alloc.ID, now); err != nil {
				return err
			}
			if err := st.Beds().UpdateStatus(alloc.BedID, models.BedAvailable); err != nil {
				return err
			}
		} else if !apperr.NotFound(err) {
			return err
		}

		actorID := actor.UserID
		if err := st.Audits().AppendStatus(&models.AdmissionStatusAuditLog{
			AdmissionID: adm.ID,
			FromStatus:  from,
			ToStatus:    models.AdmissionCancelled,
			Remarks:     remarks,
			ActorID:     &actorID,
		}); err != nil {
			return err
		}
		admission = adm
		return nil
	})
	if err != nil {
		return nil, err
	}
	return admission, nil
}

// OverridePriority replaces the evaluated priority. Only authority roles may
// call it and the reason must be substantial; a rejected call writes nothing.
func (s *AdmissionService) OverridePriority(admissionID uint, newPriority models.PriorityCode, reason string, actor Actor) (*models.IPDAdmission, error) {
	if !models.HasAuthority(actor.Role) {
		return nil, apperr.Newf(apperr.ErrForbidden,
			"role %s may not override priority; requires one of %v", actor.Role, models.AuthorityRoles)
	}
	if !models.ValidPriorityCode(newPriority) {
		return nil, apperr.Newf(apperr.ErrInvalidInput, "unknown priority code %q", newPriority)
	}
	if len(reason) < 10 || len(reason) > 500 {
		return nil, apperr.New(apperr.ErrInvalidInput, "override reason must be between 10 and 500 characters")
	}

	var admission *models.IPDAdmission
	err := s.tx.Do(func(st repository.Stores) error {
		adm, err := st.Admissions().GetForUpdate(admissionID)
		if err != nil {
			return err
		}

		now := time.Now()
		actorID := actor.UserID
		adm.PriorityCode = newPriority
		adm.PriorityReason = reason
		adm.PriorityOverridden = true
		adm.OverrideBy = &actorID
		adm.OverrideAt = &now
		if err := st.Admissions().Update(adm); err != nil {
			return err
		}

		if err := st.Audits().AppendPriority(&models.PriorityAuditLog{
			AdmissionID:  adm.ID,
			PriorityCode: newPriority,
			Reason:       reason,
			IsOverride:   true,
			ActorID:      &actorID,
		}); err != nil {
			return err
		}
		admission = adm
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("priority overridden",
		zap.Uint("admission_id", admissionID),
		zap.String("new_priority", string(newPriority)),
		zap.Uint("actor_id", actor.UserID))
	return admission, nil
}

// Get retrieves an admission by ID
func (s *AdmissionService) Get(admissionID uint) (*models.IPDAdmission, error) {
	return s.stores.Admissions().Get(admissionID)
}

// GetByNumber retrieves an admission by its admission number
func (s *AdmissionService) GetByNumber(number string) (*models.IPDAdmission, error) {
	return s.stores.Admissions().GetByNumber(number)
}

// ListActive retrieves admissions in any non-terminal status
func (s *AdmissionService) ListActive() ([]models.IPDAdmission, error) {
	return s.stores.Admissions().ListActive()
}

// ListByStatus retrieves admissions with the given status
func (s *AdmissionService) ListByStatus(status models.AdmissionStatus) ([]models.IPDAdmission, error) {
	return s.stores.Admissions().ListByStatus(status)
}

// StatusHistory returns the admission's audit trail of transitions
func (s *AdmissionService) StatusHistory(admissionID uint) ([]models.AdmissionStatusAuditLog, error) {
	if _, err := s.stores.Admissions().Get(admissionID); err != nil {
		return nil, err
	}
	return s.stores.Audits().ListStatusByAdmission(admissionID)
}

// PriorityHistory returns the admission's audit trail of priority decisions
func (s *AdmissionService) PriorityHistory(admissionID uint) ([]models.PriorityAuditLog, error) {
	if _, err := s.stores.Admissions().Get(admissionID); err != nil {
		return nil, err
	}
	return s.stores.Audits().ListPriorityByAdmission(admissionID)
}

// wardOf resolves the ward a bed belongs to.
func (s *AdmissionService) wardOf(st repository.Stores, bed *models.Bed) (*models.Ward, error) {
	if bed.Ward.ID != 0 {
		return &bed.Ward, nil
	}
	full, err := st.Beds().Get(bed.ID)
	if err != nil {
		return nil, err
	}
	return &full.Ward, nil
}
