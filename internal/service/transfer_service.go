package service

import (
	"fmt"
	"time"

	"hms-ipd-backend/internal/apperr"
	"hms-ipd-backend/internal/models"
	"hms-ipd-backend/internal/repository"
	"hms-ipd-backend/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecommendRequest opens a transfer recommendation.
type RecommendRequest struct {
	AdmissionID  uint   `json:"admission_id" binding:"required"`
	DoctorID     uint   `json:"doctor_id" binding:"required"`
	FromWardType string `json:"from_ward_type" binding:"required"`
	ToWardType   string `json:"to_ward_type" binding:"required"`
	Reason       string `json:"reason"`
	IsEmergency  bool   `json:"is_emergency"`
}

// ConsentRequest records family/patient consent for a recommendation.
type ConsentRequest struct {
	ConsentGiven    bool               `json:"consent_given"`
	Mode            models.ConsentMode `json:"mode" binding:"required"`
	GivenByName     string             `json:"given_by_name" binding:"required"`
	GivenByRelation string             `json:"given_by_relation"`
	Remarks         string             `json:"remarks"`
}

// ExecuteRequest carries the movement details for the execute step.
type ExecuteRequest struct {
	NurseName     string `json:"nurse_name"`
	AttendantName string `json:"attendant_name"`
	Equipment     string `json:"equipment"`
	Remarks       string `json:"remarks"`
}

// FullTransferRequest chains recommend → consent → confirm-bed → execute in
// one call for simple cases.
type FullTransferRequest struct {
	RecommendRequest
	Consent     *ConsentRequest `json:"consent"`
	TargetBedID uint            `json:"target_bed_id" binding:"required"`
	Execute     ExecuteRequest  `json:"execute"`
}

const minJustificationLen = 20

// TransferService orchestrates the 4-step transfer protocol. Each step is
// independently callable and audited; replays fail with Conflict instead of
// corrupting state.
type TransferService struct {
	tx         repository.TxManager
	stores     repository.Stores
	admissions *AdmissionService
	doctors    DoctorLookup
	logger     *zap.Logger
}

func NewTransferService(
	tx repository.TxManager,
	stores repository.Stores,
	admissions *AdmissionService,
	doctors DoctorLookup,
	logger *zap.Logger,
) *TransferService {
	return &TransferService{
		tx:         tx,
		stores:     stores,
		admissions: admissions,
		doctors:    doctors,
		logger:     logger,
	}
}

// Recommend creates a transfer recommendation. Always succeeds when the
// admission and doctor exist and the admission is still active.
func (s *TransferService) Recommend(req RecommendRequest, actor Actor) (*models.TransferRecommendation, error) {
	if _, err := s.doctors.FindByID(req.DoctorID); err != nil {
		return nil, err
	}

	var rec *models.TransferRecommendation
	err := s.tx.Do(func(st repository.Stores) error {
		adm, err := st.Admissions().Get(req.AdmissionID)
		if err != nil {
			return err
		}
		if !adm.Status.IsActive() {
			return apperr.Newf(apperr.ErrConflict,
				"admission %s is %s; transfers require an active admission", adm.AdmissionNumber, adm.Status)
		}

		rec = &models.TransferRecommendation{
			TrackingCode: uuid.New().String(),
			AdmissionID:  adm.ID,
			DoctorID:     req.DoctorID,
			FromWardType: req.FromWardType,
			ToWardType:   req.ToWardType,
			Reason:       req.Reason,
			IsEmergency:  req.IsEmergency,
			Status:       models.TransferRecommended,
		}
		if err := st.Transfers().CreateRecommendation(rec); err != nil {
			return err
		}

		actorID := actor.UserID
		details := fmt.Sprintf("recommended %s → %s by doctor %d", req.FromWardType, req.ToWardType, req.DoctorID)
		if req.IsEmergency {
			details += " (emergency, consent may be deferred)"
		}
		return st.Audits().AppendTransfer(&models.TransferAuditLog{
			RecommendationID: rec.ID,
			Step:             "recommend",
			Status:           models.TransferRecommended,
			Details:          details,
			ActorID:          &actorID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer recommended",
		zap.Uint("recommendation_id", rec.ID),
		zap.Bool("emergency", rec.IsEmergency))
	return rec, nil
}

// RecordConsent attaches the consent record. It does not gate anything by
// itself; gating happens at ConfirmBed.
func (s *TransferService) RecordConsent(recommendationID uint, req ConsentRequest, actor Actor) (*models.TransferConsent, error) {
	if !models.ValidConsentMode(req.Mode) {
		return nil, apperr.Newf(apperr.ErrInvalidInput, "unknown consent mode %q", req.Mode)
	}

	var consent *models.TransferConsent
	err := s.tx.Do(func(st repository.Stores) error {
		rec, err := st.Transfers().GetRecommendationForUpdate(recommendationID)
		if err != nil {
			return err
		}
		if rec.Status.IsTerminal() {
			return apperr.Newf(apperr.ErrConflict, "recommendation %d is already %s", rec.ID, rec.Status)
		}

		consent = &models.TransferConsent{
			RecommendationID: rec.ID,
			ConsentGiven:     req.ConsentGiven,
			Mode:             req.Mode,
			GivenByName:      req.GivenByName,
			GivenByRelation:  req.GivenByRelation,
			Remarks:          req.Remarks,
		}
		if err := st.Transfers().CreateConsent(consent); err != nil {
			return err
		}

		if rec.Status == models.TransferRecommended && req.ConsentGiven {
			rec.Status = models.TransferConsented
			if err := st.Transfers().UpdateRecommendation(rec); err != nil {
				return err
			}
		}

		actorID := actor.UserID
		return st.Audits().AppendTransfer(&models.TransferAuditLog{
			RecommendationID: rec.ID,
			Step:             "consent",
			Status:           rec.Status,
			Details:          fmt.Sprintf("consent given=%t mode=%s by %s", req.ConsentGiven, req.Mode, req.GivenByName),
			ActorID:          &actorID,
		})
	})
	if err != nil {
		return nil, err
	}
	return consent, nil
}

// ConfirmBed holds the target bed in RESERVED for the recommendation. A
// non-emergency recommendation requires an affirmative consent record first;
// an emergency recommendation bypasses consent. The unique reserved-bed
// constraint guarantees that of two concurrent calls for the same bed
// exactly one wins.
func (s *TransferService) ConfirmBed(recommendationID, bedID uint, actor Actor) (*models.TransferBedReservation, error) {
	var reservation *models.TransferBedReservation
	err := s.tx.Do(func(st repository.Stores) error {
		rec, err := st.Transfers().GetRecommendationForUpdate(recommendationID)
		if err != nil {
			return err
		}
		if rec.Status.IsTerminal() {
			return apperr.Newf(apperr.ErrConflict, "recommendation %d is already %s", rec.ID, rec.Status)
		}
		if _, err := st.Transfers().GetReservationByRecommendation(rec.ID); err == nil {
			return apperr.Newf(apperr.ErrConflict, "bed already confirmed for recommendation %d", rec.ID)
		} else if !apperr.NotFound(err) {
			return err
		}

		// consent gate, bypassed for emergencies
		if !rec.IsEmergency {
			consent, err := st.Transfers().GetConsentByRecommendation(rec.ID)
			if err != nil {
				if apperr.NotFound(err) {
					return apperr.Newf(apperr.ErrConflict,
						"consent is required before reserving a bed for recommendation %d", rec.ID)
				}
				return err
			}
			if !consent.ConsentGiven {
				return apperr.Newf(apperr.ErrConflict,
					"recorded consent for recommendation %d was refused", rec.ID)
			}
		}

		bed, err := st.Beds().GetForUpdate(bedID)
		if err != nil {
			return err
		}
		if !bed.Allocatable() {
			return apperr.Newf(apperr.ErrConflict,
				"bed %d must be AVAILABLE and active to reserve; current status %s", bed.ID, bed.Status)
		}

		reservation = &models.TransferBedReservation{
			RecommendationID: rec.ID,
			BedID:            bed.ID,
			Status:           models.ReservationReserved,
			ReservedAt:       time.Now(),
		}
		if err := st.Transfers().CreateReservation(reservation); err != nil {
			return err
		}
		if err := st.Beds().UpdateStatus(bed.ID, models.BedReserved); err != nil {
			return err
		}

		rec.Status = models.TransferBedReserved
		if err := st.Transfers().UpdateRecommendation(rec); err != nil {
			return err
		}

		actorID := actor.UserID
		return st.Audits().AppendTransfer(&models.TransferAuditLog{
			RecommendationID: rec.ID,
			Step:             "confirm_bed",
			Status:           models.TransferBedReserved,
			Details:          fmt.Sprintf("bed %d reserved", bed.ID),
			ActorID:          &actorID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer bed reserved",
		zap.Uint("recommendation_id", recommendationID),
		zap.Uint("bed_id", bedID))
	return reservation, nil
}

// Execute performs the actual movement: confirms the reservation, swaps the
// admission onto the reserved bed through the lifecycle manager, and records
// the patient transfer, all in one transaction.
func (s *TransferService) Execute(recommendationID uint, req ExecuteRequest, actor Actor) (*models.PatientTransfer, error) {
	var movement *models.PatientTransfer
	err := s.tx.Do(func(st repository.Stores) error {
		rec, err := st.Transfers().GetRecommendationForUpdate(recommendationID)
		if err != nil {
			return err
		}
		if rec.Status == models.TransferCompleted {
			return apperr.Newf(apperr.ErrConflict, "recommendation %d was already executed", rec.ID)
		}
		if rec.Status == models.TransferCancelled {
			return apperr.Newf(apperr.ErrConflict, "recommendation %d is cancelled", rec.ID)
		}

		res, err := st.Transfers().GetReservationByRecommendation(rec.ID)
		if err != nil {
			if apperr.NotFound(err) {
				return apperr.Newf(apperr.ErrConflict,
					"a bed reservation is required before executing recommendation %d", rec.ID)
			}
			return err
		}
		if res.Status != models.ReservationReserved {
			return apperr.Newf(apperr.ErrConflict,
				"reservation for recommendation %d is %s, not RESERVED", rec.ID, res.Status)
		}

		current, err := st.Allocations().GetActiveByAdmission(rec.AdmissionID)
		if err != nil {
			return err
		}

		adm, err := s.admissions.TransferWithin(st, rec.AdmissionID, res.BedID, req.Remarks, actor)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := st.Transfers().CloseReservation(res.ID, models.ReservationConfirmed, now); err != nil {
			return err
		}

		movement = &models.PatientTransfer{
			RecommendationID: rec.ID,
			AdmissionID:      adm.ID,
			FromBedID:        current.BedID,
			ToBedID:          res.BedID,
			NurseName:        req.NurseName,
			AttendantName:    req.AttendantName,
			Equipment:        req.Equipment,
			ShiftBand:        utils.CurrentShift(now),
			Status:           models.TransferCompleted,
			ExecutedAt:       &now,
		}
		if err := st.Transfers().CreatePatientTransfer(movement); err != nil {
			return err
		}

		rec.Status = models.TransferCompleted
		if err := st.Transfers().UpdateRecommendation(rec); err != nil {
			return err
		}

		actorID := actor.UserID
		return st.Audits().AppendTransfer(&models.TransferAuditLog{
			RecommendationID: rec.ID,
			Step:             "execute",
			Status:           models.TransferCompleted,
			Details:          fmt.Sprintf("moved from bed %d to bed %d", current.BedID, res.BedID),
			ActorID:          &actorID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer executed",
		zap.Uint("recommendation_id", recommendationID),
		zap.Uint("to_bed_id", movement.ToBedID))
	return movement, nil
}

// Cancel voids a recommendation from any non-terminal state, releasing its
// reservation and bed hold if one exists.
func (s *TransferService) Cancel(recommendationID uint, reason string, actor Actor) error {
	err := s.tx.Do(func(st repository.Stores) error {
		rec, err := st.Transfers().GetRecommendationForUpdate(recommendationID)
		if err != nil {
			return err
		}
		if rec.Status.IsTerminal() {
			return apperr.Newf(apperr.ErrConflict, "recommendation %d is already %s", rec.ID, rec.Status)
		}

		now := time.Now()
		if res, err := st.Transfers().GetReservationByRecommendation(rec.ID); err == nil {
			if res.Status == models.ReservationReserved {
				if err := st.Transfers().CloseReservation(res.ID, models.ReservationCancelled, now); err != nil {
					return err
				}
				if err := st.Beds().UpdateStatus(res.BedID, models.BedAvailable); err != nil {
					return err
				}
			}
		} else if !apperr.NotFound(err) {
			return err
		}

		rec.Status = models.TransferCancelled
		if err := st.Transfers().UpdateRecommendation(rec); err != nil {
			return err
		}

		actorID := actor.UserID
		return st.Audits().AppendTransfer(&models.TransferAuditLog{
			RecommendationID: rec.ID,
			Step:             "cancel",
			Status:           models.TransferCancelled,
			Details:          reason,
			ActorID:          &actorID,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("transfer cancelled", zap.Uint("recommendation_id", recommendationID))
	return nil
}

// RecordJustification files the written justification an emergency transfer
// owes after bypassing consent.
func (s *TransferService) RecordJustification(recommendationID uint, text string, actor Actor) (*models.TransferRecommendation, error) {
	if len(text) < minJustificationLen {
		return nil, apperr.Newf(apperr.ErrInvalidInput,
			"justification must be at least %d characters", minJustificationLen)
	}

	var rec *models.TransferRecommendation
	err := s.tx.Do(func(st repository.Stores) error {
		r, err := st.Transfers().GetRecommendationForUpdate(recommendationID)
		if err != nil {
			return err
		}
		if !r.IsEmergency {
			return apperr.Newf(apperr.ErrConflict,
				"recommendation %d is not emergency-flagged; no justification is owed", r.ID)
		}
		if r.Justification != "" {
			return apperr.Newf(apperr.ErrConflict,
				"justification already recorded for recommendation %d", r.ID)
		}

		now := time.Now()
		actorID := actor.UserID
		r.Justification = text
		r.JustificationBy = &actorID
		r.JustificationAt = &now
		if err := st.Transfers().UpdateRecommendation(r); err != nil {
			return err
		}

		rec = r
		return st.Audits().AppendTransfer(&models.TransferAuditLog{
			RecommendationID: r.ID,
			Step:             "justification",
			Status:           r.Status,
			Details:          "written justification recorded",
			ActorID:          &actorID,
		})
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// PendingJustifications lists emergency transfers still missing their
// written justification.
func (s *TransferService) PendingJustifications() ([]models.TransferRecommendation, error) {
	return s.stores.Transfers().ListPendingJustifications()
}

// Get retrieves a recommendation by ID
func (s *TransferService) Get(recommendationID uint) (*models.TransferRecommendation, error) {
	return s.stores.Transfers().GetRecommendation(recommendationID)
}

// History returns the workflow step audit trail for a recommendation
func (s *TransferService) History(recommendationID uint) ([]models.TransferAuditLog, error) {
	if _, err := s.stores.Transfers().GetRecommendation(recommendationID); err != nil {
		return nil, err
	}
	return s.stores.Audits().ListTransferByRecommendation(recommendationID)
}

// FullTransfer chains all four steps in one call for simple cases. Authority
// roles only: the chained form skips the separate approval points the
// step-by-step protocol provides.
func (s *TransferService) FullTransfer(req FullTransferRequest, actor Actor) (*models.PatientTransfer, error) {
	if !models.HasAuthority(actor.Role) {
		return nil, apperr.Newf(apperr.ErrForbidden,
			"role %s may not run a chained transfer; requires one of %v", actor.Role, models.AuthorityRoles)
	}

	rec, err := s.Recommend(req.RecommendRequest, actor)
	if err != nil {
		return nil, err
	}
	if req.Consent != nil {
		if _, err := s.RecordConsent(rec.ID, *req.Consent, actor); err != nil {
			return nil, err
		}
	}
	if _, err := s.ConfirmBed(rec.ID, req.TargetBedID, actor); err != nil {
		return nil, err
	}
	return s.Execute(rec.ID, req.Execute, actor)
}
