package service

import (
	"sort"
	"time"

	"hms-ipd-backend/internal/models"
	"hms-ipd-backend/internal/repository"
)

// QueueEntry is one row of the admission queue view.
type QueueEntry struct {
	Position        int                 `json:"position"`
	AdmissionID     uint                `json:"admission_id"`
	AdmissionNumber string              `json:"admission_number"`
	PatientName     string              `json:"patient_name,omitempty"`
	PriorityCode    models.PriorityCode `json:"priority_code,omitempty"`
	Status          string              `json:"status"`
	AdmittedAt      time.Time           `json:"admitted_at"`
}

// QueueService derives the admission queue: a read-only, total order over
// active admissions. No state of its own.
type QueueService struct {
	stores repository.Stores
}

func NewQueueService(stores repository.Stores) *QueueService {
	return &QueueService{stores: stores}
}

// SortAdmissions orders admissions by priority (P1 first, no priority last),
// then admitted-at, then id. The id tie-break keeps the order strict and
// deterministic even for identical timestamps.
func SortAdmissions(adms []models.IPDAdmission) {
	sort.Slice(adms, func(i, j int) bool {
		pi, pj := adms[i].PriorityCode.Order(), adms[j].PriorityCode.Order()
		if pi != pj {
			return pi < pj
		}
		if !adms[i].AdmittedAt.Equal(adms[j].AdmittedAt) {
			return adms[i].AdmittedAt.Before(adms[j].AdmittedAt)
		}
		return adms[i].ID < adms[j].ID
	})
}

// List returns the current queue over all active admissions.
func (s *QueueService) List() ([]QueueEntry, error) {
	adms, err := s.stores.Admissions().ListActive()
	if err != nil {
		return nil, err
	}
	SortAdmissions(adms)

	entries := make([]QueueEntry, len(adms))
	for i, adm := range adms {
		entries[i] = QueueEntry{
			Position:        i + 1,
			AdmissionID:     adm.ID,
			AdmissionNumber: adm.AdmissionNumber,
			PatientName:     adm.Patient.FullName,
			PriorityCode:    adm.PriorityCode,
			Status:          adm.Status.Display(),
			AdmittedAt:      adm.AdmittedAt,
		}
	}
	return entries, nil
}
