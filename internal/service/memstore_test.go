package service

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"hms-ipd-backend/internal/apperr"
	"hms-ipd-backend/internal/models"
	"hms-ipd-backend/internal/repository"
)

// memStores is an in-memory repository.Stores + repository.TxManager used by
// the service tests. It enforces the same uniqueness rules the database
// indexes enforce (one active allocation per bed/admission, one non-terminal
// admission per patient, one RESERVED hold per bed) and serializes Do under a
// mutex so concurrency properties hold the way row locks make them hold.
type memStores struct {
	mu sync.Mutex
	st *memState
}

type memState struct {
	seq uint

	beds             map[uint]models.Bed
	admissions       map[uint]models.IPDAdmission
	allocations      map[uint]models.BedAllocation
	recommendations  map[uint]models.TransferRecommendation
	consents         map[uint]models.TransferConsent
	reservations     map[uint]models.TransferBedReservation
	patientTransfers map[uint]models.PatientTransfer

	priorityAudits []models.PriorityAuditLog
	statusAudits   []models.AdmissionStatusAuditLog
	transferAudits []models.TransferAuditLog
}

func newMemStores() *memStores {
	return &memStores{st: &memState{
		beds:             map[uint]models.Bed{},
		admissions:       map[uint]models.IPDAdmission{},
		allocations:      map[uint]models.BedAllocation{},
		recommendations:  map[uint]models.TransferRecommendation{},
		consents:         map[uint]models.TransferConsent{},
		reservations:     map[uint]models.TransferBedReservation{},
		patientTransfers: map[uint]models.PatientTransfer{},
	}}
}

func (m *memStores) nextID() uint {
	m.st.seq++
	return m.st.seq
}

// Do serializes the unit of work and restores the pre-call state on error,
// standing in for transaction rollback.
func (m *memStores) Do(fn func(s repository.Stores) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := m.st.clone()
	if err := fn(m); err != nil {
		m.st = snapshot
		return err
	}
	return nil
}

func (s *memState) clone() *memState {
	c := &memState{
		seq:              s.seq,
		beds:             map[uint]models.Bed{},
		admissions:       map[uint]models.IPDAdmission{},
		allocations:      map[uint]models.BedAllocation{},
		recommendations:  map[uint]models.TransferRecommendation{},
		consents:         map[uint]models.TransferConsent{},
		reservations:     map[uint]models.TransferBedReservation{},
		patientTransfers: map[uint]models.PatientTransfer{},
	}
	for k, v := range s.beds {
		c.beds[k] = v
	}
	for k, v := range s.admissions {
		c.admissions[k] = v
	}
	for k, v := range s.allocations {
		c.allocations[k] = v
	}
	for k, v := range s.recommendations {
		c.recommendations[k] = v
	}
	for k, v := range s.consents {
		c.consents[k] = v
	}
	for k, v := range s.reservations {
		c.reservations[k] = v
	}
	for k, v := range s.patientTransfers {
		c.patientTransfers[k] = v
	}
	c.priorityAudits = append([]models.PriorityAuditLog(nil), s.priorityAudits...)
	c.statusAudits = append([]models.AdmissionStatusAuditLog(nil), s.statusAudits...)
	c.transferAudits = append([]models.TransferAuditLog(nil), s.transferAudits...)
	return c
}

func (m *memStores) Beds() repository.BedStore               { return &memBeds{m} }
func (m *memStores) Admissions() repository.AdmissionStore   { return &memAdmissions{m} }
func (m *memStores) Allocations() repository.AllocationStore { return &memAllocations{m} }
func (m *memStores) Transfers() repository.TransferStore     { return &memTransfers{m} }
func (m *memStores) Audits() repository.AuditStore           { return &memAudits{m} }

type memBeds struct{ m *memStores }

func (b *memBeds) Create(bed *models.Bed) error {
	for _, existing := range b.m.st.beds {
		if existing.WardID == bed.WardID && existing.BedNumber == bed.BedNumber {
			return apperr.Newf(apperr.ErrConflict, "bed %s already exists in ward %d", bed.BedNumber, bed.WardID)
		}
	}
	bed.ID = b.m.nextID()
	b.m.st.beds[bed.ID] = *bed
	return nil
}

func (b *memBeds) Get(id uint) (*models.Bed, error) {
	bed, ok := b.m.st.beds[id]
	if !ok {
		return nil, apperr.Newf(apperr.ErrNotFound, "bed %d not found", id)
	}
	return &bed, nil
}

func (b *memBeds) GetForUpdate(id uint) (*models.Bed, error) { return b.Get(id) }

func (b *memBeds) UpdateStatus(id uint, status models.BedStatus) error {
	bed, ok := b.m.st.beds[id]
	if !ok {
		return apperr.Newf(apperr.ErrNotFound, "bed %d not found", id)
	}
	bed.Status = status
	b.m.st.beds[id] = bed
	return nil
}

func (b *memBeds) Deactivate(id uint) error {
	bed, ok := b.m.st.beds[id]
	if !ok {
		return apperr.Newf(apperr.ErrNotFound, "bed %d not found", id)
	}
	bed.IsActive = false
	b.m.st.beds[id] = bed
	return nil
}

func (b *memBeds) ListByWard(wardID uint) ([]models.Bed, error) {
	var out []models.Bed
	for _, bed := range b.m.st.beds {
		if bed.WardID == wardID {
			out = append(out, bed)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memAdmissions struct{ m *memStores }

func (a *memAdmissions) Create(adm *models.IPDAdmission) error {
	for _, existing := range a.m.st.admissions {
		if existing.AdmissionNumber == adm.AdmissionNumber {
			return apperr.Newf(apperr.ErrConflict, "duplicate admission number %s", adm.AdmissionNumber)
		}
		if adm.ActivePatientKey != nil && existing.ActivePatientKey != nil &&
			*existing.ActivePatientKey == *adm.ActivePatientKey {
			return apperr.Newf(apperr.ErrConflict, "duplicate active admission for patient %d", *adm.ActivePatientKey)
		}
	}
	adm.ID = a.m.nextID()
	a.m.st.admissions[adm.ID] = *adm
	return nil
}

func (a *memAdmissions) Get(id uint) (*models.IPDAdmission, error) {
	adm, ok := a.m.st.admissions[id]
	if !ok {
		return nil, apperr.Newf(apperr.ErrNotFound, "admission %d not found", id)
	}
	return &adm, nil
}

func (a *memAdmissions) GetForUpdate(id uint) (*models.IPDAdmission, error) { return a.Get(id) }

func (a *memAdmissions) GetByNumber(number string) (*models.IPDAdmission, error) {
	for _, adm := range a.m.st.admissions {
		if adm.AdmissionNumber == number {
			return &adm, nil
		}
	}
	return nil, apperr.Newf(apperr.ErrNotFound, "admission %s not found", number)
}

func (a *memAdmissions) Update(adm *models.IPDAdmission) error {
	if _, ok := a.m.st.admissions[adm.ID]; !ok {
		return apperr.Newf(apperr.ErrNotFound, "admission %d not found", adm.ID)
	}
	a.m.st.admissions[adm.ID] = *adm
	return nil
}

func (a *memAdmissions) FindActiveByPatient(patientID uint) (*models.IPDAdmission, error) {
	for _, adm := range a.m.st.admissions {
		if adm.ActivePatientKey != nil && *adm.ActivePatientKey == patientID {
			return &adm, nil
		}
	}
	return nil, apperr.Newf(apperr.ErrNotFound, "no active admission for patient %d", patientID)
}

func (a *memAdmissions) ListActive() ([]models.IPDAdmission, error) {
	var out []models.IPDAdmission
	for _, adm := range a.m.st.admissions {
		if adm.Status.IsActive() {
			out = append(out, adm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (a *memAdmissions) ListByStatus(status models.AdmissionStatus) ([]models.IPDAdmission, error) {
	var out []models.IPDAdmission
	for _, adm := range a.m.st.admissions {
		if adm.Status == status {
			out = append(out, adm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (a *memAdmissions) NextSequence(year int) (int, error) {
	prefix := fmt.Sprintf("IPD-%d-", year)
	max := 0
	for _, adm := range a.m.st.admissions {
		if !strings.HasPrefix(adm.AdmissionNumber, prefix) {
			continue
		}
		var seq int
		if _, err := fmt.Sscanf(adm.AdmissionNumber[len(prefix):], "%d", &seq); err == nil && seq > max {
			max = seq
		}
	}
	return max + 1, nil
}

type memAllocations struct{ m *memStores }

func (a *memAllocations) Create(alloc *models.BedAllocation) error {
	for _, existing := range a.m.st.allocations {
		if existing.ReleasedAt != nil {
			continue
		}
		if existing.BedID == alloc.BedID {
			return apperr.Newf(apperr.ErrConflict, "bed %d already has an active allocation", alloc.BedID)
		}
		if existing.AdmissionID == alloc.AdmissionID {
			return apperr.Newf(apperr.ErrConflict, "admission %d already has an active allocation", alloc.AdmissionID)
		}
	}
	alloc.ID = a.m.nextID()
	alloc.ActiveBedID = &alloc.BedID
	alloc.ActiveAdmissionID = &alloc.AdmissionID
	a.m.st.allocations[alloc.ID] = *alloc
	return nil
}

func (a *memAllocations) GetActiveByAdmission(admissionID uint) (*models.BedAllocation, error) {
	for _, alloc := range a.m.st.allocations {
		if alloc.AdmissionID == admissionID && alloc.ReleasedAt == nil {
			return &alloc, nil
		}
	}
	return nil, apperr.Newf(apperr.ErrNotFound, "no active allocation for admission %d", admissionID)
}

func (a *memAllocations) GetActiveByBed(bedID uint) (*models.BedAllocation, error) {
	for _, alloc := range a.m.st.allocations {
		if alloc.BedID == bedID && alloc.ReleasedAt == nil {
			return &alloc, nil
		}
	}
	return nil, apperr.Newf(apperr.ErrNotFound, "no active allocation for bed %d", bedID)
}

func (a *memAllocations) Release(id uint, at time.Time) error {
	alloc, ok := a.m.st.allocations[id]
	if !ok {
		return apperr.Newf(apperr.ErrNotFound, "allocation %d not found", id)
	}
	alloc.ReleasedAt = &at
	alloc.ActiveBedID = nil
	alloc.ActiveAdmissionID = nil
	a.m.st.allocations[id] = alloc
	return nil
}

func (a *memAllocations) ListByAdmission(admissionID uint) ([]models.BedAllocation, error) {
	var out []models.BedAllocation
	for _, alloc := range a.m.st.allocations {
		if alloc.AdmissionID == admissionID {
			out = append(out, alloc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memTransfers struct{ m *memStores }

func (t *memTransfers) CreateRecommendation(rec *models.TransferRecommendation) error {
	rec.ID = t.m.nextID()
	t.m.st.recommendations[rec.ID] = *rec
	return nil
}

func (t *memTransfers) GetRecommendation(id uint) (*models.TransferRecommendation, error) {
	rec, ok := t.m.st.recommendations[id]
	if !ok {
		return nil, apperr.Newf(apperr.ErrNotFound, "recommendation %d not found", id)
	}
	return &rec, nil
}

func (t *memTransfers) GetRecommendationForUpdate(id uint) (*models.TransferRecommendation, error) {
	return t.GetRecommendation(id)
}

func (t *memTransfers) UpdateRecommendation(rec *models.TransferRecommendation) error {
	if _, ok := t.m.st.recommendations[rec.ID]; !ok {
		return apperr.Newf(apperr.ErrNotFound, "recommendation %d not found", rec.ID)
	}
	t.m.st.recommendations[rec.ID] = *rec
	return nil
}

func (t *memTransfers) ListPendingJustifications() ([]models.TransferRecommendation, error) {
	var out []models.TransferRecommendation
	for _, rec := range t.m.st.recommendations {
		if rec.IsEmergency && rec.Justification == "" && rec.Status != models.TransferCancelled {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTransfers) CreateConsent(consent *models.TransferConsent) error {
	for _, existing := range t.m.st.consents {
		if existing.RecommendationID == consent.RecommendationID {
			return apperr.Newf(apperr.ErrConflict, "consent already recorded for recommendation %d", consent.RecommendationID)
		}
	}
	consent.ID = t.m.nextID()
	t.m.st.consents[consent.ID] = *consent
	return nil
}

func (t *memTransfers) GetConsentByRecommendation(recommendationID uint) (*models.TransferConsent, error) {
	for _, consent := range t.m.st.consents {
		if consent.RecommendationID == recommendationID {
			return &consent, nil
		}
	}
	return nil, apperr.Newf(apperr.ErrNotFound, "no consent for recommendation %d", recommendationID)
}

func (t *memTransfers) CreateReservation(res *models.TransferBedReservation) error {
	for _, existing := range t.m.st.reservations {
		if existing.RecommendationID == res.RecommendationID {
			return apperr.Newf(apperr.ErrConflict, "reservation already exists for recommendation %d", res.RecommendationID)
		}
		if existing.ReservedBedID != nil && *existing.ReservedBedID == res.BedID {
			return apperr.Newf(apperr.ErrConflict, "bed %d is already reserved", res.BedID)
		}
	}
	res.ID = t.m.nextID()
	res.ReservedBedID = &res.BedID
	t.m.st.reservations[res.ID] = *res
	return nil
}

func (t *memTransfers) GetReservationByRecommendation(recommendationID uint) (*models.TransferBedReservation, error) {
	for _, res := range t.m.st.reservations {
		if res.RecommendationID == recommendationID {
			return &res, nil
		}
	}
	return nil, apperr.Newf(apperr.ErrNotFound, "no reservation for recommendation %d", recommendationID)
}

func (t *memTransfers) CloseReservation(id uint, status models.ReservationStatus, at time.Time) error {
	res, ok := t.m.st.reservations[id]
	if !ok {
		return apperr.Newf(apperr.ErrNotFound, "reservation %d not found", id)
	}
	res.Status = status
	res.ReservedBedID = nil
	res.ClosedAt = &at
	t.m.st.reservations[id] = res
	return nil
}

func (t *memTransfers) CreatePatientTransfer(pt *models.PatientTransfer) error {
	for _, existing := range t.m.st.patientTransfers {
		if existing.RecommendationID == pt.RecommendationID {
			return apperr.Newf(apperr.ErrConflict, "transfer already recorded for recommendation %d", pt.RecommendationID)
		}
	}
	pt.ID = t.m.nextID()
	t.m.st.patientTransfers[pt.ID] = *pt
	return nil
}

func (t *memTransfers) GetPatientTransferByRecommendation(recommendationID uint) (*models.PatientTransfer, error) {
	for _, pt := range t.m.st.patientTransfers {
		if pt.RecommendationID == recommendationID {
			return &pt, nil
		}
	}
	return nil, apperr.Newf(apperr.ErrNotFound, "no transfer for recommendation %d", recommendationID)
}

func (t *memTransfers) UpdatePatientTransfer(pt *models.PatientTransfer) error {
	if _, ok := t.m.st.patientTransfers[pt.ID]; !ok {
		return apperr.Newf(apperr.ErrNotFound, "transfer %d not found", pt.ID)
	}
	t.m.st.patientTransfers[pt.ID] = *pt
	return nil
}

type memAudits struct{ m *memStores }

func (a *memAudits) AppendPriority(entry *models.PriorityAuditLog) error {
	entry.ID = a.m.nextID()
	a.m.st.priorityAudits = append(a.m.st.priorityAudits, *entry)
	return nil
}

func (a *memAudits) AppendStatus(entry *models.AdmissionStatusAuditLog) error {
	entry.ID = a.m.nextID()
	a.m.st.statusAudits = append(a.m.st.statusAudits, *entry)
	return nil
}

func (a *memAudits) AppendTransfer(entry *models.TransferAuditLog) error {
	entry.ID = a.m.nextID()
	a.m.st.transferAudits = append(a.m.st.transferAudits, *entry)
	return nil
}

func (a *memAudits) ListPriorityByAdmission(admissionID uint) ([]models.PriorityAuditLog, error) {
	var out []models.PriorityAuditLog
	for _, e := range a.m.st.priorityAudits {
		if e.AdmissionID == admissionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (a *memAudits) ListStatusByAdmission(admissionID uint) ([]models.AdmissionStatusAuditLog, error) {
	var out []models.AdmissionStatusAuditLog
	for _, e := range a.m.st.statusAudits {
		if e.AdmissionID == admissionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (a *memAudits) ListTransferByRecommendation(recommendationID uint) ([]models.TransferAuditLog, error) {
	var out []models.TransferAuditLog
	for _, e := range a.m.st.transferAudits {
		if e.RecommendationID == recommendationID {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakePatients / fakeDoctors back the lookup interfaces.
type fakePatients map[string]models.Patient

func (f fakePatients) FindByUHID(uhid string) (*models.Patient, error) {
	p, ok := f[uhid]
	if !ok {
		return nil, apperr.Newf(apperr.ErrNotFound, "patient %s not found", uhid)
	}
	return &p, nil
}

type fakeDoctors map[uint]models.Doctor

func (f fakeDoctors) FindByID(id uint) (*models.Doctor, error) {
	d, ok := f[id]
	if !ok {
		return nil, apperr.Newf(apperr.ErrNotFound, "doctor %d not found", id)
	}
	return &d, nil
}

// fakeRules backs RuleSource with plain maps; empty maps fall through to the
// evaluator defaults.
type fakeRules struct {
	base  map[models.ConditionType]int
	boost map[models.ConsiderationType]int
}

func (f fakeRules) BasePriority(condition models.ConditionType) (int, bool) {
	v, ok := f.base[condition]
	return v, ok
}

func (f fakeRules) Boost(consideration models.ConsiderationType) int {
	return f.boost[consideration]
}
