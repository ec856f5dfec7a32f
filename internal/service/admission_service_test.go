package service

import (
	"fmt"
	"testing"
	"time"

	"hms-ipd-backend/internal/apperr"
	"hms-ipd-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type admissionFixture struct {
	stores *memStores
	svc    *AdmissionService
	nurse  Actor
	super  Actor
}

// newAdmissionFixture seeds a general ward with two available beds, two
// patients and a doctor.
func newAdmissionFixture(t *testing.T) *admissionFixture {
	t.Helper()
	stores := newMemStores()

	ward := models.Ward{ID: 1, Code: "GW-A", Name: "General Ward A", WardType: "GENERAL", IsActive: true}
	for i := 1; i <= 2; i++ {
		bed := models.Bed{
			WardID:    ward.ID,
			BedNumber: fmt.Sprintf("GW-A-%02d", i),
			Status:    models.BedAvailable,
			IsActive:  true,
			Ward:      ward,
		}
		require.NoError(t, stores.Beds().Create(&bed))
	}

	patients := fakePatients{
		"UHID-001": {ID: 101, UHID: "UHID-001", FullName: "Asha Verma", IsActive: true},
		"UHID-002": {ID: 102, UHID: "UHID-002", FullName: "Ravi Kumar", IsActive: true},
	}
	doctors := fakeDoctors{
		7: {ID: 7, Code: "DOC-7", FullName: "Dr. Mehta", IsActive: true},
	}

	svc := NewAdmissionService(stores, stores, patients, doctors,
		NewPriorityEvaluator(fakeRules{}), zap.NewNop())
	return &admissionFixture{
		stores: stores,
		svc:    svc,
		nurse:  Actor{UserID: 1, Role: models.RoleNurse},
		super:  Actor{UserID: 2, Role: models.RoleMedicalSuperintendent},
	}
}

func (f *admissionFixture) admit(t *testing.T, uhid string, bedID uint) *models.IPDAdmission {
	t.Helper()
	adm, err := f.svc.Admit(AdmitRequest{
		PatientUHID:   uhid,
		DoctorID:      7,
		BedID:         bedID,
		AdmissionType: models.AdmissionDirect,
	}, f.nurse)
	require.NoError(t, err)
	return adm
}

func (f *admissionFixture) bedStatus(t *testing.T, bedID uint) models.BedStatus {
	t.Helper()
	bed, err := f.stores.Beds().Get(bedID)
	require.NoError(t, err)
	return bed.Status
}

func TestAdmitReservesBedAndAssignsPriority(t *testing.T) {
	f := newAdmissionFixture(t)

	adm := f.admit(t, "UHID-001", 1)

	assert.Equal(t, models.AdmissionAdmitted, adm.Status)
	assert.Equal(t, fmt.Sprintf("IPD-%d-000001", time.Now().Year()), adm.AdmissionNumber)
	assert.Equal(t, models.PriorityP4, adm.PriorityCode)
	assert.Equal(t, models.BedReserved, f.bedStatus(t, 1))

	alloc, err := f.stores.Allocations().GetActiveByAdmission(adm.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), alloc.BedID)

	history, err := f.svc.StatusHistory(adm.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.AdmissionStatus(""), history[0].FromStatus)
	assert.Equal(t, models.AdmissionAdmitted, history[0].ToStatus)

	priorities, err := f.svc.PriorityHistory(adm.ID)
	require.NoError(t, err)
	require.Len(t, priorities, 1)
	assert.False(t, priorities[0].IsOverride)
}

func TestAdmitEmergencyGetsP1(t *testing.T) {
	f := newAdmissionFixture(t)

	adm, err := f.svc.Admit(AdmitRequest{
		PatientUHID:   "UHID-001",
		DoctorID:      7,
		BedID:         1,
		AdmissionType: models.AdmissionEmergency,
	}, f.nurse)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityP1, adm.PriorityCode)
}

func TestAdmitUnavailableBed(t *testing.T) {
	f := newAdmissionFixture(t)
	require.NoError(t, f.stores.Beds().UpdateStatus(1, models.BedOccupied))

	_, err := f.svc.Admit(AdmitRequest{
		PatientUHID:   "UHID-001",
		DoctorID:      7,
		BedID:         1,
		AdmissionType: models.AdmissionDirect,
	}, f.nurse)
	require.Error(t, err)
	assert.True(t, apperr.Conflict(err))

	// nothing was written
	adms, err := f.stores.Admissions().ListActive()
	require.NoError(t, err)
	assert.Empty(t, adms)
}

func TestAdmitDuplicatePatient(t *testing.T) {
	f := newAdmissionFixture(t)
	f.admit(t, "UHID-001", 1)

	_, err := f.svc.Admit(AdmitRequest{
		PatientUHID:   "UHID-001",
		DoctorID:      7,
		BedID:         2,
		AdmissionType: models.AdmissionDirect,
	}, f.nurse)
	require.Error(t, err)
	assert.True(t, apperr.Conflict(err))
	assert.Equal(t, models.BedAvailable, f.bedStatus(t, 2))
}

func TestAdmitUnknownAdmissionType(t *testing.T) {
	f := newAdmissionFixture(t)

	_, err := f.svc.Admit(AdmitRequest{
		PatientUHID:   "UHID-001",
		DoctorID:      7,
		BedID:         1,
		AdmissionType: "WALK_IN",
	}, f.nurse)
	require.Error(t, err)
	assert.True(t, apperr.InvalidInput(err))
}

func TestShiftToWard(t *testing.T) {
	f := newAdmissionFixture(t)
	adm := f.admit(t, "UHID-001", 1)

	shifted, err := f.svc.ShiftToWard(adm.ID, time.Now(), f.nurse)
	require.NoError(t, err)
	assert.Equal(t, models.AdmissionActive, shifted.Status)
	assert.NotNil(t, shifted.ShiftedAt)
	assert.Equal(t, models.BedOccupied, f.bedStatus(t, 1))

	// shifting twice is not a valid transition
	_, err = f.svc.ShiftToWard(adm.ID, time.Now(), f.nurse)
	require.Error(t, err)
	assert.True(t, apperr.Conflict(err))
}

func TestTransferSwapsBeds(t *testing.T) {
	f := newAdmissionFixture(t)
	adm := f.admit(t, "UHID-001", 1)
	_, err := f.svc.ShiftToWard(adm.ID, time.Now(), f.nurse)
	require.NoError(t, err)

	moved, err := f.svc.Transfer(adm.ID, 2, "bed change", f.nurse)
	require.NoError(t, err)
	assert.Equal(t, models.AdmissionTransferred, moved.Status)
	assert.Equal(t, "SHIFTED", moved.Status.Display())
	assert.Equal(t, models.BedAvailable, f.bedStatus(t, 1))
	assert.Equal(t, models.BedOccupied, f.bedStatus(t, 2))

	allocs, err := f.stores.Allocations().ListByAdmission(adm.ID)
	require.NoError(t, err)
	require.Len(t, allocs, 2)

	// a second hop from TRANSFERRED is allowed, but not onto the same bed
	_, err = f.svc.Transfer(adm.ID, 2, "", f.nurse)
	require.Error(t, err)
	assert.True(t, apperr.Conflict(err))
}

func TestTransferRequiresAvailableTarget(t *testing.T) {
	f := newAdmissionFixture(t)
	adm := f.admit(t, "UHID-001", 1)
	_, err := f.svc.ShiftToWard(adm.ID, time.Now(), f.nurse)
	require.NoError(t, err)
	require.NoError(t, f.stores.Beds().UpdateStatus(2, models.BedCleaning))

	_, err = f.svc.Transfer(adm.ID, 2, "", f.nurse)
	require.Error(t, err)
	assert.True(t, apperr.Conflict(err))
	assert.Equal(t, models.BedOccupied, f.bedStatus(t, 1))
}

func TestDischargeIsTwoPhase(t *testing.T) {
	f := newAdmissionFixture(t)
	adm := f.admit(t, "UHID-001", 1)
	_, err := f.svc.ShiftToWard(adm.ID, time.Now(), f.nurse)
	require.NoError(t, err)

	// first call only initiates; the bed stays occupied
	initiated, err := f.svc.Discharge(adm.ID, "clinically stable", f.nurse)
	require.NoError(t, err)
	assert.Equal(t, models.AdmissionDischargeInitiated, initiated.Status)
	assert.Equal(t, models.BedOccupied, f.bedStatus(t, 1))

	// second call finalizes and frees the bed
	done, err := f.svc.Discharge(adm.ID, "paperwork complete", f.nurse)
	require.NoError(t, err)
	assert.Equal(t, models.AdmissionDischarged, done.Status)
	assert.NotNil(t, done.DischargedAt)
	assert.Equal(t, models.BedAvailable, f.bedStatus(t, 1))

	// the patient can be admitted again
	f.admit(t, "UHID-001", 2)
}

func TestDischargeFromTerminalState(t *testing.T) {
	f := newAdmissionFixture(t)
	adm := f.admit(t, "UHID-001", 1)
	_, err := f.svc.ShiftToWard(adm.ID, time.Now(), f.nurse)
	require.NoError(t, err)
	_, err = f.svc.Discharge(adm.ID, "", f.nurse)
	require.NoError(t, err)
	_, err = f.svc.Discharge(adm.ID, "", f.nurse)
	require.NoError(t, err)

	_, err = f.svc.Discharge(adm.ID, "", f.nurse)
	require.Error(t, err)
	assert.True(t, apperr.Conflict(err))
}

func TestCancelFreesBed(t *testing.T) {
	f := newAdmissionFixture(t)
	adm := f.admit(t, "UHID-001", 1)

	cancelled, err := f.svc.Cancel(adm.ID, "admitted in error", f.nurse)
	require.NoError(t, err)
	assert.Equal(t, models.AdmissionCancelled, cancelled.Status)
	assert.Equal(t, models.BedAvailable, f.bedStatus(t, 1))

	// the patient can be admitted again
	f.admit(t, "UHID-001", 1)
}

func TestCancelAfterTransferRejected(t *testing.T) {
	f := newAdmissionFixture(t)
	adm := f.admit(t, "UHID-001", 1)
	_, err := f.svc.ShiftToWard(adm.ID, time.Now(), f.nurse)
	require.NoError(t, err)
	_, err = f.svc.Transfer(adm.ID, 2, "", f.nurse)
	require.NoError(t, err)

	_, err = f.svc.Cancel(adm.ID, "", f.nurse)
	require.Error(t, err)
	assert.True(t, apperr.Conflict(err))
}

func TestOverridePriority(t *testing.T) {
	f := newAdmissionFixture(t)
	adm := f.admit(t, "UHID-001", 1)
	require.Equal(t, models.PriorityP4, adm.PriorityCode)

	updated, err := f.svc.OverridePriority(adm.ID, models.PriorityP1, "deteriorating vitals overnight", f.super)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityP1, updated.PriorityCode)
	assert.True(t, updated.PriorityOverridden)
	require.NotNil(t, updated.OverrideBy)
	assert.Equal(t, f.super.UserID, *updated.OverrideBy)

	priorities, err := f.svc.PriorityHistory(adm.ID)
	require.NoError(t, err)
	require.Len(t, priorities, 2)
	assert.True(t, priorities[1].IsOverride)
}

func TestOverridePriorityForbiddenWritesNothing(t *testing.T) {
	f := newAdmissionFixture(t)
	adm := f.admit(t, "UHID-001", 1)

	_, err := f.svc.OverridePriority(adm.ID, models.PriorityP1, "deteriorating vitals overnight", f.nurse)
	require.Error(t, err)
	assert.True(t, apperr.Forbidden(err))

	current, err := f.svc.Get(adm.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityP4, current.PriorityCode)
	assert.False(t, current.PriorityOverridden)

	priorities, err := f.svc.PriorityHistory(adm.ID)
	require.NoError(t, err)
	assert.Len(t, priorities, 1)
}

func TestOverridePriorityReasonBounds(t *testing.T) {
	f := newAdmissionFixture(t)
	adm := f.admit(t, "UHID-001", 1)

	_, err := f.svc.OverridePriority(adm.ID, models.PriorityP1, "too short", f.super)
	require.Error(t, err)
	assert.True(t, apperr.InvalidInput(err))

	_, err = f.svc.OverridePriority(adm.ID, "P9", "a perfectly reasonable justification", f.super)
	require.Error(t, err)
	assert.True(t, apperr.InvalidInput(err))
}

func TestAdmissionNumbersAreSequential(t *testing.T) {
	f := newAdmissionFixture(t)
	year := time.Now().Year()

	first := f.admit(t, "UHID-001", 1)
	second := f.admit(t, "UHID-002", 2)

	assert.Equal(t, fmt.Sprintf("IPD-%d-000001", year), first.AdmissionNumber)
	assert.Equal(t, fmt.Sprintf("IPD-%d-000002", year), second.AdmissionNumber)

	got, err := f.svc.GetByNumber(first.AdmissionNumber)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}
