package service

import (
	"testing"
	"time"

	"hms-ipd-backend/internal/apperr"
	"hms-ipd-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWards map[uint]models.Ward

func (f fakeWards) Create(ward *models.Ward) error {
	ward.ID = uint(len(f) + 1)
	f[ward.ID] = *ward
	return nil
}

func (f fakeWards) Get(id uint) (*models.Ward, error) {
	w, ok := f[id]
	if !ok {
		return nil, apperr.Newf(apperr.ErrNotFound, "ward %d not found", id)
	}
	return &w, nil
}

func (f fakeWards) List() ([]models.Ward, error) {
	var out []models.Ward
	for _, w := range f {
		out = append(out, w)
	}
	return out, nil
}

func newBedFixture(t *testing.T) (*memStores, *BedService, fakeWards) {
	t.Helper()
	stores := newMemStores()
	wards := fakeWards{1: {ID: 1, Code: "GW-A", Name: "General Ward A", WardType: "GENERAL", IsActive: true}}
	svc := NewBedService(stores, stores, wards, zap.NewNop())
	return stores, svc, wards
}

func TestCreateBedStartsAvailable(t *testing.T) {
	_, svc, _ := newBedFixture(t)

	bed := &models.Bed{WardID: 1, BedNumber: "GW-A-01", Status: models.BedOccupied}
	require.NoError(t, svc.CreateBed(bed))
	assert.Equal(t, models.BedAvailable, bed.Status)
	assert.True(t, bed.IsActive)

	// unknown ward is rejected
	err := svc.CreateBed(&models.Bed{WardID: 9, BedNumber: "X-01"})
	require.Error(t, err)
	assert.True(t, apperr.NotFound(err))
}

func TestSetStatusRejectsLifecycleStatuses(t *testing.T) {
	_, svc, _ := newBedFixture(t)
	require.NoError(t, svc.CreateBed(&models.Bed{WardID: 1, BedNumber: "GW-A-01"}))

	for _, status := range []models.BedStatus{models.BedOccupied, models.BedReserved} {
		err := svc.SetStatus(1, status, Actor{UserID: 1, Role: models.RoleAdmin})
		require.Error(t, err)
		assert.True(t, apperr.InvalidInput(err), string(status))
	}
}

func TestSetStatusRejectsAllocatedBed(t *testing.T) {
	stores, svc, _ := newBedFixture(t)
	bed := &models.Bed{WardID: 1, BedNumber: "GW-A-01"}
	require.NoError(t, svc.CreateBed(bed))
	require.NoError(t, stores.Allocations().Create(&models.BedAllocation{
		BedID: bed.ID, AdmissionID: 99, AllocatedAt: time.Now(),
	}))

	err := svc.SetStatus(bed.ID, models.BedCleaning, Actor{UserID: 1, Role: models.RoleAdmin})
	require.Error(t, err)
	assert.True(t, apperr.Conflict(err))
}

func TestSetStatusRejectsReservedHold(t *testing.T) {
	stores, svc, _ := newBedFixture(t)
	bed := &models.Bed{WardID: 1, BedNumber: "GW-A-01"}
	require.NoError(t, svc.CreateBed(bed))
	require.NoError(t, stores.Beds().UpdateStatus(bed.ID, models.BedReserved))

	err := svc.SetStatus(bed.ID, models.BedAvailable, Actor{UserID: 1, Role: models.RoleAdmin})
	require.Error(t, err)
	assert.True(t, apperr.Conflict(err))
}

func TestDeactivateBed(t *testing.T) {
	stores, svc, _ := newBedFixture(t)
	bed := &models.Bed{WardID: 1, BedNumber: "GW-A-01"}
	require.NoError(t, svc.CreateBed(bed))

	require.NoError(t, svc.Deactivate(bed.ID, Actor{UserID: 1, Role: models.RoleAdmin}))
	got, err := stores.Beds().Get(bed.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.False(t, got.Allocatable())
}
