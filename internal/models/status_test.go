package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to AdmissionStatus
		want     bool
	}{
		{"", AdmissionAdmitted, true},
		{AdmissionAdmitted, AdmissionActive, true},
		{AdmissionActive, AdmissionTransferred, true},
		{AdmissionTransferred, AdmissionTransferred, true},
		{AdmissionAdmitted, AdmissionDischargeInitiated, true},
		{AdmissionDischargeInitiated, AdmissionDischarged, true},
		{AdmissionActive, AdmissionCancelled, true},

		{AdmissionAdmitted, AdmissionTransferred, false},
		{AdmissionActive, AdmissionDischarged, false},
		{AdmissionTransferred, AdmissionCancelled, false},
		{AdmissionDischarged, AdmissionDischargeInitiated, false},
		{AdmissionCancelled, AdmissionActive, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestStatusDisplay(t *testing.T) {
	assert.Equal(t, "SHIFTED", AdmissionTransferred.Display())
	assert.Equal(t, "ACTIVE", AdmissionActive.Display())
	assert.Equal(t, "DISCHARGED", AdmissionDischarged.Display())
}

func TestTerminalAndActive(t *testing.T) {
	for _, s := range []AdmissionStatus{AdmissionAdmitted, AdmissionActive, AdmissionTransferred, AdmissionDischargeInitiated} {
		assert.True(t, s.IsActive(), string(s))
		assert.False(t, s.IsTerminal(), string(s))
	}
	for _, s := range []AdmissionStatus{AdmissionDischarged, AdmissionCancelled} {
		assert.False(t, s.IsActive(), string(s))
		assert.True(t, s.IsTerminal(), string(s))
	}
}
