package models

// BedStatus is the closed set of bed inventory states
type BedStatus string

const (
	BedAvailable   BedStatus = "AVAILABLE"
	BedOccupied    BedStatus = "OCCUPIED"
	BedReserved    BedStatus = "RESERVED"
	BedCleaning    BedStatus = "CLEANING"
	BedMaintenance BedStatus = "MAINTENANCE"
	BedIsolation   BedStatus = "ISOLATION"
)

// AdmissionStatus is the closed set of admission lifecycle states
type AdmissionStatus string

const (
	AdmissionAdmitted           AdmissionStatus = "ADMITTED"
	AdmissionActive             AdmissionStatus = "ACTIVE"
	AdmissionTransferred        AdmissionStatus = "TRANSFERRED"
	AdmissionDischargeInitiated AdmissionStatus = "DISCHARGE_INITIATED"
	AdmissionDischarged         AdmissionStatus = "DISCHARGED"
	AdmissionCancelled          AdmissionStatus = "CANCELLED"
)

// admissionTransitionMap lists the allowed previous statuses for each target
// status. The empty string stands for "no admission yet" (initial transition).
var admissionTransitionMap = map[AdmissionStatus][]AdmissionStatus{
	AdmissionAdmitted:           {""},
	AdmissionActive:             {AdmissionAdmitted},
	AdmissionTransferred:        {AdmissionActive, AdmissionTransferred},
	AdmissionDischargeInitiated: {AdmissionAdmitted, AdmissionActive, AdmissionTransferred},
	AdmissionDischarged:         {AdmissionDischargeInitiated},
	AdmissionCancelled:          {AdmissionAdmitted, AdmissionActive},
}

// CanTransition reports whether from -> to is an allowed admission transition.
func CanTransition(from, to AdmissionStatus) bool {
	allowed, ok := admissionTransitionMap[to]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == from {
			return true
		}
	}
	return false
}

// AllowedFrom returns the statuses that may precede the given target status.
func AllowedFrom(to AdmissionStatus) []AdmissionStatus {
	return admissionTransitionMap[to]
}

// IsActiveStatus reports whether an admission still occupies a bed and counts
// toward the queue and the one-active-admission-per-patient rule.
func (s AdmissionStatus) IsActive() bool {
	switch s {
	case AdmissionAdmitted, AdmissionActive, AdmissionTransferred, AdmissionDischargeInitiated:
		return true
	}
	return false
}

// IsTerminal reports whether the admission has reached a final state.
func (s AdmissionStatus) IsTerminal() bool {
	return s == AdmissionDischarged || s == AdmissionCancelled
}

// Display returns the user-facing name for a status. TRANSFERRED is shown as
// SHIFTED everywhere it surfaces.
func (s AdmissionStatus) Display() string {
	if s == AdmissionTransferred {
		return "SHIFTED"
	}
	return string(s)
}

// AdmissionType is how the patient arrived
type AdmissionType string

const (
	AdmissionOPDReferral AdmissionType = "OPD_REFERRAL"
	AdmissionEmergency   AdmissionType = "EMERGENCY"
	AdmissionDirect      AdmissionType = "DIRECT"
)

// ValidAdmissionType reports whether t is a known admission type.
func ValidAdmissionType(t AdmissionType) bool {
	switch t {
	case AdmissionOPDReferral, AdmissionEmergency, AdmissionDirect:
		return true
	}
	return false
}

// TransferStatus is the closed set of transfer workflow states
type TransferStatus string

const (
	TransferRecommended TransferStatus = "RECOMMENDED"
	TransferConsented   TransferStatus = "CONSENTED"
	TransferBedReserved TransferStatus = "BED_RESERVED"
	TransferInTransit   TransferStatus = "IN_TRANSIT"
	TransferCompleted   TransferStatus = "COMPLETED"
	TransferCancelled   TransferStatus = "CANCELLED"
)

// IsTerminal reports whether the transfer can no longer progress.
func (s TransferStatus) IsTerminal() bool {
	return s == TransferCompleted || s == TransferCancelled
}

// ReservationStatus is the closed set of bed reservation states
type ReservationStatus string

const (
	ReservationReserved  ReservationStatus = "RESERVED"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationReleased  ReservationStatus = "RELEASED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// ConsentMode is how transfer consent was captured
type ConsentMode string

const (
	ConsentWritten ConsentMode = "WRITTEN"
	ConsentDigital ConsentMode = "DIGITAL"
	ConsentVerbal  ConsentMode = "VERBAL"
)

// ValidConsentMode reports whether m is a known consent mode.
func ValidConsentMode(m ConsentMode) bool {
	switch m {
	case ConsentWritten, ConsentDigital, ConsentVerbal:
		return true
	}
	return false
}
