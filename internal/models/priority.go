package models

import "strings"

// PriorityCode is the triage rank assigned to an admission, P1 highest
type PriorityCode string

const (
	PriorityP1 PriorityCode = "P1"
	PriorityP2 PriorityCode = "P2"
	PriorityP3 PriorityCode = "P3"
	PriorityP4 PriorityCode = "P4"
)

// queue position for admissions without a priority
const NoPriorityOrder = 5

// Order returns the numeric rank of a priority code (P1=1 .. P4=4).
// Unknown or empty codes sort last.
func (p PriorityCode) Order() int {
	switch p {
	case PriorityP1:
		return 1
	case PriorityP2:
		return 2
	case PriorityP3:
		return 3
	case PriorityP4:
		return 4
	}
	return NoPriorityOrder
}

// PriorityFromOrder maps a numeric rank back to its code, clamping to P1..P4.
func PriorityFromOrder(order int) PriorityCode {
	switch {
	case order <= 1:
		return PriorityP1
	case order == 2:
		return PriorityP2
	case order == 3:
		return PriorityP3
	default:
		return PriorityP4
	}
}

// ValidPriorityCode reports whether p is one of P1..P4.
func ValidPriorityCode(p PriorityCode) bool {
	return p == PriorityP1 || p == PriorityP2 || p == PriorityP3 || p == PriorityP4
}

// ConditionType is the clinical/administrative category driving base priority
type ConditionType string

const (
	ConditionEmergency ConditionType = "EMERGENCY"
	ConditionICU       ConditionType = "ICU"
	ConditionReferred  ConditionType = "REFERRED"
	ConditionElective  ConditionType = "ELECTIVE"
)

// icuWardTypes are the ward types that resolve to the ICU condition
var icuWardTypes = map[string]bool{
	"ICU":  true,
	"CCU":  true,
	"NICU": true,
	"HDU":  true,
}

// IsICUWardType reports whether wardType names a critical-care ward.
func IsICUWardType(wardType string) bool {
	return icuWardTypes[strings.ToUpper(strings.TrimSpace(wardType))]
}

// ConsiderationType is a non-clinical factor that may improve priority
type ConsiderationType string

const (
	ConsiderationSeniorCitizen ConsiderationType = "SENIOR_CITIZEN"
	ConsiderationPregnant      ConsiderationType = "PREGNANT"
	ConsiderationChild         ConsiderationType = "CHILD"
	ConsiderationDisabled      ConsiderationType = "DISABLED"
)

// AdmissionPriorityRule maps a condition type to its configured base priority
type AdmissionPriorityRule struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	ConditionType ConditionType `gorm:"size:30;uniqueIndex;not null" json:"condition_type"`
	BasePriority  int           `gorm:"not null" json:"base_priority"`
	Description   string        `gorm:"size:255" json:"description,omitempty"`
	IsActive      bool          `gorm:"default:true" json:"is_active"`
}

// TableName specifies the table name for AdmissionPriorityRule model
func (AdmissionPriorityRule) TableName() string {
	return "admission_priority_rules"
}

// SpecialAdmissionConsideration maps a consideration type to its boost points
type SpecialAdmissionConsideration struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	ConsiderationType ConsiderationType `gorm:"size:30;uniqueIndex;not null" json:"consideration_type"`
	BoostPoints       int               `gorm:"not null;default:0" json:"boost_points"`
	Description       string            `gorm:"size:255" json:"description,omitempty"`
	IsActive          bool              `gorm:"default:true" json:"is_active"`
}

// TableName specifies the table name for SpecialAdmissionConsideration model
func (SpecialAdmissionConsideration) TableName() string {
	return "special_admission_considerations"
}
