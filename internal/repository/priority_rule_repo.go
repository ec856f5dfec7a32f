package repository

import (
	"hms-ipd-backend/internal/models"

	"gorm.io/gorm"
)

// PriorityRuleRepository serves the priority evaluator's configuration: base
// priorities per condition type and boost points per special consideration.
// It satisfies the evaluator's RuleSource interface.
type PriorityRuleRepository struct {
	db *gorm.DB
}

func NewPriorityRuleRepo(db *gorm.DB) *PriorityRuleRepository {
	return &PriorityRuleRepository{db: db}
}

// BasePriority returns the configured base priority for a condition type.
// ok is false when no active rule is configured.
func (r *PriorityRuleRepository) BasePriority(condition models.ConditionType) (int, bool) {
	var rule models.AdmissionPriorityRule
	err := r.db.Where("condition_type = ? AND is_active = ?", condition, true).First(&rule).Error
	if err != nil {
		return 0, false
	}
	return rule.BasePriority, true
}

// Boost returns the configured boost points for a consideration type, zero
// when unconfigured or inactive.
func (r *PriorityRuleRepository) Boost(consideration models.ConsiderationType) int {
	var c models.SpecialAdmissionConsideration
	err := r.db.Where("consideration_type = ? AND is_active = ?", consideration, true).First(&c).Error
	if err != nil {
		return 0
	}
	return c.BoostPoints
}
