package service

import (
	"fmt"
	"strings"

	"hms-ipd-backend/internal/models"
)

// RuleSource supplies the configured priority rules. The gorm-backed
// implementation lives in repository; tests inject maps.
type RuleSource interface {
	// BasePriority returns the configured base priority for a condition
	// type; ok is false when unconfigured.
	BasePriority(condition models.ConditionType) (int, bool)
	// Boost returns the configured boost points for a consideration type,
	// zero when unconfigured.
	Boost(consideration models.ConsiderationType) int
}

// PriorityInput carries the clinical attributes fed into evaluation.
type PriorityInput struct {
	AdmissionSource string `json:"admission_source"`
	WardType        string `json:"ward_type"`
	Referred        bool   `json:"referred"`
	SeniorCitizen   bool   `json:"senior_citizen"`
	Pregnant        bool   `json:"pregnant"`
	Child           bool   `json:"child"`
	Disabled        bool   `json:"disabled"`
}

// PriorityResult is the evaluator's output, stored on the admission and
// echoed into the priority audit log.
type PriorityResult struct {
	Code           models.PriorityCode        `json:"code"`
	Condition      models.ConditionType       `json:"condition"`
	Rationale      string                     `json:"rationale"`
	Considerations []models.ConsiderationType `json:"considerations,omitempty"`
	Boost          int                        `json:"boost"`
}

// default base priorities used when no rule is configured
var defaultBasePriority = map[models.ConditionType]int{
	models.ConditionEmergency: 1,
	models.ConditionICU:       2,
	models.ConditionReferred:  3,
	models.ConditionElective:  4,
}

// PriorityEvaluator ranks admissions P1..P4. Evaluation is a pure function
// over its input and the rule configuration: no side effects, identical
// inputs yield identical output.
type PriorityEvaluator struct {
	rules RuleSource
}

func NewPriorityEvaluator(rules RuleSource) *PriorityEvaluator {
	return &PriorityEvaluator{rules: rules}
}

// ResolveCondition applies the strict precedence order
// EMERGENCY > ICU > REFERRED > ELECTIVE.
func ResolveCondition(in PriorityInput) models.ConditionType {
	if strings.EqualFold(strings.TrimSpace(in.AdmissionSource), "EMERGENCY") ||
		strings.EqualFold(strings.TrimSpace(in.WardType), "EMERGENCY") {
		return models.ConditionEmergency
	}
	if models.IsICUWardType(in.WardType) {
		return models.ConditionICU
	}
	if in.Referred {
		return models.ConditionReferred
	}
	return models.ConditionElective
}

// Evaluate maps the input to a priority code with a rationale. Hard floors:
// EMERGENCY is always P1 regardless of configuration; ICU never ends up
// worse than P2, re-applied after the boost is subtracted.
func (e *PriorityEvaluator) Evaluate(in PriorityInput) PriorityResult {
	condition := ResolveCondition(in)

	order, ok := e.rules.BasePriority(condition)
	if !ok || order < 1 || order > 4 {
		order = defaultBasePriority[condition]
	}

	boost, applied := e.sumBoosts(in)
	order -= boost
	if order < 1 {
		order = 1
	}
	// floors, re-applied after boost
	if condition == models.ConditionEmergency {
		order = 1
	}
	if condition == models.ConditionICU && order > 2 {
		order = 2
	}

	code := models.PriorityFromOrder(order)
	rationale := fmt.Sprintf("Evaluated: %s", condition)
	if boost > 0 {
		rationale += fmt.Sprintf(" + special consideration (boost %d)", boost)
	}
	rationale += fmt.Sprintf(" → %s", code)

	return PriorityResult{
		Code:           code,
		Condition:      condition,
		Rationale:      rationale,
		Considerations: applied,
		Boost:          boost,
	}
}

// sumBoosts totals the configured boost points for each true flag and
// reports which consideration types actually contributed.
func (e *PriorityEvaluator) sumBoosts(in PriorityInput) (int, []models.ConsiderationType) {
	flags := []struct {
		set bool
		typ models.ConsiderationType
	}{
		{in.SeniorCitizen, models.ConsiderationSeniorCitizen},
		{in.Pregnant, models.ConsiderationPregnant},
		{in.Child, models.ConsiderationChild},
		{in.Disabled, models.ConsiderationDisabled},
	}

	total := 0
	var applied []models.ConsiderationType
	for _, f := range flags {
		if !f.set {
			continue
		}
		points := e.rules.Boost(f.typ)
		if points > 0 {
			total += points
			applied = append(applied, f.typ)
		}
	}
	return total, applied
}
