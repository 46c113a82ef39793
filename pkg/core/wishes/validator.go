// Package wishes validates a staff member's pre-schedule wish set against the unit-month request's
// quotas and shift-diversity rules.
package wishes

import (
	"fmt"
	"strings"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/lifecycle"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
)

// RuleID identifies a validation rule in violation reports
type RuleID string

const (
	RuleUnknownShiftCode        RuleID = "UnknownShiftCode"
	RuleDateOutsideMonth        RuleID = "DateOutsideMonth"
	RuleMonthlyOffDayQuota      RuleID = "MonthlyOffDayQuota"
	RuleHolidayOffDayQuota      RuleID = "HolidayOffDayQuota"
	RulePriorityDistinct        RuleID = "PriorityDistinct"
	RulePriorityIsRest          RuleID = "PriorityIsRest"
	RulePriorityThreeNotAllowed RuleID = "PriorityThreeNotAllowed"
	RuleNightTypesExclusive     RuleID = "NightTypesExclusive"
	RuleBatchNotEligible        RuleID = "BatchNotEligible"
	RuleBatchNotNight           RuleID = "BatchNotNight"
	RuleBatchConflict           RuleID = "BatchPreferenceConflict"
)

// Violation is one broken rule
type Violation struct {
	Rule        RuleID
	Description string
	// Dates lists the offending dates, when the rule is date based
	Dates []model.Date
}

// ValidationErrors holds every violation found in one pass, in rule order
type ValidationErrors []Violation

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, violation := range v {
		parts[i] = fmt.Sprintf("%s: %s", violation.Rule, violation.Description)
	}
	return fmt.Sprintf("wish set rejected (%d violations): %s", len(v), strings.Join(parts, "; "))
}

// Rules returns the violated rule ids in order
func (v ValidationErrors) Rules() []RuleID {
	ids := make([]RuleID, len(v))
	for i, violation := range v {
		ids[i] = violation.Rule
	}
	return ids
}

// Has reports whether rule is among the violations
func (v ValidationErrors) Has(rule RuleID) bool {
	for _, violation := range v {
		if violation.Rule == rule {
			return true
		}
	}
	return false
}

// Input is everything a validation needs. All of it is passed explicitly.
type Input struct {
	WishSet      model.WishSet
	Request      *model.PreScheduleRequest
	Capabilities model.Capabilities
	Catalog      *model.ShiftCatalog
	// Days are the calendar days of the request month (holiday flags included)
	Days  []model.CalendarDay
	Night model.NightPair
	// Today is the caller's current date, used for the editing window check
	Today model.Date
}

// Rule is one wish-set check
type Rule interface {
	// Name returns the rule id reported on violation
	Name() RuleID

	// Check returns the violations of this rule (empty if satisfied)
	Check(in *Input) []Violation
}

// DefaultRules returns the unit rules in reporting order
func DefaultRules() []Rule {
	return []Rule{
		&KnownShiftCodesRule{},
		&DatesInMonthRule{},
		&MonthlyOffDayQuotaRule{},
		&HolidayOffDayQuotaRule{},
		&PriorityDistinctRule{},
		&PriorityWorkedShiftRule{},
		&PriorityThreeRule{},
		&NightTypesExclusiveRule{},
		&BatchPreferenceRule{},
	}
}

// Validate checks a wish set with the default rules
func Validate(in Input) (model.WishSet, error) {
	return ValidateWith(in, DefaultRules())
}

// ValidateWith checks a wish set. The lifecycle gate runs first and its error is returned alone;
// otherwise every rule runs and all violations are returned together as ValidationErrors.
// The accepted wish set is returned exactly as given.
func ValidateWith(in Input, rules []Rule) (model.WishSet, error) {
	if in.Request == nil || in.Catalog == nil {
		return model.WishSet{}, fmt.Errorf("validation input requires a request and a shift catalog")
	}

	if err := lifecycle.CheckWritable(in.Request, in.WishSet.StaffID, in.Capabilities, in.Today); err != nil {
		return model.WishSet{}, err
	}

	var violations ValidationErrors
	for _, rule := range rules {
		violations = append(violations, rule.Check(&in)...)
	}

	if len(violations) > 0 {
		return model.WishSet{}, violations
	}

	return in.WishSet, nil
}
