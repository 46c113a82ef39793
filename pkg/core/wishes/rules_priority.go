package wishes

import (
	"fmt"
	"slices"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
)

// PriorityDistinctRule requires the non-empty priorities to be pairwise distinct
type PriorityDistinctRule struct{}

func (r *PriorityDistinctRule) Name() RuleID {
	return RulePriorityDistinct
}

func (r *PriorityDistinctRule) Check(in *Input) []Violation {
	prefs := consideredPreferences(in)
	slots := []model.ShiftCode{prefs.Priority1, prefs.Priority2, prefs.Priority3}

	var violations []Violation
	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			if slots[i] != "" && slots[i] == slots[j] {
				violations = append(violations, Violation{
					Rule:        r.Name(),
					Description: fmt.Sprintf("priority %d and priority %d are both %q", i+1, j+1, slots[i]),
				})
			}
		}
	}
	return violations
}

// PriorityWorkedShiftRule rejects priorities that name a rest code
type PriorityWorkedShiftRule struct{}

func (r *PriorityWorkedShiftRule) Name() RuleID {
	return RulePriorityIsRest
}

func (r *PriorityWorkedShiftRule) Check(in *Input) []Violation {
	var violations []Violation
	for _, code := range consideredPreferences(in).Codes() {
		if in.Catalog.IsRest(code) {
			violations = append(violations, Violation{
				Rule:        r.Name(),
				Description: fmt.Sprintf("priority %q is a rest code, priorities must be worked shifts", code),
			})
		}
	}
	return violations
}

// PriorityThreeRule permits a third priority only when the request allows three shift types,
// either as the unit limit or by voluntary opt-in
type PriorityThreeRule struct{}

func (r *PriorityThreeRule) Name() RuleID {
	return RulePriorityThreeNotAllowed
}

func (r *PriorityThreeRule) Check(in *Input) []Violation {
	if in.WishSet.Preferences.Priority3 == "" || ThreeTypesAllowed(in.Request) {
		return nil
	}
	return []Violation{{
		Rule: r.Name(),
		Description: fmt.Sprintf("priority 3 (%q) is not allowed: shift type limit is %d and voluntary three types is off",
			in.WishSet.Preferences.Priority3, in.Request.ShiftTypesLimit),
	}}
}

// ThreeTypesAllowed reports whether a third priority is meaningful for the request
func ThreeTypesAllowed(req *model.PreScheduleRequest) bool {
	return req.ShiftTypesLimit == 3 || req.AllowThreeTypesVoluntary
}

// consideredPreferences drops priority 3 when the request does not allow it. PriorityThreeRule
// reports it and the other priority rules ignore it.
func consideredPreferences(in *Input) model.Preferences {
	prefs := in.WishSet.Preferences
	if !ThreeTypesAllowed(in.Request) {
		prefs.Priority3 = ""
	}
	return prefs
}

// NightTypesExclusiveRule rejects priority sets containing both night-type codes
type NightTypesExclusiveRule struct{}

func (r *NightTypesExclusiveRule) Name() RuleID {
	return RuleNightTypesExclusive
}

func (r *NightTypesExclusiveRule) Check(in *Input) []Violation {
	codes := consideredPreferences(in).Codes()
	if !slices.Contains(codes, in.Night.Evening) || !slices.Contains(codes, in.Night.Overnight) {
		return nil
	}
	return []Violation{{
		Rule:        r.Name(),
		Description: fmt.Sprintf("priorities may not include both %q and %q", in.Night.Evening, in.Night.Overnight),
	}}
}

// BatchPreferenceRule checks the batch commitment: only eligible staff may batch, only a night type may be
// batched, and batching one night type while prioritising the other is contradictory
type BatchPreferenceRule struct{}

func (r *BatchPreferenceRule) Name() RuleID {
	return RuleBatchConflict
}

func (r *BatchPreferenceRule) Check(in *Input) []Violation {
	batch := in.WishSet.BatchPreference
	if batch == "" || !in.Catalog.Contains(batch) {
		// unknown batch codes are reported by KnownShiftCodesRule
		return nil
	}

	var violations []Violation

	if !in.Capabilities.BatchEligible {
		violations = append(violations, Violation{
			Rule:        RuleBatchNotEligible,
			Description: fmt.Sprintf("staff member %s is not eligible for a batch commitment", in.WishSet.StaffID),
		})
	}

	other, isNight := in.Night.Other(batch)
	if !isNight {
		violations = append(violations, Violation{
			Rule:        RuleBatchNotNight,
			Description: fmt.Sprintf("batch preference %q is not a night shift type", batch),
		})
		return violations
	}

	if slices.Contains(consideredPreferences(in).Codes(), other) {
		violations = append(violations, Violation{
			Rule:        r.Name(),
			Description: fmt.Sprintf("batch preference %q conflicts with priority %q", batch, other),
		})
	}

	return violations
}
