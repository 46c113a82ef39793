package wishes

import (
	"fmt"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
)

// KnownShiftCodesRule rejects wishes, priorities or batch preferences naming codes outside the catalog
type KnownShiftCodesRule struct{}

func (r *KnownShiftCodesRule) Name() RuleID {
	return RuleUnknownShiftCode
}

func (r *KnownShiftCodesRule) Check(in *Input) []Violation {
	var violations []Violation

	unknownByCode := make(map[model.ShiftCode][]model.Date)
	for _, date := range model.SortedDates(in.WishSet.Wishes) {
		code := in.WishSet.Wishes[date]
		if code == "" || in.Catalog.Contains(code) {
			continue
		}
		unknownByCode[code] = append(unknownByCode[code], date)
	}

	codes := make([]model.ShiftCode, 0, len(unknownByCode))
	for code := range unknownByCode {
		codes = append(codes, code)
	}
	in.Catalog.SortCodes(codes)
	for _, code := range codes {
		violations = append(violations, Violation{
			Rule:        r.Name(),
			Description: fmt.Sprintf("wish code %q is not defined for this unit", code),
			Dates:       unknownByCode[code],
		})
	}

	prefs := in.WishSet.Preferences
	for i, code := range []model.ShiftCode{prefs.Priority1, prefs.Priority2, prefs.Priority3} {
		if code != "" && !in.Catalog.Contains(code) {
			violations = append(violations, Violation{
				Rule:        r.Name(),
				Description: fmt.Sprintf("priority %d code %q is not defined for this unit", i+1, code),
			})
		}
	}

	if batch := in.WishSet.BatchPreference; batch != "" && !in.Catalog.Contains(batch) {
		violations = append(violations, Violation{
			Rule:        r.Name(),
			Description: fmt.Sprintf("batch preference %q is not defined for this unit", batch),
		})
	}

	return violations
}

// DatesInMonthRule rejects wish dates outside the request's month
type DatesInMonthRule struct{}

func (r *DatesInMonthRule) Name() RuleID {
	return RuleDateOutsideMonth
}

func (r *DatesInMonthRule) Check(in *Input) []Violation {
	var outside []model.Date
	for _, date := range model.SortedDates(in.WishSet.Wishes) {
		if !date.InMonth(in.Request.Year, in.Request.Month) {
			outside = append(outside, date)
		}
	}
	if len(outside) == 0 {
		return nil
	}
	return []Violation{{
		Rule:        r.Name(),
		Description: fmt.Sprintf("%d wish dates are outside %04d-%02d", len(outside), in.Request.Year, int(in.Request.Month)),
		Dates:       outside,
	}}
}

// MonthlyOffDayQuotaRule caps the number of rest-code wishes at MaxOffDays
type MonthlyOffDayQuotaRule struct{}

func (r *MonthlyOffDayQuotaRule) Name() RuleID {
	return RuleMonthlyOffDayQuota
}

func (r *MonthlyOffDayQuotaRule) Check(in *Input) []Violation {
	restDates := restWishDates(in, func(model.Date) bool { return true })
	if len(restDates) <= in.Request.MaxOffDays {
		return nil
	}
	return []Violation{{
		Rule:        r.Name(),
		Description: fmt.Sprintf("%d off days requested, at most %d allowed", len(restDates), in.Request.MaxOffDays),
		Dates:       restDates,
	}}
}

// HolidayOffDayQuotaRule caps the number of rest-code wishes on holidays at MaxHoliday
type HolidayOffDayQuotaRule struct{}

func (r *HolidayOffDayQuotaRule) Name() RuleID {
	return RuleHolidayOffDayQuota
}

func (r *HolidayOffDayQuotaRule) Check(in *Input) []Violation {
	holidays := make(map[model.Date]bool, len(in.Days))
	for _, day := range in.Days {
		if day.IsHoliday {
			holidays[day.Date] = true
		}
	}

	restDates := restWishDates(in, func(date model.Date) bool { return holidays[date] })
	if len(restDates) <= in.Request.MaxHoliday {
		return nil
	}
	return []Violation{{
		Rule:        r.Name(),
		Description: fmt.Sprintf("%d holiday off days requested, at most %d allowed", len(restDates), in.Request.MaxHoliday),
		Dates:       restDates,
	}}
}

// restWishDates returns, in date order, the explicitly wished rest dates accepted by include.
// Dates without a wish carry no preference and are not counted against quotas.
func restWishDates(in *Input, include func(model.Date) bool) []model.Date {
	var dates []model.Date
	for _, date := range model.SortedDates(in.WishSet.Wishes) {
		if in.Catalog.IsRest(in.WishSet.Wishes[date]) && include(date) {
			dates = append(dates, date)
		}
	}
	return dates
}
