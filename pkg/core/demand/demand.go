// Package demand rolls the wish sets of a pre-schedule request up into per-date, per-shift counts and
// compares them with the unit's staffing requirements. Everything here is advisory.
package demand

import (
	"sort"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
)

// Coverage compares the wishes for one (date, shift) with the configured headcount
type Coverage struct {
	Date     model.Date
	Shift    model.ShiftCode
	Required int
	Count    int
	Met      bool
}

// Aggregate counts, for every date of the month, how many participants wish for each shift code.
// Only explicit wishes count; a date without a wish is no preference. When provisional is set it
// replaces the committed wish set of the same staff member, so a preview never counts anyone twice.
func Aggregate(
	accepted []model.WishSet,
	req *model.PreScheduleRequest,
	days []model.CalendarDay,
	catalog *model.ShiftCatalog,
	provisional *model.WishSet,
) model.AggregateDemand {
	result := make(model.AggregateDemand, len(days))
	for _, day := range days {
		result[day.Date] = make(map[model.ShiftCode]int)
	}

	counted := dateSet(days)
	for _, ws := range Effective(accepted, provisional) {
		forEachWish(ws, req, catalog, counted, func(date model.Date, code model.ShiftCode) {
			result[date][code]++
		})
	}

	return result
}

// Effective returns the wish sets that take part in an aggregation, ordered by staff id.
// The provisional set, when given, takes the place of the committed set with the same staff id.
func Effective(accepted []model.WishSet, provisional *model.WishSet) []model.WishSet {
	byStaff := make(map[string]model.WishSet, len(accepted)+1)
	for _, ws := range accepted {
		byStaff[ws.StaffID] = ws
	}
	if provisional != nil {
		byStaff[provisional.StaffID] = *provisional
	}

	sets := make([]model.WishSet, 0, len(byStaff))
	for _, ws := range byStaff {
		sets = append(sets, ws)
	}
	sort.Slice(sets, func(i, j int) bool {
		return sets[i].StaffID < sets[j].StaffID
	})
	return sets
}

// CoverageOf reports every configured requirement of the request against the aggregate,
// ordered by date then catalog order
func CoverageOf(agg model.AggregateDemand, req *model.PreScheduleRequest, catalog *model.ShiftCatalog) []Coverage {
	var coverage []Coverage
	for _, date := range model.SortedDates(req.DemandByDate) {
		required := req.DemandByDate[date]

		codes := make([]model.ShiftCode, 0, len(required))
		for code := range required {
			codes = append(codes, code)
		}
		catalog.SortCodes(codes)

		for _, code := range codes {
			count := agg.Count(date, code)
			coverage = append(coverage, Coverage{
				Date:     date,
				Shift:    code,
				Required: required[code],
				Count:    count,
				Met:      count >= required[code],
			})
		}
	}
	return coverage
}

// Unmet filters coverage down to the requirements not yet met
func Unmet(coverage []Coverage) []Coverage {
	var unmet []Coverage
	for _, c := range coverage {
		if !c.Met {
			unmet = append(unmet, c)
		}
	}
	return unmet
}

// forEachWish calls fn for every wish of a participant's set that falls on a counted date and names
// a catalog code. Sets of non-participants and anything else are skipped.
func forEachWish(
	ws model.WishSet,
	req *model.PreScheduleRequest,
	catalog *model.ShiftCatalog,
	counted map[model.Date]bool,
	fn func(model.Date, model.ShiftCode),
) {
	if !req.IsParticipant(ws.StaffID) {
		return
	}
	for date, code := range ws.Wishes {
		if !counted[date] {
			continue
		}
		if !catalog.Contains(code) {
			continue
		}
		fn(date, code)
	}
}

func dateSet(days []model.CalendarDay) map[model.Date]bool {
	set := make(map[model.Date]bool, len(days))
	for _, day := range days {
		set[day.Date] = true
	}
	return set
}
