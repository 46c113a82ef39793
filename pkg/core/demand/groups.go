package demand

import (
	"fmt"
	"sort"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
)

// GroupCounts holds wish counts per date, shift code and staff group label
type GroupCounts map[model.Date]map[model.ShiftCode]map[string]int

// Count returns the count for a date, code and group (0 when absent)
func (g GroupCounts) Count(date model.Date, code model.ShiftCode, group string) int {
	return g[date][code][group]
}

// GroupIssue is a group limit that the wishes of one date fall outside of
type GroupIssue struct {
	Date  model.Date
	Shift model.ShiftCode
	Group string
	Count int
	// Min and Max are the configured bounds, -1 when the bound is not configured
	Min int
	Max int
}

func (i GroupIssue) String() string {
	if i.Max >= 0 && i.Count > i.Max {
		return fmt.Sprintf("%s %s: %d %s wishes, at most %d", i.Date, i.Shift, i.Count, i.Group, i.Max)
	}
	return fmt.Sprintf("%s %s: %d %s wishes, at least %d needed", i.Date, i.Shift, i.Count, i.Group, i.Min)
}

// AggregateByGroup splits the aggregate by the participants' group labels.
// Participants without a group are counted under the empty label.
func AggregateByGroup(
	accepted []model.WishSet,
	req *model.PreScheduleRequest,
	days []model.CalendarDay,
	catalog *model.ShiftCatalog,
	provisional *model.WishSet,
) GroupCounts {
	result := make(GroupCounts, len(days))
	counted := dateSet(days)

	for _, ws := range Effective(accepted, provisional) {
		group := req.Participants[ws.StaffID]
		forEachWish(ws, req, catalog, counted, func(date model.Date, code model.ShiftCode) {
			if result[date] == nil {
				result[date] = make(map[model.ShiftCode]map[string]int)
			}
			if result[date][code] == nil {
				result[date][code] = make(map[string]int)
			}
			result[date][code][group]++
		})
	}

	return result
}

// CheckGroupLimits compares group counts with the request's group limits for every day of the month.
// Issues are ordered by date, then catalog order, then group label.
func CheckGroupLimits(
	counts GroupCounts,
	req *model.PreScheduleRequest,
	days []model.CalendarDay,
	catalog *model.ShiftCatalog,
) []GroupIssue {
	if len(req.GroupLimits) == 0 {
		return nil
	}

	groups := make([]string, 0, len(req.GroupLimits))
	for group := range req.GroupLimits {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	var issues []GroupIssue
	for _, day := range days {
		for _, def := range catalog.Definitions() {
			for _, group := range groups {
				limit := req.GroupLimits[group]
				lo, hasMin := limit.MinPerShift[def.Code]
				hi, hasMax := limit.MaxPerShift[def.Code]
				if !hasMin && !hasMax {
					continue
				}

				count := counts.Count(day.Date, def.Code, group)
				if (hasMin && count < lo) || (hasMax && count > hi) {
					issue := GroupIssue{Date: day.Date, Shift: def.Code, Group: group, Count: count, Min: -1, Max: -1}
					if hasMin {
						issue.Min = lo
					}
					if hasMax {
						issue.Max = hi
					}
					issues = append(issues, issue)
				}
			}
		}
	}
	return issues
}
