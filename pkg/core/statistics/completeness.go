package statistics

import (
	"fmt"
	"maps"
	"slices"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
)

// ShortageRecord is a (date, shift) with fewer assignments than required
type ShortageRecord struct {
	Date     model.Date      `json:"date"`
	Shift    model.ShiftCode `json:"shift"`
	Required int             `json:"required"`
	Actual   int             `json:"actual"`
	Shortage int             `json:"shortage"`
}

// Report is the result of a completeness check. It is informational: publishing is never blocked by it.
type Report struct {
	Complete bool             `json:"complete"`
	Missing  []ShortageRecord `json:"missing"`
}

// ComputeCompleteness counts the worked assignments of the whole grid per date and shift and compares
// them with demandByDate. Rest-code assignments never count. Shortages are ordered by date, then
// catalog order.
func ComputeCompleteness(
	grid *model.ScheduleGrid,
	demandByDate map[model.Date]map[model.ShiftCode]int,
	days []model.CalendarDay,
	catalog *model.ShiftCatalog,
) (Report, error) {
	if len(days) == 0 {
		return Report{}, ErrNoDays
	}

	month := sortedDays(days)

	// 1. Count worked assignments per month date
	actual := make(map[model.Date]map[model.ShiftCode]int, len(month))
	for _, day := range month {
		actual[day.Date] = make(map[model.ShiftCode]int)
	}
	for _, staffID := range grid.StaffIDs() {
		row := grid.Assignments[staffID]
		for _, date := range model.SortedDates(row) {
			code := row[date]
			if code == "" {
				continue
			}
			if err := catalog.Validate(code); err != nil {
				return Report{}, fmt.Errorf("invalid assignment for %s on %s: %w", staffID, date, err)
			}
			counts, inMonth := actual[date]
			if !inMonth || catalog.IsRest(code) {
				continue
			}
			counts[code]++
		}
	}

	// 2. Compare with requirements
	report := Report{Missing: []ShortageRecord{}}
	for _, day := range month {
		required := demandByDate[day.Date]
		if len(required) == 0 {
			continue
		}

		for _, code := range catalog.SortedCodes(slices.Collect(maps.Keys(required))) {
			have := actual[day.Date][code]
			if have < required[code] {
				report.Missing = append(report.Missing, ShortageRecord{
					Date:     day.Date,
					Shift:    code,
					Required: required[code],
					Actual:   have,
					Shortage: required[code] - have,
				})
			}
		}
	}

	report.Complete = len(report.Missing) == 0
	return report, nil
}

// TotalShortage sums the shortages of the report
func (r Report) TotalShortage() int {
	total := 0
	for _, m := range r.Missing {
		total += m.Shortage
	}
	return total
}
