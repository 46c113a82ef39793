package statistics

import (
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
)

// GridStatistics are the statistics of every row of a grid plus unit totals
type GridStatistics struct {
	Staff []model.StaffStatistics
	// Totals sums the shift counts of codes that count toward statistics
	Totals          map[model.ShiftCode]int
	WorkDays        int
	HolidayWorkDays int
}

// ComputeGridStatistics computes statistics for every staff row, ordered by staff id
func ComputeGridStatistics(grid *model.ScheduleGrid, days []model.CalendarDay, catalog *model.ShiftCatalog) (GridStatistics, error) {
	result := GridStatistics{
		Staff:  make([]model.StaffStatistics, 0, len(grid.Assignments)),
		Totals: make(map[model.ShiftCode]int),
	}

	for _, staffID := range grid.StaffIDs() {
		stats, err := ComputeStaffStatistics(staffID, grid.Assignments[staffID], days, catalog)
		if err != nil {
			return GridStatistics{}, err
		}
		result.Staff = append(result.Staff, stats)

		result.WorkDays += stats.WorkDays
		result.HolidayWorkDays += stats.HolidayWorkDays
		for code, n := range stats.ShiftCounts {
			if def, ok := catalog.Lookup(code); ok && def.CountsTowardStats {
				result.Totals[code] += n
			}
		}
	}

	return result, nil
}
