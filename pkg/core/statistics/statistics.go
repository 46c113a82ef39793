// Package statistics derives per-staff metrics and a completeness report from a finalized schedule grid.
package statistics

import (
	"errors"
	"fmt"
	"slices"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/calendar"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
)

var (
	ErrNoDays         = errors.New("no calendar days given")
	ErrDateOutOfRange = errors.New("date is outside the month and its carry-over days")
)

// runState is the running state of the forward pass
type runState struct {
	consecutiveDays int
	lastWasWork     bool
}

func (s *runState) step(work bool) {
	if !work {
		s.consecutiveDays = 0
		s.lastWasWork = false
		return
	}
	if s.lastWasWork {
		s.consecutiveDays++
	} else {
		s.consecutiveDays = 1
	}
	s.lastWasWork = true
}

// ComputeStaffStatistics runs one forward pass over the month in chronological order.
// Dates absent from the row are the primary rest code. Carry-over days of the previous month seed
// the consecutive run but are not counted in any total, so a run that continues into the month
// counts its full length toward ConsecutiveMax.
func ComputeStaffStatistics(
	staffID string,
	row map[model.Date]model.ShiftCode,
	days []model.CalendarDay,
	catalog *model.ShiftCatalog,
) (model.StaffStatistics, error) {
	if len(days) == 0 {
		return model.StaffStatistics{}, ErrNoDays
	}

	month := sortedDays(days)
	carryOver := calendar.TrailingDays(month[0].Date.Year, month[0].Date.Month, calendar.CarryOverDays)

	if err := checkRow(row, month, carryOver, catalog); err != nil {
		return model.StaffStatistics{}, fmt.Errorf("invalid row for %s: %w", staffID, err)
	}

	stats := model.StaffStatistics{
		StaffID:     staffID,
		ShiftCounts: make(map[model.ShiftCode]int),
	}
	restCode := catalog.RestCode()
	shiftOn := func(date model.Date) model.ShiftCode {
		if code, ok := row[date]; ok && code != "" {
			return code
		}
		return restCode
	}

	var run runState
	for _, date := range carryOver {
		run.step(!catalog.IsRest(shiftOn(date)))
	}

	for _, day := range month {
		shift := shiftOn(day.Date)
		work := !catalog.IsRest(shift)
		run.step(work)

		if work {
			stats.WorkDays++
			stats.ConsecutiveMax = max(stats.ConsecutiveMax, run.consecutiveDays)
			if day.IsHoliday {
				stats.HolidayWorkDays++
			}
		} else {
			stats.OffDays++
		}
		stats.ShiftCounts[shift]++
	}

	return stats, nil
}

// checkRow rejects dates outside the month and carry-over window and codes missing from the catalog
func checkRow(row map[model.Date]model.ShiftCode, month []model.CalendarDay, carryOver []model.Date, catalog *model.ShiftCatalog) error {
	allowed := make(map[model.Date]bool, len(month)+len(carryOver))
	for _, day := range month {
		allowed[day.Date] = true
	}
	for _, date := range carryOver {
		allowed[date] = true
	}

	var errs []error
	for _, date := range model.SortedDates(row) {
		if !allowed[date] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDateOutOfRange, date))
			continue
		}
		if code := row[date]; code != "" {
			if err := catalog.Validate(code); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", date, err))
			}
		}
	}
	return errors.Join(errs...)
}

// sortedDays returns a chronologically sorted copy of days
func sortedDays(days []model.CalendarDay) []model.CalendarDay {
	sorted := slices.Clone(days)
	slices.SortFunc(sorted, func(a, b model.CalendarDay) int {
		return a.Date.Compare(b.Date)
	})
	return sorted
}
