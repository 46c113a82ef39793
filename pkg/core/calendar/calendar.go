package calendar

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
)

// CarryOverDays is the number of trailing prior-month days a grid may carry for consecutive-run computation
const CarryOverDays = 6

// HolidayCalendar answers whether a date is a holiday for the unit
type HolidayCalendar interface {
	IsHoliday(date model.Date) bool
}

// Holiday is a single dated holiday entry of a unit
type Holiday struct {
	Date    model.Date
	Name    string
	Enabled bool
}

// RecurringHoliday is a holiday described by an RFC 5545 RRULE, e.g. "FREQ=YEARLY;BYMONTH=10;BYMONTHDAY=10".
// The rule must pin its days with BY* parts; its DTSTART is replaced by the start of the month being queried.
type RecurringHoliday struct {
	RRule   string
	Name    string
	Enabled bool
}

type recurring struct {
	name   string
	option rrule.ROption
}

// Calendar is the unit's holiday calendar. It is immutable after construction and safe for concurrent use.
type Calendar struct {
	fixed     map[model.Date]string
	recurring []recurring
}

// New builds a calendar from the unit's holiday list. Disabled entries are ignored.
func New(holidays []Holiday, recurringHolidays []RecurringHoliday) (*Calendar, error) {
	c := &Calendar{
		fixed: make(map[model.Date]string),
	}

	for _, h := range holidays {
		if !h.Enabled {
			continue
		}
		c.fixed[h.Date] = h.Name
	}

	for i, h := range recurringHolidays {
		if !h.Enabled {
			continue
		}
		option, err := rrule.StrToROption(h.RRule)
		if err != nil {
			return nil, fmt.Errorf("invalid rrule for recurring holiday %d (%s): %w", i, h.Name, err)
		}
		c.recurring = append(c.recurring, recurring{name: h.Name, option: *option})
	}

	return c, nil
}

// IsHoliday reports whether date is a weekend day or an enabled holiday
func (c *Calendar) IsHoliday(date model.Date) bool {
	if isWeekend(date.Weekday()) {
		return true
	}
	_, ok := c.HolidayName(date)
	return ok
}

// HolidayName returns the name of the listed holiday on date, if any. Weekends are not listed holidays.
func (c *Calendar) HolidayName(date model.Date) (string, bool) {
	if name, ok := c.fixed[date]; ok {
		return name, true
	}
	if names := c.recurringNames(date); len(names) > 0 {
		return names[0], true
	}
	return "", false
}

// Month returns every day of the month in chronological order
func (c *Calendar) Month(year int, month time.Month) []model.CalendarDay {
	listed := c.recurringOccurrences(year, month)
	for date := range c.fixed {
		if date.InMonth(year, month) {
			listed[date] = true
		}
	}

	n := model.DaysInMonth(year, month)
	days := make([]model.CalendarDay, 0, n)
	for d := 1; d <= n; d++ {
		date := model.NewDate(year, month, d)
		weekday := date.Weekday()
		days = append(days, model.CalendarDay{
			Date:      date,
			Weekday:   weekday,
			IsHoliday: isWeekend(weekday) || listed[date],
		})
	}
	return days
}

// MonthDays derives the month's days from any holiday calendar
func MonthDays(cal HolidayCalendar, year int, month time.Month) []model.CalendarDay {
	n := model.DaysInMonth(year, month)
	days := make([]model.CalendarDay, 0, n)
	for d := 1; d <= n; d++ {
		date := model.NewDate(year, month, d)
		days = append(days, model.CalendarDay{
			Date:      date,
			Weekday:   date.Weekday(),
			IsHoliday: cal.IsHoliday(date),
		})
	}
	return days
}

// TrailingDays returns the last n days of the month before year/month, in chronological order
func TrailingDays(year int, month time.Month, n int) []model.Date {
	first := model.NewDate(year, month, 1)
	dates := make([]model.Date, 0, n)
	for i := n; i >= 1; i-- {
		dates = append(dates, first.AddDays(-i))
	}
	return dates
}

// recurringOccurrences returns the dates in the month produced by any recurring rule
func (c *Calendar) recurringOccurrences(year int, month time.Month) map[model.Date]bool {
	out := make(map[model.Date]bool)
	if len(c.recurring) == 0 {
		return out
	}

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Second)

	for _, r := range c.recurring {
		for _, occurrence := range r.between(monthStart, monthEnd) {
			out[model.DateOf(occurrence)] = true
		}
	}
	return out
}

func (c *Calendar) recurringNames(date model.Date) []string {
	start := date.Time()
	end := start.Add(24*time.Hour - time.Second)
	var names []string
	for _, r := range c.recurring {
		if len(r.between(start, end)) > 0 {
			names = append(names, r.name)
		}
	}
	return names
}

// between builds a fresh rule anchored at the start of the queried month so the stored option is never mutated
func (r recurring) between(from, to time.Time) []time.Time {
	option := r.option
	option.Dtstart = time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	rule, err := rrule.NewRRule(option)
	if err != nil {
		return nil
	}
	return rule.Between(from, to, true)
}

func isWeekend(weekday time.Weekday) bool {
	return weekday == time.Saturday || weekday == time.Sunday
}
