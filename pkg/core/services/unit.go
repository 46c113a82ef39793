package services

import (
	"context"
	"fmt"
	"time"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/internal/config"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/calendar"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/lifecycle"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
)

// Unit is the static setup of the nursing unit every service works against
type Unit struct {
	ID       string
	Catalog  *model.ShiftCatalog
	Calendar calendar.HolidayCalendar
	Night    model.NightPair
	Defaults config.RequestDefaults
}

// UnitFromConfig builds the unit from a validated config
func UnitFromConfig(cfg *config.Config) (*Unit, error) {
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to build shift catalog: %w", err)
	}

	cal, err := cfg.Calendar()
	if err != nil {
		return nil, fmt.Errorf("failed to build holiday calendar: %w", err)
	}

	return &Unit{
		ID:       cfg.UnitID,
		Catalog:  catalog,
		Calendar: cal,
		Night:    cfg.NightShifts,
		Defaults: cfg.RequestDefaults,
	}, nil
}

// Days returns the calendar days of a month of this unit
func (u *Unit) Days(year int, month time.Month) []model.CalendarDay {
	return calendar.MonthDays(u.Calendar, year, month)
}

// Locker hands out writer locks. lockclient.Client implements it.
type Locker interface {
	Hold(ctx context.Context, name string) (func(context.Context) error, error)
}

// Notifier queues lifecycle notices. queueclient.Client implements it.
type Notifier interface {
	PublishNotice(ctx context.Context, notice lifecycle.Notice) (string, error)
}
