package model

import (
	"sort"
	"time"
)

// RequestStatus is the lifecycle status of a unit-month pre-schedule request
type RequestStatus string

const (
	StatusDraft  RequestStatus = "draft"
	StatusOpen   RequestStatus = "open"
	StatusClosed RequestStatus = "closed"
	StatusLocked RequestStatus = "locked"
)

func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusOpen, StatusClosed, StatusLocked:
		return true
	}
	return false
}

// GridStatus is the publication status of a schedule grid
type GridStatus string

const (
	GridDraft     GridStatus = "draft"
	GridPublished GridStatus = "published"
)

// CalendarDay is one derived day of a month
type CalendarDay struct {
	Date      Date
	Weekday   time.Weekday
	IsHoliday bool
}

// GroupLimit bounds how many members of a staff group may wish for / be assigned to a shift on one day
type GroupLimit struct {
	MinPerShift map[ShiftCode]int `yaml:"minPerShift,omitempty" json:"minPerShift,omitempty"`
	MaxPerShift map[ShiftCode]int `yaml:"maxPerShift,omitempty" json:"maxPerShift,omitempty"`
}

// PreScheduleRequest is the pre-schedule configuration and state of one unit-month
type PreScheduleRequest struct {
	ID     string
	UnitID string     `validate:"required"`
	Year   int        `validate:"min=2000,max=9999"`
	Month  time.Month `validate:"min=1,max=12"`
	Status RequestStatus

	// OpenDate and CloseDate bound the inclusive editing window for participants
	OpenDate  Date
	CloseDate Date

	MaxOffDays               int `validate:"min=0"`
	MaxHoliday               int `validate:"min=0"`
	ShiftTypesLimit          int `validate:"oneof=2 3"`
	AllowThreeTypesVoluntary bool
	ReservedStaffPerDay      int `validate:"min=0"`

	GroupLimits  map[string]GroupLimit
	DemandByDate map[Date]map[ShiftCode]int

	// Participants maps staff id to group label (empty label for no group)
	Participants map[string]string

	// Version increments on every persisted change (used for compare-and-swap writes)
	Version int
}

// IsParticipant reports whether staffID takes part in the request
func (r *PreScheduleRequest) IsParticipant(staffID string) bool {
	_, ok := r.Participants[staffID]
	return ok
}

// ParticipantIDs returns participant ids sorted
func (r *PreScheduleRequest) ParticipantIDs() []string {
	ids := make([]string, 0, len(r.Participants))
	for id := range r.Participants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Required returns the configured headcount for a date and code (0 when unset)
func (r *PreScheduleRequest) Required(date Date, code ShiftCode) int {
	return r.DemandByDate[date][code]
}

// Preferences is the ordered shift-type priority of a staff member
type Preferences struct {
	Priority1 ShiftCode `yaml:"priority1,omitempty" json:"priority1,omitempty"`
	Priority2 ShiftCode `yaml:"priority2,omitempty" json:"priority2,omitempty"`
	Priority3 ShiftCode `yaml:"priority3,omitempty" json:"priority3,omitempty"`
}

// Codes returns the non-empty priorities in order
func (p Preferences) Codes() []ShiftCode {
	codes := make([]ShiftCode, 0, 3)
	for _, c := range []ShiftCode{p.Priority1, p.Priority2, p.Priority3} {
		if c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

// WishSet is one participant's wishes for a request
type WishSet struct {
	StaffID         string             `yaml:"staffId" json:"staffId"`
	Wishes          map[Date]ShiftCode `yaml:"wishes" json:"wishes"`
	Notes           string             `yaml:"notes,omitempty" json:"notes,omitempty"`
	Preferences     Preferences        `yaml:"preferences" json:"preferences"`
	BatchPreference ShiftCode          `yaml:"batchPreference,omitempty" json:"batchPreference,omitempty"`
	UpdatedAt       time.Time          `yaml:"-" json:"updatedAt"`
	Version         int                `yaml:"-" json:"-"`
}

// AggregateDemand counts wishes per date and shift code
type AggregateDemand map[Date]map[ShiftCode]int

// Count returns the aggregated count for a date and code
func (a AggregateDemand) Count(date Date, code ShiftCode) int {
	return a[date][code]
}

// ScheduleGrid is the finalized assignment grid of a unit-month
type ScheduleGrid struct {
	UnitID      string                        `yaml:"unitId" json:"unitId"`
	Year        int                           `yaml:"year" json:"year"`
	Month       time.Month                    `yaml:"month" json:"month"`
	Status      GridStatus                    `yaml:"status" json:"status"`
	Assignments map[string]map[Date]ShiftCode `yaml:"assignments" json:"assignments"`
	Version     int                           `yaml:"-" json:"-"`
}

// StaffIDs returns the grid's staff ids sorted
func (g *ScheduleGrid) StaffIDs() []string {
	ids := make([]string, 0, len(g.Assignments))
	for id := range g.Assignments {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// StaffStatistics are the derived metrics of one staff row
type StaffStatistics struct {
	StaffID         string
	WorkDays        int
	OffDays         int
	HolidayWorkDays int
	ShiftCounts     map[ShiftCode]int
	ConsecutiveMax  int
}

// Capabilities are the caller's explicit permissions for a wish submission.
// They are always passed as arguments and never read from ambient session state.
type Capabilities struct {
	// BatchEligible allows the staff member to commit to a batch of one night type
	BatchEligible bool
	// AdminOverride marks a scheduler writing on the staff member's behalf
	AdminOverride bool
}
