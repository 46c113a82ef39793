package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testCatalog(t *testing.T) *ShiftCatalog {
	t.Helper()
	catalog, err := NewShiftCatalog([]ShiftDefinition{
		{Code: "N", Name: "Night", CountsTowardStats: true, SortOrder: 3},
		{Code: "D", Name: "Day", CountsTowardStats: true, SortOrder: 1},
		{Code: "E", Name: "Evening", CountsTowardStats: true, SortOrder: 2},
		{Code: "M", Name: "Off (legacy)", IsRest: true, SortOrder: 9},
		{Code: "OFF", Name: "Off", IsRest: true, SortOrder: 8},
	})
	require.NoError(t, err)
	return catalog
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2025, Month: time.March, Day: 9}, d)
	assert.Equal(t, "2025-03-09", d.String())

	_, err = ParseDate("2025-02-30")
	assert.Error(t, err)
}

func TestDate_CompareAndSort(t *testing.T) {
	dates := []Date{
		MustParseDate("2025-03-10"),
		MustParseDate("2025-02-28"),
		MustParseDate("2025-03-02"),
		MustParseDate("2024-12-31"),
	}
	SortDates(dates)

	assert.Equal(t, []Date{
		MustParseDate("2024-12-31"),
		MustParseDate("2025-02-28"),
		MustParseDate("2025-03-02"),
		MustParseDate("2025-03-10"),
	}, dates)
	assert.True(t, dates[0].Before(dates[1]))
	assert.True(t, dates[3].After(dates[2]))
	assert.Equal(t, 0, dates[2].Compare(MustParseDate("2025-03-02")))
}

func TestDate_AddDaysAndMonthLength(t *testing.T) {
	assert.Equal(t, MustParseDate("2025-03-01"), MustParseDate("2025-02-28").AddDays(1))
	assert.Equal(t, MustParseDate("2024-02-29"), MustParseDate("2024-03-01").AddDays(-1))
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 31, DaysInMonth(2025, time.December))
}

func TestDate_AsMapKeyInYAMLAndJSON(t *testing.T) {
	input := `
staffId: nurse-1
wishes:
  2025-03-01: OFF
  2025-03-02: D
preferences:
  priority1: D
`
	var ws WishSet
	require.NoError(t, yaml.Unmarshal([]byte(input), &ws))
	assert.Equal(t, ShiftCode("OFF"), ws.Wishes[MustParseDate("2025-03-01")])
	assert.Equal(t, ShiftCode("D"), ws.Wishes[MustParseDate("2025-03-02")])

	data, err := json.Marshal(ws.Wishes)
	require.NoError(t, err)
	assert.JSONEq(t, `{"2025-03-01":"OFF","2025-03-02":"D"}`, string(data))
}

func TestShiftCatalog_OrderAndRestCode(t *testing.T) {
	catalog := testCatalog(t)

	codes := make([]ShiftCode, 0)
	for _, def := range catalog.Definitions() {
		codes = append(codes, def.Code)
	}
	assert.Equal(t, []ShiftCode{"D", "E", "N", "OFF", "M"}, codes)
	assert.Equal(t, ShiftCode("OFF"), catalog.RestCode(), "lowest sort order rest code is primary")
	assert.True(t, catalog.IsRest("M"))
	assert.False(t, catalog.IsRest("D"))
	assert.False(t, catalog.IsRest("X"), "unknown codes are not rest codes")
}

func TestShiftCatalog_Validate(t *testing.T) {
	catalog := testCatalog(t)

	assert.NoError(t, catalog.Validate("E"))
	err := catalog.Validate("X")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownShiftCode))
}

func TestNewShiftCatalog_Errors(t *testing.T) {
	_, err := NewShiftCatalog(nil)
	assert.Error(t, err)

	_, err = NewShiftCatalog([]ShiftDefinition{{Code: "D", Name: "Day"}})
	assert.ErrorContains(t, err, "rest code")

	_, err = NewShiftCatalog([]ShiftDefinition{
		{Code: "OFF", Name: "Off", IsRest: true},
		{Code: "OFF", Name: "Off again", IsRest: true},
	})
	assert.ErrorContains(t, err, "duplicate")
}

func TestShiftCatalog_SortCodes(t *testing.T) {
	catalog := testCatalog(t)
	codes := []ShiftCode{"OFF", "ZZ", "N", "D"}
	catalog.SortCodes(codes)
	assert.Equal(t, []ShiftCode{"D", "N", "OFF", "ZZ"}, codes)
}

func TestNightPair(t *testing.T) {
	pair := NightPair{Evening: "E", Overnight: "N"}

	other, ok := pair.Other("E")
	assert.True(t, ok)
	assert.Equal(t, ShiftCode("N"), other)

	_, ok = pair.Other("D")
	assert.False(t, ok)
	assert.False(t, pair.Contains(""))

	assert.NoError(t, pair.ValidateAgainst(testCatalog(t)))
	assert.Error(t, NightPair{Evening: "E", Overnight: "OFF"}.ValidateAgainst(testCatalog(t)))
	assert.Error(t, NightPair{Evening: "E", Overnight: "E"}.ValidateAgainst(testCatalog(t)))
}

func TestValidateRequestSettings(t *testing.T) {
	catalog := testCatalog(t)
	valid := func() *PreScheduleRequest {
		return &PreScheduleRequest{
			UnitID:          "ward-7",
			Year:            2025,
			Month:           time.March,
			Status:          StatusDraft,
			MaxOffDays:      8,
			MaxHoliday:      4,
			ShiftTypesLimit: 2,
			DemandByDate: map[Date]map[ShiftCode]int{
				MustParseDate("2025-03-03"): {"D": 5, "E": 3, "N": 2},
			},
			GroupLimits: map[string]GroupLimit{
				"senior": {MinPerShift: map[ShiftCode]int{"N": 1}, MaxPerShift: map[ShiftCode]int{"N": 2}},
			},
		}
	}

	assert.NoError(t, ValidateRequestSettings(valid(), catalog))

	req := valid()
	req.ShiftTypesLimit = 4
	assert.Error(t, ValidateRequestSettings(req, catalog))

	req = valid()
	req.MaxOffDays = -1
	assert.Error(t, ValidateRequestSettings(req, catalog))

	req = valid()
	req.DemandByDate[MustParseDate("2025-04-01")] = map[ShiftCode]int{"D": 1}
	assert.ErrorContains(t, ValidateRequestSettings(req, catalog), "outside")

	req = valid()
	req.DemandByDate[MustParseDate("2025-03-04")] = map[ShiftCode]int{"OFF": 1, "X": 2}
	err := ValidateRequestSettings(req, catalog)
	assert.ErrorContains(t, err, "rest code")
	assert.ErrorIs(t, err, ErrUnknownShiftCode)

	req = valid()
	req.GroupLimits["senior"] = GroupLimit{MinPerShift: map[ShiftCode]int{"N": 3}, MaxPerShift: map[ShiftCode]int{"N": 1}}
	assert.ErrorContains(t, ValidateRequestSettings(req, catalog), "below min")
}

func TestValidateRequestSettings_ErrorOrderIsStable(t *testing.T) {
	catalog := testCatalog(t)
	req := &PreScheduleRequest{
		UnitID:          "ward-7",
		Year:            2025,
		Month:           time.March,
		Status:          StatusDraft,
		MaxOffDays:      8,
		MaxHoliday:      4,
		ShiftTypesLimit: 2,
		DemandByDate: map[Date]map[ShiftCode]int{
			MustParseDate("2025-03-04"): {"Z": 1, "X": 1, "OFF": 1, "D": -1},
		},
		GroupLimits: map[string]GroupLimit{
			"senior": {MinPerShift: map[ShiftCode]int{"Q": 1}},
			"junior": {MinPerShift: map[ShiftCode]int{"Q": 1}},
		},
	}

	want := []string{
		`demand on 2025-03-04 for "D" is negative`,
		`demand on 2025-03-04 names rest code "OFF"`,
		`demand on 2025-03-04: unknown shift code: "X"`,
		`demand on 2025-03-04: unknown shift code: "Z"`,
		`group "junior" min limit: unknown shift code: "Q"`,
		`group "senior" min limit: unknown shift code: "Q"`,
	}
	for i := 0; i < 20; i++ {
		err := ValidateRequestSettings(req, catalog)
		require.Error(t, err)
		assert.Equal(t, want, strings.Split(err.Error(), "\n"))
	}
}
