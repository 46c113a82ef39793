package demand

import (
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
)

// OffCapacity is how many participants can be off on one date against how many asked to be
type OffCapacity struct {
	Date model.Date
	// Capacity is participants minus the total required headcount minus the reserved staff, never below zero
	Capacity  int
	Requested int
}

// Over reports whether more participants wish to be off than the date can spare
func (o OffCapacity) Over() bool {
	return o.Requested > o.Capacity
}

// OffCapacityOf computes the off capacity of every day of the month, in date order
func OffCapacityOf(
	agg model.AggregateDemand,
	req *model.PreScheduleRequest,
	days []model.CalendarDay,
	catalog *model.ShiftCatalog,
) []OffCapacity {
	result := make([]OffCapacity, 0, len(days))
	for _, day := range days {
		required := 0
		for _, n := range req.DemandByDate[day.Date] {
			required += n
		}

		requested := 0
		for code, n := range agg[day.Date] {
			if catalog.IsRest(code) {
				requested += n
			}
		}

		result = append(result, OffCapacity{
			Date:      day.Date,
			Capacity:  max(len(req.Participants)-required-req.ReservedStaffPerDay, 0),
			Requested: requested,
		})
	}
	return result
}

// OverCapacity filters off capacities down to the dates with too many off wishes
func OverCapacity(capacities []OffCapacity) []OffCapacity {
	var over []OffCapacity
	for _, c := range capacities {
		if c.Over() {
			over = append(over, c)
		}
	}
	return over
}
