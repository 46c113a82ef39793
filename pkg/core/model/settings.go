package model

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequestSettings checks the scheduler-configured quota and demand settings of a request
// against the unit's shift catalog. It does not look at the lifecycle status.
func ValidateRequestSettings(req *PreScheduleRequest, catalog *ShiftCatalog) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("request settings validation failed: %w", err)
	}

	var errs []error

	if !req.Status.IsValid() {
		errs = append(errs, fmt.Errorf("invalid status %q", req.Status))
	}

	if !req.OpenDate.IsZero() && !req.CloseDate.IsZero() && req.CloseDate.Before(req.OpenDate) {
		errs = append(errs, fmt.Errorf("close date %s is before open date %s", req.CloseDate, req.OpenDate))
	}

	for _, date := range SortedDates(req.DemandByDate) {
		if !date.InMonth(req.Year, req.Month) {
			errs = append(errs, fmt.Errorf("demand date %s is outside %04d-%02d", date, req.Year, int(req.Month)))
		}
		demand := req.DemandByDate[date]
		for _, code := range catalog.SortedCodes(slices.Collect(maps.Keys(demand))) {
			count := demand[code]
			if err := catalog.Validate(code); err != nil {
				errs = append(errs, fmt.Errorf("demand on %s: %w", date, err))
				continue
			}
			if catalog.IsRest(code) {
				errs = append(errs, fmt.Errorf("demand on %s names rest code %q", date, code))
			}
			if count < 0 {
				errs = append(errs, fmt.Errorf("demand on %s for %q is negative", date, code))
			}
		}
	}

	for _, group := range slices.Sorted(maps.Keys(req.GroupLimits)) {
		limit := req.GroupLimits[group]
		for _, code := range catalog.SortedCodes(slices.Collect(maps.Keys(limit.MinPerShift))) {
			min := limit.MinPerShift[code]
			if err := catalog.Validate(code); err != nil {
				errs = append(errs, fmt.Errorf("group %q min limit: %w", group, err))
				continue
			}
			if max, ok := limit.MaxPerShift[code]; ok && max < min {
				errs = append(errs, fmt.Errorf("group %q limit for %q has max %d below min %d", group, code, max, min))
			}
		}
		for _, code := range catalog.SortedCodes(slices.Collect(maps.Keys(limit.MaxPerShift))) {
			if err := catalog.Validate(code); err != nil {
				errs = append(errs, fmt.Errorf("group %q max limit: %w", group, err))
			}
		}
	}

	return errors.Join(errs...)
}
