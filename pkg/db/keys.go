package db

import "fmt"

func (k MonthKey) String() string {
	return fmt.Sprintf("%s/%04d-%02d", k.UnitID, k.Year, int(k.Month))
}

func (k SubmissionKey) String() string {
	return fmt.Sprintf("%s/%s", k.MonthKey, k.StaffID)
}
