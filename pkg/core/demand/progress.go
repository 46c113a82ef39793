package demand

import (
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
)

// Progress splits the participants of a request by whether they have submitted a wish set
type Progress struct {
	Submitted []string
	Pending   []string
}

// Total is the number of participants
func (p Progress) Total() int {
	return len(p.Submitted) + len(p.Pending)
}

// SubmissionProgress reports who has and has not submitted, each list sorted by staff id.
// Wish sets of staff who are not participants are ignored.
func SubmissionProgress(req *model.PreScheduleRequest, accepted []model.WishSet) Progress {
	submitted := make(map[string]bool, len(accepted))
	for _, ws := range accepted {
		submitted[ws.StaffID] = true
	}

	progress := Progress{Submitted: []string{}, Pending: []string{}}
	for _, id := range req.ParticipantIDs() {
		if submitted[id] {
			progress.Submitted = append(progress.Submitted, id)
		} else {
			progress.Pending = append(progress.Pending, id)
		}
	}
	return progress
}
