package lifecycle

import "github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"

// NoticeOpened is the notice type emitted when a pre-schedule request opens
const NoticeOpened = "pre_schedule_opened"

// Notice is the intent to tell participants about a lifecycle event.
// The engine only produces it; queuing and delivery belong to the caller.
type Notice struct {
	Type       string   `json:"type"`
	RequestID  string   `json:"requestId"`
	UnitID     string   `json:"unitId"`
	Year       int      `json:"year"`
	Month      int      `json:"month"`
	OpenDate   string   `json:"openDate"`
	CloseDate  string   `json:"closeDate"`
	Recipients []string `json:"recipients"`
}

func openedNotice(req model.PreScheduleRequest) Notice {
	return Notice{
		Type:       NoticeOpened,
		RequestID:  req.ID,
		UnitID:     req.UnitID,
		Year:       req.Year,
		Month:      int(req.Month),
		OpenDate:   req.OpenDate.String(),
		CloseDate:  req.CloseDate.String(),
		Recipients: req.ParticipantIDs(),
	}
}
