// Package lifecycle implements the draft → open → closed → locked state machine
// of a unit-month pre-schedule request, and decides who may write wishes in each state.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
)

var (
	// ErrInvalidTransition is returned when the current status does not permit the requested transition
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrRequestLocked is returned for any wish mutation on a locked request
	ErrRequestLocked = errors.New("request is locked")
	// ErrRequestNotOpen is returned when the request does not currently accept wishes from the caller
	ErrRequestNotOpen = errors.New("request is not open")
	// ErrNotParticipant is returned when the wish set owner does not take part in the request
	ErrNotParticipant = errors.New("staff member is not a participant of this request")
)

// Action names a lifecycle transition
type Action string

const (
	ActionOpen   Action = "open"
	ActionClose  Action = "close"
	ActionReopen Action = "reopen"
	ActionLock   Action = "lock"
)

// transitions lists, per action, the statuses it may start from and the status it leads to
var transitions = map[Action]struct {
	from []model.RequestStatus
	to   model.RequestStatus
}{
	ActionOpen:   {from: []model.RequestStatus{model.StatusDraft}, to: model.StatusOpen},
	ActionClose:  {from: []model.RequestStatus{model.StatusOpen}, to: model.StatusClosed},
	ActionReopen: {from: []model.RequestStatus{model.StatusClosed}, to: model.StatusOpen},
	// Policy is to lock from closed only; open is tolerated so a scheduler can finalize directly.
	ActionLock: {from: []model.RequestStatus{model.StatusClosed, model.StatusOpen}, to: model.StatusLocked},
}

// TransitionError describes a rejected transition. It matches ErrInvalidTransition with errors.Is.
type TransitionError struct {
	Action Action
	From   model.RequestStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s a request in status %q", ErrInvalidTransition, e.Action, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Next returns the status reached by applying action to status
func Next(status model.RequestStatus, action Action) (model.RequestStatus, error) {
	t, ok := transitions[action]
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
	for _, from := range t.from {
		if from == status {
			return t.to, nil
		}
	}
	return "", &TransitionError{Action: action, From: status}
}

// Open moves a draft request to open and records the close date of the editing window.
// If the request has no open date yet, today becomes the open date.
func Open(req model.PreScheduleRequest, today, closeDate model.Date) (model.PreScheduleRequest, Notice, error) {
	next, err := Next(req.Status, ActionOpen)
	if err != nil {
		return req, Notice{}, err
	}

	openDate := req.OpenDate
	if openDate.IsZero() {
		openDate = today
	}
	if closeDate.Before(openDate) {
		return req, Notice{}, fmt.Errorf("close date %s is before open date %s", closeDate, openDate)
	}

	req.Status = next
	req.OpenDate = openDate
	req.CloseDate = closeDate

	return req, openedNotice(req), nil
}

// Close stops participant editing of an open request
func Close(req model.PreScheduleRequest) (model.PreScheduleRequest, error) {
	return apply(req, ActionClose)
}

// Reopen returns a closed request to open
func Reopen(req model.PreScheduleRequest) (model.PreScheduleRequest, error) {
	return apply(req, ActionReopen)
}

// Lock finalizes a request. Locked is terminal.
func Lock(req model.PreScheduleRequest) (model.PreScheduleRequest, error) {
	return apply(req, ActionLock)
}

func apply(req model.PreScheduleRequest, action Action) (model.PreScheduleRequest, error) {
	next, err := Next(req.Status, action)
	if err != nil {
		return req, err
	}
	req.Status = next
	return req, nil
}

// CheckWritable decides whether staffID may submit or edit a wish set today.
// Participants may write only while open and within [OpenDate, CloseDate].
// An administrative override may write while draft or open regardless of date.
func CheckWritable(req *model.PreScheduleRequest, staffID string, caps model.Capabilities, today model.Date) error {
	if req.Status == model.StatusLocked {
		return ErrRequestLocked
	}

	// The wish set always belongs to a participant, even when a scheduler writes it
	if !req.IsParticipant(staffID) {
		return fmt.Errorf("%w: %s", ErrNotParticipant, staffID)
	}

	if caps.AdminOverride {
		switch req.Status {
		case model.StatusDraft, model.StatusOpen:
			return nil
		default:
			return fmt.Errorf("%w: status is %q", ErrRequestNotOpen, req.Status)
		}
	}

	if req.Status != model.StatusOpen {
		return fmt.Errorf("%w: status is %q", ErrRequestNotOpen, req.Status)
	}
	if today.Before(req.OpenDate) || (!req.CloseDate.IsZero() && today.After(req.CloseDate)) {
		return fmt.Errorf("%w: editing window is %s to %s", ErrRequestNotOpen, req.OpenDate, req.CloseDate)
	}

	return nil
}
