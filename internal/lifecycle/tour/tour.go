// Package tour defines the approval workflow for tour listings: which actor
// may move a tour between which states, and the guards a transition must
// pass before it is worth a network call. The backend stays authoritative;
// callers re-read status from responses instead of trusting a local result.
package tour

import (
	"fmt"
	"strings"

	"github.com/viettravel/tourhub/internal/models"
)

// Action is a lifecycle transition requested by a partner or an admin.
type Action string

const (
	// ActionSubmit sends a draft tour into admin review.
	ActionSubmit Action = "submit"
	// ActionApprove clears a pending tour for customer visibility.
	ActionApprove Action = "approve"
	// ActionReject turns a pending tour down with a mandatory reason.
	ActionReject Action = "reject"
	// ActionResubmit sends a rejected tour back into review.
	ActionResubmit Action = "resubmit"
)

// Actor identifies who is requesting a transition.
type Actor string

const (
	ActorPartner Actor = "partner"
	ActorAdmin   Actor = "admin"
)

// MinRejectReasonLen is the minimum trimmed length of a rejection reason.
const MinRejectReasonLen = 5

// TransitionError reports a transition the state machine does not allow.
type TransitionError struct {
	From   models.TourStatus
	Action Action
	Actor  Actor
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("tour transition %q by %s not allowed from status %q", e.Action, e.Actor, e.From)
}

type rule struct {
	actor Actor
	next  models.TourStatus
}

// transitions is the exhaustive table of legal moves. Anything not listed
// here is illegal regardless of actor.
var transitions = map[models.TourStatus]map[Action]rule{
	models.TourDraft: {
		ActionSubmit: {actor: ActorPartner, next: models.TourPendingApproval},
	},
	models.TourPendingApproval: {
		ActionApprove: {actor: ActorAdmin, next: models.TourApproved},
		ActionReject:  {actor: ActorAdmin, next: models.TourRejected},
	},
	models.TourRejected: {
		ActionResubmit: {actor: ActorPartner, next: models.TourPendingApproval},
	},
}

// Next returns the status a tour moves to when actor performs action from
// the current status. It returns a *TransitionError when the move is not in
// the transition table or the actor is wrong for it.
func Next(from models.TourStatus, action Action, by Actor) (models.TourStatus, error) {
	r, ok := transitions[from][action]
	if !ok || r.actor != by {
		return from, &TransitionError{From: from, Action: action, Actor: by}
	}
	return r.next, nil
}

// CanSubmit checks the client-side guard for submitting a tour: the record
// must be a persisted draft with a real id.
func CanSubmit(t models.Tour) error {
	if t.ID <= 0 {
		return fmt.Errorf("tour must be saved before submission (got id %d)", t.ID)
	}
	if t.Status != models.TourDraft {
		return &TransitionError{From: t.Status, Action: ActionSubmit, Actor: ActorPartner}
	}
	return nil
}

// ValidateRejectReason enforces the mandatory rejection reason before any
// request is dispatched.
func ValidateRejectReason(reason string) error {
	if len([]rune(strings.TrimSpace(reason))) < MinRejectReasonLen {
		return fmt.Errorf("rejection reason must be at least %d characters", MinRejectReasonLen)
	}
	return nil
}

// RetireChoice selects what happens to a tour the owning partner retires.
// The choice is always explicit; there is no default.
type RetireChoice string

const (
	// RetireDelete soft-deletes the tour.
	RetireDelete RetireChoice = "delete"
	// RetireToDraft pulls the tour back to draft.
	RetireToDraft RetireChoice = "draft"
)

// ValidateRetire checks that a retire request is well-formed: an explicit
// choice, and a tour in a state that permits retiring (Draft, Approved or
// Rejected; a tour under review cannot be pulled).
func ValidateRetire(t models.Tour, choice RetireChoice) error {
	switch choice {
	case RetireDelete, RetireToDraft:
	default:
		return fmt.Errorf("retire requires an explicit choice of %q or %q", RetireDelete, RetireToDraft)
	}
	switch t.Status {
	case models.TourDraft, models.TourApproved, models.TourRejected:
		return nil
	default:
		return &TransitionError{From: t.Status, Action: Action(choice), Actor: ActorPartner}
	}
}
