package algorithms

import (
	"errors"
	"time"
)

// Candidate lifecycle:
//
//	dossier_submitted -> under_review -> accepted | rejected
//
// The landlord decision is terminal. The badge flag is an overlay, not a state.
const (
	StatusSubmitted   = "dossier_submitted"
	StatusUnderReview = "under_review"
	StatusAccepted    = "accepted"
	StatusRejected    = "rejected"

	DecisionAccepted = "accepted"
	DecisionRejected = "rejected"
)

var (
	ErrDuplicateApplication = errors.New("application already exists for this property")
	ErrPropertyClosed       = errors.New("property no longer accepts applications")
	ErrAlreadyDecided       = errors.New("candidate already has a different decision")
	ErrInvalidDecision      = errors.New("decision must be accepted or rejected")
)

// CanCreate checks the creation preconditions. The duplicate check runs first
// so a user re-submitting to a closed listing is told about the existing application.
func CanCreate(alreadyApplied bool, propertyClosedAt *time.Time) error {
	if alreadyApplied {
		return ErrDuplicateApplication
	}
	if propertyClosedAt != nil {
		return ErrPropertyClosed
	}
	return nil
}

type DecisionOutcome int

const (
	DecisionApplied DecisionOutcome = iota
	DecisionUnchanged
)

// Decide resolves a requested landlord decision against the current one.
// Repeating the same decision is a no-op; changing it is refused.
func Decide(current *string, requested string) (DecisionOutcome, error) {
	if requested != DecisionAccepted && requested != DecisionRejected {
		return 0, ErrInvalidDecision
	}
	if current == nil || *current == "" {
		return DecisionApplied, nil
	}
	if *current == requested {
		return DecisionUnchanged, nil
	}
	return 0, ErrAlreadyDecided
}

// StatusForDecision is the terminal status a decision moves the candidate into.
func StatusForDecision(decision string) string {
	if decision == DecisionAccepted {
		return StatusAccepted
	}
	return StatusRejected
}

// MarkUnderReview is the implicit transition taken when the landlord opens
// the candidate list. Only freshly submitted dossiers move.
func MarkUnderReview(status string) (string, bool) {
	if status == StatusSubmitted {
		return StatusUnderReview, true
	}
	return status, false
}

// IsFinal reports whether no further lifecycle transition is possible.
func IsFinal(status string) bool {
	return status == StatusAccepted || status == StatusRejected
}
