package models

type UserRole string
type CandidateStatus string
type ScoreTier string
type LandlordDecision string
type TaskStatus string
type PaymentStatus string

const (
	UserRoleTenant   UserRole = "tenant"
	UserRoleLandlord UserRole = "landlord"
	UserRoleRegie    UserRole = "regie"

	CandidateStatusSubmitted   CandidateStatus = "dossier_submitted"
	CandidateStatusUnderReview CandidateStatus = "under_review"
	CandidateStatusAccepted    CandidateStatus = "accepted"
	CandidateStatusRejected    CandidateStatus = "rejected"

	ScoreTierGreen      ScoreTier = "green"
	ScoreTierYellow     ScoreTier = "yellow"
	ScoreTierIncomplete ScoreTier = "incomplete"

	DecisionAccepted LandlordDecision = "accepted"
	DecisionRejected LandlordDecision = "rejected"

	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// IsLandlordSide - роли, которые публикуют объекты и принимают решения.
func (r UserRole) IsLandlordSide() bool {
	return r == UserRoleLandlord || r == UserRoleRegie
}

func (d LandlordDecision) Valid() bool {
	return d == DecisionAccepted || d == DecisionRejected
}

func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	}
	return false
}
