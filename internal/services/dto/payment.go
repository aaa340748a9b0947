package dto

type StartBadgeCheckoutRequest struct {
	CandidateID string `json:"candidate_id" validate:"omitempty,max=36"`
}

type UpdatePaymentStatusRequest struct {
	Status string `json:"status" validate:"required,is-payment-status"`
}
