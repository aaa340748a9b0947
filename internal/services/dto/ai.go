package dto

import "mietlink_backend/internal/ai"

type ParseContractRequest struct {
	Text string `json:"text" validate:"required,max=200000"`
}

type CoverLetterRequest struct {
	PropertyID string              `json:"property_id" validate:"required,max=36"`
	Applicant  ai.ApplicantProfile `json:"applicant"`
	Language   string              `json:"language" validate:"omitempty,is-language"`
}

type CoverLetterResponse struct {
	Text        string `json:"text"`
	CandidateID string `json:"candidate_id,omitempty"`
}

type ExplainScoreRequest struct {
	CandidateID string `json:"candidate_id" validate:"required,max=36"`
}

type ExplainScoreResponse struct {
	Reason string `json:"reason"`
}

type RegieEmailRequest struct {
	PropertyID string `json:"property_id" validate:"required,max=36"`
	Language   string `json:"language" validate:"omitempty,is-language"`
	SendTo     string `json:"send_to" validate:"omitempty,email"`
}

type RegieEmailResponse struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Sent    bool   `json:"sent"`
}
