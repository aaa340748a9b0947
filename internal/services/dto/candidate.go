package dto

// CreateCandidateRequest - заявка на объект. Балл и статус клиента
// не принимаются: они вычисляются на сервере.
type CreateCandidateRequest struct {
	PropertyID  string `json:"property_id" validate:"required,max=36"`
	CoverLetter string `json:"cover_letter" validate:"required,min=50,max=5000"`
}

type DecisionRequest struct {
	Decision string `json:"decision" validate:"required,is-landlord-decision"`
}
