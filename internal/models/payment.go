package models

import "github.com/shopspring/decimal"

type Payment struct {
	BaseModel
	UserID          string          `gorm:"size:36;not null;index" json:"user_id"`
	CandidateID     *string         `gorm:"size:36" json:"candidate_id,omitempty"`
	AmountChf       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount_chf"`
	StripeSessionID string          `gorm:"uniqueIndex;size:64" json:"stripe_session_id"`
	Status          PaymentStatus   `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
}
