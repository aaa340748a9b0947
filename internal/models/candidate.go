package models

type Candidate struct {
	BaseModel
	UserID           string            `gorm:"size:36;not null;uniqueIndex:idx_candidates_user_property" json:"user_id"`
	PropertyID       string            `gorm:"size:36;not null;uniqueIndex:idx_candidates_user_property;index" json:"property_id"`
	TenantScore      int               `gorm:"not null;default:0;index" json:"tenant_score"`
	ScoreTier        ScoreTier         `gorm:"type:varchar(16);not null;default:'incomplete'" json:"score_tier"`
	ScoreReason      string            `json:"score_reason"`
	Status           CandidateStatus   `gorm:"type:varchar(32);not null;default:'dossier_submitted'" json:"status"`
	LandlordDecision *LandlordDecision `gorm:"type:varchar(16)" json:"landlord_decision,omitempty"`
	BadgeFlag        bool              `gorm:"not null;default:false" json:"badge_flag"`
	CoverLetter      *string           `gorm:"type:text" json:"cover_letter,omitempty"`

	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Property *Property `gorm:"foreignKey:PropertyID" json:"-"`
}
