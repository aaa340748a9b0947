package models

import "time"

type User struct {
	BaseModel
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Name         string     `gorm:"size:255" json:"name"`
	Role         UserRole   `gorm:"type:varchar(20);not null;default:'tenant'" json:"role"`
	Language     string     `gorm:"type:varchar(5);not null;default:'de'" json:"language"`
	BadgePaidAt  *time.Time `json:"badge_paid_at,omitempty"`
}

// HasBadge - премиум-отметка оплачена.
func (u *User) HasBadge() bool {
	return u.BadgePaidAt != nil
}
