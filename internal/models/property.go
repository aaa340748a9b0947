package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Property struct {
	BaseModel
	OwnerID      string          `gorm:"size:36;not null;index" json:"owner_id"`
	Address      string          `gorm:"not null" json:"address"`
	RentChf      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"rent_chf"`
	NoticeMonths int             `gorm:"not null;default:3" json:"notice_months"`
	EarliestExit *time.Time      `gorm:"type:date" json:"earliest_exit,omitempty"`
	KeyCount     int             `gorm:"not null;default:1" json:"key_count"`
	MainPhotoURL string          `json:"main_photo_url,omitempty"`
	Obligations  datatypes.JSON  `json:"obligations,omitempty"`
	ClosedAt     *time.Time      `json:"closed_at,omitempty"`
	Slug         string          `gorm:"uniqueIndex;size:16;not null" json:"slug"`
}

// IsClosed - объект больше не принимает заявки.
func (p *Property) IsClosed() bool {
	return p.ClosedAt != nil
}
