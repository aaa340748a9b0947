package dto

import (
	"github.com/shopspring/decimal"
)

// CreatePropertyRequest - создание объекта. Если переданы obligations,
// по ним сразу генерируются задачи.
type CreatePropertyRequest struct {
	Address      string          `json:"address" validate:"required,max=500"`
	RentChf      decimal.Decimal `json:"rent_chf"`
	NoticeMonths int             `json:"notice_months" validate:"min=0,max=24"`
	EarliestExit string          `json:"earliest_exit" validate:"omitempty,is-date"`
	KeyCount     int             `json:"key_count" validate:"min=0,max=50"`
	MainPhotoURL string          `json:"main_photo_url" validate:"omitempty,url"`
	Obligations  []string        `json:"obligations" validate:"omitempty,max=100,dive,max=255"`
}

// PropertyTasksSummary - итог генерации задач при создании объекта
type PropertyTasksSummary struct {
	Created int    `json:"created"`
	Failed  int    `json:"failed"`
	Error   string `json:"error,omitempty"`
}
