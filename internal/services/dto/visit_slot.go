package dto

import "time"

type CreateVisitSlotRequest struct {
	PropertyID  string    `json:"property_id" validate:"required,max=36"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	DurationMin int       `json:"duration_min" validate:"required,min=5,max=480"`
	Capacity    int       `json:"capacity" validate:"required,min=1,max=500"`
}
