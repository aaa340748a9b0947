package models

import "time"

type VisitSlot struct {
	BaseModel
	PropertyID  string    `gorm:"size:36;not null;index" json:"property_id"`
	StartsAt    time.Time `gorm:"not null" json:"starts_at"`
	DurationMin int       `gorm:"not null;default:15" json:"duration_min"`
	Capacity    int       `gorm:"not null;check:chk_visit_slots_capacity,capacity >= 1" json:"capacity"`
	SeatsLeft   int       `gorm:"not null;check:chk_visit_slots_seats,seats_left >= 0 AND seats_left <= capacity" json:"seats_left"`
}

// VisitBooking фиксирует, кто занял место, чтобы один пользователь не бронировал слот дважды.
type VisitBooking struct {
	BaseModel
	SlotID string `gorm:"size:36;not null;uniqueIndex:idx_visit_bookings_slot_user" json:"slot_id"`
	UserID string `gorm:"size:36;not null;uniqueIndex:idx_visit_bookings_slot_user" json:"user_id"`
}
