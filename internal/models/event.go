package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EventPropertyCreated      = "property_created"
	EventPropertyClosed       = "property_closed"
	EventDocumentUploaded     = "document_uploaded"
	EventCandidateCreated     = "candidate_created"
	EventCandidateScored      = "candidate_scored"
	EventCandidateUnderReview = "candidate_under_review"
	EventCandidateDecided     = "candidate_decided"
	EventTasksGenerated       = "tasks_generated"
	EventTaskUpdated          = "task_updated"
	EventVisitSlotCreated     = "visit_slot_created"
	EventVisitBooked          = "visit_booked"
	EventPaymentUpdated       = "payment_updated"
)

// Event - журнал доменных событий, только добавление.
type Event struct {
	ID         string         `gorm:"primaryKey;size:36" json:"id"`
	PropertyID *string        `gorm:"size:36;index" json:"property_id,omitempty"`
	Type       string         `gorm:"size:64;not null;index" json:"type"`
	Payload    datatypes.JSON `json:"payload"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
