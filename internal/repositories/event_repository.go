package repositories

import (
	"encoding/json"

	"mietlink_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EventRepository - журнал событий, только добавление
type EventRepository interface {
	Append(db *gorm.DB, propertyID *string, eventType string, payload interface{}) error
	ListByProperty(db *gorm.DB, propertyID string, limit int) ([]models.Event, error)
}

type EventRepositoryImpl struct{}

func NewEventRepository() EventRepository {
	return &EventRepositoryImpl{}
}

func (r *EventRepositoryImpl) Append(db *gorm.DB, propertyID *string, eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return db.Create(&models.Event{
		PropertyID: propertyID,
		Type:       eventType,
		Payload:    datatypes.JSON(data),
	}).Error
}

func (r *EventRepositoryImpl) ListByProperty(db *gorm.DB, propertyID string, limit int) ([]models.Event, error) {
	var events []models.Event
	err := db.Where("property_id = ?", propertyID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
