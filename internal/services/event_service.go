package services

import (
	"mietlink_backend/internal/models"
	"mietlink_backend/internal/repositories"
	"mietlink_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 200
)

// EventService - чтение журнала событий объекта для его владельца
type EventService interface {
	ListByProperty(db *gorm.DB, propertyID, ownerID string, limit int) ([]models.Event, error)
}

type EventServiceImpl struct {
	eventRepo    repositories.EventRepository
	propertyRepo repositories.PropertyRepository
}

func NewEventService(eventRepo repositories.EventRepository, propertyRepo repositories.PropertyRepository) EventService {
	return &EventServiceImpl{eventRepo: eventRepo, propertyRepo: propertyRepo}
}

func (s *EventServiceImpl) ListByProperty(db *gorm.DB, propertyID, ownerID string, limit int) ([]models.Event, error) {
	if _, err := loadOwnedProperty(db, s.propertyRepo, propertyID, ownerID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}
	events, err := s.eventRepo.ListByProperty(db, propertyID, limit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return events, nil
}
