package services

import (
	"mietlink_backend/internal/models"
	"mietlink_backend/internal/repositories"
	"mietlink_backend/internal/services/dto"
	"mietlink_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type VisitSlotService interface {
	Create(db *gorm.DB, ownerID string, req *dto.CreateVisitSlotRequest) (*models.VisitSlot, error)
	ListByProperty(db *gorm.DB, propertyID string) ([]models.VisitSlot, error)
	Book(db *gorm.DB, slotID, userID string) (*models.VisitSlot, error)
}

type VisitSlotServiceImpl struct {
	slotRepo     repositories.VisitSlotRepository
	propertyRepo repositories.PropertyRepository
	eventRepo    repositories.EventRepository
}

func NewVisitSlotService(
	slotRepo repositories.VisitSlotRepository,
	propertyRepo repositories.PropertyRepository,
	eventRepo repositories.EventRepository,
) VisitSlotService {
	return &VisitSlotServiceImpl{
		slotRepo:     slotRepo,
		propertyRepo: propertyRepo,
		eventRepo:    eventRepo,
	}
}

// Create - новый слот просмотра, все места свободны
func (s *VisitSlotServiceImpl) Create(db *gorm.DB, ownerID string, req *dto.CreateVisitSlotRequest) (*models.VisitSlot, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	property, err := loadOwnedProperty(tx, s.propertyRepo, req.PropertyID, ownerID)
	if err != nil {
		return nil, err
	}

	slot := &models.VisitSlot{
		PropertyID:  property.ID,
		StartsAt:    req.StartsAt.UTC(),
		DurationMin: req.DurationMin,
		Capacity:    req.Capacity,
		SeatsLeft:   req.Capacity,
	}
	if err := s.slotRepo.Create(tx, slot); err != nil {
		return nil, apperrors.ErrPersistence(err)
	}
	if err := s.eventRepo.Append(tx, &property.ID, models.EventVisitSlotCreated, map[string]interface{}{
		"slot_id":   slot.ID,
		"starts_at": slot.StartsAt,
		"capacity":  slot.Capacity,
	}); err != nil {
		return nil, apperrors.ErrPersistence(err)
	}

	if err := commit(tx); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *VisitSlotServiceImpl) ListByProperty(db *gorm.DB, propertyID string) ([]models.VisitSlot, error) {
	if _, err := s.propertyRepo.FindByID(db, propertyID); err != nil {
		return nil, handlePropertyError(err)
	}
	slots, err := s.slotRepo.ListByProperty(db, propertyID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return slots, nil
}

// Book занимает место условным декрементом: seats_left никогда не уходит
// ниже нуля, даже при параллельных запросах. Повторная запись того же
// пользователя откатывает декремент.
func (s *VisitSlotServiceImpl) Book(db *gorm.DB, slotID, userID string) (*models.VisitSlot, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	rows, err := s.slotRepo.DecrementSeat(tx, slotID)
	if err != nil {
		return nil, apperrors.ErrPersistence(err)
	}
	if rows == 0 {
		if _, err := s.slotRepo.FindByID(tx, slotID); err != nil {
			return nil, handleVisitSlotError(err)
		}
		return nil, apperrors.ErrSlotFull.Clone()
	}

	if err := s.slotRepo.CreateBooking(tx, &models.VisitBooking{SlotID: slotID, UserID: userID}); err != nil {
		return nil, handleVisitSlotError(err)
	}

	slot, err := s.slotRepo.FindByID(tx, slotID)
	if err != nil {
		return nil, handleVisitSlotError(err)
	}
	if err := s.eventRepo.Append(tx, &slot.PropertyID, models.EventVisitBooked, map[string]interface{}{
		"slot_id":    slot.ID,
		"user_id":    userID,
		"seats_left": slot.SeatsLeft,
	}); err != nil {
		return nil, apperrors.ErrPersistence(err)
	}

	if err := commit(tx); err != nil {
		return nil, err
	}
	return slot, nil
}
