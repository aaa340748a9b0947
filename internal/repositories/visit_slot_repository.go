package repositories

import (
	"errors"

	"mietlink_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrVisitSlotNotFound = errors.New("visit slot not found")
	ErrAlreadyBooked     = errors.New("visit slot already booked by this user")
)

type VisitSlotRepository interface {
	Create(db *gorm.DB, slot *models.VisitSlot) error
	FindByID(db *gorm.DB, id string) (*models.VisitSlot, error)
	ListByProperty(db *gorm.DB, propertyID string) ([]models.VisitSlot, error)
	// DecrementSeat атомарно занимает место; 0 строк - мест нет или слота нет
	DecrementSeat(db *gorm.DB, id string) (int64, error)
	CreateBooking(db *gorm.DB, booking *models.VisitBooking) error
}

type VisitSlotRepositoryImpl struct{}

func NewVisitSlotRepository() VisitSlotRepository {
	return &VisitSlotRepositoryImpl{}
}

func (r *VisitSlotRepositoryImpl) Create(db *gorm.DB, slot *models.VisitSlot) error {
	return db.Create(slot).Error
}

func (r *VisitSlotRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.VisitSlot, error) {
	var slot models.VisitSlot
	if err := db.Where("id = ?", id).First(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitSlotNotFound
		}
		return nil, err
	}
	return &slot, nil
}

func (r *VisitSlotRepositoryImpl) ListByProperty(db *gorm.DB, propertyID string) ([]models.VisitSlot, error) {
	var slots []models.VisitSlot
	err := db.Where("property_id = ?", propertyID).Order("starts_at ASC").Find(&slots).Error
	return slots, err
}

func (r *VisitSlotRepositoryImpl) DecrementSeat(db *gorm.DB, id string) (int64, error) {
	result := db.Model(&models.VisitSlot{}).
		Where("id = ? AND seats_left > 0", id).
		UpdateColumn("seats_left", gorm.Expr("seats_left - 1"))
	return result.RowsAffected, result.Error
}

func (r *VisitSlotRepositoryImpl) CreateBooking(db *gorm.DB, booking *models.VisitBooking) error {
	if err := db.Create(booking).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyBooked
		}
		return err
	}
	return nil
}
