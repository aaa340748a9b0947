package repositories

import (
	"errors"
	"time"

	"mietlink_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrSlugTaken        = errors.New("property slug already taken")
)

type PropertyRepository interface {
	Create(db *gorm.DB, property *models.Property) error
	FindByID(db *gorm.DB, id string) (*models.Property, error)
	FindBySlug(db *gorm.DB, slug string) (*models.Property, error)
	ListByOwner(db *gorm.DB, ownerID string) ([]models.Property, error)
	Close(db *gorm.DB, id string, at time.Time) error
}

type PropertyRepositoryImpl struct{}

func NewPropertyRepository() PropertyRepository {
	return &PropertyRepositoryImpl{}
}

func (r *PropertyRepositoryImpl) Create(db *gorm.DB, property *models.Property) error {
	if err := db.Create(property).Error; err != nil {
		// единственный уникальный индекс кроме PK - slug
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

func (r *PropertyRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Property, error) {
	var property models.Property
	if err := db.Where("id = ?", id).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return &property, nil
}

func (r *PropertyRepositoryImpl) FindBySlug(db *gorm.DB, slug string) (*models.Property, error) {
	var property models.Property
	if err := db.Where("slug = ?", slug).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return &property, nil
}

func (r *PropertyRepositoryImpl) ListByOwner(db *gorm.DB, ownerID string) ([]models.Property, error) {
	var properties []models.Property
	err := db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&properties).Error
	return properties, err
}

// Close идемпотентен: повторный вызов не сдвигает closed_at
func (r *PropertyRepositoryImpl) Close(db *gorm.DB, id string, at time.Time) error {
	return db.Model(&models.Property{}).
		Where("id = ? AND closed_at IS NULL", id).
		Update("closed_at", at).Error
}
