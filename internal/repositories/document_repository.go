package repositories

import (
	"mietlink_backend/internal/models"

	"gorm.io/gorm"
)

type DocumentRepository interface {
	Create(db *gorm.DB, doc *models.Document) error
	ListByUser(db *gorm.DB, userID string) ([]models.Document, error)
	// ListForScoring - документы пользователя для объекта и общие (без объекта),
	// от старых к новым
	ListForScoring(db *gorm.DB, userID, propertyID string) ([]models.Document, error)
}

type DocumentRepositoryImpl struct{}

func NewDocumentRepository() DocumentRepository {
	return &DocumentRepositoryImpl{}
}

// Create всегда добавляет новую строку; повторная загрузка не перезаписывает старую
func (r *DocumentRepositoryImpl) Create(db *gorm.DB, doc *models.Document) error {
	return db.Create(doc).Error
}

func (r *DocumentRepositoryImpl) ListByUser(db *gorm.DB, userID string) ([]models.Document, error) {
	var docs []models.Document
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&docs).Error
	return docs, err
}

func (r *DocumentRepositoryImpl) ListForScoring(db *gorm.DB, userID, propertyID string) ([]models.Document, error) {
	var docs []models.Document
	err := db.Where("user_id = ? AND (property_id = ? OR property_id IS NULL)", userID, propertyID).
		Order("created_at ASC").
		Find(&docs).Error
	return docs, err
}
