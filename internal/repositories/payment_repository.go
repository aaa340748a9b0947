package repositories

import (
	"errors"

	"mietlink_backend/internal/models"

	"gorm.io/gorm"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentRepository interface {
	Create(db *gorm.DB, payment *models.Payment) error
	FindByID(db *gorm.DB, id string) (*models.Payment, error)
	// UpdateStatus переводит платеж только из ожидаемого статуса
	UpdateStatus(db *gorm.DB, id string, from, to models.PaymentStatus) (int64, error)
}

type PaymentRepositoryImpl struct{}

func NewPaymentRepository() PaymentRepository {
	return &PaymentRepositoryImpl{}
}

func (r *PaymentRepositoryImpl) Create(db *gorm.DB, payment *models.Payment) error {
	return db.Create(payment).Error
}

func (r *PaymentRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Payment, error) {
	var payment models.Payment
	if err := db.Where("id = ?", id).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) UpdateStatus(db *gorm.DB, id string, from, to models.PaymentStatus) (int64, error) {
	result := db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}
