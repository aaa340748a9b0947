package services

import (
	"errors"
	"time"

	"mietlink_backend/internal/models"
	"mietlink_backend/internal/repositories"
	"mietlink_backend/internal/validator"
	"mietlink_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// loadOwnedProperty загружает объект и проверяет, что caller - его владелец
func loadOwnedProperty(db *gorm.DB, repo repositories.PropertyRepository, propertyID, ownerID string) (*models.Property, error) {
	property, err := repo.FindByID(db, propertyID)
	if err != nil {
		return nil, handlePropertyError(err)
	}
	if property.OwnerID != ownerID {
		return nil, apperrors.ErrNotOwner.Clone()
	}
	return property, nil
}

// parseDate разбирает дату API (YYYY-MM-DD) в полночь UTC; пустая строка - nil
func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(validator.DateLayout, value)
	if err != nil {
		return nil, apperrors.ValidationError(map[string]string{field: "Must be a date in YYYY-MM-DD format"})
	}
	return &t, nil
}

func handlePropertyError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, repositories.ErrPropertyNotFound) {
		return apperrors.NotFoundIn("property", "Property not found", err)
	}
	return apperrors.InternalError(err)
}

func handleCandidateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, repositories.ErrCandidateNotFound) {
		return apperrors.NotFoundIn("candidate", "Candidate not found", err)
	}
	if errors.Is(err, repositories.ErrPropertyNotFound) {
		return handlePropertyError(err)
	}
	if errors.Is(err, repositories.ErrCandidateAlreadyExists) {
		return apperrors.ErrDuplicateApplication.WithError(err)
	}
	return apperrors.InternalError(err)
}

func handleTaskError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, repositories.ErrTaskNotFound) {
		return apperrors.NotFoundIn("task", "Task not found", err)
	}
	if errors.Is(err, repositories.ErrPropertyNotFound) {
		return handlePropertyError(err)
	}
	return apperrors.InternalError(err)
}

func handleVisitSlotError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, repositories.ErrVisitSlotNotFound) {
		return apperrors.NotFoundIn("visit_slot", "Visit slot not found", err)
	}
	if errors.Is(err, repositories.ErrPropertyNotFound) {
		return handlePropertyError(err)
	}
	if errors.Is(err, repositories.ErrAlreadyBooked) {
		return apperrors.ErrDuplicateBooking.WithError(err)
	}
	return apperrors.InternalError(err)
}

func handlePaymentError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, repositories.ErrPaymentNotFound) {
		return apperrors.NotFoundIn("payment", "Payment not found", err)
	}
	if errors.Is(err, repositories.ErrCandidateNotFound) {
		return handleCandidateError(err)
	}
	return apperrors.InternalError(err)
}

func handleUserError(err error) error {
	if errors.Is(err, repositories.ErrUserNotFound) {
		return apperrors.NotFoundIn("user", "User not found", err)
	}
	if errors.Is(err, repositories.ErrUserAlreadyExists) {
		return apperrors.ErrEmailAlreadyExists.WithError(err)
	}
	return apperrors.InternalError(err)
}

// commit завершает транзакцию; ошибка коммита - ошибка хранилища
func commit(tx *gorm.DB) error {
	if err := tx.Commit().Error; err != nil {
		return apperrors.ErrPersistence(err)
	}
	return nil
}
