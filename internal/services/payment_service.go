package services

import (
	"time"

	"mietlink_backend/internal/models"
	"mietlink_backend/internal/repositories"
	"mietlink_backend/internal/services/dto"
	"mietlink_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentService interface {
	StartBadgeCheckout(db *gorm.DB, userID string, req *dto.StartBadgeCheckoutRequest) (*models.Payment, error)
	UpdateStatus(db *gorm.DB, paymentID, userID, status string) (*models.Payment, error)
}

type PaymentServiceImpl struct {
	paymentRepo   repositories.PaymentRepository
	candidateRepo repositories.CandidateRepository
	userRepo      repositories.UserRepository
	eventRepo     repositories.EventRepository
	badgePrice    decimal.Decimal
}

func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	candidateRepo repositories.CandidateRepository,
	userRepo repositories.UserRepository,
	eventRepo repositories.EventRepository,
	badgePrice decimal.Decimal,
) PaymentService {
	return &PaymentServiceImpl{
		paymentRepo:   paymentRepo,
		candidateRepo: candidateRepo,
		userRepo:      userRepo,
		eventRepo:     eventRepo,
		badgePrice:    badgePrice,
	}
}

// StartBadgeCheckout создает ожидающий платеж за премиум-отметку.
// Идентификатор сессии генерируется локально, реального эквайринга нет.
func (s *PaymentServiceImpl) StartBadgeCheckout(db *gorm.DB, userID string, req *dto.StartBadgeCheckoutRequest) (*models.Payment, error) {
	payment := &models.Payment{
		UserID:          userID,
		AmountChf:       s.badgePrice,
		StripeSessionID: "cs_" + uuid.NewString(),
		Status:          models.PaymentStatusPending,
	}

	if req.CandidateID != "" {
		candidate, err := s.candidateRepo.FindByID(db, req.CandidateID)
		if err != nil {
			return nil, handleCandidateError(err)
		}
		if candidate.UserID != userID {
			return nil, apperrors.NewForbiddenError("Candidate belongs to another user")
		}
		payment.CandidateID = &candidate.ID
	}

	if err := s.paymentRepo.Create(db, payment); err != nil {
		return nil, apperrors.ErrPersistence(err)
	}
	return payment, nil
}

// UpdateStatus: pending -> completed | failed. Повтор текущего статуса - no-op.
// Завершенный платеж выставляет отметку пользователю и всем его заявкам.
func (s *PaymentServiceImpl) UpdateStatus(db *gorm.DB, paymentID, userID, status string) (*models.Payment, error) {
	target := models.PaymentStatus(status)
	if !target.Valid() {
		return nil, apperrors.ErrInvalidStatus("payment", "Unknown payment status")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	payment, err := s.paymentRepo.FindByID(tx, paymentID)
	if err != nil {
		return nil, handlePaymentError(err)
	}
	if payment.UserID != userID {
		return nil, apperrors.NotFoundIn("payment", "Payment not found", repositories.ErrPaymentNotFound)
	}
	if payment.Status == target {
		return payment, nil
	}
	if payment.Status != models.PaymentStatusPending || target == models.PaymentStatusPending {
		return nil, apperrors.ErrInvalidStatus("payment", "Payment status can only move from pending")
	}

	rows, err := s.paymentRepo.UpdateStatus(tx, payment.ID, models.PaymentStatusPending, target)
	if err != nil {
		return nil, apperrors.ErrPersistence(err)
	}
	if rows == 0 {
		return nil, apperrors.ErrInvalidStatus("payment", "Payment status can only move from pending")
	}
	payment.Status = target

	if target == models.PaymentStatusCompleted {
		if err := s.userRepo.SetBadgePaidAt(tx, userID, time.Now().UTC()); err != nil {
			return nil, apperrors.ErrPersistence(err)
		}
		if err := s.candidateRepo.SetBadgeForUser(tx, userID); err != nil {
			return nil, apperrors.ErrPersistence(err)
		}
	}

	var propertyID *string
	if payment.CandidateID != nil {
		if candidate, err := s.candidateRepo.FindByID(tx, *payment.CandidateID); err == nil {
			propertyID = &candidate.PropertyID
		}
	}
	if err := s.eventRepo.Append(tx, propertyID, models.EventPaymentUpdated, map[string]interface{}{
		"payment_id": payment.ID,
		"user_id":    userID,
		"status":     target,
	}); err != nil {
		return nil, apperrors.ErrPersistence(err)
	}

	if err := commit(tx); err != nil {
		return nil, err
	}
	return payment, nil
}
