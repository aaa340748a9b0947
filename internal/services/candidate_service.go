package services

import (
	"errors"
	"strings"

	"mietlink_backend/internal/algorithms"
	"mietlink_backend/internal/logger"
	"mietlink_backend/internal/models"
	"mietlink_backend/internal/repositories"
	"mietlink_backend/internal/services/dto"
	"mietlink_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type CandidateService interface {
	Create(db *gorm.DB, userID string, req *dto.CreateCandidateRequest) (*models.Candidate, error)
	ListByProperty(db *gorm.DB, propertyID, ownerID string) ([]models.Candidate, error)
	ListMine(db *gorm.DB, userID string) ([]models.Candidate, error)
	Decide(db *gorm.DB, candidateID, ownerID, decision string) (*models.Candidate, error)
	RecomputeScore(db *gorm.DB, candidateID, callerID string) (*models.Candidate, error)
}

type CandidateServiceImpl struct {
	candidateRepo repositories.CandidateRepository
	propertyRepo  repositories.PropertyRepository
	userRepo      repositories.UserRepository
	eventRepo     repositories.EventRepository
	scorer        *Scorer
}

func NewCandidateService(
	candidateRepo repositories.CandidateRepository,
	propertyRepo repositories.PropertyRepository,
	userRepo repositories.UserRepository,
	eventRepo repositories.EventRepository,
	scorer *Scorer,
) CandidateService {
	return &CandidateServiceImpl{
		candidateRepo: candidateRepo,
		propertyRepo:  propertyRepo,
		userRepo:      userRepo,
		eventRepo:     eventRepo,
		scorer:        scorer,
	}
}

// Create подает заявку. Балл считается на сервере по документам пользователя,
// статус всегда начальный.
func (s *CandidateServiceImpl) Create(db *gorm.DB, userID string, req *dto.CreateCandidateRequest) (*models.Candidate, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	property, err := s.propertyRepo.FindByID(tx, req.PropertyID)
	if err != nil {
		return nil, handlePropertyError(err)
	}

	exists, err := s.candidateRepo.ExistsForUserAndProperty(tx, userID, property.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := algorithms.CanCreate(exists, property.ClosedAt); err != nil {
		return nil, lifecycleError(err)
	}

	user, err := s.userRepo.FindByID(tx, userID)
	if err != nil {
		return nil, handleUserError(err)
	}

	result, _, err := s.scorer.evaluate(tx, userID, property.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	coverLetter := strings.TrimSpace(req.CoverLetter)
	candidate := &models.Candidate{
		UserID:      userID,
		PropertyID:  property.ID,
		TenantScore: result.Score,
		ScoreTier:   models.ScoreTier(result.Tier),
		ScoreReason: result.Reason,
		Status:      models.CandidateStatusSubmitted,
		BadgeFlag:   user.HasBadge(),
		CoverLetter: &coverLetter,
	}
	// уникальный индекс (user_id, property_id) ловит гонку двух одновременных заявок
	if err := s.candidateRepo.Create(tx, candidate); err != nil {
		return nil, handleCandidateError(err)
	}

	if err := s.eventRepo.Append(tx, &property.ID, models.EventCandidateCreated, map[string]interface{}{
		"candidate_id": candidate.ID,
		"user_id":      userID,
		"score":        result.Score,
		"tier":         result.Tier,
	}); err != nil {
		return nil, apperrors.ErrPersistence(err)
	}

	if err := commit(tx); err != nil {
		return nil, err
	}
	return candidate, nil
}

// ListByProperty - список для владельца, лучшие баллы первыми. Просмотр
// переводит поданные досье в under_review.
func (s *CandidateServiceImpl) ListByProperty(db *gorm.DB, propertyID, ownerID string) ([]models.Candidate, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if _, err := loadOwnedProperty(tx, s.propertyRepo, propertyID, ownerID); err != nil {
		return nil, err
	}

	moved, err := s.candidateRepo.MarkUnderReview(tx, propertyID)
	if err != nil {
		return nil, apperrors.ErrPersistence(err)
	}
	if moved > 0 {
		if err := s.eventRepo.Append(tx, &propertyID, models.EventCandidateUnderReview, map[string]interface{}{
			"count": moved,
		}); err != nil {
			return nil, apperrors.ErrPersistence(err)
		}
	}

	candidates, err := s.candidateRepo.ListByProperty(tx, propertyID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := commit(tx); err != nil {
		return nil, err
	}
	return candidates, nil
}

func (s *CandidateServiceImpl) ListMine(db *gorm.DB, userID string) ([]models.Candidate, error) {
	candidates, err := s.candidateRepo.ListByUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return candidates, nil
}

// Decide фиксирует решение арендодателя. Повтор того же решения - no-op,
// смена решения - конфликт.
func (s *CandidateServiceImpl) Decide(db *gorm.DB, candidateID, ownerID, decision string) (*models.Candidate, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	candidate, err := s.candidateRepo.FindByID(tx, candidateID)
	if err != nil {
		return nil, handleCandidateError(err)
	}
	if _, err := loadOwnedProperty(tx, s.propertyRepo, candidate.PropertyID, ownerID); err != nil {
		return nil, err
	}

	outcome, err := algorithms.Decide(currentDecision(candidate), decision)
	if err != nil {
		return nil, lifecycleError(err)
	}
	if outcome == algorithms.DecisionUnchanged {
		return candidate, nil
	}

	status := models.CandidateStatus(algorithms.StatusForDecision(decision))
	rows, err := s.candidateRepo.Decide(tx, candidate.ID, models.LandlordDecision(decision), status)
	if err != nil {
		return nil, apperrors.ErrPersistence(err)
	}
	if rows == 0 {
		// параллельный запрос успел раньше: перечитываем и решаем заново
		fresh, err := s.candidateRepo.FindByID(tx, candidate.ID)
		if err != nil {
			return nil, handleCandidateError(err)
		}
		if _, err := algorithms.Decide(currentDecision(fresh), decision); err != nil {
			return nil, lifecycleError(err)
		}
		return fresh, nil
	}

	if err := s.eventRepo.Append(tx, &candidate.PropertyID, models.EventCandidateDecided, map[string]interface{}{
		"candidate_id": candidate.ID,
		"decision":     decision,
	}); err != nil {
		return nil, apperrors.ErrPersistence(err)
	}

	updated, err := s.candidateRepo.FindByID(tx, candidate.ID)
	if err != nil {
		return nil, handleCandidateError(err)
	}
	if err := commit(tx); err != nil {
		return nil, err
	}
	logger.CtxInfo(db.Statement.Context, "Candidate decided",
		"candidate_id", candidate.ID, "property_id", candidate.PropertyID, "decision", decision)
	return updated, nil
}

// RecomputeScore доступен самому кандидату и владельцу объекта
func (s *CandidateServiceImpl) RecomputeScore(db *gorm.DB, candidateID, callerID string) (*models.Candidate, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	candidate, err := s.candidateRepo.FindByID(tx, candidateID)
	if err != nil {
		return nil, handleCandidateError(err)
	}
	if candidate.UserID != callerID {
		if _, err := loadOwnedProperty(tx, s.propertyRepo, candidate.PropertyID, callerID); err != nil {
			return nil, err
		}
	}

	if _, err := s.scorer.recompute(tx, candidate); err != nil {
		return nil, handleCandidateError(err)
	}
	if err := commit(tx); err != nil {
		return nil, err
	}
	return candidate, nil
}

func currentDecision(c *models.Candidate) *string {
	if c.LandlordDecision == nil {
		return nil
	}
	d := string(*c.LandlordDecision)
	return &d
}

// lifecycleError переводит ошибки жизненного цикла в ответы API
func lifecycleError(err error) error {
	switch {
	case errors.Is(err, algorithms.ErrDuplicateApplication):
		return apperrors.ErrDuplicateApplication.WithError(err)
	case errors.Is(err, algorithms.ErrPropertyClosed):
		return apperrors.ErrPropertyClosed.WithError(err)
	case errors.Is(err, algorithms.ErrAlreadyDecided):
		return apperrors.ErrAlreadyDecided.WithError(err)
	case errors.Is(err, algorithms.ErrInvalidDecision):
		return apperrors.ValidationError(map[string]string{"decision": err.Error()})
	}
	return apperrors.InternalError(err)
}
