package repositories

import (
	"errors"

	"mietlink_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrCandidateNotFound      = errors.New("candidate not found")
	ErrCandidateAlreadyExists = errors.New("candidate already exists for this property")
)

// ScoreUpdate - поля, которые пишет пересчет балла
type ScoreUpdate struct {
	TenantScore int
	ScoreTier   models.ScoreTier
	ScoreReason string
}

type CandidateRepository interface {
	Create(db *gorm.DB, candidate *models.Candidate) error
	FindByID(db *gorm.DB, id string) (*models.Candidate, error)
	FindByUserAndProperty(db *gorm.DB, userID, propertyID string) (*models.Candidate, error)
	ExistsForUserAndProperty(db *gorm.DB, userID, propertyID string) (bool, error)
	ListByProperty(db *gorm.DB, propertyID string) ([]models.Candidate, error)
	ListTopByProperty(db *gorm.DB, propertyID string, limit int) ([]models.Candidate, error)
	ListByUser(db *gorm.DB, userID string) ([]models.Candidate, error)

	// Точечные обновления: ни одна операция не трогает user_id и property_id
	UpdateScore(db *gorm.DB, id string, score ScoreUpdate) error
	Decide(db *gorm.DB, id string, decision models.LandlordDecision, status models.CandidateStatus) (int64, error)
	MarkUnderReview(db *gorm.DB, propertyID string) (int64, error)
	UpdateCoverLetter(db *gorm.DB, id, coverLetter string) error
	SetBadgeForUser(db *gorm.DB, userID string) error
}

type CandidateRepositoryImpl struct{}

func NewCandidateRepository() CandidateRepository {
	return &CandidateRepositoryImpl{}
}

func (r *CandidateRepositoryImpl) Create(db *gorm.DB, candidate *models.Candidate) error {
	if err := db.Create(candidate).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrCandidateAlreadyExists
		}
		return err
	}
	return nil
}

func (r *CandidateRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Candidate, error) {
	var c models.Candidate
	if err := db.Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCandidateNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CandidateRepositoryImpl) FindByUserAndProperty(db *gorm.DB, userID, propertyID string) (*models.Candidate, error) {
	var c models.Candidate
	if err := db.Where("user_id = ? AND property_id = ?", userID, propertyID).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCandidateNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CandidateRepositoryImpl) ExistsForUserAndProperty(db *gorm.DB, userID, propertyID string) (bool, error) {
	var count int64
	err := db.Model(&models.Candidate{}).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Count(&count).Error
	return count > 0, err
}

func (r *CandidateRepositoryImpl) ListByProperty(db *gorm.DB, propertyID string) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := db.Preload("User").
		Where("property_id = ?", propertyID).
		Order("tenant_score DESC").
		Order("created_at ASC").
		Find(&candidates).Error
	return candidates, err
}

func (r *CandidateRepositoryImpl) ListTopByProperty(db *gorm.DB, propertyID string, limit int) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := db.Preload("User").
		Where("property_id = ?", propertyID).
		Order("tenant_score DESC").
		Order("created_at ASC").
		Limit(limit).
		Find(&candidates).Error
	return candidates, err
}

func (r *CandidateRepositoryImpl) ListByUser(db *gorm.DB, userID string) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&candidates).Error
	return candidates, err
}

func (r *CandidateRepositoryImpl) UpdateScore(db *gorm.DB, id string, score ScoreUpdate) error {
	result := db.Model(&models.Candidate{}).Where("id = ?", id).Updates(map[string]interface{}{
		"tenant_score": score.TenantScore,
		"score_tier":   score.ScoreTier,
		"score_reason": score.ScoreReason,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCandidateNotFound
	}
	return nil
}

// Decide - условное обновление: применяется, только если решения еще нет
// или оно совпадает с запрошенным. Возвращает число измененных строк.
func (r *CandidateRepositoryImpl) Decide(db *gorm.DB, id string, decision models.LandlordDecision, status models.CandidateStatus) (int64, error) {
	result := db.Model(&models.Candidate{}).
		Where("id = ? AND (landlord_decision IS NULL OR landlord_decision = ?)", id, decision).
		Updates(map[string]interface{}{
			"landlord_decision": decision,
			"status":            status,
		})
	return result.RowsAffected, result.Error
}

func (r *CandidateRepositoryImpl) MarkUnderReview(db *gorm.DB, propertyID string) (int64, error) {
	result := db.Model(&models.Candidate{}).
		Where("property_id = ? AND status = ?", propertyID, models.CandidateStatusSubmitted).
		Update("status", models.CandidateStatusUnderReview)
	return result.RowsAffected, result.Error
}

func (r *CandidateRepositoryImpl) UpdateCoverLetter(db *gorm.DB, id, coverLetter string) error {
	return db.Model(&models.Candidate{}).Where("id = ?", id).Update("cover_letter", coverLetter).Error
}

func (r *CandidateRepositoryImpl) SetBadgeForUser(db *gorm.DB, userID string) error {
	return db.Model(&models.Candidate{}).Where("user_id = ?", userID).Update("badge_flag", true).Error
}
