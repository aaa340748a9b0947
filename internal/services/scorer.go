package services

import (
	"mietlink_backend/internal/algorithms"
	"mietlink_backend/internal/models"
	"mietlink_backend/internal/repositories"

	"gorm.io/gorm"
)

// Scorer пересчитывает балл кандидата по текущим документам.
// Вызывается внутри транзакции записи, чтобы читать только что сохраненные документы.
type Scorer struct {
	policy        algorithms.ScoringPolicy
	documentRepo  repositories.DocumentRepository
	candidateRepo repositories.CandidateRepository
	eventRepo     repositories.EventRepository
}

func NewScorer(
	policy algorithms.ScoringPolicy,
	documentRepo repositories.DocumentRepository,
	candidateRepo repositories.CandidateRepository,
	eventRepo repositories.EventRepository,
) *Scorer {
	return &Scorer{
		policy:        policy,
		documentRepo:  documentRepo,
		candidateRepo: candidateRepo,
		eventRepo:     eventRepo,
	}
}

// evaluate считает балл без записи
func (s *Scorer) evaluate(db *gorm.DB, userID, propertyID string) (algorithms.ScoreResult, []models.Document, error) {
	docs, err := s.documentRepo.ListForScoring(db, userID, propertyID)
	if err != nil {
		return algorithms.ScoreResult{}, nil, err
	}
	return algorithms.Evaluate(documentFacts(docs), s.policy), docs, nil
}

// recompute пишет только tenant_score, score_tier, score_reason
func (s *Scorer) recompute(db *gorm.DB, candidate *models.Candidate) (algorithms.ScoreResult, error) {
	result, _, err := s.evaluate(db, candidate.UserID, candidate.PropertyID)
	if err != nil {
		return result, err
	}

	if err := s.candidateRepo.UpdateScore(db, candidate.ID, repositories.ScoreUpdate{
		TenantScore: result.Score,
		ScoreTier:   models.ScoreTier(result.Tier),
		ScoreReason: result.Reason,
	}); err != nil {
		return result, err
	}

	candidate.TenantScore = result.Score
	candidate.ScoreTier = models.ScoreTier(result.Tier)
	candidate.ScoreReason = result.Reason

	err = s.eventRepo.Append(db, &candidate.PropertyID, models.EventCandidateScored, map[string]interface{}{
		"candidate_id":   candidate.ID,
		"score":          result.Score,
		"tier":           result.Tier,
		"valid_required": result.ValidRequired,
		"required_total": result.RequiredTotal,
	})
	return result, err
}

func documentFacts(docs []models.Document) []algorithms.DocumentFact {
	facts := make([]algorithms.DocumentFact, 0, len(docs))
	for _, d := range docs {
		facts = append(facts, algorithms.DocumentFact{
			Type:      string(d.Type),
			Valid:     d.IsValid,
			CreatedAt: d.CreatedAt,
		})
	}
	return facts
}
