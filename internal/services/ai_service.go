package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"mietlink_backend/internal/ai"
	"mietlink_backend/internal/algorithms"
	"mietlink_backend/internal/email"
	"mietlink_backend/internal/logger"
	"mietlink_backend/internal/models"
	"mietlink_backend/internal/repositories"
	"mietlink_backend/internal/services/dto"
	"mietlink_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const regieTopCandidates = 3

type AIService interface {
	ParseContract(ctx context.Context, text string) (*ai.ContractTerms, error)
	ParseContractFile(ctx context.Context, file *dto.UploadedFile) (*ai.ContractTerms, error)
	CoverLetter(ctx context.Context, db *gorm.DB, userID string, req *dto.CoverLetterRequest) (*dto.CoverLetterResponse, error)
	ExplainScore(ctx context.Context, db *gorm.DB, userID string, req *dto.ExplainScoreRequest) (*dto.ExplainScoreResponse, error)
	RegieEmail(ctx context.Context, db *gorm.DB, ownerID string, req *dto.RegieEmailRequest) (*dto.RegieEmailResponse, error)
}

type AIServiceImpl struct {
	extractor     ai.Extractor
	scorer        *Scorer
	propertyRepo  repositories.PropertyRepository
	candidateRepo repositories.CandidateRepository
	userRepo      repositories.UserRepository
	mailer        email.Provider
	timeout       time.Duration
}

func NewAIService(
	extractor ai.Extractor,
	scorer *Scorer,
	propertyRepo repositories.PropertyRepository,
	candidateRepo repositories.CandidateRepository,
	userRepo repositories.UserRepository,
	mailer email.Provider,
	timeout time.Duration,
) AIService {
	return &AIServiceImpl{
		extractor:     extractor,
		scorer:        scorer,
		propertyRepo:  propertyRepo,
		candidateRepo: candidateRepo,
		userRepo:      userRepo,
		mailer:        mailer,
		timeout:       timeout,
	}
}

// ParseContract извлекает ключевые условия из текста договора
func (s *AIServiceImpl) ParseContract(ctx context.Context, text string) (*ai.ContractTerms, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.ValidationError(map[string]string{"text": "Contract text is empty"})
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	terms, err := s.extractor.ParseContract(callCtx, text)
	if err != nil {
		return nil, apperrors.ErrExternalService(err, "contract_parsing")
	}
	return &terms, nil
}

// ParseContractFile принимает только текстовые файлы. Извлечение текста
// из PDF не поддерживается.
func (s *AIServiceImpl) ParseContractFile(ctx context.Context, file *dto.UploadedFile) (*ai.ContractTerms, error) {
	mimeType := detectMimeType(file)
	if mimeType != "text/plain" {
		return nil, apperrors.ErrInvalidFileType.WithDetails(map[string]string{"mime_type": mimeType})
	}
	if !utf8.Valid(file.Data) {
		return nil, apperrors.ValidationError(map[string]string{"file": "File is not valid UTF-8 text"})
	}
	return s.ParseContract(ctx, string(file.Data))
}

// CoverLetter пишет мотивационное письмо. Если у пользователя уже есть
// заявка на объект, письмо сохраняется в ней.
func (s *AIServiceImpl) CoverLetter(ctx context.Context, db *gorm.DB, userID string, req *dto.CoverLetterRequest) (*dto.CoverLetterResponse, error) {
	property, err := s.propertyRepo.FindByID(db, req.PropertyID)
	if err != nil {
		return nil, handlePropertyError(err)
	}
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}

	applicant := req.Applicant
	if strings.TrimSpace(applicant.Name) == "" {
		applicant.Name = user.Name
	}
	language := req.Language
	if language == "" {
		language = user.Language
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.extractor.CoverLetter(callCtx, applicant, ai.PropertySummary{
		Address: property.Address,
		RentChf: property.RentChf,
		Slug:    property.Slug,
	}, language)
	if err != nil {
		return nil, apperrors.ErrExternalService(err, "cover_letter")
	}

	resp := &dto.CoverLetterResponse{Text: text}
	candidate, err := s.candidateRepo.FindByUserAndProperty(db, userID, property.ID)
	switch {
	case errors.Is(err, repositories.ErrCandidateNotFound):
	case err != nil:
		return nil, apperrors.InternalError(err)
	default:
		if err := s.candidateRepo.UpdateCoverLetter(db, candidate.ID, text); err != nil {
			return nil, apperrors.ErrPersistence(err)
		}
		resp.CandidateID = candidate.ID
	}
	return resp, nil
}

// ExplainScore объясняет сохраненный балл. Доступно кандидату и владельцу объекта.
func (s *AIServiceImpl) ExplainScore(ctx context.Context, db *gorm.DB, userID string, req *dto.ExplainScoreRequest) (*dto.ExplainScoreResponse, error) {
	candidate, err := s.candidateRepo.FindByID(db, req.CandidateID)
	if err != nil {
		return nil, handleCandidateError(err)
	}
	if candidate.UserID != userID {
		if _, err := loadOwnedProperty(db, s.propertyRepo, candidate.PropertyID, userID); err != nil {
			return nil, err
		}
	}

	result, docs, err := s.scorer.evaluate(db, candidate.UserID, candidate.PropertyID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	facts := ai.ScoreFacts{
		Score:         candidate.TenantScore,
		Tier:          string(candidate.ScoreTier),
		Reason:        candidate.ScoreReason,
		ValidRequired: result.ValidRequired,
		RequiredTotal: result.RequiredTotal,
	}
	for typ, d := range algorithms.LatestByType(documentFacts(docs)) {
		facts.Documents = append(facts.Documents, ai.DocumentSummary{Type: typ, Valid: d.Valid})
	}
	sortDocumentSummaries(facts.Documents)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reason, err := s.extractor.ExplainScore(callCtx, facts)
	if err != nil {
		return nil, apperrors.ErrExternalService(err, "score_explanation")
	}
	return &dto.ExplainScoreResponse{Reason: reason}, nil
}

// RegieEmail готовит письмо управляющей компании с тремя лучшими кандидатами
// и, если указан адрес, отправляет его.
func (s *AIServiceImpl) RegieEmail(ctx context.Context, db *gorm.DB, ownerID string, req *dto.RegieEmailRequest) (*dto.RegieEmailResponse, error) {
	property, err := loadOwnedProperty(db, s.propertyRepo, req.PropertyID, ownerID)
	if err != nil {
		return nil, err
	}
	top, err := s.candidateRepo.ListTopByProperty(db, property.ID, regieTopCandidates)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	candidates := make([]ai.RegieCandidate, 0, len(top))
	for _, c := range top {
		name := c.UserID
		if c.User != nil && c.User.Name != "" {
			name = c.User.Name
		}
		candidates = append(candidates, ai.RegieCandidate{
			Name:      name,
			Score:     c.TenantScore,
			Tier:      string(c.ScoreTier),
			Status:    string(c.Status),
			BadgeFlag: c.BadgeFlag,
		})
	}

	language := req.Language
	if language == "" {
		language = "de"
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	subject, body, err := s.extractor.RegieEmail(callCtx, candidates, language)
	if err != nil {
		return nil, apperrors.ErrExternalService(err, "regie_email")
	}

	resp := &dto.RegieEmailResponse{Subject: subject, Body: body}
	if req.SendTo == "" {
		return resp, nil
	}

	var replyTo string
	if owner, err := s.userRepo.FindByID(db, ownerID); err == nil {
		replyTo = owner.Email
	}

	err = s.mailer.Send(callCtx, &email.Email{
		ReplyTo: replyTo,
		To:      []string{req.SendTo},
		Subject: fmt.Sprintf("%s (%s)", subject, property.Address),
		Body:    body,
	})
	if err != nil {
		logger.CtxWarn(ctx, "Failed to send regie email", "property_id", property.ID, "error", err)
		return nil, apperrors.ErrExternalService(err, "email")
	}
	resp.Sent = true
	return resp, nil
}

func sortDocumentSummaries(docs []ai.DocumentSummary) {
	order := make(map[string]int, len(models.AllDocumentTypes))
	for i, t := range models.AllDocumentTypes {
		order[string(t)] = i
	}
	sort.Slice(docs, func(i, j int) bool {
		return order[docs[i].Type] < order[docs[j].Type]
	})
}
