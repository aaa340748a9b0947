package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"mietlink_backend/internal/ai"
	"mietlink_backend/internal/config"
	"mietlink_backend/internal/logger"
	"mietlink_backend/internal/models"
	"mietlink_backend/internal/repositories"
	"mietlink_backend/internal/services/dto"
	"mietlink_backend/internal/storage"
	"mietlink_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// ReasonValidationUnavailable - причина для документа, сохраненного
// без ответа классификатора (fail_mode=open)
const ReasonValidationUnavailable = "Validation unavailable"

// UploadPolicy - ограничения загрузки и поведение при недоступном классификаторе
type UploadPolicy struct {
	MaxSize      int64
	AllowedTypes []string
	FailMode     string
	Timeout      time.Duration
}

type DocumentService interface {
	Upload(ctx context.Context, db *gorm.DB, userID string, req *dto.UploadDocumentRequest, file *dto.UploadedFile) (*models.Document, error)
	ListMine(db *gorm.DB, userID string) ([]models.Document, error)
}

type DocumentServiceImpl struct {
	documentRepo  repositories.DocumentRepository
	propertyRepo  repositories.PropertyRepository
	candidateRepo repositories.CandidateRepository
	eventRepo     repositories.EventRepository
	scorer        *Scorer
	storage       storage.Storage
	validator     ai.DocumentValidator
	policy        UploadPolicy
}

func NewDocumentService(
	documentRepo repositories.DocumentRepository,
	propertyRepo repositories.PropertyRepository,
	candidateRepo repositories.CandidateRepository,
	eventRepo repositories.EventRepository,
	scorer *Scorer,
	storage storage.Storage,
	validator ai.DocumentValidator,
	policy UploadPolicy,
) DocumentService {
	return &DocumentServiceImpl{
		documentRepo:  documentRepo,
		propertyRepo:  propertyRepo,
		candidateRepo: candidateRepo,
		eventRepo:     eventRepo,
		scorer:        scorer,
		storage:       storage,
		validator:     validator,
		policy:        policy,
	}
}

// Upload проверяет и сохраняет документ. Каждая загрузка - новая строка;
// если у пользователя есть заявка на объект, ее балл пересчитывается
// в той же транзакции.
func (s *DocumentServiceImpl) Upload(ctx context.Context, db *gorm.DB, userID string, req *dto.UploadDocumentRequest, file *dto.UploadedFile) (*models.Document, error) {
	docType, err := models.ParseDocumentType(req.Type)
	if err != nil {
		return nil, apperrors.ValidationError(map[string]string{"type": err.Error()})
	}
	if len(file.Data) == 0 {
		return nil, apperrors.ValidationError(map[string]string{"file": "File is empty"})
	}
	if int64(len(file.Data)) > s.policy.MaxSize {
		return nil, apperrors.ErrFileTooLarge.Clone()
	}
	mimeType := detectMimeType(file)
	if !s.isAllowed(mimeType) {
		return nil, apperrors.ErrInvalidFileType.WithDetails(map[string]string{"mime_type": mimeType})
	}

	var propertyID *string
	if req.PropertyID != "" {
		if _, err := s.propertyRepo.FindByID(db, req.PropertyID); err != nil {
			return nil, handlePropertyError(err)
		}
		propertyID = &req.PropertyID
	}

	verdict, err := s.classify(ctx, docType, mimeType, file)
	if err != nil {
		return nil, err
	}

	key := storage.DocumentKey(userID, file.Filename, time.Now().UTC())
	if err := s.storage.Save(ctx, key, bytes.NewReader(file.Data), mimeType); err != nil {
		return nil, apperrors.InternalError(err)
	}
	url, err := s.storage.GetURL(ctx, key)
	if err != nil {
		s.discard(ctx, key)
		return nil, apperrors.InternalError(err)
	}

	doc := &models.Document{
		UserID:           userID,
		PropertyID:       propertyID,
		Type:             docType,
		URL:              url,
		StorageKey:       key,
		Filename:         file.Filename,
		MimeType:         mimeType,
		SizeBytes:        int64(len(file.Data)),
		IsValid:          verdict.Valid,
		Confidence:       ai.ClampConfidence(verdict.Confidence),
		ValidationReason: verdict.Reason,
	}

	if err := s.persist(db, doc); err != nil {
		s.discard(ctx, key)
		return nil, err
	}
	return doc, nil
}

// affectedCandidates - заявки, чей балл зависит от документа. Документ без
// объекта входит в досье пользователя и учитывается во всех его заявках.
func (s *DocumentServiceImpl) affectedCandidates(tx *gorm.DB, doc *models.Document) ([]models.Candidate, error) {
	if doc.PropertyID == nil {
		return s.candidateRepo.ListByUser(tx, doc.UserID)
	}
	candidate, err := s.candidateRepo.FindByUserAndProperty(tx, doc.UserID, *doc.PropertyID)
	switch {
	case errors.Is(err, repositories.ErrCandidateNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return []models.Candidate{*candidate}, nil
}

func (s *DocumentServiceImpl) persist(db *gorm.DB, doc *models.Document) error {
	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.documentRepo.Create(tx, doc); err != nil {
		return apperrors.ErrPersistence(err)
	}
	if err := s.eventRepo.Append(tx, doc.PropertyID, models.EventDocumentUploaded, map[string]interface{}{
		"document_id": doc.ID,
		"user_id":     doc.UserID,
		"type":        doc.Type,
		"is_valid":    doc.IsValid,
		"confidence":  doc.Confidence,
	}); err != nil {
		return apperrors.ErrPersistence(err)
	}

	affected, err := s.affectedCandidates(tx, doc)
	if err != nil {
		return apperrors.InternalError(err)
	}
	for i := range affected {
		if _, err := s.scorer.recompute(tx, &affected[i]); err != nil {
			return apperrors.ErrPersistence(err)
		}
	}

	return commit(tx)
}

// classify спрашивает классификатор только про изображения. Остальные
// форматы принимаются как есть.
func (s *DocumentServiceImpl) classify(ctx context.Context, docType models.DocumentType, mimeType string, file *dto.UploadedFile) (ai.Verdict, error) {
	if !strings.HasPrefix(mimeType, "image/") {
		return ai.Verdict{Valid: true, Confidence: ai.StaticConfidence, Reason: ai.StaticReason}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.policy.Timeout)
	defer cancel()

	verdict, err := s.validator.Validate(callCtx, ai.DocumentInput{
		Bytes:    file.Data,
		MimeType: mimeType,
		Filename: file.Filename,
		TypeHint: string(docType),
	})
	if err == nil {
		verdict.Confidence = ai.ClampConfidence(verdict.Confidence)
		return verdict, nil
	}

	if s.policy.FailMode == config.FailModeClosed {
		return ai.Verdict{}, apperrors.ErrExternalService(err, "document_validation")
	}
	logger.CtxWarn(ctx, "Document validation unavailable, storing as invalid",
		"type", docType,
		"error", err,
	)
	return ai.Verdict{Valid: false, Confidence: 0, Reason: ReasonValidationUnavailable}, nil
}

func (s *DocumentServiceImpl) ListMine(db *gorm.DB, userID string) ([]models.Document, error) {
	docs, err := s.documentRepo.ListByUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return docs, nil
}

func (s *DocumentServiceImpl) isAllowed(mimeType string) bool {
	for _, allowed := range s.policy.AllowedTypes {
		if strings.EqualFold(allowed, mimeType) {
			return true
		}
	}
	return false
}

// discard убирает файл, если строка документа не сохранилась
func (s *DocumentServiceImpl) discard(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		logger.CtxWarn(ctx, "Failed to remove orphaned upload", "key", key, "error", err)
	}
}

// detectMimeType доверяет заголовку части формы, если он конкретный
func detectMimeType(file *dto.UploadedFile) string {
	mimeType := strings.ToLower(strings.TrimSpace(file.MimeType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(file.Data)
		if i := strings.Index(mimeType, ";"); i >= 0 {
			mimeType = mimeType[:i]
		}
	}
	return mimeType
}
