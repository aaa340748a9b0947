package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"mietlink_backend/internal/logger"
	"mietlink_backend/internal/models"
	"mietlink_backend/internal/repositories"
	"mietlink_backend/internal/services/dto"
	"mietlink_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultNoticeMonths = 3
	defaultKeyCount     = 1
	slugLength          = 8
	slugAttempts        = 3
)

// PropertyWithTasks - созданный объект и итог генерации задач по обязательствам
type PropertyWithTasks struct {
	*models.Property
	Tasks *dto.PropertyTasksSummary `json:"tasks,omitempty"`
}

type PropertyService interface {
	Create(ctx context.Context, db *gorm.DB, ownerID string, req *dto.CreatePropertyRequest) (*PropertyWithTasks, error)
	ListMine(db *gorm.DB, ownerID string) ([]models.Property, error)
	GetBySlug(db *gorm.DB, slug string) (*models.Property, error)
	Close(db *gorm.DB, propertyID, ownerID string) (*models.Property, error)
}

type PropertyServiceImpl struct {
	propertyRepo repositories.PropertyRepository
	eventRepo    repositories.EventRepository
	taskService  TaskService
}

func NewPropertyService(
	propertyRepo repositories.PropertyRepository,
	eventRepo repositories.EventRepository,
	taskService TaskService,
) PropertyService {
	return &PropertyServiceImpl{
		propertyRepo: propertyRepo,
		eventRepo:    eventRepo,
		taskService:  taskService,
	}
}

// Create сохраняет объект с публичным slug. Задачи по обязательствам
// генерируются после коммита: их сбой не отменяет создание объекта.
func (s *PropertyServiceImpl) Create(ctx context.Context, db *gorm.DB, ownerID string, req *dto.CreatePropertyRequest) (*PropertyWithTasks, error) {
	if req.RentChf.IsNegative() {
		return nil, apperrors.ValidationError(map[string]string{"rent_chf": "Must not be negative"})
	}
	earliestExit, err := parseDate("earliest_exit", req.EarliestExit)
	if err != nil {
		return nil, err
	}

	obligations := cleanObligations(req.Obligations)
	property := &models.Property{
		OwnerID:      ownerID,
		Address:      strings.TrimSpace(req.Address),
		RentChf:      req.RentChf.Round(2),
		NoticeMonths: req.NoticeMonths,
		EarliestExit: earliestExit,
		KeyCount:     req.KeyCount,
		MainPhotoURL: req.MainPhotoURL,
	}
	if property.NoticeMonths == 0 {
		property.NoticeMonths = defaultNoticeMonths
	}
	if property.KeyCount == 0 {
		property.KeyCount = defaultKeyCount
	}
	if len(obligations) > 0 {
		raw, err := json.Marshal(obligations)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		property.Obligations = datatypes.JSON(raw)
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.createWithSlug(tx, property); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Append(tx, &property.ID, models.EventPropertyCreated, map[string]interface{}{
		"owner_id": ownerID,
		"slug":     property.Slug,
	}); err != nil {
		return nil, apperrors.ErrPersistence(err)
	}

	if err := commit(tx); err != nil {
		return nil, err
	}

	result := &PropertyWithTasks{Property: property}
	if len(obligations) == 0 {
		return result, nil
	}

	summary := &dto.PropertyTasksSummary{}
	batch, err := s.taskService.GenerateForProperty(ctx, db, property, obligations, nil)
	if err != nil {
		logger.CtxWarn(ctx, "Task generation failed for new property",
			"property_id", property.ID,
			"error", err,
		)
		summary.Error = "task generation unavailable"
		summary.Failed = len(obligations)
	} else {
		summary.Created = batch.Created
		summary.Failed = batch.Failed
	}
	result.Tasks = summary
	return result, nil
}

// createWithSlug подбирает свободный slug. Savepoint нужен postgres:
// после ошибки уникальности транзакция иначе непригодна.
func (s *PropertyServiceImpl) createWithSlug(tx *gorm.DB, property *models.Property) error {
	for attempt := 0; attempt < slugAttempts; attempt++ {
		property.ID = ""
		property.Slug = uuid.NewString()[:slugLength]

		if err := tx.SavePoint("property_slug").Error; err != nil {
			return apperrors.InternalError(err)
		}
		err := s.propertyRepo.Create(tx, property)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repositories.ErrSlugTaken) {
			return apperrors.ErrPersistence(err)
		}
		if err := tx.RollbackTo("property_slug").Error; err != nil {
			return apperrors.InternalError(err)
		}
	}
	return apperrors.ErrConflict(repositories.ErrSlugTaken, "property", "Could not allocate a public slug")
}

func (s *PropertyServiceImpl) ListMine(db *gorm.DB, ownerID string) ([]models.Property, error) {
	properties, err := s.propertyRepo.ListByOwner(db, ownerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return properties, nil
}

// GetBySlug - публичная карточка объекта
func (s *PropertyServiceImpl) GetBySlug(db *gorm.DB, slug string) (*models.Property, error) {
	property, err := s.propertyRepo.FindBySlug(db, slug)
	if err != nil {
		return nil, handlePropertyError(err)
	}
	return property, nil
}

// Close закрывает объект для новых заявок. Повторное закрытие ничего не меняет.
func (s *PropertyServiceImpl) Close(db *gorm.DB, propertyID, ownerID string) (*models.Property, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	property, err := loadOwnedProperty(tx, s.propertyRepo, propertyID, ownerID)
	if err != nil {
		return nil, err
	}
	if property.IsClosed() {
		return property, nil
	}

	now := time.Now().UTC()
	if err := s.propertyRepo.Close(tx, property.ID, now); err != nil {
		return nil, apperrors.ErrPersistence(err)
	}
	if err := s.eventRepo.Append(tx, &property.ID, models.EventPropertyClosed, map[string]interface{}{
		"closed_at": now,
	}); err != nil {
		return nil, apperrors.ErrPersistence(err)
	}
	if err := commit(tx); err != nil {
		return nil, err
	}

	property.ClosedAt = &now
	return property, nil
}

func cleanObligations(in []string) []string {
	out := make([]string, 0, len(in))
	for _, o := range in {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
