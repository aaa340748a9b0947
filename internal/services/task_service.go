package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"mietlink_backend/internal/ai"
	"mietlink_backend/internal/algorithms"
	"mietlink_backend/internal/logger"
	"mietlink_backend/internal/models"
	"mietlink_backend/internal/repositories"
	"mietlink_backend/internal/services/dto"
	"mietlink_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type TaskService interface {
	Create(db *gorm.DB, ownerID string, req *dto.CreateTaskRequest) (*models.Task, error)
	Generate(ctx context.Context, db *gorm.DB, ownerID string, req *dto.GenerateTasksRequest) (*dto.GenerateTasksResponse, error)
	GenerateForProperty(ctx context.Context, db *gorm.DB, property *models.Property, obligations []string, exitOverride *time.Time) (*dto.GenerateTasksResponse, error)
	ListByProperty(db *gorm.DB, propertyID string) ([]models.Task, error)
	Update(db *gorm.DB, taskID, ownerID string, req *dto.UpdateTaskRequest) (*models.Task, error)
}

type TaskServiceImpl struct {
	taskRepo     repositories.TaskRepository
	propertyRepo repositories.PropertyRepository
	eventRepo    repositories.EventRepository
	extractor    ai.Extractor
	timeout      time.Duration
}

func NewTaskService(
	taskRepo repositories.TaskRepository,
	propertyRepo repositories.PropertyRepository,
	eventRepo repositories.EventRepository,
	extractor ai.Extractor,
	timeout time.Duration,
) TaskService {
	return &TaskServiceImpl{
		taskRepo:     taskRepo,
		propertyRepo: propertyRepo,
		eventRepo:    eventRepo,
		extractor:    extractor,
		timeout:      timeout,
	}
}

// Create - ручная задача владельца объекта
func (s *TaskServiceImpl) Create(db *gorm.DB, ownerID string, req *dto.CreateTaskRequest) (*models.Task, error) {
	if _, err := loadOwnedProperty(db, s.propertyRepo, req.PropertyID, ownerID); err != nil {
		return nil, err
	}
	due, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.ValidationError(map[string]string{"title": algorithms.ErrEmptyTaskTitle.Error()})
	}

	task := &models.Task{
		PropertyID: req.PropertyID,
		Title:      title,
		DueDate:    due,
		Mandatory:  true,
		Status:     models.TaskStatusPending,
	}
	if req.Mandatory != nil {
		task.Mandatory = *req.Mandatory
	}

	if err := s.taskRepo.Create(db, task); err != nil {
		return nil, apperrors.ErrPersistence(err)
	}
	return task, nil
}

// Generate - пакетная генерация задач из обязательств договора
func (s *TaskServiceImpl) Generate(ctx context.Context, db *gorm.DB, ownerID string, req *dto.GenerateTasksRequest) (*dto.GenerateTasksResponse, error) {
	property, err := loadOwnedProperty(db, s.propertyRepo, req.PropertyID, ownerID)
	if err != nil {
		return nil, err
	}
	exitOverride, err := parseDate("earliest_exit", req.EarliestExit)
	if err != nil {
		return nil, err
	}
	return s.GenerateForProperty(ctx, db, property, req.Obligations, exitOverride)
}

// GenerateForProperty вызывает извлечение обязательств и сохраняет каждую
// задачу отдельно: ошибка одной строки не откатывает остальные.
func (s *TaskServiceImpl) GenerateForProperty(ctx context.Context, db *gorm.DB, property *models.Property, obligations []string, exitOverride *time.Time) (*dto.GenerateTasksResponse, error) {
	checked := algorithms.SplitObligations(obligations)

	var batch algorithms.TaskBatch
	if len(checked.Kept) > 0 {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		specs, err := s.extractor.GenerateTasks(callCtx, checked.Kept)
		cancel()
		if err != nil {
			return nil, apperrors.ErrExternalService(err, "task_generation")
		}

		earliestExit := property.EarliestExit
		if exitOverride != nil {
			earliestExit = exitOverride
		}
		batch = checked.Remap(algorithms.GenerateTasks(specs, earliestExit), len(specs))
	}

	resp := &dto.GenerateTasksResponse{
		Tasks:    make([]models.Task, 0, len(batch.Tasks)),
		Failures: append(checked.Failures, batch.Failures...),
	}

	for _, generated := range batch.Tasks {
		task := models.Task{
			PropertyID: property.ID,
			Title:      generated.Title,
			DueDate:    generated.DueDate,
			Mandatory:  generated.Mandatory,
			Status:     models.TaskStatus(generated.Status),
		}
		if err := s.taskRepo.Create(db, &task); err != nil {
			logger.CtxWarn(ctx, "Failed to persist generated task",
				"property_id", property.ID,
				"title", generated.Title,
				"error", err,
			)
			resp.Failures = append(resp.Failures, algorithms.ItemFailure{
				Index:  generated.Index,
				Title:  generated.Title,
				Reason: "failed to persist task",
			})
			continue
		}
		resp.Tasks = append(resp.Tasks, task)
	}
	if resp.Failures == nil {
		resp.Failures = []algorithms.ItemFailure{}
	}
	sort.SliceStable(resp.Failures, func(i, j int) bool { return resp.Failures[i].Index < resp.Failures[j].Index })
	resp.Created = len(resp.Tasks)
	resp.Failed = len(resp.Failures)

	if err := s.eventRepo.Append(db, &property.ID, models.EventTasksGenerated, map[string]interface{}{
		"obligations": len(obligations),
		"created":     resp.Created,
		"failed":      resp.Failed,
	}); err != nil {
		logger.CtxWarn(ctx, "Failed to append event", "type", models.EventTasksGenerated, "error", err)
	}

	return resp, nil
}

func (s *TaskServiceImpl) ListByProperty(db *gorm.DB, propertyID string) ([]models.Task, error) {
	if _, err := s.propertyRepo.FindByID(db, propertyID); err != nil {
		return nil, handlePropertyError(err)
	}
	tasks, err := s.taskRepo.ListByProperty(db, propertyID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return tasks, nil
}

// Update меняет только переданные поля
func (s *TaskServiceImpl) Update(db *gorm.DB, taskID, ownerID string, req *dto.UpdateTaskRequest) (*models.Task, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	task, err := s.taskRepo.FindByID(tx, taskID)
	if err != nil {
		return nil, handleTaskError(err)
	}
	if _, err := loadOwnedProperty(tx, s.propertyRepo, task.PropertyID, ownerID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperrors.ValidationError(map[string]string{"title": algorithms.ErrEmptyTaskTitle.Error()})
		}
		fields["title"] = title
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		if !status.Valid() {
			return nil, apperrors.ErrInvalidStatus("task", "Status must be pending or completed")
		}
		fields["status"] = status
	}
	if len(fields) == 0 {
		return task, nil
	}

	if err := s.taskRepo.Update(tx, task.ID, fields); err != nil {
		return nil, handleTaskError(err)
	}
	if err := s.eventRepo.Append(tx, &task.PropertyID, models.EventTaskUpdated, map[string]interface{}{
		"task_id": task.ID,
		"fields":  fields,
	}); err != nil {
		return nil, apperrors.ErrPersistence(err)
	}

	updated, err := s.taskRepo.FindByID(tx, task.ID)
	if err != nil {
		return nil, handleTaskError(err)
	}
	if err := commit(tx); err != nil {
		return nil, err
	}
	return updated, nil
}
