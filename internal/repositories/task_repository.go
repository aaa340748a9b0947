package repositories

import (
	"errors"

	"mietlink_backend/internal/models"

	"gorm.io/gorm"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskRepository interface {
	Create(db *gorm.DB, task *models.Task) error
	FindByID(db *gorm.DB, id string) (*models.Task, error)
	ListByProperty(db *gorm.DB, propertyID string) ([]models.Task, error)
	Update(db *gorm.DB, id string, fields map[string]interface{}) error
}

type TaskRepositoryImpl struct{}

func NewTaskRepository() TaskRepository {
	return &TaskRepositoryImpl{}
}

func (r *TaskRepositoryImpl) Create(db *gorm.DB, task *models.Task) error {
	return db.Create(task).Error
}

func (r *TaskRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Task, error) {
	var task models.Task
	if err := db.Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// ListByProperty сортирует по сроку; задачи без срока идут последними
func (r *TaskRepositoryImpl) ListByProperty(db *gorm.DB, propertyID string) ([]models.Task, error) {
	var tasks []models.Task
	err := db.Where("property_id = ?", propertyID).
		Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END").
		Order("due_date ASC").
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepositoryImpl) Update(db *gorm.DB, id string, fields map[string]interface{}) error {
	result := db.Model(&models.Task{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
