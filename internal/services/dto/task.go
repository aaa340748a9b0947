package dto

import (
	"mietlink_backend/internal/algorithms"
	"mietlink_backend/internal/models"
)

type CreateTaskRequest struct {
	PropertyID string `json:"property_id" validate:"required,max=36"`
	Title      string `json:"title" validate:"required,max=255"`
	DueDate    string `json:"due_date" validate:"omitempty,is-date"`
	Mandatory  *bool  `json:"mandatory"`
}

// GenerateTasksRequest - пакетная генерация. earliest_exit, если задан,
// перекрывает дату объекта.
type GenerateTasksRequest struct {
	PropertyID   string   `json:"property_id" validate:"required,max=36"`
	Obligations  []string `json:"obligations" validate:"required,min=1,max=100"`
	EarliestExit string   `json:"earliest_exit" validate:"omitempty,is-date"`
}

type GenerateTasksResponse struct {
	Tasks    []models.Task            `json:"tasks"`
	Created  int                      `json:"created"`
	Failed   int                      `json:"failed"`
	Failures []algorithms.ItemFailure `json:"failures"`
}

// UpdateTaskRequest - частичное обновление
type UpdateTaskRequest struct {
	Title  *string `json:"title" validate:"omitempty,min=1,max=255"`
	Status *string `json:"status" validate:"omitempty,is-task-status"`
}
