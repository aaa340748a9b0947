package services

import (
	"mietlink_backend/internal/email"
	"mietlink_backend/internal/storage"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService      AuthService
	PropertyService  PropertyService
	DocumentService  DocumentService
	CandidateService CandidateService
	TaskService      TaskService
	VisitSlotService VisitSlotService
	PaymentService   PaymentService
	AIService        AIService
	EventService     EventService
	EmailService     email.Provider
	Storage          storage.Storage
}
