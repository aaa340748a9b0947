package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler      *AuthHandler
	PropertyHandler  *PropertyHandler
	DocumentHandler  *DocumentHandler
	CandidateHandler *CandidateHandler
	TaskHandler      *TaskHandler
	VisitSlotHandler *VisitSlotHandler
	PaymentHandler   *PaymentHandler
	AIHandler        *AIHandler
	EventHandler     *EventHandler
	FileHandler      *FileHandler
}
