package dto

// ListEventsQuery - ?limit для журнала событий. Больше 200 урезается сервисом.
type ListEventsQuery struct {
	Limit int `form:"limit" validate:"omitempty,min=1"`
}
