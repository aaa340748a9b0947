package handlers

import (
	"net/http"

	"mietlink_backend/internal/middleware"
	"mietlink_backend/internal/services"
	"mietlink_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	*BaseHandler
	eventService services.EventService
}

func NewEventHandler(base *BaseHandler, eventService services.EventService) *EventHandler {
	return &EventHandler{
		BaseHandler:  base,
		eventService: eventService,
	}
}

func (h *EventHandler) RegisterRoutes(r *gin.RouterGroup) {
	events := r.Group("/events")
	events.Use(middleware.AuthMiddleware(), middleware.RequireLandlordSide())
	{
		events.GET("/:propertyId", h.ListByProperty)
	}
}

// ListByProperty - журнал событий объекта, новые первыми (?limit=, по умолчанию 50)
func (h *EventHandler) ListByProperty(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var query dto.ListEventsQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	events, err := h.eventService.ListByProperty(h.GetDB(c), c.Param("propertyId"), userID, query.Limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}
