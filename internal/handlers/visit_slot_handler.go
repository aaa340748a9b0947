package handlers

import (
	"net/http"

	"mietlink_backend/internal/middleware"
	"mietlink_backend/internal/services"
	"mietlink_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type VisitSlotHandler struct {
	*BaseHandler
	visitSlotService services.VisitSlotService
}

func NewVisitSlotHandler(base *BaseHandler, visitSlotService services.VisitSlotService) *VisitSlotHandler {
	return &VisitSlotHandler{
		BaseHandler:      base,
		visitSlotService: visitSlotService,
	}
}

func (h *VisitSlotHandler) RegisterRoutes(r *gin.RouterGroup) {
	public := r.Group("/visit-slots")
	{
		public.GET("/:id", h.ListByProperty)
	}

	slots := r.Group("/visit-slots")
	slots.Use(middleware.AuthMiddleware())
	{
		slots.POST("", middleware.RequireLandlordSide(), h.Create)
		slots.POST("/:id/book", h.Book)
	}
}

func (h *VisitSlotHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateVisitSlotRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	slot, err := h.visitSlotService.Create(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, slot)
}

// ListByProperty - публичный список слотов объекта (ID объекта в пути)
func (h *VisitSlotHandler) ListByProperty(c *gin.Context) {
	slots, err := h.visitSlotService.ListByProperty(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, slots)
}

// Book godoc
// @Summary Записаться на просмотр
// @Tags visit-slots
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID слота"
// @Success 200 {object} models.VisitSlot
// @Failure 404 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse "Мест нет или пользователь уже записан"
// @Router /visit-slots/{id}/book [post]
func (h *VisitSlotHandler) Book(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	slot, err := h.visitSlotService.Book(h.GetDB(c), c.Param("id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, slot)
}
