package handlers

import (
	"net/http"

	"mietlink_backend/internal/middleware"
	"mietlink_backend/internal/services"
	"mietlink_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type PropertyHandler struct {
	*BaseHandler
	propertyService services.PropertyService
}

func NewPropertyHandler(base *BaseHandler, propertyService services.PropertyService) *PropertyHandler {
	return &PropertyHandler{
		BaseHandler:     base,
		propertyService: propertyService,
	}
}

func (h *PropertyHandler) RegisterRoutes(r *gin.RouterGroup) {
	public := r.Group("/properties")
	{
		public.GET("/:slug", h.GetBySlug)
	}

	properties := r.Group("/properties")
	properties.Use(middleware.AuthMiddleware(), middleware.RequireLandlordSide())
	{
		properties.POST("", h.Create)
		properties.GET("/my", h.ListMine)
		properties.POST("/:id/close", h.Close)
	}
}

// Create godoc
// @Summary Создать объект
// @Description Если переданы obligations, по ним сразу создаются задачи
// @Tags properties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePropertyRequest true "Объект"
// @Success 201 {object} services.PropertyWithTasks
// @Failure 400 {object} apperrors.ErrorResponse
// @Router /properties [post]
func (h *PropertyHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePropertyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	property, err := h.propertyService.Create(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, property)
}

func (h *PropertyHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	properties, err := h.propertyService.ListMine(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, properties)
}

// GetBySlug godoc
// @Summary Публичная карточка объекта
// @Tags properties
// @Produce json
// @Param slug path string true "Slug объекта"
// @Success 200 {object} models.Property
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /properties/{slug} [get]
func (h *PropertyHandler) GetBySlug(c *gin.Context) {
	property, err := h.propertyService.GetBySlug(h.GetDB(c), c.Param("slug"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, property)
}

// Close закрывает объект для новых заявок
func (h *PropertyHandler) Close(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	property, err := h.propertyService.Close(h.GetDB(c), c.Param("id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, property)
}
