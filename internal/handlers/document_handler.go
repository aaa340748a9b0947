package handlers

import (
	"net/http"

	"mietlink_backend/internal/middleware"
	"mietlink_backend/internal/ratelimit"
	"mietlink_backend/internal/services"
	"mietlink_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	*BaseHandler
	documentService services.DocumentService
	maxUploadSize   int64
	limiter         gin.HandlerFunc
}

func NewDocumentHandler(base *BaseHandler, documentService services.DocumentService, maxUploadSize int64, limiter ratelimit.Limiter, limit ratelimit.Rule) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler:     base,
		documentService: documentService,
		maxUploadSize:   maxUploadSize,
		limiter:         middleware.RateLimit(limiter, "upload", limit.Requests, limit.Window),
	}
}

func (h *DocumentHandler) RegisterRoutes(r *gin.RouterGroup) {
	documents := r.Group("/documents")
	documents.Use(middleware.AuthMiddleware())
	{
		documents.POST("/upload", h.limiter, h.Upload)
		documents.GET("/my", h.ListMine)
	}
}

// Upload godoc
// @Summary Загрузить документ досье
// @Description Изображения проверяются классификатором, остальные форматы принимаются как есть
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Файл (поле также может называться document)"
// @Param type formData string true "identity | residence_permit | debt_extract | income_proof | lease"
// @Param property_id formData string false "ID объекта"
// @Success 201 {object} models.Document
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 413 {object} apperrors.ErrorResponse
// @Failure 415 {object} apperrors.ErrorResponse
// @Failure 502 {object} apperrors.ErrorResponse
// @Router /documents/upload [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UploadDocumentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	file, ok := h.ReadUploadedFile(c, h.maxUploadSize, "file", "document")
	if !ok {
		return
	}

	doc, err := h.documentService.Upload(c.Request.Context(), h.GetDB(c), userID, &req, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	docs, err := h.documentService.ListMine(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, docs)
}
