package handlers

import (
	"net/http"

	"mietlink_backend/internal/middleware"
	"mietlink_backend/internal/ratelimit"
	"mietlink_backend/internal/services"
	"mietlink_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// maxContractFileSize - лимит для текстового файла договора
const maxContractFileSize = 1 << 20

type AIHandler struct {
	*BaseHandler
	aiService services.AIService
	limiter   gin.HandlerFunc
}

func NewAIHandler(base *BaseHandler, aiService services.AIService, limiter ratelimit.Limiter, limit ratelimit.Rule) *AIHandler {
	return &AIHandler{
		BaseHandler: base,
		aiService:   aiService,
		limiter:     middleware.RateLimit(limiter, "ai", limit.Requests, limit.Window),
	}
}

func (h *AIHandler) RegisterRoutes(r *gin.RouterGroup) {
	ai := r.Group("/ai")
	ai.Use(middleware.AuthMiddleware(), h.limiter)
	{
		ai.POST("/parse-contract", h.ParseContract)
		ai.POST("/parse-contract-file", h.ParseContractFile)
		ai.POST("/cover-letter", h.CoverLetter)
		ai.POST("/explain-score", h.ExplainScore)
		ai.POST("/regie-email", middleware.RequireLandlordSide(), h.RegieEmail)
	}
}

// ParseContract godoc
// @Summary Извлечь условия из текста договора
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ParseContractRequest true "Текст договора"
// @Success 200 {object} ai.ContractTerms
// @Failure 502 {object} apperrors.ErrorResponse
// @Router /ai/parse-contract [post]
func (h *AIHandler) ParseContract(c *gin.Context) {
	var req dto.ParseContractRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	terms, err := h.aiService.ParseContract(c.Request.Context(), req.Text)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, terms)
}

// ParseContractFile - то же, что ParseContract, для text/plain файла (поле file)
func (h *AIHandler) ParseContractFile(c *gin.Context) {
	file, ok := h.ReadUploadedFile(c, maxContractFileSize, "file", "contract")
	if !ok {
		return
	}

	terms, err := h.aiService.ParseContractFile(c.Request.Context(), file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, terms)
}

func (h *AIHandler) CoverLetter(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CoverLetterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.aiService.CoverLetter(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AIHandler) ExplainScore(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ExplainScoreRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.aiService.ExplainScore(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AIHandler) RegieEmail(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.RegieEmailRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.aiService.RegieEmail(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
