package handlers

import (
	"net/http"

	"mietlink_backend/internal/middleware"
	"mietlink_backend/internal/services"
	"mietlink_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	*BaseHandler
	candidateService services.CandidateService
}

func NewCandidateHandler(base *BaseHandler, candidateService services.CandidateService) *CandidateHandler {
	return &CandidateHandler{
		BaseHandler:      base,
		candidateService: candidateService,
	}
}

// RegisterRoutes - GET /candidates/:id - список по объекту, POST /candidates/:id/... - действия над кандидатом
func (h *CandidateHandler) RegisterRoutes(r *gin.RouterGroup) {
	candidates := r.Group("/candidates")
	candidates.Use(middleware.AuthMiddleware())
	{
		candidates.POST("", h.Create)
		candidates.GET("/my", h.ListMine)
		candidates.POST("/:id/recompute", h.Recompute)

		owner := candidates.Group("")
		owner.Use(middleware.RequireLandlordSide())
		{
			owner.GET("/:id", h.ListByProperty)
			owner.POST("/:id/decision", h.Decide)
		}
	}
}

// Create godoc
// @Summary Подать заявку на объект
// @Description Балл и статус вычисляются на сервере
// @Tags candidates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCandidateRequest true "Заявка"
// @Success 201 {object} models.Candidate
// @Failure 400 {object} apperrors.ErrorResponse "Заявка уже существует или объект закрыт"
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /candidates [post]
func (h *CandidateHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCandidateRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	candidate, err := h.candidateService.Create(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, candidate)
}

func (h *CandidateHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	candidates, err := h.candidateService.ListMine(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, candidates)
}

// ListByProperty godoc
// @Summary Кандидаты объекта
// @Description Сортировка по баллу, лучшие первыми. Поданные досье переходят в under_review.
// @Tags candidates
// @Produce json
// @Security BearerAuth
// @Param propertyId path string true "ID объекта"
// @Success 200 {array} models.Candidate
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /candidates/{propertyId} [get]
func (h *CandidateHandler) ListByProperty(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	candidates, err := h.candidateService.ListByProperty(h.GetDB(c), c.Param("id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, candidates)
}

// Decide godoc
// @Summary Решение арендодателя
// @Tags candidates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID кандидата"
// @Param request body dto.DecisionRequest true "accepted | rejected"
// @Success 200 {object} models.Candidate
// @Failure 409 {object} apperrors.ErrorResponse "Уже принято другое решение"
// @Router /candidates/{id}/decision [post]
func (h *CandidateHandler) Decide(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.DecisionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	candidate, err := h.candidateService.Decide(h.GetDB(c), c.Param("id"), userID, req.Decision)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, candidate)
}

func (h *CandidateHandler) Recompute(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	candidate, err := h.candidateService.RecomputeScore(h.GetDB(c), c.Param("id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, candidate)
}
