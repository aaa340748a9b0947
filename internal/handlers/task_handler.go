package handlers

import (
	"net/http"

	"mietlink_backend/internal/middleware"
	"mietlink_backend/internal/services"
	"mietlink_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	*BaseHandler
	taskService services.TaskService
}

func NewTaskHandler(base *BaseHandler, taskService services.TaskService) *TaskHandler {
	return &TaskHandler{
		BaseHandler: base,
		taskService: taskService,
	}
}

// RegisterRoutes - GET /tasks/:id принимает ID объекта, POST /tasks/:id - ID задачи
func (h *TaskHandler) RegisterRoutes(r *gin.RouterGroup) {
	tasks := r.Group("/tasks")
	tasks.Use(middleware.AuthMiddleware())
	{
		tasks.GET("/:id", h.ListByProperty)

		owner := tasks.Group("")
		owner.Use(middleware.RequireLandlordSide())
		{
			owner.POST("", h.Create)
			owner.POST("/generate", h.Generate)
			owner.POST("/:id", h.Update)
		}
	}
}

func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	task, err := h.taskService.Create(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// Generate godoc
// @Summary Сгенерировать задачи из обязательств
// @Description Каждая задача сохраняется отдельно; ошибки отдельных пунктов возвращаются в failures
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GenerateTasksRequest true "Обязательства"
// @Success 201 {object} dto.GenerateTasksResponse
// @Failure 502 {object} apperrors.ErrorResponse "Извлечение обязательств недоступно"
// @Router /tasks/generate [post]
func (h *TaskHandler) Generate(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.GenerateTasksRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.taskService.Generate(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *TaskHandler) ListByProperty(c *gin.Context) {
	tasks, err := h.taskService.ListByProperty(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	task, err := h.taskService.Update(h.GetDB(c), c.Param("id"), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}
