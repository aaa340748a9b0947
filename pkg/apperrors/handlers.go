package apperrors

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse - тело ответа об ошибке: {"error": {...}}
type ErrorResponse struct {
	Error     *AppError `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

// GinErrorHandler пишет AppError в ответ. В production (Debug=false)
// текст неизвестных ошибок не раскрывается клиенту.
type GinErrorHandler struct {
	Debug bool
}

func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}
	if appErr.HTTPCode == 0 {
		appErr = appErr.Clone()
		appErr.HTTPCode = http.StatusInternalServerError
	}
	if appErr.HTTPCode >= 500 && !h.Debug {
		appErr = appErr.Clone()
		appErr.Details = nil
		if appErr.Code == CodeInternalError || appErr.Code == CodeDatabaseError {
			appErr.Message = "Internal server error"
		}
	}

	requestID := c.Writer.Header().Get("X-Request-ID")
	if appErr.HTTPCode >= 500 {
		slog.Error("server error",
			"code", appErr.Code,
			"domain", appErr.Domain,
			"error", appErr.Unwrap(),
			"path", c.Request.URL.Path,
			"request_id", requestID,
		)
	}

	c.AbortWithStatusJSON(appErr.HTTPCode, ErrorResponse{Error: appErr, RequestID: requestID})
}

var defaultHandler = &GinErrorHandler{Debug: true}

// SetDebug переключает вывод деталей внутренних ошибок
func SetDebug(debug bool) {
	defaultHandler = &GinErrorHandler{Debug: debug}
}

func HandleError(c *gin.Context, err error) {
	defaultHandler.HandleGinError(c, err)
}

// AsAppError ищет *AppError в цепочке ошибок
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
