package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mietlink_backend/internal/logger"
	"mietlink_backend/internal/validator"
	"mietlink_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// warnLogs направляет логгер в буфер с уровнем warn
func warnLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := logger.GetLogger()
	var buf bytes.Buffer
	logger.SetLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	t.Cleanup(func() { logger.SetLogger(prev) })
	return &buf
}

func serveError(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	h := NewBaseHandler(validator.New())
	r := gin.New()
	r.GET("/x", func(c *gin.Context) { h.HandleServiceError(c, err) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w
}

func TestHandleServiceError_ValidationStaysBelowWarn(t *testing.T) {
	buf := warnLogs(t)

	w := serveError(apperrors.NewBadRequestError("limit must be positive"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, buf.String())
}

func TestHandleServiceError_ConflictLogsWarn(t *testing.T) {
	buf := warnLogs(t)

	w := serveError(apperrors.ErrConflict(nil, "visit", "Slot is full"))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.True(t, strings.Contains(buf.String(), `"level":"WARN"`))
	assert.Contains(t, buf.String(), "CONFLICT")
}

func TestBindAndValidate_JSON_LogsBelowWarn(t *testing.T) {
	buf := warnLogs(t)
	gin.SetMode(gin.TestMode)
	h := NewBaseHandler(validator.New())

	type body struct {
		Name string `json:"name" validate:"required"`
	}
	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		var b body
		if !h.BindAndValidate_JSON(c, &b) {
			return
		}
		c.Status(http.StatusNoContent)
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, buf.String())
}
