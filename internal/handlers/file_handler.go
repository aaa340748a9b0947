package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"mietlink_backend/internal/logger"
	"mietlink_backend/internal/storage"
	"mietlink_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// FileHandler отдает файлы досье из хранилища по ключу. Ключи содержат
// случайный UUID, поэтому ссылка из документа работает без токена.
type FileHandler struct {
	*BaseHandler
	storage storage.Storage
}

func NewFileHandler(base *BaseHandler, storage storage.Storage) *FileHandler {
	return &FileHandler{
		BaseHandler: base,
		storage:     storage,
	}
}

// RegisterRoutes регистрируется на корне роутера: URL документов имеют вид /files/<key>
func (h *FileHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/files/*key", h.ServeFile)
	r.HEAD("/files/*key", h.CheckFileExists)
}

// ServeFile serves a stored document by key
func (h *FileHandler) ServeFile(c *gin.Context) {
	ctx := c.Request.Context()
	key := strings.TrimPrefix(c.Param("key"), "/")

	reader, err := h.storage.Get(ctx, key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, storage.ErrInvalidKey) {
			apperrors.HandleError(c, apperrors.NotFoundIn("file", "File not found", err))
			return
		}
		logger.CtxWithError(ctx, "Failed to read stored file", err, "key", key)
		apperrors.HandleError(c, apperrors.InternalError(err))
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "private, max-age=3600")
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, reader); err != nil {
		logger.CtxWarn(ctx, "Failed to stream file", "key", key, "error", err)
	}
}

func (h *FileHandler) CheckFileExists(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")

	exists, err := h.storage.Exists(c.Request.Context(), key)
	if err != nil || !exists {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusOK)
}
