package middleware

import (
	"time"

	"mietlink_backend/internal/logger"
	"mietlink_backend/internal/ratelimit"
	"mietlink_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// RateLimit ограничивает дорогие эндпоинты (AI, загрузки).
// Ключ - пользователь, если он аутентифицирован, иначе IP.
func RateLimit(limiter ratelimit.Limiter, scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := GetUserID(c)
		if key == "" {
			key = c.ClientIP()
		}
		key = scope + ":" + key

		if !limiter.Allow(key, limit, window) {
			logger.CtxWarn(c.Request.Context(), "rate limit exceeded", "scope", scope)
			abort(c, apperrors.ErrRateLimited.Clone())
			return
		}
		c.Next()
	}
}
