package middleware

import (
	"errors"
	"net/http"
	"strings"

	"mietlink_backend/internal/auth"
	"mietlink_backend/internal/logger"
	"mietlink_backend/internal/models"
	"mietlink_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware - middleware проверки JWT
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abort(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				abort(c, apperrors.New(apperrors.CodeTokenExpired, "auth", "Token expired", http.StatusUnauthorized))
				return
			}
			abort(c, apperrors.New(apperrors.CodeInvalidToken, "auth", "Invalid token", http.StatusUnauthorized))
			return
		}

		// Сохраняем claims в контекст
		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Request = c.Request.WithContext(logger.WithUser(c.Request.Context(), claims.UserID, string(claims.Role)))
		c.Next()
	}
}

// RequireRoles - middleware для проверки нескольких возможных ролей
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool)
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		role, ok := roleFromContext(c)
		if !ok {
			abort(c, apperrors.NewForbiddenError("Access denied: no role"))
			return
		}

		if !roleSet[role] {
			abort(c, apperrors.NewForbiddenError("Access denied: insufficient role"))
			return
		}

		c.Next()
	}
}

// RequireLandlordSide - арендодатель или управляющая компания (régie)
func RequireLandlordSide() gin.HandlerFunc {
	return RequireRoles(models.UserRoleLandlord, models.UserRoleRegie)
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(c *gin.Context) string {
	return c.GetString("userID")
}

// GetRole извлекает роль пользователя из контекста
func GetRole(c *gin.Context) models.UserRole {
	role, _ := roleFromContext(c)
	return role
}

func roleFromContext(c *gin.Context) (models.UserRole, bool) {
	roleVal, exists := c.Get("role")
	if !exists {
		return "", false
	}
	switch r := roleVal.(type) {
	case models.UserRole:
		return r, true
	case string:
		return models.UserRole(r), r != ""
	default:
		return "", false
	}
}

func abort(c *gin.Context, err *apperrors.AppError) {
	apperrors.HandleError(c, err)
	c.Abort()
}
