package services

import (
	"errors"
	"strings"

	"mietlink_backend/internal/auth"
	"mietlink_backend/internal/models"
	"mietlink_backend/internal/repositories"
	"mietlink_backend/internal/services/dto"
	"mietlink_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Me(db *gorm.DB, userID string) (*models.User, error)
}

type AuthServiceImpl struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &AuthServiceImpl{userRepo: userRepo}
}

// Register - регистрация нового пользователя, сразу выдает токен
func (s *AuthServiceImpl) Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperrors.ValidationError(map[string]string{"password": err.Error()})
		}
		return nil, apperrors.ErrWeakPassword.Clone()
	}

	role := models.UserRoleTenant
	if req.Role != "" {
		if err := auth.ValidateRole(req.Role); err != nil {
			return nil, apperrors.ValidationError(map[string]string{"role": err.Error()})
		}
		role = models.UserRole(req.Role)
	}
	language := req.Language
	if language == "" {
		language = "de"
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		Language:     language,
	}
	if err := s.userRepo.Create(db, user); err != nil {
		return nil, handleUserError(err)
	}

	return s.issueToken(user)
}

// Login - проверка пароля; неизвестный email и неверный пароль неразличимы
func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials.Clone()
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials.Clone()
	}

	return s.issueToken(user)
}

func (s *AuthServiceImpl) Me(db *gorm.DB, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}
	return user, nil
}

func (s *AuthServiceImpl) issueToken(user *models.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
