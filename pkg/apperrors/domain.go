package apperrors

import (
	"net/http"
)

/*
Этот файл содержит фабрики и предопределенные переменные
для ошибок бизнес-логики и домена.
*/

// =========================================================================
// Фабричные ФУНКЦИИ (оборачивание ошибок репозитория / внешних сервисов)
// =========================================================================

// NotFoundIn - "не найдено" с указанием домена (property, candidate, task...)
func NotFoundIn(domain, message string, err error) *AppError {
	return Wrap(err, CodeNotFound, domain, message, http.StatusNotFound)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrExternalService - внешний сервис (классификатор, извлечение обязательств) недоступен (502)
func ErrExternalService(err error, domain string) *AppError {
	return Wrap(err, CodeExternalServiceError, domain, "External service unavailable", http.StatusBadGateway)
}

// ErrPersistence - ошибка хранилища (500). Не ретраится автоматически.
func ErrPersistence(err error) *AppError {
	return Wrap(err, CodeDatabaseError, "persistence", "Failed to persist data", http.StatusInternalServerError)
}

// =========================================================================
// Фабричные ФУНКЦИИ (новые ошибки)
// =========================================================================

// ErrInvalidStatus - фабрика для невалидных статусов (400)
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// =========================================================================
// Предопределенные ПЕРЕМЕННЫЕ
// =========================================================================
//
// Переменные используются только как цели для errors.Is / сравнения кодов;
// чтобы не мутировать общий экземпляр, сервисы возвращают копию через Clone().

// --- Candidates ---

// ErrDuplicateApplication - заявка этого пользователя на объект уже существует.
var ErrDuplicateApplication = New(
	CodeDuplicateApplication,
	"candidate",
	"Application already exists",
	http.StatusBadRequest,
)

// ErrPropertyClosed - объект закрыт для новых заявок.
var ErrPropertyClosed = New(
	CodePropertyClosed,
	"candidate",
	"Property is closed for new applications",
	http.StatusBadRequest,
)

// ErrAlreadyDecided - решение арендодателя уже принято и отличается от запрошенного.
var ErrAlreadyDecided = New(
	CodeAlreadyDecided,
	"candidate",
	"A different decision was already made for this candidate",
	http.StatusConflict,
)

// --- Visit slots ---

// ErrSlotFull - свободных мест на просмотр не осталось.
var ErrSlotFull = New(
	CodeSlotFull,
	"visit_slot",
	"No seats left in this visit slot",
	http.StatusConflict,
)

// ErrDuplicateBooking - пользователь уже записан на этот просмотр.
var ErrDuplicateBooking = New(
	CodeDuplicateBooking,
	"visit_slot",
	"You already booked this visit slot",
	http.StatusConflict,
)

// --- Uploads ---

// ErrFileTooLarge - файл превышает максимальный размер.
var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"validation",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

// ErrInvalidFileType - MIME-тип файла не разрешен.
var ErrInvalidFileType = New(
	CodeValidationFailed,
	"validation",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)

// --- Auth ---

// ErrNotOwner - операция доступна только владельцу объекта.
var ErrNotOwner = New(
	CodeForbidden,
	"auth",
	"Only the property owner can perform this operation",
	http.StatusForbidden,
)

// ErrEmailAlreadyExists - email уже используется.
var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

// ErrInvalidCredentials - неверный email или пароль.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

// ErrWeakPassword - пароль слишком короткий.
var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 8 characters required.",
	http.StatusBadRequest,
)

// ErrRateLimited - слишком много запросов.
var ErrRateLimited = New(
	CodeRateLimited,
	"rate_limit",
	"Too many requests, try again later",
	http.StatusTooManyRequests,
)
