package validator

import (
	"log"
	"time"

	"mietlink_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// DateLayout - формат дат в API (earliest_exit, due_date)
const DateLayout = "2006-01-02"

// customRule - тег валидации и сообщение, которое увидит клиент
type customRule struct {
	tag     string
	fn      validator.Func
	message string
}

var customRules = []customRule{
	{"is-user-role", validateUserRole, "Must be one of: tenant, landlord, regie"},
	{"is-landlord-decision", validateLandlordDecision, "Must be one of: accepted, rejected"},
	{"is-task-status", validateTaskStatus, "Must be one of: pending, completed"},
	{"is-payment-status", validatePaymentStatus, "Must be one of: pending, completed, failed"},
	// канонические имена и старые алиасы (id, permit, income)
	{"is-document-type", validateDocumentType, "Must be one of: identity, residence_permit, debt_extract, income_proof, lease"},
	{"is-language", validateLanguage, "Must be one of: de, fr, it, en"},
	{"is-date", validateDate, "Must be a date in YYYY-MM-DD format"},
}

// registerCustomRules регистрирует правила в экземпляре валидатора.
// Ошибка регистрации - ошибка конфигурации, приложение не стартует.
func registerCustomRules(v *validator.Validate) map[string]string {
	messages := make(map[string]string, len(customRules))
	for _, r := range customRules {
		if err := v.RegisterValidation(r.tag, r.fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", r.tag, err)
		}
		messages[r.tag] = r.message
	}
	return messages
}

// --- Функции валидации ---
// Пустые значения пропускаются, для этого есть 'required'.

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.UserRole(value) {
	case models.UserRoleTenant, models.UserRoleLandlord, models.UserRoleRegie:
		return true
	}
	return false
}

func validateLandlordDecision(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.LandlordDecision(value).Valid()
}

func validateTaskStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.TaskStatus(value).Valid()
}

func validatePaymentStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.PaymentStatus(value).Valid()
}

func validateDocumentType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := models.ParseDocumentType(value)
	return err == nil
}

func validateLanguage(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "de", "fr", "it", "en":
		return true
	}
	return false
}

func validateDate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := time.Parse(DateLayout, value)
	return err == nil
}
