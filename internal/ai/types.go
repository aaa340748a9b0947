package ai

import (
	"context"
	"errors"
	"math"

	"mietlink_backend/internal/algorithms"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyResponse    = errors.New("empty response from model")
	ErrUnsupportedInput = errors.New("unsupported input for classification")
)

// DocumentInput - загруженный файл, который нужно классифицировать
type DocumentInput struct {
	Bytes    []byte
	MimeType string
	Filename string
	TypeHint string
}

// Verdict - ответ классификатора. Confidence всегда в [0,1].
type Verdict struct {
	Valid        bool    `json:"valid"`
	Confidence   float64 `json:"confidence"`
	Reason       string  `json:"reason"`
	DetectedType string  `json:"doc_type"`
}

// DocumentValidator классифицирует документ досье
type DocumentValidator interface {
	Validate(ctx context.Context, in DocumentInput) (Verdict, error)
}

// ContractTerms - ключевые условия договора аренды
type ContractTerms struct {
	RentChf      decimal.Decimal `json:"rent_chf"`
	NoticeMonths int             `json:"notice_months"`
	KeyCount     int             `json:"key_count"`
	Obligations  []string        `json:"obligations"`
}

type ApplicantProfile struct {
	Name          string `json:"name"`
	Occupation    string `json:"occupation,omitempty"`
	HouseholdSize int    `json:"household_size,omitempty"`
	Pets          bool   `json:"pets,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type PropertySummary struct {
	Address string          `json:"address"`
	RentChf decimal.Decimal `json:"rent_chf"`
	Slug    string          `json:"slug,omitempty"`
}

type DocumentSummary struct {
	Type  string `json:"type"`
	Valid bool   `json:"valid"`
}

// ScoreFacts - то, на чем основан сохраненный балл кандидата
type ScoreFacts struct {
	Score         int               `json:"score"`
	Tier          string            `json:"tier"`
	Reason        string            `json:"reason"`
	ValidRequired int               `json:"valid_required"`
	RequiredTotal int               `json:"required_total"`
	Documents     []DocumentSummary `json:"documents"`
}

type RegieCandidate struct {
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Tier      string `json:"tier"`
	Status    string `json:"status"`
	BadgeFlag bool   `json:"badge"`
}

// Extractor извлекает обязательства из договора и пишет тексты
type Extractor interface {
	ParseContract(ctx context.Context, text string) (ContractTerms, error)
	GenerateTasks(ctx context.Context, obligations []string) ([]algorithms.TaskSpec, error)
	CoverLetter(ctx context.Context, applicant ApplicantProfile, property PropertySummary, language string) (string, error)
	ExplainScore(ctx context.Context, facts ScoreFacts) (string, error)
	RegieEmail(ctx context.Context, candidates []RegieCandidate, language string) (subject, body string, err error)
}

// Service объединяет обе роли внешнего ИИ
type Service interface {
	DocumentValidator
	Extractor
}

// ClampConfidence приводит уверенность классификатора к [0,1]
func ClampConfidence(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Config - настройки клиента
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	ImageQuality int
}

// New возвращает OpenAI-клиент, либо статическую реализацию, если ключ не задан
func New(cfg Config) Service {
	if cfg.APIKey == "" {
		return NewStatic()
	}
	return NewClient(cfg)
}
