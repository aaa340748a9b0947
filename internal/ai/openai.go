package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"mietlink_backend/internal/algorithms"
	"mietlink_backend/internal/imageprocessor"
	"mietlink_backend/internal/logger"

	"github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
)

// Client - реализация на OpenAI Chat Completions с ответом в JSON
type Client struct {
	api    *openai.Client
	model  string
	images *imageprocessor.Processor
}

func NewClient(cfg Config) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}
	return &Client{
		api:    openai.NewClientWithConfig(oc),
		model:  model,
		images: imageprocessor.NewProcessor(cfg.ImageQuality),
	}
}

// complete отправляет запрос и разбирает JSON-ответ в out
func (c *Client) complete(ctx context.Context, op string, messages []openai.ChatCompletionMessage, out interface{}) error {
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	logger.ExternalCallLog("openai", op, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), out); err != nil {
		return fmt.Errorf("%s: decode reply: %w", op, err)
	}
	return nil
}

func system(content string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: content}
}

func user(content string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: content}
}

// ----------------------------------------------------------------------------
// Классификация документов
// ----------------------------------------------------------------------------

const classifyPrompt = `You are a Swiss document validation expert. Classify and validate documents for rental applications. ` +
	`Return JSON: {"valid": boolean, "confidence": number (0-1), "doc_type": "identity|residence_permit|debt_extract|income_proof|lease", "reason": "explanation"}. ` +
	`Be strict with Swiss document standards.`

type classifyReply struct {
	Valid      bool     `json:"valid"`
	Confidence *float64 `json:"confidence"`
	DocType    string   `json:"doc_type"`
	Reason     string   `json:"reason"`
}

func (c *Client) Validate(ctx context.Context, in DocumentInput) (Verdict, error) {
	if !strings.HasPrefix(in.MimeType, "image/") {
		return Verdict{}, ErrUnsupportedInput
	}

	payload, mime := in.Bytes, in.MimeType
	if scaled, scaledMime, err := c.images.Downscale(in.Bytes, imageprocessor.SizeClassifier); err == nil {
		payload, mime = scaled, scaledMime
	} else {
		logger.CtxWarn(ctx, "image downscale failed, sending original", "error", err.Error())
	}

	filename := in.Filename
	if filename == "" {
		filename = "unknown"
	}
	text := "Analyze this document. Filename: " + filename
	if in.TypeHint != "" {
		text += ". Declared type: " + in.TypeHint
	}

	messages := []openai.ChatCompletionMessage{
		system(classifyPrompt),
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: text},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload),
						Detail: openai.ImageURLDetailHigh,
					},
				},
			},
		},
	}

	var reply classifyReply
	if err := c.complete(ctx, "classify_document", messages, &reply); err != nil {
		return Verdict{}, err
	}

	v := Verdict{
		Valid:        reply.Valid,
		DetectedType: reply.DocType,
		Reason:       reply.Reason,
	}
	if reply.Confidence != nil {
		v.Confidence = ClampConfidence(*reply.Confidence)
	}
	if v.DetectedType == "" {
		v.DetectedType = "unknown"
	}
	if v.Reason == "" {
		v.Reason = "Unable to classify document"
	}
	return v, nil
}

// ----------------------------------------------------------------------------
// Договор и задачи
// ----------------------------------------------------------------------------

const contractPrompt = `You are a Swiss rental contract expert. Extract key information from rental contracts and return JSON in this exact format: ` +
	`{"rent_chf": number, "notice_months": number, "key_count": number, "obligations": [string array of tenant obligations]}. ` +
	`Use Swiss rental law defaults if information is missing.`

type contractReply struct {
	RentChf      decimal.NullDecimal `json:"rent_chf"`
	NoticeMonths float64             `json:"notice_months"`
	KeyCount     float64             `json:"key_count"`
	Obligations  []string            `json:"obligations"`
}

func (c *Client) ParseContract(ctx context.Context, text string) (ContractTerms, error) {
	var reply contractReply
	if err := c.complete(ctx, "parse_contract", []openai.ChatCompletionMessage{system(contractPrompt), user(text)}, &reply); err != nil {
		return ContractTerms{}, err
	}
	return normalizeContract(reply), nil
}

func normalizeContract(reply contractReply) ContractTerms {
	terms := ContractTerms{
		RentChf:      decimal.Zero,
		NoticeMonths: int(math.Round(reply.NoticeMonths)),
		KeyCount:     int(math.Round(reply.KeyCount)),
		Obligations:  []string{},
	}
	if reply.RentChf.Valid && reply.RentChf.Decimal.IsPositive() {
		terms.RentChf = reply.RentChf.Decimal.Round(2)
	}
	if terms.NoticeMonths <= 0 {
		terms.NoticeMonths = 3
	}
	if terms.KeyCount <= 0 {
		terms.KeyCount = 1
	}
	for _, o := range reply.Obligations {
		if o = strings.TrimSpace(o); o != "" {
			terms.Obligations = append(terms.Obligations, o)
		}
	}
	return terms
}

const tasksPrompt = `Convert tenant obligations into actionable tasks with due dates. ` +
	`Return JSON: {"tasks": [{"title": "task description", "days_before_exit": number}]}. Use Swiss rental standards for timing.`

type taskReply struct {
	Title          string  `json:"title"`
	DaysBeforeExit float64 `json:"days_before_exit"`
}

func (c *Client) GenerateTasks(ctx context.Context, obligations []string) ([]algorithms.TaskSpec, error) {
	var raw json.RawMessage
	messages := []openai.ChatCompletionMessage{
		system(tasksPrompt),
		user("Obligations: " + strings.Join(obligations, ", ")),
	}
	if err := c.complete(ctx, "generate_tasks", messages, &raw); err != nil {
		return nil, err
	}
	return parseTaskReply(raw)
}

// parseTaskReply принимает и голый массив, и объект {"tasks": [...]}
func parseTaskReply(raw []byte) ([]algorithms.TaskSpec, error) {
	var items []taskReply
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("generate_tasks: decode reply: %w", err)
		}
	} else {
		var wrapped struct {
			Tasks []taskReply `json:"tasks"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("generate_tasks: decode reply: %w", err)
		}
		items = wrapped.Tasks
	}

	specs := make([]algorithms.TaskSpec, 0, len(items))
	for _, it := range items {
		specs = append(specs, algorithms.TaskSpec{
			Title:          it.Title,
			DaysBeforeExit: int(math.Round(it.DaysBeforeExit)),
		})
	}
	return specs, nil
}

// ----------------------------------------------------------------------------
// Тексты
// ----------------------------------------------------------------------------

func (c *Client) CoverLetter(ctx context.Context, applicant ApplicantProfile, property PropertySummary, language string) (string, error) {
	prompt := fmt.Sprintf(`Write a professional, personal cover letter for a Swiss rental application in %s. Maximum 150 words. `+
		`Sound human, not AI-generated. Avoid clichés. Return JSON: {"text": "cover letter"}.`, language)

	a, _ := json.Marshal(applicant)
	p, _ := json.Marshal(property)

	var reply struct {
		Text string `json:"text"`
	}
	if err := c.complete(ctx, "cover_letter", []openai.ChatCompletionMessage{
		system(prompt),
		user(fmt.Sprintf("User: %s, Property: %s", a, p)),
	}, &reply); err != nil {
		return "", err
	}
	if reply.Text == "" {
		return "Unable to generate cover letter.", nil
	}
	return reply.Text, nil
}

const explainPrompt = `Explain in one sentence why this candidate received their score. ` +
	`Be specific about document completeness and debt status. Return JSON: {"reason": "explanation"}.`

func (c *Client) ExplainScore(ctx context.Context, facts ScoreFacts) (string, error) {
	data, _ := json.Marshal(facts)

	var reply struct {
		Reason string `json:"reason"`
	}
	if err := c.complete(ctx, "explain_score", []openai.ChatCompletionMessage{system(explainPrompt), user(string(data))}, &reply); err != nil {
		return "", err
	}
	if reply.Reason == "" {
		return "Score based on standard criteria.", nil
	}
	return reply.Reason, nil
}

func (c *Client) RegieEmail(ctx context.Context, candidates []RegieCandidate, language string) (string, string, error) {
	prompt := fmt.Sprintf(`Write a professional email to a Swiss regie/landlord in %s with the top 3 candidates. `+
		`Include a table with their scores and key info. Return JSON: {"subject": "email subject", "body": "email body"}.`, language)
	data, _ := json.Marshal(candidates)

	var reply struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := c.complete(ctx, "regie_email", []openai.ChatCompletionMessage{system(prompt), user("Candidates: " + string(data))}, &reply); err != nil {
		return "", "", err
	}
	if reply.Subject == "" {
		reply.Subject = "Top 3 Kandidaten für Ihre Wohnung"
	}
	if reply.Body == "" {
		reply.Body = "Anbei finden Sie die drei besten Kandidaten."
	}
	return reply.Subject, reply.Body, nil
}
