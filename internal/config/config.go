package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"mietlink_backend/internal/algorithms"
	"mietlink_backend/internal/models"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host        string   `yaml:"host"`
		Port        int      `yaml:"port"`
		Env         string   `yaml:"env"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`

	Database struct {
		Driver       string `yaml:"driver"` // postgres, mysql, sqlite
		DSN          string `yaml:"url"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Storage struct {
		Type       string `yaml:"type"`        // local, s3, cloudflare_r2
		BasePath   string `yaml:"base_path"`   // For local storage
		BaseURL    string `yaml:"base_url"`    // Public URL base
		Bucket     string `yaml:"bucket"`      // For S3/R2
		Region     string `yaml:"region"`      // For S3
		AccessKey  string `yaml:"access_key"`  // For S3/R2
		SecretKey  string `yaml:"secret_key"`  // For S3/R2
		Endpoint   string `yaml:"endpoint"`    // For R2 or custom S3
		PublicRead bool   `yaml:"public_read"` // Make files public
	} `yaml:"storage"`

	Upload struct {
		MaxSize      int64    `yaml:"max_size"`      // Max file size in bytes
		AllowedTypes []string `yaml:"allowed_types"` // Allowed MIME types
		ImageQuality int      `yaml:"image_quality"` // JPEG quality (1-100)
	} `yaml:"upload"`

	// Баллы - указатели: явный 0 в yaml отличается от отсутствующего ключа
	Scoring struct {
		RequiredTypes       []string `yaml:"required_types"`
		CompleteScore       *int     `yaml:"complete_score"`
		PartialScore        *int     `yaml:"partial_score"`
		MissingScore        *int     `yaml:"missing_score"`
		NoRequirementsScore *int     `yaml:"no_requirements_score"`
		GreenThreshold      *int     `yaml:"green_threshold"`
		YellowThreshold     *int     `yaml:"yellow_threshold"`
	} `yaml:"scoring"`

	Validation struct {
		FailMode  string `yaml:"fail_mode"`  // open | closed
		TimeoutMS int    `yaml:"timeout_ms"` // per external call
	} `yaml:"validation"`

	AI struct {
		APIKey    string `yaml:"api_key"`
		BaseURL   string `yaml:"base_url"`
		Model     string `yaml:"model"`
		TimeoutMS int    `yaml:"timeout_ms"`
	} `yaml:"ai"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	RateLimit struct {
		Requests int `yaml:"requests"`
		WindowS  int `yaml:"window_seconds"`
	} `yaml:"rate_limit"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	Payments struct {
		BadgePriceChf string `yaml:"badge_price_chf"`
	} `yaml:"payments"`
}

const (
	FailModeOpen   = "open"
	FailModeClosed = "closed"
)

var AppConfig *Config

// LoadConfig читает config.yaml, либо, если задан DATABASE_URL,
// собирает конфигурацию из переменных окружения (контейнеры и тесты).
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

func Load() (*Config, error) {
	var cfg Config

	if os.Getenv("DATABASE_URL") == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}
		log.Printf("Loading configuration from %s", configPath)

		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("open config file %s: %w", configPath, err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
		}
	} else {
		log.Println("Loading configuration from environment")
		fromEnv(&cfg)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func fromEnv(cfg *Config) {
	cfg.Database.DSN = os.Getenv("DATABASE_URL")
	cfg.Database.Driver = os.Getenv("DATABASE_DRIVER")
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL, _ = strconv.Atoi(os.Getenv("JWT_TTL"))

	cfg.Storage.Type = os.Getenv("STORAGE_TYPE")
	cfg.Storage.BasePath = os.Getenv("STORAGE_PATH")
	cfg.Storage.Bucket = os.Getenv("STORAGE_BUCKET")
	cfg.Storage.Endpoint = os.Getenv("STORAGE_ENDPOINT")
	cfg.Storage.AccessKey = os.Getenv("STORAGE_ACCESS_KEY")
	cfg.Storage.SecretKey = os.Getenv("STORAGE_SECRET_KEY")

	if v := os.Getenv("SCORING_REQUIRED_TYPES"); v == "none" {
		cfg.Scoring.RequiredTypes = []string{}
	} else if v != "" {
		cfg.Scoring.RequiredTypes = splitList(v)
	}
	cfg.Validation.FailMode = os.Getenv("VALIDATION_FAIL_MODE")
	cfg.Validation.TimeoutMS, _ = strconv.Atoi(os.Getenv("VALIDATION_TIMEOUT_MS"))

	cfg.AI.APIKey = os.Getenv("OPENAI_API_KEY")
	cfg.AI.BaseURL = os.Getenv("OPENAI_BASE_URL")
	cfg.AI.Model = os.Getenv("OPENAI_MODEL")

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")

	cfg.Email.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.Email.SMTPPort, _ = strconv.Atoi(os.Getenv("SMTP_PORT"))
	cfg.Email.SMTPUsername = os.Getenv("SMTP_USER")
	cfg.Email.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.Email.FromEmail = os.Getenv("SMTP_FROM")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 4000
	}
	if c.Server.Env == "" {
		c.Server.Env = "development"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.JWT.TTL == 0 {
		c.JWT.TTL = 60 * 24
	}
	if c.Storage.Type == "" {
		c.Storage.Type = "local"
	}
	if c.Storage.BasePath == "" {
		c.Storage.BasePath = "./uploads"
	}
	if c.Storage.BaseURL == "" {
		c.Storage.BaseURL = "/files"
	}
	if c.Upload.MaxSize == 0 {
		c.Upload.MaxSize = 10 * 1024 * 1024 // 10MB
	}
	if len(c.Upload.AllowedTypes) == 0 {
		c.Upload.AllowedTypes = []string{
			"image/jpeg", "image/png", "image/webp", "image/gif",
			"application/pdf", "text/plain",
		}
	}
	if c.Upload.ImageQuality == 0 {
		c.Upload.ImageQuality = 85
	}

	def := algorithms.DefaultScoringPolicy()
	if c.Scoring.RequiredTypes == nil {
		c.Scoring.RequiredTypes = def.RequiredTypes
	}
	defaultInt(&c.Scoring.CompleteScore, def.CompleteScore)
	defaultInt(&c.Scoring.PartialScore, def.PartialScore)
	defaultInt(&c.Scoring.MissingScore, def.MissingScore)
	defaultInt(&c.Scoring.NoRequirementsScore, def.NoRequirementsScore)
	defaultInt(&c.Scoring.GreenThreshold, def.GreenThreshold)
	defaultInt(&c.Scoring.YellowThreshold, def.YellowThreshold)

	if c.Validation.FailMode == "" {
		c.Validation.FailMode = FailModeOpen
	}
	if c.Validation.TimeoutMS == 0 {
		c.Validation.TimeoutMS = 15000
	}
	if c.AI.Model == "" {
		c.AI.Model = "gpt-4o"
	}
	if c.AI.TimeoutMS == 0 {
		c.AI.TimeoutMS = 30000
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = 30
	}
	if c.RateLimit.WindowS == 0 {
		c.RateLimit.WindowS = 60
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Payments.BadgePriceChf == "" {
		c.Payments.BadgePriceChf = "19.90"
	}
}

// Validate проверяет согласованность конфигурации, в первую очередь политики скоринга.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Validation.FailMode != FailModeOpen && c.Validation.FailMode != FailModeClosed {
		return fmt.Errorf("validation.fail_mode must be %q or %q, got %q", FailModeOpen, FailModeClosed, c.Validation.FailMode)
	}
	for i, raw := range c.Scoring.RequiredTypes {
		t, err := models.ParseDocumentType(raw)
		if err != nil {
			return fmt.Errorf("scoring.required_types: %w", err)
		}
		c.Scoring.RequiredTypes[i] = string(t)
	}
	if err := c.ScoringPolicy().Validate(); err != nil {
		return fmt.Errorf("invalid scoring policy: %w", err)
	}
	return nil
}

// ScoringPolicy переводит секцию scoring в политику движка.
// Незаданные поля берутся из политики по умолчанию.
func (c *Config) ScoringPolicy() algorithms.ScoringPolicy {
	p := algorithms.DefaultScoringPolicy()
	if c.Scoring.RequiredTypes != nil {
		p.RequiredTypes = c.Scoring.RequiredTypes
	}
	overrideInt(&p.CompleteScore, c.Scoring.CompleteScore)
	overrideInt(&p.PartialScore, c.Scoring.PartialScore)
	overrideInt(&p.MissingScore, c.Scoring.MissingScore)
	overrideInt(&p.NoRequirementsScore, c.Scoring.NoRequirementsScore)
	overrideInt(&p.GreenThreshold, c.Scoring.GreenThreshold)
	overrideInt(&p.YellowThreshold, c.Scoring.YellowThreshold)
	return p
}

func (c *Config) ValidationTimeout() time.Duration {
	return time.Duration(c.Validation.TimeoutMS) * time.Millisecond
}

func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutMS) * time.Millisecond
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowS) * time.Second
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultInt(dst **int, v int) {
	if *dst == nil {
		*dst = &v
	}
}

func overrideInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
