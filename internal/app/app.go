package app

import (
	"fmt"
	"time"

	"mietlink_backend/internal/ai"
	"mietlink_backend/internal/auth"
	"mietlink_backend/internal/config"
	"mietlink_backend/internal/email"
	"mietlink_backend/internal/handlers"
	"mietlink_backend/internal/logger"
	"mietlink_backend/internal/middleware"
	"mietlink_backend/internal/ratelimit"
	"mietlink_backend/internal/repositories"
	"mietlink_backend/internal/routes"
	"mietlink_backend/internal/services"
	"mietlink_backend/internal/storage"
	"mietlink_backend/internal/validator"
	"mietlink_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run поднимает HTTP-сервер. migrate=true прогоняет AutoMigrate перед стартом.
func Run(cfg *config.Config, migrate bool) error {
	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	db, err := OpenDatabase(cfg)
	if err != nil {
		return err
	}
	logger.Info("Database connected")

	if migrate {
		if err := Migrate(db); err != nil {
			return err
		}
		logger.Info("Database schema migrated")
	}

	ginRouter, err := SetupRouter(cfg, db)
	if err != nil {
		return err
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address, "env", cfg.Server.Env)
	return ginRouter.Run(address)
}

// Dependencies - внешние зависимости, которые тесты подменяют
type Dependencies struct {
	Storage storage.Storage
	AI      ai.Service
	Email   email.Provider
	Limiter ratelimit.Limiter
}

// SetupRouter собирает зависимости из конфигурации и возвращает готовый роутер
func SetupRouter(cfg *config.Config, db *gorm.DB) (*gin.Engine, error) {
	deps, err := NewDependencies(cfg)
	if err != nil {
		return nil, err
	}
	return SetupRouterWith(cfg, db, deps)
}

func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	storageInstance, err := storage.NewStorage(storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		PublicRead: cfg.Storage.PublicRead,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	aiService := ai.New(ai.Config{
		APIKey:       cfg.AI.APIKey,
		BaseURL:      cfg.AI.BaseURL,
		Model:        cfg.AI.Model,
		ImageQuality: cfg.Upload.ImageQuality,
	})
	if cfg.AI.APIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set, using static document validator and templates")
	} else {
		logger.Debug("AI client configured", "model", cfg.AI.Model, "base_url", cfg.AI.BaseURL)
	}

	var emailProvider email.Provider
	if cfg.Email.SMTPHost != "" {
		emailProvider = email.NewSMTPProvider(email.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		})
		if err := emailProvider.Validate(); err != nil {
			return nil, fmt.Errorf("invalid email configuration: %w", err)
		}
	} else {
		logger.Warn("SMTP is not configured, emails are not delivered")
		emailProvider = &email.NoopProvider{}
	}

	return &Dependencies{
		Storage: storageInstance,
		AI:      aiService,
		Email:   emailProvider,
		Limiter: ratelimit.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB),
	}, nil
}

// SetupRouterWith собирает роутер с заданными зависимостями
func SetupRouterWith(cfg *config.Config, db *gorm.DB, deps *Dependencies) (*gin.Engine, error) {
	auth.Configure(cfg.JWT.Secret, jwtTTL(cfg))
	apperrors.SetDebug(cfg.Server.Env == "development")

	serviceContainer, err := initializeServices(cfg, deps)
	if err != nil {
		return nil, err
	}
	appHandlers := initializeHandlers(cfg, serviceContainer, deps)

	ginRouter := initializeGinRouter(cfg, db)
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter, nil
}

func initializeServices(cfg *config.Config, deps *Dependencies) (*services.ServiceContainer, error) {
	badgePrice, err := decimal.NewFromString(cfg.Payments.BadgePriceChf)
	if err != nil {
		return nil, fmt.Errorf("invalid payments.badge_price_chf: %w", err)
	}

	// --- Инициализация репозиториев ---
	userRepo := repositories.NewUserRepository()
	propertyRepo := repositories.NewPropertyRepository()
	documentRepo := repositories.NewDocumentRepository()
	candidateRepo := repositories.NewCandidateRepository()
	taskRepo := repositories.NewTaskRepository()
	visitSlotRepo := repositories.NewVisitSlotRepository()
	paymentRepo := repositories.NewPaymentRepository()
	eventRepo := repositories.NewEventRepository()

	// --- Инициализация сервисов ---
	scorer := services.NewScorer(cfg.ScoringPolicy(), documentRepo, candidateRepo, eventRepo)

	taskService := services.NewTaskService(taskRepo, propertyRepo, eventRepo, deps.AI, cfg.AITimeout())
	propertyService := services.NewPropertyService(propertyRepo, eventRepo, taskService)
	documentService := services.NewDocumentService(
		documentRepo, propertyRepo, candidateRepo, eventRepo, scorer,
		deps.Storage, deps.AI,
		services.UploadPolicy{
			MaxSize:      cfg.Upload.MaxSize,
			AllowedTypes: cfg.Upload.AllowedTypes,
			FailMode:     cfg.Validation.FailMode,
			Timeout:      cfg.ValidationTimeout(),
		},
	)
	candidateService := services.NewCandidateService(candidateRepo, propertyRepo, userRepo, eventRepo, scorer)
	aiService := services.NewAIService(deps.AI, scorer, propertyRepo, candidateRepo, userRepo, deps.Email, cfg.AITimeout())

	return &services.ServiceContainer{
		AuthService:      services.NewAuthService(userRepo),
		PropertyService:  propertyService,
		DocumentService:  documentService,
		CandidateService: candidateService,
		TaskService:      taskService,
		VisitSlotService: services.NewVisitSlotService(visitSlotRepo, propertyRepo, eventRepo),
		PaymentService:   services.NewPaymentService(paymentRepo, candidateRepo, userRepo, eventRepo, badgePrice),
		AIService:        aiService,
		EventService:     services.NewEventService(eventRepo, propertyRepo),
		EmailService:     deps.Email,
		Storage:          deps.Storage,
	}, nil
}

func initializeHandlers(cfg *config.Config, svc *services.ServiceContainer, deps *Dependencies) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	limit := ratelimit.Rule{Requests: cfg.RateLimit.Requests, Window: cfg.RateLimitWindow()}

	return &handlers.AppHandlers{
		AuthHandler:      handlers.NewAuthHandler(baseHandler, svc.AuthService, deps.Limiter, limit),
		PropertyHandler:  handlers.NewPropertyHandler(baseHandler, svc.PropertyService),
		DocumentHandler:  handlers.NewDocumentHandler(baseHandler, svc.DocumentService, cfg.Upload.MaxSize, deps.Limiter, limit),
		CandidateHandler: handlers.NewCandidateHandler(baseHandler, svc.CandidateService),
		TaskHandler:      handlers.NewTaskHandler(baseHandler, svc.TaskService),
		VisitSlotHandler: handlers.NewVisitSlotHandler(baseHandler, svc.VisitSlotService),
		PaymentHandler:   handlers.NewPaymentHandler(baseHandler, svc.PaymentService),
		AIHandler:        handlers.NewAIHandler(baseHandler, svc.AIService, deps.Limiter, limit),
		EventHandler:     handlers.NewEventHandler(baseHandler, svc.EventService),
		FileHandler:      handlers.NewFileHandler(baseHandler, svc.Storage),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	// multipart сверх лимита загрузки уходит во временные файлы
	router.MaxMultipartMemory = cfg.Upload.MaxSize + 1<<20
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	router.Use(middleware.DBMiddleware(db))
	return router
}

func jwtTTL(cfg *config.Config) time.Duration {
	return time.Duration(cfg.JWT.TTL) * time.Minute
}
