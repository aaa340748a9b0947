package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mietlink_backend/internal/ai"
	"mietlink_backend/internal/algorithms"
	"mietlink_backend/internal/email"
	"mietlink_backend/internal/models"
	"mietlink_backend/internal/repositories"
	"mietlink_backend/internal/services"
	"mietlink_backend/internal/services/dto"
	"mietlink_backend/internal/storage"
	"mietlink_backend/test/helpers"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errUnavailable = errors.New("classifier unavailable")

// fakeAI подменяет классификатор и генератор задач
type fakeAI struct {
	*ai.Static
	verdict     *ai.Verdict
	validateErr error
	specs       []algorithms.TaskSpec
	generateErr error
	calls       int
}

func (f *fakeAI) Validate(ctx context.Context, in ai.DocumentInput) (ai.Verdict, error) {
	f.calls++
	if f.validateErr != nil {
		return ai.Verdict{}, f.validateErr
	}
	if f.verdict != nil {
		return *f.verdict, nil
	}
	return f.Static.Validate(ctx, in)
}

func (f *fakeAI) GenerateTasks(ctx context.Context, obligations []string) ([]algorithms.TaskSpec, error) {
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	if f.specs != nil {
		return f.specs, nil
	}
	return f.Static.GenerateTasks(ctx, obligations)
}

type testEnv struct {
	db        *gorm.DB
	ai        *fakeAI
	storage   storage.Storage
	mailer    *email.NoopProvider
	property  services.PropertyService
	document  services.DocumentService
	candidate services.CandidateService
	task      services.TaskService
	slot      services.VisitSlotService
	payment   services.PaymentService
	aiSvc     services.AIService
	events    services.EventService
	auth      services.AuthService
}

func newEnv(t *testing.T, failMode string) *testEnv {
	t.Helper()

	db := helpers.NewTestDB(t)
	store, err := storage.NewStorage(storage.Config{Type: "local", BasePath: t.TempDir(), BaseURL: "/files"})
	require.NoError(t, err)

	fake := &fakeAI{Static: ai.NewStatic()}
	mailer := &email.NoopProvider{}

	userRepo := repositories.NewUserRepository()
	propertyRepo := repositories.NewPropertyRepository()
	documentRepo := repositories.NewDocumentRepository()
	candidateRepo := repositories.NewCandidateRepository()
	eventRepo := repositories.NewEventRepository()

	scorer := services.NewScorer(algorithms.DefaultScoringPolicy(), documentRepo, candidateRepo, eventRepo)
	taskService := services.NewTaskService(repositories.NewTaskRepository(), propertyRepo, eventRepo, fake, time.Second)

	return &testEnv{
		db:       db,
		ai:       fake,
		storage:  store,
		mailer:   mailer,
		property: services.NewPropertyService(propertyRepo, eventRepo, taskService),
		document: services.NewDocumentService(documentRepo, propertyRepo, candidateRepo, eventRepo, scorer, store, fake,
			services.UploadPolicy{
				MaxSize:      1 << 20,
				AllowedTypes: []string{"image/jpeg", "image/png", "application/pdf"},
				FailMode:     failMode,
				Timeout:      time.Second,
			}),
		candidate: services.NewCandidateService(candidateRepo, propertyRepo, userRepo, eventRepo, scorer),
		task:      taskService,
		slot:      services.NewVisitSlotService(repositories.NewVisitSlotRepository(), propertyRepo, eventRepo),
		payment:   services.NewPaymentService(repositories.NewPaymentRepository(), candidateRepo, userRepo, eventRepo, decimal.RequireFromString("19.90")),
		aiSvc:     services.NewAIService(fake, scorer, propertyRepo, candidateRepo, userRepo, mailer, time.Second),
		events:    services.NewEventService(eventRepo, propertyRepo),
		auth:      services.NewAuthService(userRepo),
	}
}

func (e *testEnv) landlord(t *testing.T) *models.User {
	return helpers.CreateUser(t, e.db, "Regie Muster", "landlord_"+randomSuffix()+"@test.ch", "password123", models.UserRoleLandlord)
}

func (e *testEnv) tenant(t *testing.T, name string) *models.User {
	return helpers.CreateUser(t, e.db, name, "tenant_"+randomSuffix()+"@test.ch", "password123", models.UserRoleTenant)
}

func (e *testEnv) newProperty(t *testing.T, ownerID string) *models.Property {
	t.Helper()
	res, err := e.property.Create(context.Background(), e.db, ownerID, &dto.CreatePropertyRequest{
		Address: "Bahnhofstrasse 1, 8001 Zürich",
		RentChf: decimal.RequireFromString("2450.00"),
	})
	require.NoError(t, err)
	return res.Property
}

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

// pngBytes - сигнатура PNG, этого хватает для определения типа
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func (e *testEnv) upload(t *testing.T, userID, propertyID string, docType models.DocumentType) *models.Document {
	t.Helper()
	doc, err := e.document.Upload(context.Background(), e.db, userID,
		&dto.UploadDocumentRequest{Type: string(docType), PropertyID: propertyID},
		&dto.UploadedFile{Filename: string(docType) + ".pdf", MimeType: "application/pdf", Data: pdfBytes})
	require.NoError(t, err)
	return doc
}

func (e *testEnv) apply(t *testing.T, userID, propertyID string) *models.Candidate {
	t.Helper()
	c, err := e.candidate.Create(e.db, userID, &dto.CreateCandidateRequest{
		PropertyID:  propertyID,
		CoverLetter: coverLetter,
	})
	require.NoError(t, err)
	return c
}

var coverLetter = strings.Repeat("Ich bewerbe mich gerne für diese Wohnung. ", 3)

func randomSuffix() string {
	return uuid.NewString()[:8]
}
