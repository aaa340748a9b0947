package helpers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"mietlink_backend/internal/ai"
	"mietlink_backend/internal/app"
	"mietlink_backend/internal/config"
	"mietlink_backend/internal/email"
	"mietlink_backend/internal/logger"
	"mietlink_backend/internal/models"
	"mietlink_backend/internal/ratelimit"
	"mietlink_backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type TestServer struct {
	Server  *httptest.Server
	DB      *gorm.DB
	Config  *config.Config
	Storage storage.Storage
	Email   *email.NoopProvider
}

// TestConfig - конфигурация по умолчанию для тестов
func TestConfig(t *testing.T) *config.Config {
	t.Helper()

	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("SERVER_ENV", "test")
	t.Setenv("JWT_SECRET", "test-secret-for-mietlink")
	t.Setenv("STORAGE_PATH", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	logger.Init(cfg.Server.Env)
	gin.SetMode(gin.TestMode)
	cfg.RateLimit.Requests = 1000
	return cfg
}

// NewTestServer поднимает роутер на отдельной БД. aiService == nil - статическая реализация.
func NewTestServer(t *testing.T, cfg *config.Config, aiService ai.Service) *TestServer {
	t.Helper()

	if cfg == nil {
		cfg = TestConfig(t)
	}
	if aiService == nil {
		aiService = ai.NewStatic()
	}

	db := NewTestDB(t)

	store, err := storage.NewStorage(storage.Config{
		Type:     "local",
		BasePath: cfg.Storage.BasePath,
		BaseURL:  cfg.Storage.BaseURL,
	})
	require.NoError(t, err)

	mailer := &email.NoopProvider{}
	router, err := app.SetupRouterWith(cfg, db, &app.Dependencies{
		Storage: store,
		AI:      aiService,
		Email:   mailer,
		Limiter: ratelimit.NewMemoryLimiter(),
	})
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &TestServer{
		Server:  server,
		DB:      db,
		Config:  cfg,
		Storage: store,
		Email:   mailer,
	}
}

// SendRequest отправляет JSON-запрос и возвращает ответ и тело
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err, "Ошибка кодирования JSON для запроса")
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return ts.do(t, req, token)
}

// UploadFile отправляет multipart-форму с одним файлом
func (ts *TestServer) UploadFile(t *testing.T, path, token, field, filename, contentType string, data []byte, fields map[string]string) (*http.Response, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return ts.do(t, req, token)
}

func (ts *TestServer) do(t *testing.T, req *http.Request, token string) (*http.Response, string) {
	t.Helper()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := ts.Server.Client().Do(req)
	require.NoError(t, err, "Ошибка отправки HTTP-запроса")
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(resBody)
}

// CreateAndLoginUser создает пользователя и логинит его через API
func (ts *TestServer) CreateAndLoginUser(t *testing.T, role models.UserRole) (string, *models.User) {
	t.Helper()

	email := fmt.Sprintf("%s_%s@test.ch", role, uuid.NewString()[:8])
	user := CreateUser(t, ts.DB, "Test "+string(role), email, "password123", role)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, "Логин должен быть успешным. Ответ: "+body)

	var loginResponse struct {
		Token string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &loginResponse))
	require.NotEmpty(t, loginResponse.Token)

	return loginResponse.Token, user
}

// DecodeJSON разбирает тело ответа в v
func DecodeJSON(t *testing.T, body string, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), v), "Не удалось распарсить JSON: %s", body)
}
