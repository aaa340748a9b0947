package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidKey = errors.New("invalid storage key")

// Storage - хранилище файлов досье (локальный диск, S3 или Cloudflare R2)
type Storage interface {
	// Save сохраняет объект под ключом key
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error

	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete не считает ошибкой отсутствие объекта
	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	// GetURL возвращает URL, который сохраняется в документе
	GetURL(ctx context.Context, key string) (string, error)
}

// Config holds storage configuration
type Config struct {
	Type       string // local, s3, cloudflare_r2
	BasePath   string // For local storage
	BaseURL    string // Public URL base
	Bucket     string // For S3/R2
	Region     string // For S3
	AccessKey  string // For S3/R2
	SecretKey  string // For S3/R2
	Endpoint   string // For R2 or custom S3
	PublicRead bool   // Make files public by default
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local", "":
		return NewLocalStorage(cfg)
	case "s3", "cloudflare_r2":
		return NewObjectStorage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// DocumentKey строит ключ вида documents/<user>/<yyyy>/<mm>/<uuid><ext>.
// Имя файла клиента в ключ не попадает, только расширение.
func DocumentKey(userID, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return path.Join("documents", userID, now.UTC().Format("2006"), now.UTC().Format("01"), uuid.NewString()+ext)
}

// cleanKey отсекает абсолютные пути и выход за пределы корня
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
