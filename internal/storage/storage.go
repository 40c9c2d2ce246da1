package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"loadrun_srv/internal/config"
)

const (
	// Типы хранилищ
	StorageTypeLocal = "local"
	StorageTypeS3    = "s3"

	// Таймауты по умолчанию
	DefaultOperationTimeout = 30 * time.Second
)

// Storage интерфейс хранилища файлов отчётов о загрузках.
type Storage interface {
	Save(ctx context.Context, key string, reader io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]FileInfo, error)
	JoinPath(elem ...string) string
}

// FileInfo информация о файле в хранилище.
type FileInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// NewStorageFromConfig создает хранилище на основе конфигурации и
// оборачивает его в logging middleware.
func NewStorageFromConfig(cfg config.Config, logger *logrus.Logger) (Storage, error) {
	var (
		store Storage
		err   error
	)

	switch cfg.Storage.Type {
	case StorageTypeS3:
		store, err = NewS3Storage(cfg.Storage.S3, logger)
		if err != nil {
			return nil, fmt.Errorf("ошибка создания S3 хранилища: %w", err)
		}
	case StorageTypeLocal:
		store, err = NewLocalStorage(cfg.Storage.BasePath)
		if err != nil {
			return nil, fmt.Errorf("ошибка создания локального хранилища: %w", err)
		}
	default:
		return nil, fmt.Errorf("неподдерживаемый тип хранилища: %s", cfg.Storage.Type)
	}

	return NewLoggingMiddleware(store, logger), nil
}
