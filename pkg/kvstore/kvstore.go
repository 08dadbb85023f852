// Package kvstore — хранилище "ключ → байты" для истории переименований.
//
// Один ключ хранит один JSON документ целиком. Реализации: память,
// SQLite файл и объект в S3.
package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/ilkoid/airename/pkg/config"
	"github.com/ilkoid/airename/pkg/s3storage"
)

// ErrNotFound — ключ отсутствует.
var ErrNotFound = errors.New("key not found")

// Store — контракт хранилища.
type Store interface {
	// Get возвращает значение или ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set записывает значение целиком.
	Set(ctx context.Context, key string, value []byte) error

	// Remove удаляет ключ. Отсутствующий ключ ошибкой не считается.
	Remove(ctx context.Context, key string) error

	// Close освобождает ресурсы бэкенда.
	Close() error
}

// Open создаёт хранилище по секции history конфига.
func Open(cfg *config.AppConfig) (Store, error) {
	hc := cfg.History.GetDefaults()

	switch hc.Backend {
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(hc.SQLitePath)
	case "s3":
		client, err := s3storage.New(cfg.S3)
		if err != nil {
			return nil, err
		}
		return NewS3(client, hc.S3Prefix), nil
	default:
		return nil, fmt.Errorf("unknown history backend: %s", hc.Backend)
	}
}
