package kvstore

import (
	"context"
	"errors"

	"github.com/ilkoid/airename/pkg/s3storage"
)

// S3 — хранилище, где каждый ключ — JSON объект под префиксом.
type S3 struct {
	objects s3storage.ObjectStore
	prefix  string
}

// NewS3 создаёт хранилище поверх объектного клиента.
func NewS3(objects s3storage.ObjectStore, prefix string) *S3 {
	return &S3{objects: objects, prefix: prefix}
}

func (s *S3) objectKey(key string) string {
	return s3storage.JoinKey(s.prefix, key+".json")
}

func (s *S3) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.objects.Download(ctx, s.objectKey(key))
	if errors.Is(err, s3storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *S3) Set(ctx context.Context, key string, value []byte) error {
	return s.objects.Upload(ctx, s.objectKey(key), value, "application/json")
}

func (s *S3) Remove(ctx context.Context, key string) error {
	return s.objects.Remove(ctx, s.objectKey(key))
}

func (s *S3) Close() error { return nil }

var _ Store = (*S3)(nil)
