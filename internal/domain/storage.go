package domain

import (
	"context"
	"io"
	"time"
)

// SignedURL — результат подписи запроса хранилищем.
type SignedURL struct {
	URL       string
	ExpiresAt time.Time
}

// BlobInfo — базовая мета объекта, отдаваемая вместе с потоком.
type BlobInfo struct {
	Size        int64
	ContentType string
	ETag        string
}

// BlobGateway — тонкий адаптер над S3-совместимым хранилищем (MinIO/AWS).
type BlobGateway interface {
	Exists(ctx context.Context, key ObjectKey) (bool, error)
	// Put загружает поток; size = -1, если длина неизвестна.
	Put(ctx context.Context, key ObjectKey, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key ObjectKey) (io.ReadCloser, BlobInfo, error)
	// List отдаёт одну страницу ключей с указанным префиксом.
	List(ctx context.Context, prefix string) ([]ObjectKey, error)
	SignPut(ctx context.Context, key ObjectKey, ttl time.Duration) (SignedURL, error)
	// SignGet подписывает скачивание с Content-Disposition: attachment.
	SignGet(ctx context.Context, key ObjectKey, ttl time.Duration, downloadName string) (SignedURL, error)
	Ping(ctx context.Context) error
}
