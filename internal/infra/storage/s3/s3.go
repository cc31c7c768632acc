// Package s3 — шлюз к S3-совместимому хранилищу на minio-go.
package s3

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/juju/clock"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/EgorLis/hashdrop/internal/domain"
)

// MaxListKeys — одна страница листинга, продолжения не запрашиваем.
const MaxListKeys = 1000

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
}

type Storage struct {
	cl     *minio.Client
	bucket string
	logger *log.Logger
	clock  clock.Clock
}

func New(cfg Config, logger *log.Logger) (*Storage, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &Storage{cl: cl, bucket: cfg.Bucket, logger: logger, clock: clock.WallClock}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	ok, err := s.cl.BucketExists(ctx, s.bucket)
	if err != nil {
		s.logger.Printf("bucket %q check failed: %v", s.bucket, err)
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	return nil
}

// Exists — HEAD объекта; "нет такого ключа" ошибкой не считается.
func (s *Storage) Exists(ctx context.Context, key domain.ObjectKey) (bool, error) {
	_, err := s.cl.StatObject(ctx, s.bucket, key.String(), minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	s.logger.Printf("HEAD %q failed: %v", key, err)
	return false, err
}

func (s *Storage) Put(ctx context.Context, key domain.ObjectKey, r io.Reader, size int64, contentType string) error {
	start := s.clock.Now()
	info, err := s.cl.PutObject(ctx, s.bucket, key.String(), r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Printf("PUT %q failed: %v", key, err)
		return err
	}
	s.logger.Printf("PUT %q ok in %s size=%d etag=%s", key, s.clock.Now().Sub(start), info.Size, info.ETag)
	return nil
}

func (s *Storage) Get(ctx context.Context, key domain.ObjectKey) (io.ReadCloser, domain.BlobInfo, error) {
	obj, err := s.cl.GetObject(ctx, s.bucket, key.String(), minio.GetObjectOptions{})
	if err != nil {
		return nil, domain.BlobInfo{}, err
	}
	// GetObject ленивый: реальный запрос уходит на Stat.
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, domain.BlobInfo{}, err
	}
	return obj, domain.BlobInfo{Size: st.Size, ContentType: st.ContentType, ETag: st.ETag}, nil
}

func (s *Storage) List(ctx context.Context, prefix string) ([]domain.ObjectKey, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keys := make([]domain.ObjectKey, 0)
	for obj := range s.cl.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
		MaxKeys:   MaxListKeys,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		keys = append(keys, domain.ObjectKey(obj.Key))
		if len(keys) == MaxListKeys {
			break
		}
	}
	return keys, nil
}

func (s *Storage) SignPut(ctx context.Context, key domain.ObjectKey, ttl time.Duration) (domain.SignedURL, error) {
	now := s.clock.Now()
	u, err := s.cl.PresignedPutObject(ctx, s.bucket, key.String(), ttl)
	if err != nil {
		return domain.SignedURL{}, err
	}
	return domain.SignedURL{URL: u.String(), ExpiresAt: now.Add(ttl)}, nil
}

func (s *Storage) SignGet(ctx context.Context, key domain.ObjectKey, ttl time.Duration, downloadName string) (domain.SignedURL, error) {
	now := s.clock.Now()
	params := url.Values{}
	if downloadName != "" {
		params.Set("response-content-disposition", ContentDisposition(downloadName))
	}
	u, err := s.cl.PresignedGetObject(ctx, s.bucket, key.String(), ttl, params)
	if err != nil {
		return domain.SignedURL{}, err
	}
	return domain.SignedURL{URL: u.String(), ExpiresAt: now.Add(ttl)}, nil
}

// ContentDisposition — заголовок "скачать как name".
func ContentDisposition(name string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": name})
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
