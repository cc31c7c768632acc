// Package awss3 — шлюз к хранилищу на aws-sdk-go-v2. Альтернатива minio-драйверу
// для развёртываний в AWS (IAM-цепочка учётных данных, виртуальные хосты).
package awss3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/juju/clock"

	"github.com/EgorLis/hashdrop/internal/domain"
)

const maxListKeys = 1000

type Config struct {
	// Endpoint пустой — стандартный эндпоинт AWS для региона.
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PathStyle bool
}

type Storage struct {
	cl      *s3.Client
	presign *s3.PresignClient
	bucket  string
	logger  *log.Logger
	clock   clock.Clock
}

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Storage, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	// Без статических ключей работает стандартная цепочка (env, профиль, IAM-роль).
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	cl := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Storage{
		cl:      cl,
		presign: s3.NewPresignClient(cl),
		bucket:  cfg.Bucket,
		logger:  logger,
		clock:   clock.WallClock,
	}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	_, err := s.cl.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		s.logger.Printf("bucket %q check failed: %v", s.bucket, err)
	}
	return err
}

func (s *Storage) Exists(ctx context.Context, key domain.ObjectKey) (bool, error) {
	_, err := s.cl.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key.String()),
	})
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
	out, err := s.cl.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key.String()),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		s.logger.Printf("PUT %q failed: %v", key, err)
		return err
	}
	s.logger.Printf("PUT %q ok in %s size=%d etag=%s", key, s.clock.Now().Sub(start), size, aws.ToString(out.ETag))
	return nil
}

func (s *Storage) Get(ctx context.Context, key domain.ObjectKey) (io.ReadCloser, domain.BlobInfo, error) {
	out, err := s.cl.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key.String()),
	})
	if err != nil {
		return nil, domain.BlobInfo{}, err
	}
	return out.Body, domain.BlobInfo{
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: aws.ToString(out.ContentType),
		ETag:        aws.ToString(out.ETag),
	}, nil
}

func (s *Storage) List(ctx context.Context, prefix string) ([]domain.ObjectKey, error) {
	out, err := s.cl.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(maxListKeys),
	})
	if err != nil {
		return nil, err
	}
	keys := make([]domain.ObjectKey, 0, len(out.Contents))
	for _, obj := range out.Contents {
		keys = append(keys, domain.ObjectKey(aws.ToString(obj.Key)))
	}
	return keys, nil
}

func (s *Storage) SignPut(ctx context.Context, key domain.ObjectKey, ttl time.Duration) (domain.SignedURL, error) {
	now := s.clock.Now()
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key.String()),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return domain.SignedURL{}, err
	}
	return domain.SignedURL{URL: req.URL, ExpiresAt: now.Add(ttl)}, nil
}

func (s *Storage) SignGet(ctx context.Context, key domain.ObjectKey, ttl time.Duration, downloadName string) (domain.SignedURL, error) {
	now := s.clock.Now()
	in := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key.String()),
	}
	if downloadName != "" {
		in.ResponseContentDisposition = aws.String(
			mime.FormatMediaType("attachment", map[string]string{"filename": downloadName}))
	}
	req, err := s.presign.PresignGetObject(ctx, in, s3.WithPresignExpires(ttl))
	if err != nil {
		return domain.SignedURL{}, err
	}
	return domain.SignedURL{URL: req.URL, ExpiresAt: now.Add(ttl)}, nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
