// Package workflow — оркестрация загрузки/скачивания через подписанные ссылки:
// валидация, дедупликация по хэшу, выдача ссылок, проверка целостности и учёт.
//
// Состояния загрузки:
//
//	Validating -> Deduplicating -> CapabilityIssued -> (клиент шлёт байты сам)
//	-> Verifying -> Committed
//
// Rejected достижим из Validating и Deduplicating, Failed — из Verifying.
package workflow

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/EgorLis/hashdrop/internal/capability"
	"github.com/EgorLis/hashdrop/internal/domain"
	"github.com/EgorLis/hashdrop/internal/hashing"
	"github.com/EgorLis/hashdrop/internal/logx"
)

// State — шаг конечного автомата, пишется в логи.
type State string

const (
	StateValidating       State = "Validating"
	StateDeduplicating    State = "Deduplicating"
	StateCapabilityIssued State = "CapabilityIssued"
	StateVerifying        State = "Verifying"
	StateCommitted        State = "Committed"
	StateRejected         State = "Rejected"
	StateFailed           State = "Failed"
)

const (
	DefaultFolder        = "myBucket"
	DefaultMaxUploadSize = 1 << 20 // 1 MiB
	DefaultCallTimeout   = 10 * time.Second
)

// Transport — прямая передача по подписанной ссылке (см. internal/transfer).
type Transport interface {
	Put(ctx context.Context, url string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, url string) (io.ReadCloser, domain.BlobInfo, error)
}

type Config struct {
	Folder        string
	MaxUploadSize int64
	HashAlgorithm string
	// CallTimeout ограничивает каждый отдельный вызов шлюза и реестра.
	CallTimeout  time.Duration
	ListCacheTTL time.Duration
}

type Deps struct {
	Log      *log.Logger
	Gateway  domain.BlobGateway
	Ledger   domain.FilesLedger
	Issuer   *capability.Issuer
	Codec    capability.Codec
	Transfer Transport
	Cache    domain.Cache // опционально
	Metrics  *Metrics     // опционально
}

// Service не хранит состояния между запросами и не держит локов:
// сервис рассчитан на несколько реплик.
type Service struct {
	cfg      Config
	log      *log.Logger
	gateway  domain.BlobGateway
	ledger   domain.FilesLedger
	issuer   *capability.Issuer
	codec    capability.Codec
	transfer Transport
	cache    domain.Cache
	metrics  *Metrics
}

func New(cfg Config, deps Deps) *Service {
	if cfg.Folder == "" {
		cfg.Folder = DefaultFolder
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}
	if cfg.HashAlgorithm == "" {
		cfg.HashAlgorithm = hashing.SHA256
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	return &Service{
		cfg:      cfg,
		log:      deps.Log,
		gateway:  deps.Gateway,
		ledger:   deps.Ledger,
		issuer:   deps.Issuer,
		codec:    deps.Codec,
		transfer: deps.Transfer,
		cache:    deps.Cache,
		metrics:  deps.Metrics,
	}
}

// Folder — пространство имён, в котором лежат все ключи.
func (s *Service) Folder() string { return s.cfg.Folder }

// validate — дешёвые проверки до любого обращения к хранилищу.
func (s *Service) validate(c domain.UploadCandidate) error {
	if c.Open == nil || c.Size <= 0 {
		return domain.Errorf(domain.ErrEmptyFile, "file is null or empty")
	}
	if c.Size > s.cfg.MaxUploadSize {
		return domain.Errorf(domain.ErrFileTooLarge, "file size %s exceeds %s limit",
			humanize.IBytes(uint64(c.Size)), humanize.IBytes(uint64(s.cfg.MaxUploadSize)))
	}
	if !domain.ValidFileName(c.Name) {
		return domain.Errorf(domain.ErrInvalidFileName, "filename %q must contain at least one letter before the extension", c.Name)
	}
	return nil
}

// hash читает кандидата потоком и возвращает hex sha256.
func (s *Service) hash(c domain.UploadCandidate) (string, error) {
	rc, err := c.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded file: %w", err)
	}
	defer rc.Close()
	return hashing.Sum(s.cfg.HashAlgorithm, rc)
}

func (s *Service) call(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.CallTimeout)
}

func (s *Service) exists(ctx context.Context, key domain.ObjectKey) (bool, error) {
	cctx, cancel := s.call(ctx)
	defer cancel()
	ok, err := s.gateway.Exists(cctx, key)
	if err != nil {
		return false, fmt.Errorf("check existence of %s: %w", key, err)
	}
	return ok, nil
}

func (s *Service) issue(ctx context.Context, key domain.ObjectKey, dir domain.Direction, opts capability.Options) (domain.TransferCapability, error) {
	cctx, cancel := s.call(ctx)
	defer cancel()
	c, err := s.issuer.Issue(cctx, key, dir, opts)
	if err != nil {
		return domain.TransferCapability{}, err
	}
	s.metrics.capabilityIssued(dir)
	return c, nil
}

// resolveKey принимает либо ключ объекта, либо подписанную ссылку на него.
func (s *Service) resolveKey(ref string) (domain.ObjectKey, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", domain.Errorf(domain.ErrBadParams, "object name is required")
	}
	if strings.Contains(ref, "://") {
		d, err := s.codec.Decode(ref)
		if err != nil {
			return "", err
		}
		return d.Key, nil
	}
	return domain.ObjectKey(strings.TrimPrefix(ref, "/")), nil
}

// fail логирует переход в Rejected/Failed и считает ошибку.
func (s *Service) fail(ctx context.Context, op string, state State, err error, kv ...any) error {
	kv = append(kv, "state", state, "kind", domain.KindOf(err))
	logx.Error(s.log, logx.RequestIDFromCtx(ctx), op, "failed", err, kv...)
	s.metrics.failed(op, err)
	return err
}

func (s *Service) trace(ctx context.Context, op string, state State, kv ...any) {
	logx.Info(s.log, logx.RequestIDFromCtx(ctx), op, "state", append([]any{"state", state}, kv...)...)
}
