package workflow

import (
	"context"
	"io"
	"sync"

	"github.com/EgorLis/hashdrop/internal/capability"
	"github.com/EgorLis/hashdrop/internal/domain"
	"github.com/EgorLis/hashdrop/internal/logx"
)

// RequestDownload выдаёт ссылку на GET. ref — ключ объекта или ранее выданная ссылка.
// Отсутствующий объект даёт NotFound до какой-либо подписи.
func (s *Service) RequestDownload(ctx context.Context, ref string) (domain.TransferCapability, error) {
	const op = "workflow.request_download"

	key, err := s.resolveKey(ref)
	if err != nil {
		return domain.TransferCapability{}, s.fail(ctx, op, StateRejected, err)
	}
	if err := s.mustExist(ctx, key); err != nil {
		return domain.TransferCapability{}, s.fail(ctx, op, StateRejected, err, "key", key)
	}

	c, err := s.issue(ctx, key, domain.DirectionDownload, capability.Options{
		DownloadName: s.displayName(ctx, key),
	})
	if err != nil {
		return domain.TransferCapability{}, s.fail(ctx, op, StateRejected, err, "key", key)
	}
	s.trace(ctx, op, StateCapabilityIssued, "key", key, "expires_at", c.ExpiresAt.UTC())
	return c, nil
}

// DownloadWithCapability качает объект по уже выданной ссылке и отдаёт поток.
// Тело закрывает вызывающий; скачивание засчитывается, когда тело дочитано до конца.
func (s *Service) DownloadWithCapability(ctx context.Context, capabilityURL string) (domain.Download, error) {
	const op = "workflow.download_with_capability"

	decoded, err := s.codec.Decode(capabilityURL)
	if err != nil {
		return domain.Download{}, s.fail(ctx, op, StateRejected, err)
	}
	key := decoded.Key
	if err := s.mustExist(ctx, key); err != nil {
		return domain.Download{}, s.fail(ctx, op, StateRejected, err, "key", key)
	}

	// Тело читается после возврата, поэтому здесь только контекст запроса:
	// общий таймаут передачи задаётся в http-клиенте.
	body, info, err := s.transfer.Get(ctx, capabilityURL)
	if err != nil {
		return domain.Download{}, s.fail(ctx, op, StateFailed, err, "key", key)
	}

	return domain.Download{
		ObjectKey:   key,
		Body:        s.countOnEOF(ctx, op, key, body, nil),
		Size:        info.Size,
		ContentType: info.ContentType,
	}, nil
}

// GetDirect — серверное скачивание через шлюз, без ссылки.
func (s *Service) GetDirect(ctx context.Context, ref string) (domain.Download, error) {
	const op = "workflow.get_direct"

	key, err := s.resolveKey(ref)
	if err != nil {
		return domain.Download{}, s.fail(ctx, op, StateRejected, err)
	}
	if err := s.mustExist(ctx, key); err != nil {
		return domain.Download{}, s.fail(ctx, op, StateRejected, err, "key", key)
	}

	// Таймаут покрывает и чтение тела: отменяется на Close.
	cctx, cancel := s.call(ctx)
	body, info, err := s.gateway.Get(cctx, key)
	if err != nil {
		cancel()
		err = domain.Errorf(domain.ErrTransferFailed, "get %s: %v", key, err)
		return domain.Download{}, s.fail(ctx, op, StateFailed, err, "key", key)
	}
	if info.Size == 0 {
		body.Close()
		cancel()
		err := domain.Errorf(domain.ErrEmptyResult, "object %s is empty", key)
		return domain.Download{}, s.fail(ctx, op, StateFailed, err, "key", key)
	}

	return domain.Download{
		ObjectKey:   key,
		Body:        s.countOnEOF(ctx, op, key, body, cancel),
		Size:        info.Size,
		ContentType: info.ContentType,
	}, nil
}

func (s *Service) mustExist(ctx context.Context, key domain.ObjectKey) error {
	exists, err := s.exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return domain.Errorf(domain.ErrNotFound, "file not exists with name: %s", key)
	}
	return nil
}

// displayName — имя для Content-Disposition; без записи в реестре берём хэш.
func (s *Service) displayName(ctx context.Context, key domain.ObjectKey) string {
	cctx, cancel := s.call(ctx)
	defer cancel()
	rec, ok, err := s.ledger.FindByObjectKey(cctx, key)
	if err != nil {
		logx.Error(s.log, logx.RequestIDFromCtx(ctx), "workflow.display_name", "ledger lookup failed", err, "key", key)
		return key.Hash()
	}
	if !ok || rec.DisplayName == "" {
		return key.Hash()
	}
	return rec.DisplayName
}

// countedBody засчитывает скачивание один раз, на первом io.EOF.
// Оборванный поток до EOF не доходит и не считается.
type countedBody struct {
	io.ReadCloser
	onEOF  func()
	cancel context.CancelFunc
	once   sync.Once
}

func (b *countedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err == io.EOF {
		b.once.Do(b.onEOF)
	}
	return n, err
}

func (b *countedBody) Close() error {
	err := b.ReadCloser.Close()
	if b.cancel != nil {
		b.cancel()
	}
	return err
}

func (s *Service) countOnEOF(ctx context.Context, op string, key domain.ObjectKey, body io.ReadCloser, cancel context.CancelFunc) io.ReadCloser {
	return &countedBody{
		ReadCloser: body,
		onEOF:      func() { s.countDownload(ctx, op, key) },
		cancel:     cancel,
	}
}

// countDownload — учёт в реестре по возможности: наличие объекта в хранилище
// главнее, отсутствие записи скачивание не ломает.
func (s *Service) countDownload(ctx context.Context, op string, key domain.ObjectKey) {
	reqID := logx.RequestIDFromCtx(ctx)
	s.metrics.downloaded()

	cctx, cancel := s.call(ctx)
	defer cancel()
	rec, ok, err := s.ledger.IncrementDownloads(cctx, key)
	switch {
	case err != nil:
		logx.Error(s.log, reqID, op, "download count update failed", err, "key", key)
	case !ok:
		s.metrics.missedLedger()
		logx.Warn(s.log, reqID, op, "no ledger record for object", "key", key)
	default:
		logx.Info(s.log, reqID, op, "download count incremented", "key", key, "count", rec.DownloadCount)
	}
}
