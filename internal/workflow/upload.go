package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/EgorLis/hashdrop/internal/capability"
	"github.com/EgorLis/hashdrop/internal/domain"
	"github.com/EgorLis/hashdrop/internal/logx"
)

// RequestUpload проверяет файл, вычисляет его ключ и выдаёт ссылку на PUT.
// Сами байты сервер не передаёт: клиент шлёт их напрямую в хранилище.
func (s *Service) RequestUpload(ctx context.Context, cand domain.UploadCandidate) (domain.TransferCapability, error) {
	const op = "workflow.request_upload"

	s.trace(ctx, op, StateValidating, "name", cand.Name, "size", cand.Size)
	if err := s.validate(cand); err != nil {
		return domain.TransferCapability{}, s.fail(ctx, op, StateRejected, err, "name", cand.Name)
	}
	hash, err := s.hash(cand)
	if err != nil {
		return domain.TransferCapability{}, s.fail(ctx, op, StateRejected, err, "name", cand.Name)
	}
	key := domain.NewObjectKey(s.cfg.Folder, hash)

	// Одинаковый контент = одинаковый ключ, так что "уже загружен" и
	// "такой контент уже есть" — одно и то же.
	s.trace(ctx, op, StateDeduplicating, "key", key)
	exists, err := s.exists(ctx, key)
	if err != nil {
		return domain.TransferCapability{}, s.fail(ctx, op, StateRejected, err, "key", key)
	}
	if exists {
		err := domain.Errorf(domain.ErrAlreadyExists, "file already exists with name: %s", key)
		return domain.TransferCapability{}, s.fail(ctx, op, StateRejected, err, "key", key)
	}

	c, err := s.issue(ctx, key, domain.DirectionUpload, capability.Options{})
	if err != nil {
		return domain.TransferCapability{}, s.fail(ctx, op, StateRejected, err, "key", key)
	}
	s.trace(ctx, op, StateCapabilityIssued, "key", key, "expires_at", c.ExpiresAt.UTC())
	return c, nil
}

// CommitUpload сверяет присланный повторно файл с ключом из ссылки,
// выполняет PUT по ссылке и записывает метаданные.
//
// Хэш считается по байтам этого запроса, а не по тому, что реально получило
// хранилище: без проверки контрольной суммы на стороне хранилища подмену
// тела между выдачей ссылки и PUT отсюда не увидеть.
func (s *Service) CommitUpload(ctx context.Context, cand domain.UploadCandidate, capabilityURL string) (domain.ObjectKey, error) {
	const op = "workflow.commit_upload"

	s.trace(ctx, op, StateVerifying, "name", cand.Name, "size", cand.Size)
	if err := s.validate(cand); err != nil {
		return "", s.fail(ctx, op, StateFailed, err, "name", cand.Name)
	}
	hash, err := s.hash(cand)
	if err != nil {
		return "", s.fail(ctx, op, StateFailed, err, "name", cand.Name)
	}
	decoded, err := s.codec.Decode(capabilityURL)
	if err != nil {
		return "", s.fail(ctx, op, StateFailed, err)
	}
	if !strings.EqualFold(hash, decoded.Hash) {
		err := domain.Errorf(domain.ErrHashMismatch,
			"please upload the original file used to generate the URL (got %s, url is for %s)", hash, decoded.Hash)
		return "", s.fail(ctx, op, StateFailed, err, "key", decoded.Key)
	}
	key := decoded.Key

	// Параллельный коммит того же контента мог успеть раньше.
	exists, err := s.exists(ctx, key)
	if err != nil {
		return "", s.fail(ctx, op, StateFailed, err, "key", key)
	}
	if exists {
		err := domain.Errorf(domain.ErrAlreadyExists, "file already exists with name: %s", key)
		return "", s.fail(ctx, op, StateFailed, err, "key", key)
	}

	if err := s.putViaCapability(ctx, cand, capabilityURL); err != nil {
		return "", s.fail(ctx, op, StateFailed, err, "key", key)
	}

	rec, err := s.record(ctx, cand.Name, key)
	if err != nil {
		return "", s.fail(ctx, op, StateFailed, err, "key", key)
	}
	s.metrics.committed()
	s.bumpListVersion(ctx)
	s.trace(ctx, op, StateCommitted, "key", key, "record_id", rec.ID)
	return key, nil
}

// PutDirect — серверная загрузка без ссылки: те же проверки и дедупликация,
// байты уходят в хранилище через шлюз.
func (s *Service) PutDirect(ctx context.Context, cand domain.UploadCandidate) (domain.ObjectKey, error) {
	const op = "workflow.put_direct"

	if err := s.validate(cand); err != nil {
		return "", s.fail(ctx, op, StateRejected, err, "name", cand.Name)
	}
	hash, err := s.hash(cand)
	if err != nil {
		return "", s.fail(ctx, op, StateRejected, err, "name", cand.Name)
	}
	key := domain.NewObjectKey(s.cfg.Folder, hash)

	exists, err := s.exists(ctx, key)
	if err != nil {
		return "", s.fail(ctx, op, StateRejected, err, "key", key)
	}
	if exists {
		err := domain.Errorf(domain.ErrAlreadyExists, "file already exists with name: %s", key)
		return "", s.fail(ctx, op, StateRejected, err, "key", key)
	}

	rc, err := cand.Open()
	if err != nil {
		return "", s.fail(ctx, op, StateFailed, fmt.Errorf("open uploaded file: %w", err), "key", key)
	}
	defer rc.Close()

	cctx, cancel := s.call(ctx)
	err = s.gateway.Put(cctx, key, rc, cand.Size, cand.ContentType)
	cancel()
	if err != nil {
		err = domain.Errorf(domain.ErrTransferFailed, "put %s: %v", key, err)
		return "", s.fail(ctx, op, StateFailed, err, "key", key)
	}

	if _, err := s.record(ctx, cand.Name, key); err != nil {
		return "", s.fail(ctx, op, StateFailed, err, "key", key)
	}
	s.metrics.committed()
	s.bumpListVersion(ctx)
	logx.Info(s.log, logx.RequestIDFromCtx(ctx), op, "ok", "key", key)
	return key, nil
}

func (s *Service) putViaCapability(ctx context.Context, cand domain.UploadCandidate, url string) error {
	rc, err := cand.Open()
	if err != nil {
		return fmt.Errorf("open uploaded file: %w", err)
	}
	defer rc.Close()

	cctx, cancel := s.call(ctx)
	defer cancel()
	return s.transfer.Put(cctx, url, rc, cand.Size, cand.ContentType)
}

// record пишет строку реестра; повтор того же ключа не создаёт дубль.
func (s *Service) record(ctx context.Context, name string, key domain.ObjectKey) (domain.FileRecord, error) {
	cctx, cancel := s.call(ctx)
	defer cancel()
	rec, err := s.ledger.Save(cctx, domain.FileRecord{
		DisplayName:   name,
		ObjectKey:     key,
		DownloadCount: 0,
	})
	if err != nil {
		return domain.FileRecord{}, fmt.Errorf("save file record for %s: %w", key, err)
	}
	return rec, nil
}
