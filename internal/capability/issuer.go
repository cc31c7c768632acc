// Package capability выдаёт и разбирает подписанные ссылки на прямую передачу.
package capability

import (
	"context"
	"time"

	"github.com/juju/clock"

	"github.com/EgorLis/hashdrop/internal/domain"
)

// TTL — фиксированное окно действия любой выданной ссылки.
const TTL = 5 * time.Minute

// Signer — часть шлюза хранилища, умеющая подписывать запросы.
type Signer interface {
	SignPut(ctx context.Context, key domain.ObjectKey, ttl time.Duration) (domain.SignedURL, error)
	SignGet(ctx context.Context, key domain.ObjectKey, ttl time.Duration, downloadName string) (domain.SignedURL, error)
}

// Options — параметры выдачи; DownloadName нужен только для скачивания.
type Options struct {
	DownloadName string
}

type Issuer struct {
	signer Signer
	clock  clock.Clock
}

func NewIssuer(signer Signer, clk clock.Clock) *Issuer {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Issuer{signer: signer, clock: clk}
}

// Issue подписывает ссылку на ключ и проверяет, что она ещё жива.
func (i *Issuer) Issue(ctx context.Context, key domain.ObjectKey, dir domain.Direction, opts Options) (domain.TransferCapability, error) {
	issuedAt := i.clock.Now()

	var (
		signed domain.SignedURL
		err    error
	)
	switch dir {
	case domain.DirectionUpload:
		signed, err = i.signer.SignPut(ctx, key, TTL)
	case domain.DirectionDownload:
		name := opts.DownloadName
		if name == "" {
			name = key.Hash()
		}
		signed, err = i.signer.SignGet(ctx, key, TTL, name)
	default:
		return domain.TransferCapability{}, domain.Errorf(domain.ErrCapabilityIssuanceFailed, "unknown direction %q", dir)
	}
	if err != nil {
		return domain.TransferCapability{}, domain.Errorf(domain.ErrCapabilityIssuanceFailed, "sign %s %s: %v", dir, key, err)
	}
	if signed.URL == "" {
		return domain.TransferCapability{}, domain.Errorf(domain.ErrCapabilityIssuanceFailed, "signer returned empty url for %s", key)
	}
	// Подписант с уехавшими часами может вернуть уже мёртвую ссылку.
	if !signed.ExpiresAt.After(issuedAt) {
		return domain.TransferCapability{}, domain.Errorf(domain.ErrCapabilityExpired,
			"capability for %s expired at issuance (expires %s, issued %s)",
			key, signed.ExpiresAt.UTC().Format(time.RFC3339), issuedAt.UTC().Format(time.RFC3339))
	}

	return domain.TransferCapability{
		Direction: dir,
		ObjectKey: key,
		URL:       signed.URL,
		IssuedAt:  issuedAt,
		ExpiresAt: signed.ExpiresAt,
	}, nil
}
