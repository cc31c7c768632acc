package workflow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/EgorLis/hashdrop/internal/domain"
	"github.com/EgorLis/hashdrop/internal/logx"
)

// List: префикс фильтрует хранилище, суффикс — мы сами поверх одной страницы.
func (s *Service) List(ctx context.Context, prefix, suffix string) ([]domain.ObjectKey, error) {
	const op = "workflow.list"
	reqID := logx.RequestIDFromCtx(ctx)

	ckey := s.listCacheKey(ctx, prefix, suffix)
	if ckey != "" {
		if keys, ok := s.cachedList(ctx, ckey); ok {
			logx.Info(s.log, reqID, op, "cache hit", "prefix", prefix, "suffix", suffix, "count", len(keys))
			return keys, nil
		}
	}

	cctx, cancel := s.call(ctx)
	all, err := s.gateway.List(cctx, prefix)
	cancel()
	if err != nil {
		return nil, s.fail(ctx, op, StateFailed, fmt.Errorf("list %q: %w", prefix, err))
	}

	keys := make([]domain.ObjectKey, 0, len(all))
	for _, k := range all {
		if suffix == "" || strings.HasSuffix(k.String(), suffix) {
			keys = append(keys, k)
		}
	}
	logx.Info(s.log, reqID, op, "ok", "prefix", prefix, "suffix", suffix, "count", len(keys))

	if ckey != "" {
		if buf, err := json.Marshal(keys); err == nil {
			if err := s.cache.Set(ctx, ckey, buf, int(s.cfg.ListCacheTTL.Seconds())); err != nil {
				logx.Error(s.log, reqID, op, "cache set failed", err)
			}
		}
	}
	return keys, nil
}

// listCacheKey строит версионированный ключ; "" — кеш не используется.
func (s *Service) listCacheKey(ctx context.Context, prefix, suffix string) string {
	if s.cache == nil || s.cfg.ListCacheTTL <= 0 {
		return ""
	}
	var version int64
	b, err := s.cache.Get(ctx, domain.CacheKeyListVersion)
	if err != nil {
		logx.Error(s.log, logx.RequestIDFromCtx(ctx), "workflow.list", "cache version read failed", err)
		return ""
	}
	if len(b) > 0 {
		version, _ = strconv.ParseInt(string(b), 10, 64)
	}
	sum := sha256.Sum256([]byte("prefix=" + prefix + "&suffix=" + suffix))
	return domain.CacheKeyList(version, hex.EncodeToString(sum[:]))
}

func (s *Service) cachedList(ctx context.Context, ckey string) ([]domain.ObjectKey, bool) {
	b, err := s.cache.Get(ctx, ckey)
	if err != nil || b == nil {
		return nil, false
	}
	var keys []domain.ObjectKey
	if err := json.Unmarshal(b, &keys); err != nil {
		return nil, false
	}
	return keys, true
}

// bumpListVersion инвалидирует все закешированные списки разом.
func (s *Service) bumpListVersion(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, domain.CacheKeyListVersion); err != nil {
		logx.Error(s.log, logx.RequestIDFromCtx(ctx), "workflow.list", "cache version bump failed", err)
	}
}
