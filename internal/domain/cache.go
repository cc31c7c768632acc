package domain

import (
	"context"
	"strconv"
)

// Ключи кеша — единое место, чтобы не расползались по коду.
const CacheKeyListVersion = "list:version"

// filterHash = хэш префикса/суффикса; version меняется при каждом коммите.
func CacheKeyList(version int64, filterHash string) string {
	return "list:" + strconv.FormatInt(version, 10) + ":" + filterHash
}

// Простой k/v интерфейс. Реализация — Redis.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttlSeconds int) error
	// Для инкрементируемых версий списков (выборочная инвалидация)
	Incr(ctx context.Context, key string) (int64, error)
	Ping(context.Context) error
	Close()
}
