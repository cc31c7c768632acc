package capability

import (
	"net/url"
	"strings"

	"github.com/EgorLis/hashdrop/internal/domain"
)

// Decoded — что удалось восстановить из пути подписанной ссылки.
type Decoded struct {
	Folder string
	Hash   string
	Key    domain.ObjectKey
}

// Codec разбирает ключ объекта из подписанной ссылки. Ключ лежит прямо в пути
// URL, поэтому серверу не нужна таблица соответствий "ссылка -> объект".
// Подпись не проверяется: это забота хранилища.
type Codec struct {
	// Bucket — бакет хранилища. minio-go подписывает path-style ссылки
	// (/<bucket>/<folder>/<hash>) для любого не-AWS эндпоинта, даже без PathStyle.
	Bucket string
	// PathStyle — бакет в пути есть всегда.
	PathStyle bool
	// Origin — scheme://host хранилища. Ссылки на другие хосты не принимаются:
	// сервер сам ходит по ним в Commit и DownloadWithCapability.
	Origin string
}

// OriginOf возвращает scheme://host ссылки в нижнем регистре.
func OriginOf(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", domain.Errorf(domain.ErrMalformedCapability, "url %q has no scheme or host", raw)
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), nil
}

// EncodePath — путь, под которым ключ оказывается в подписанной ссылке.
func (c Codec) EncodePath(key domain.ObjectKey) string {
	if c.PathStyle && c.Bucket != "" {
		return "/" + c.Bucket + "/" + key.String()
	}
	return "/" + key.String()
}

// Decode извлекает folder/hash из ссылки.
func (c Codec) Decode(raw string) (Decoded, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Decoded{}, domain.Errorf(domain.ErrMalformedCapability, "cannot parse url: %v", err)
	}
	if c.Origin != "" {
		origin := strings.ToLower(u.Scheme + "://" + u.Host)
		if origin != strings.ToLower(c.Origin) {
			return Decoded{}, domain.Errorf(domain.ErrMalformedCapability, "url host %q is not the storage endpoint", u.Host)
		}
	}

	path := strings.TrimPrefix(u.Path, "/")
	if c.Bucket != "" {
		// Без PathStyle бакет снимается, только если за ним ещё folder/hash.
		if rest, ok := strings.CutPrefix(path, c.Bucket+"/"); ok && (c.PathStyle || strings.Contains(rest, "/")) {
			path = rest
		}
	}

	folder, hash, ok := strings.Cut(path, "/")
	if !ok || folder == "" || hash == "" {
		return Decoded{}, domain.Errorf(domain.ErrMalformedCapability, "invalid path format: %q", path)
	}
	return Decoded{
		Folder: folder,
		Hash:   hash,
		Key:    domain.NewObjectKey(folder, hash),
	}, nil
}
