// Package hashing считает идентичность контента: SHA-256 в нижнем hex.
package hashing

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	"github.com/ipfs/go-cid"
	sha256 "github.com/minio/sha256-simd"
	"github.com/multiformats/go-multihash"

	"github.com/EgorLis/hashdrop/internal/domain"
)

const (
	SHA256 = "sha256"

	bufSize = 32 << 10
)

// Digest — потоковый хэш: Write принимает куски, Finish закрывает сумму один раз.
type Digest struct {
	h   hash.Hash
	sum string
}

// New возвращает Digest для алгоритма; поддерживается только sha256.
func New(algorithm string) (*Digest, error) {
	switch strings.ToLower(algorithm) {
	case SHA256, "sha-256", "":
		return &Digest{h: sha256.New()}, nil
	default:
		return nil, domain.Errorf(domain.ErrHashingUnavailable, "algorithm %q is not available", algorithm)
	}
}

// Write реализует io.Writer. После Finish запись запрещена.
func (d *Digest) Write(p []byte) (int, error) {
	if d.sum != "" {
		return 0, fmt.Errorf("hashing: write after finish")
	}
	return d.h.Write(p)
}

// Finish возвращает hex-сумму; повторные вызовы отдают то же значение.
func (d *Digest) Finish() string {
	if d.sum == "" {
		d.sum = hex.EncodeToString(d.h.Sum(nil))
	}
	return d.sum
}

// Sum читает поток до конца фиксированным буфером (память не растёт с размером файла).
func Sum(algorithm string, r io.Reader) (string, error) {
	d, err := New(algorithm)
	if err != nil {
		return "", err
	}
	buf := make([]byte, bufSize)
	if _, err := io.CopyBuffer(d, r, buf); err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return d.Finish(), nil
}

// CID представляет тот же sha256 как CIDv1 (raw).
func CID(hexDigest string) (string, error) {
	raw, err := hex.DecodeString(hexDigest)
	if err != nil {
		return "", fmt.Errorf("decode digest: %w", err)
	}
	mh, err := multihash.Encode(raw, multihash.SHA2_256)
	if err != nil {
		return "", fmt.Errorf("encode multihash: %w", err)
	}
	return cid.NewCidV1(cid.Raw, mh).String(), nil
}
