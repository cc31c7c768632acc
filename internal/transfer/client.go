// Package transfer выполняет прямую передачу по подписанной ссылке:
// PUT тела файла или GET объекта, с разбором статуса ответа хранилища.
package transfer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/EgorLis/hashdrop/internal/domain"
)

type Client struct {
	http *http.Client
}

func New(timeout time.Duration) *Client {
	return &Client{http: &http.Client{Timeout: timeout}}
}

// NewWithHTTP — для тестов и кастомного транспорта.
func NewWithHTTP(hc *http.Client) *Client {
	return &Client{http: hc}
}

// Put отправляет тело на подписанную ссылку.
// 200 — успех, 403 — ссылка истекла или подменена, остальное — TransferFailed.
func (c *Client) Put(ctx context.Context, url string, body io.Reader, size int64, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return domain.Errorf(domain.ErrTransferFailed, "build request: %v", err)
	}
	if size >= 0 {
		req.ContentLength = size
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Errorf(domain.ErrTransferFailed, "put: %v", err)
	}
	defer resp.Body.Close()
	// дочитываем тело, чтобы соединение вернулось в пул
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return statusErr(resp.StatusCode)
}

// Get открывает поток объекта по подписанной ссылке.
// Пустое тело при 200 — EmptyResult.
func (c *Client) Get(ctx context.Context, url string) (io.ReadCloser, domain.BlobInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.BlobInfo{}, domain.Errorf(domain.ErrTransferFailed, "build request: %v", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.BlobInfo{}, domain.Errorf(domain.ErrTransferFailed, "get: %v", err)
	}
	if err := statusErr(resp.StatusCode); err != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, domain.BlobInfo{}, err
	}

	br := bufio.NewReader(resp.Body)
	if _, err := br.Peek(1); err != nil {
		resp.Body.Close()
		if errors.Is(err, io.EOF) {
			return nil, domain.BlobInfo{}, domain.Errorf(domain.ErrEmptyResult, "downloaded object is empty")
		}
		return nil, domain.BlobInfo{}, domain.Errorf(domain.ErrTransferFailed, "read body: %v", err)
	}

	info := domain.BlobInfo{
		Size:        resp.ContentLength,
		ContentType: resp.Header.Get("Content-Type"),
		ETag:        resp.Header.Get("ETag"),
	}
	return &body{Reader: br, closer: resp.Body}, info, nil
}

func statusErr(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusForbidden:
		return domain.Errorf(domain.ErrCapabilityExpired, "presigned url expired or was tampered with")
	default:
		return domain.Errorf(domain.ErrTransferFailed, "unexpected status %s", statusText(code))
	}
}

func statusText(code int) string {
	if t := http.StatusText(code); t != "" {
		return fmt.Sprintf("%d %s", code, t)
	}
	return fmt.Sprintf("%d", code)
}

type body struct {
	*bufio.Reader
	closer io.Closer
}

func (b *body) Close() error { return b.closer.Close() }
