// Package files — HTTP-обвязка воркфлоу: выдача и использование подписанных
// ссылок (v2) и прямая серверная передача (v1).
package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/EgorLis/hashdrop/internal/capability"
	"github.com/EgorLis/hashdrop/internal/domain"
	"github.com/EgorLis/hashdrop/internal/hashing"
)

const fileField = "file"

// Workflow — то, что нужно хендлерам от internal/workflow.
type Workflow interface {
	RequestUpload(ctx context.Context, cand domain.UploadCandidate) (domain.TransferCapability, error)
	CommitUpload(ctx context.Context, cand domain.UploadCandidate, capabilityURL string) (domain.ObjectKey, error)
	RequestDownload(ctx context.Context, ref string) (domain.TransferCapability, error)
	DownloadWithCapability(ctx context.Context, capabilityURL string) (domain.Download, error)
	List(ctx context.Context, prefix, suffix string) ([]domain.ObjectKey, error)
	PutDirect(ctx context.Context, cand domain.UploadCandidate) (domain.ObjectKey, error)
	GetDirect(ctx context.Context, ref string) (domain.Download, error)
}

type Handler struct {
	Log      *log.Logger
	Workflow Workflow
	// MaxUploadSize — тот же лимит, что у воркфлоу; здесь только для разбора формы.
	MaxUploadSize int64
}

// CapabilityDTO — ответ на выдачу ссылки.
type CapabilityDTO struct {
	Type       domain.Direction `json:"type" example:"Upload"`
	URL        string           `json:"url"`
	Expiration string           `json:"expiration" example:"5Min"`
	Valid      bool             `json:"valid" example:"true"`
	ObjectKey  string           `json:"objectKey" example:"myBucket/b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"`
	CID        string           `json:"cid,omitempty"`
	ExpiresAt  time.Time        `json:"expiresAt"`
}

// CommitDTO — результат успешной загрузки.
type CommitDTO struct {
	ObjectKey string `json:"objectKey"`
	CID       string `json:"cid,omitempty"`
}

type ListDTO struct {
	Keys  []domain.ObjectKey `json:"keys"`
	Count int                `json:"count"`
}

func newCapabilityDTO(c domain.TransferCapability, now time.Time) CapabilityDTO {
	cid, _ := hashing.CID(c.ObjectKey.Hash())
	return CapabilityDTO{
		Type:       c.Direction,
		URL:        c.URL,
		Expiration: fmt.Sprintf("%dMin", int(capability.TTL/time.Minute)),
		Valid:      c.ExpiresAt.After(now),
		ObjectKey:  c.ObjectKey.String(),
		CID:        cid,
		ExpiresAt:  c.ExpiresAt.UTC(),
	}
}

func newCommitDTO(key domain.ObjectKey) CommitDTO {
	cid, _ := hashing.CID(key.Hash())
	return CommitDTO{ObjectKey: key.String(), CID: cid}
}

// formLimit — тело формы: файл плюс запас на заголовки частей и поля.
func (h *Handler) formLimit() int64 {
	return h.MaxUploadSize + 1<<20
}

// candidateFromForm достаёт ровно один непустой файл из multipart-формы.
// Пустые части тоже считаются: два поля file — это уже MultipleFileSelection.
func (h *Handler) candidateFromForm(w http.ResponseWriter, r *http.Request) (domain.UploadCandidate, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.formLimit())
	if err := r.ParseMultipartForm(h.formLimit()); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return domain.UploadCandidate{}, domain.Errorf(domain.ErrFileTooLarge, "request body exceeds %d bytes", tooBig.Limit)
		}
		return domain.UploadCandidate{}, domain.Errorf(domain.ErrBadParams, "invalid multipart form: %v", err)
	}

	parts := r.MultipartForm.File[fileField]
	if len(parts) > 1 {
		return domain.UploadCandidate{}, domain.Errorf(domain.ErrMultipleFileSelection,
			"please select one file at a time, got %d", len(parts))
	}
	if len(parts) == 0 || parts[0].Size == 0 {
		return domain.UploadCandidate{}, domain.Errorf(domain.ErrEmptyFile, "file is null or empty")
	}
	return candidateFromHeader(parts[0]), nil
}

func candidateFromHeader(fh *multipart.FileHeader) domain.UploadCandidate {
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return domain.UploadCandidate{
		Name:        fh.Filename,
		ContentType: ct,
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func attachment(name string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": name})
}
