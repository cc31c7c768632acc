package domain

import (
	"context"
	"io"
	"strings"
	"time"
)

// ObjectKey — ключ объекта вида "<folder>/<sha256hex>".
type ObjectKey string

func NewObjectKey(folder, hash string) ObjectKey {
	return ObjectKey(folder + "/" + hash)
}

func (k ObjectKey) String() string { return string(k) }

// Folder возвращает сегмент до первого "/".
func (k ObjectKey) Folder() string {
	folder, _, _ := strings.Cut(string(k), "/")
	return folder
}

// Hash возвращает всё после первого "/".
func (k ObjectKey) Hash() string {
	_, hash, _ := strings.Cut(string(k), "/")
	return hash
}

// Direction — назначение выданной ссылки.
type Direction string

const (
	DirectionUpload   Direction = "Upload"
	DirectionDownload Direction = "Download"
)

// TransferCapability — подписанная ссылка на прямую передачу в/из хранилища.
// Сервер её не хранит: срок и область действия проверяет само хранилище.
type TransferCapability struct {
	Direction Direction `json:"type"`
	ObjectKey ObjectKey `json:"objectKey"`
	URL       string    `json:"url"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// FileRecord — строка реестра метаданных (имя файла <-> ключ объекта).
type FileRecord struct {
	ID            int64     `json:"id"`
	DisplayName   string    `json:"displayName"`
	ObjectKey     ObjectKey `json:"objectKey"`
	DownloadCount int64     `json:"downloadCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// UploadCandidate — файл, присланный клиентом; живёт только в рамках запроса.
// Open может вызываться несколько раз (хэш, затем передача).
type UploadCandidate struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Download — поток скачанного объекта.
type Download struct {
	ObjectKey   ObjectKey
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// FilesLedger — внешний реестр метаданных файлов.
type FilesLedger interface {
	// Save создаёт запись; повторное сохранение того же ключа не плодит дубликатов.
	Save(ctx context.Context, rec FileRecord) (FileRecord, error)
	FindByObjectKey(ctx context.Context, key ObjectKey) (FileRecord, bool, error)
	// IncrementDownloads атомарно увеличивает счётчик; false — записи нет.
	IncrementDownloads(ctx context.Context, key ObjectKey) (FileRecord, bool, error)
	Ping(ctx context.Context) error
	Close()
}
