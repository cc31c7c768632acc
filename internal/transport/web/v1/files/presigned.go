package files

import (
	"net/http"
	"strings"
	"time"

	"github.com/EgorLis/hashdrop/internal/domain"
	"github.com/EgorLis/hashdrop/internal/logx"
	"github.com/EgorLis/hashdrop/internal/transport/web/mw"
	v1 "github.com/EgorLis/hashdrop/internal/transport/web/v1"
)

// RequestUpload godoc
// @Summary      Выдать ссылку на загрузку
// @Description  Проверяет файл, считает sha256 и возвращает подписанную ссылку на PUT (5 минут).
// @Tags         s3_bucket
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Ровно один файл, не больше лимита"
// @Success      200  {object}  domain.APIEnvelope{response=files.CapabilityDTO}
// @Failure      400  {object}  domain.APIEnvelope  "MultipleFileSelection | BadParams"
// @Failure      406  {object}  domain.APIEnvelope  "EmptyFile | InvalidFileName"
// @Failure      409  {object}  domain.APIEnvelope  "AlreadyExists"
// @Failure      413  {object}  domain.APIEnvelope  "FileTooLarge"
// @Router       /api/v2/s3_bucket/presigned-url [post]
func (h *Handler) RequestUpload(w http.ResponseWriter, r *http.Request) {
	const op = "files.request_upload"
	reqID := mw.RequestIDFromCtx(r.Context())

	cand, err := h.candidateFromForm(w, r)
	if err != nil {
		logx.Warn(h.Log, reqID, op, "bad form", "err", err)
		v1.WriteDomainError(w, r, err)
		return
	}
	c, err := h.Workflow.RequestUpload(r.Context(), cand)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}
	logx.Info(h.Log, reqID, op, "issued", "key", c.ObjectKey, "name", cand.Name)
	v1.WriteOKResponse(w, r, newCapabilityDTO(c, time.Now()))
}

// CommitUpload godoc
// @Summary      Загрузить файл по выданной ссылке
// @Description  Сверяет хэш файла с ключом из ссылки, кладёт байты по ссылке и записывает метаданные.
// @Tags         s3_bucket
// @Accept       multipart/form-data
// @Produce      json
// @Param        file          formData  file    true  "Тот же файл, что при выдаче ссылки"
// @Param        presignedUrl  formData  string  true  "Ссылка из /presigned-url"
// @Success      200  {object}  domain.APIEnvelope{response=files.CommitDTO}
// @Failure      400  {object}  domain.APIEnvelope  "HashMismatch | MalformedCapability | BadParams"
// @Failure      403  {object}  domain.APIEnvelope  "CapabilityExpired"
// @Failure      409  {object}  domain.APIEnvelope  "AlreadyExists"
// @Failure      502  {object}  domain.APIEnvelope  "TransferFailed"
// @Router       /api/v2/s3_bucket/upload-file-using-presigned-url [post]
func (h *Handler) CommitUpload(w http.ResponseWriter, r *http.Request) {
	const op = "files.commit_upload"
	reqID := mw.RequestIDFromCtx(r.Context())

	cand, err := h.candidateFromForm(w, r)
	if err != nil {
		logx.Warn(h.Log, reqID, op, "bad form", "err", err)
		v1.WriteDomainError(w, r, err)
		return
	}
	url := strings.TrimSpace(r.FormValue("presignedUrl"))
	if url == "" {
		v1.WriteDomainError(w, r, domain.Errorf(domain.ErrBadParams, "presignedUrl is required"))
		return
	}
	key, err := h.Workflow.CommitUpload(r.Context(), cand, url)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}
	logx.Info(h.Log, reqID, op, "committed", "key", key, "name", cand.Name)
	v1.WriteOKResponse(w, r, newCommitDTO(key))
}

// RequestDownload godoc
// @Summary      Выдать ссылку на скачивание
// @Description  objectName — ключ объекта ("myBucket/<sha256>") или ранее выданная ссылка.
// @Tags         s3_bucket
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        objectName  formData  string  true  "Ключ объекта"
// @Success      200  {object}  domain.APIEnvelope{response=files.CapabilityDTO}
// @Failure      400  {object}  domain.APIEnvelope  "BadParams | MalformedCapability"
// @Failure      404  {object}  domain.APIEnvelope  "NotFound"
// @Router       /api/v2/s3_bucket/download-presigned-url [post]
func (h *Handler) RequestDownload(w http.ResponseWriter, r *http.Request) {
	const op = "files.request_download"
	reqID := mw.RequestIDFromCtx(r.Context())

	c, err := h.Workflow.RequestDownload(r.Context(), r.FormValue("objectName"))
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}
	logx.Info(h.Log, reqID, op, "issued", "key", c.ObjectKey)
	v1.WriteOKResponse(w, r, newCapabilityDTO(c, time.Now()))
}

// DownloadWithCapability godoc
// @Summary      Скачать файл по выданной ссылке
// @Description  Сервер сам ходит по ссылке и отдаёт байты потоком.
// @Tags         s3_bucket
// @Accept       x-www-form-urlencoded
// @Produce      octet-stream
// @Param        presignedUrl  formData  string  true  "Ссылка из /download-presigned-url"
// @Success      200  {file}    binary
// @Failure      403  {object}  domain.APIEnvelope  "CapabilityExpired"
// @Failure      404  {object}  domain.APIEnvelope  "NotFound"
// @Failure      502  {object}  domain.APIEnvelope  "TransferFailed | EmptyResult"
// @Router       /api/v2/s3_bucket/download-file-using-presigned-url [post]
func (h *Handler) DownloadWithCapability(w http.ResponseWriter, r *http.Request) {
	const op = "files.download_with_capability"

	url := strings.TrimSpace(r.FormValue("presignedUrl"))
	if url == "" {
		v1.WriteDomainError(w, r, domain.Errorf(domain.ErrBadParams, "presignedUrl is required"))
		return
	}
	dl, err := h.Workflow.DownloadWithCapability(r.Context(), url)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}
	h.stream(w, r, op, dl)
}

// List godoc
// @Summary      Список ключей
// @Description  Одна страница (до 1000 ключей) по префиксу, суффикс фильтруется на сервере.
// @Tags         s3_bucket
// @Produce      json
// @Param        startWith  query  string  false  "Префикс ключа"
// @Param        endWith    query  string  false  "Суффикс ключа"
// @Success      200  {object}  domain.APIEnvelope{response=files.ListDTO}
// @Router       /api/v2/s3_bucket/list [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "files.list"
	reqID := mw.RequestIDFromCtx(r.Context())

	q := r.URL.Query()
	keys, err := h.Workflow.List(r.Context(), q.Get("startWith"), q.Get("endWith"))
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}
	logx.Info(h.Log, reqID, op, "ok", "count", len(keys))
	v1.WriteOKResponse(w, r, ListDTO{Keys: keys, Count: len(keys)})
}
