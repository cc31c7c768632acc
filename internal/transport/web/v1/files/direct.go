package files

import (
	"io"
	"net/http"
	"strconv"

	"github.com/EgorLis/hashdrop/internal/domain"
	"github.com/EgorLis/hashdrop/internal/logx"
	"github.com/EgorLis/hashdrop/internal/transport/web/mw"
	v1 "github.com/EgorLis/hashdrop/internal/transport/web/v1"
)

// UploadDirect godoc
// @Summary      Загрузить файл через сервер
// @Description  Те же проверки и дедупликация, что у /api/v2, но байты в хранилище кладёт сервер.
// @Tags         s3_bucket_v1
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Файл"
// @Success      200  {object}  domain.APIEnvelope{response=files.CommitDTO}
// @Failure      406  {object}  domain.APIEnvelope  "EmptyFile | InvalidFileName"
// @Failure      409  {object}  domain.APIEnvelope  "AlreadyExists"
// @Failure      413  {object}  domain.APIEnvelope  "FileTooLarge"
// @Router       /api/v1/s3_bucket/upload [post]
func (h *Handler) UploadDirect(w http.ResponseWriter, r *http.Request) {
	const op = "files.upload_direct"
	reqID := mw.RequestIDFromCtx(r.Context())

	cand, err := h.candidateFromForm(w, r)
	if err != nil {
		logx.Warn(h.Log, reqID, op, "bad form", "err", err)
		v1.WriteDomainError(w, r, err)
		return
	}
	key, err := h.Workflow.PutDirect(r.Context(), cand)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}
	logx.Info(h.Log, reqID, op, "stored", "key", key, "name", cand.Name)
	v1.WriteOKResponse(w, r, newCommitDTO(key))
}

// DownloadDirect godoc
// @Summary      Скачать файл через сервер
// @Tags         s3_bucket_v1
// @Produce      octet-stream
// @Param        objectName  query  string  true  "Ключ объекта"
// @Success      200  {file}    binary
// @Failure      404  {object}  domain.APIEnvelope  "NotFound"
// @Failure      502  {object}  domain.APIEnvelope  "TransferFailed | EmptyResult"
// @Router       /api/v1/s3_bucket/download [get]
func (h *Handler) DownloadDirect(w http.ResponseWriter, r *http.Request) {
	const op = "files.download_direct"

	dl, err := h.Workflow.GetDirect(r.Context(), r.URL.Query().Get("objectName"))
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}
	h.stream(w, r, op, dl)
}

// stream отдаёт тело; после первого байта ошибку клиенту уже не вернуть.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request, op string, dl domain.Download) {
	reqID := mw.RequestIDFromCtx(r.Context())
	defer dl.Body.Close()

	ct := dl.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", attachment(dl.ObjectKey.Hash()))
	w.Header().Set(mw.HeaderRequestID, reqID)
	if dl.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(dl.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, dl.Body)
	if err != nil {
		logx.Error(h.Log, reqID, op, "stream aborted", err, "key", dl.ObjectKey, "bytes", n)
		return
	}
	logx.Info(h.Log, reqID, op, "streamed", "key", dl.ObjectKey, "bytes", n)
}
