package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/EgorLis/hashdrop/internal/domain"
	"github.com/EgorLis/hashdrop/internal/transport/web/mw"
)

var errStatus = []struct {
	err    error
	status int
	code   int
}{
	{domain.ErrEmptyFile, http.StatusNotAcceptable, domain.ErrCodeEmptyFile},
	{domain.ErrInvalidFileName, http.StatusNotAcceptable, domain.ErrCodeInvalidFileName},
	{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, domain.ErrCodeFileTooLarge},
	{domain.ErrMultipleFileSelection, http.StatusBadRequest, domain.ErrCodeMultipleFileSelection},
	{domain.ErrAlreadyExists, http.StatusConflict, domain.ErrCodeAlreadyExists},
	{domain.ErrNotFound, http.StatusNotFound, domain.ErrCodeNotFound},
	{domain.ErrHashMismatch, http.StatusBadRequest, domain.ErrCodeHashMismatch},
	{domain.ErrMalformedCapability, http.StatusBadRequest, domain.ErrCodeMalformedCapability},
	{domain.ErrCapabilityExpired, http.StatusForbidden, domain.ErrCodeCapabilityExpired},
	{domain.ErrCapabilityIssuanceFailed, http.StatusInternalServerError, domain.ErrCodeCapabilityIssuanceFailed},
	{domain.ErrTransferFailed, http.StatusBadGateway, domain.ErrCodeTransferFailed},
	{domain.ErrEmptyResult, http.StatusBadGateway, domain.ErrCodeEmptyResult},
	{domain.ErrHashingUnavailable, http.StatusInternalServerError, domain.ErrCodeHashingUnavailable},
	{domain.ErrBadParams, http.StatusBadRequest, domain.ErrCodeBadParams},
	{domain.ErrMethodNotAllowed, http.StatusMethodNotAllowed, domain.ErrCodeMethodNotAllowed},
}

// MapDomainError решает HTTP-статус + error.code/kind/text для конверта.
// Текст бизнес-ошибок уходит клиенту как есть; всё прочее — "unexpected".
func MapDomainError(err error) (httpStatus int, env domain.APIEnvelope) {
	for _, e := range errStatus {
		if errors.Is(err, e.err) {
			return e.status, domain.Fail(e.code, domain.KindOf(err), err.Error())
		}
	}
	// Таймауты/отмены/сбои инфраструктуры — 500 без подробностей
	return http.StatusInternalServerError, domain.Fail(domain.ErrCodeUnexpected, domain.KindUnexpected, "unexpected")
}

// WriteEnvelope пишет конверт; для HEAD — без тела
func WriteEnvelope(w http.ResponseWriter, r *http.Request, status int, env domain.APIEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(mw.HeaderRequestID, mw.RequestIDFromCtx(r.Context()))
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(env)
}

// Шорткаты успеха
func WriteOKData(w http.ResponseWriter, r *http.Request, data any) {
	WriteEnvelope(w, r, http.StatusOK, domain.OkData(data))
}
func WriteOKResponse(w http.ResponseWriter, r *http.Request, resp any) {
	WriteEnvelope(w, r, http.StatusOK, domain.OkResponse(resp))
}

func WriteDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, env := MapDomainError(err)
	WriteEnvelope(w, r, status, env)
}
