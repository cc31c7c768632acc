package domain

import (
	"errors"
	"fmt"
)

// Бизнес-ошибки ядра (маппятся на HTTP коды в transport/web/v1)
var (
	ErrEmptyFile                = errors.New("empty file")                 // 406
	ErrFileTooLarge             = errors.New("file too large")             // 413
	ErrInvalidFileName          = errors.New("invalid file name")          // 406
	ErrAlreadyExists            = errors.New("already exists")             // 409
	ErrHashMismatch             = errors.New("hash mismatch")              // 400
	ErrCapabilityExpired        = errors.New("capability expired")         // 403
	ErrCapabilityIssuanceFailed = errors.New("capability issuance failed") // 500
	ErrTransferFailed           = errors.New("transfer failed")            // 502
	ErrNotFound                 = errors.New("not found")                  // 404
	ErrEmptyResult              = errors.New("empty result")               // 502
	ErrHashingUnavailable       = errors.New("hashing unavailable")        // 500
	ErrMalformedCapability      = errors.New("malformed capability")       // 400
	ErrMultipleFileSelection    = errors.New("multiple file selection")    // 400

	// Ошибки слоя HTTP
	ErrBadParams        = errors.New("bad params")         // 400
	ErrMethodNotAllowed = errors.New("method not allowed") // 405
	ErrUnexpected       = errors.New("unexpected")         // 500
)

// Kind — стабильный тег ошибки, который уходит клиенту.
type Kind string

const (
	KindEmptyFile                Kind = "EmptyFile"
	KindFileTooLarge             Kind = "FileTooLarge"
	KindInvalidFileName          Kind = "InvalidFileName"
	KindAlreadyExists            Kind = "AlreadyExists"
	KindHashMismatch             Kind = "HashMismatch"
	KindCapabilityExpired        Kind = "CapabilityExpired"
	KindCapabilityIssuanceFailed Kind = "CapabilityIssuanceFailed"
	KindTransferFailed           Kind = "TransferFailed"
	KindNotFound                 Kind = "NotFound"
	KindEmptyResult              Kind = "EmptyResult"
	KindHashingUnavailable       Kind = "HashingUnavailable"
	KindMalformedCapability      Kind = "MalformedCapability"
	KindMultipleFileSelection    Kind = "MultipleFileSelection"
	KindBadParams                Kind = "BadParams"
	KindMethodNotAllowed         Kind = "MethodNotAllowed"
	KindUnexpected               Kind = "Unexpected"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrEmptyFile, KindEmptyFile},
	{ErrFileTooLarge, KindFileTooLarge},
	{ErrInvalidFileName, KindInvalidFileName},
	{ErrAlreadyExists, KindAlreadyExists},
	{ErrHashMismatch, KindHashMismatch},
	{ErrCapabilityExpired, KindCapabilityExpired},
	{ErrCapabilityIssuanceFailed, KindCapabilityIssuanceFailed},
	{ErrTransferFailed, KindTransferFailed},
	{ErrNotFound, KindNotFound},
	{ErrEmptyResult, KindEmptyResult},
	{ErrHashingUnavailable, KindHashingUnavailable},
	{ErrMalformedCapability, KindMalformedCapability},
	{ErrMultipleFileSelection, KindMultipleFileSelection},
	{ErrBadParams, KindBadParams},
	{ErrMethodNotAllowed, KindMethodNotAllowed},
}

// KindOf возвращает тег для ошибки; всё неизвестное — Unexpected.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnexpected
}

// Errorf оборачивает бизнес-ошибку человекочитаемым сообщением.
func Errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
