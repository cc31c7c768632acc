package domain

// Общий конверт ответа
type APIError struct {
	Code int    `json:"code,omitempty"`
	Kind Kind   `json:"kind,omitempty"`
	Text string `json:"text,omitempty"`
}

type APIEnvelope struct {
	Error    *APIError `json:"error,omitempty"`
	Response any       `json:"response,omitempty"`
	Data     any       `json:"data,omitempty"`
}

// Коды ошибок в конверте
const (
	ErrCodeBadParams        = 1000
	ErrCodeMethodNotAllowed = 1005
	ErrCodeUnexpected       = 1500

	ErrCodeEmptyFile                = 2001
	ErrCodeFileTooLarge             = 2002
	ErrCodeInvalidFileName          = 2003
	ErrCodeMultipleFileSelection    = 2004
	ErrCodeAlreadyExists            = 2010
	ErrCodeNotFound                 = 2011
	ErrCodeHashMismatch             = 2020
	ErrCodeMalformedCapability      = 2021
	ErrCodeCapabilityExpired        = 2030
	ErrCodeCapabilityIssuanceFailed = 2031
	ErrCodeTransferFailed           = 2040
	ErrCodeEmptyResult              = 2041
	ErrCodeHashingUnavailable       = 2050
)

// Утилиты для сборки конвертов
func OkResponse(resp any) APIEnvelope { return APIEnvelope{Response: resp} }
func OkData(data any) APIEnvelope     { return APIEnvelope{Data: data} }
func Fail(code int, kind Kind, text string) APIEnvelope {
	return APIEnvelope{Error: &APIError{Code: code, Kind: kind, Text: text}}
}
