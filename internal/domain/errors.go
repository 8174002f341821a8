package domain

import (
	"errors"
	"fmt"
	"slices"

	"git.appkode.ru/pub/go/failure"

	"memescan/pkg/errcodes"
)

// Коды, при которых запрос имеет смысл повторить позже.
var temporaryCodes = []failure.ErrorCode{ //nolint:gochecknoglobals
	errcodes.LabelLookupFailed,
	errcodes.ServiceUnavailable,
}

var invalidArgumentCodes = []failure.ErrorCode{ //nolint:gochecknoglobals
	errcodes.ValidationError,
	errcodes.InvalidLabel,
}

var notFoundCodes = []failure.ErrorCode{ //nolint:gochecknoglobals
	errcodes.LabelNotFound,
	errcodes.TokenNotFound,
	errcodes.PoolNotFound,
	errcodes.NotFound,
}

// AppError представляет доменную ошибку приложения.
type AppError struct {
	Code    failure.ErrorCode
	Message string
	cause   error
}

// Error реализует интерфейс error.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap возвращает обёрнутую ошибку для errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.cause
}

func (e *AppError) ErrorCode() failure.ErrorCode {
	return e.Code
}

// Description возвращает сообщение без причины, его можно отдавать клиенту.
func (e *AppError) Description() string {
	return e.Message
}

func (e *AppError) Temporary() bool {
	return slices.Contains(temporaryCodes, e.Code)
}

func (e *AppError) NotFound() bool {
	return slices.Contains(notFoundCodes, e.Code)
}

func (e *AppError) InvalidArgument() bool {
	return slices.Contains(invalidArgumentCodes, e.Code)
}

// NewError создаёт новую доменную ошибку.
func NewError(code failure.ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// WrapError оборачивает существующую ошибку с доменным контекстом.
func WrapError(err error, code failure.ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   err,
	}
}

// IsAppError проверяет, является ли ошибка доменной.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode извлекает код ошибки, если это AppError.
func GetCode(err error) (failure.ErrorCode, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

// HasCode сообщает, несёт ли цепочка ошибок AppError с указанным кодом.
func HasCode(err error, code failure.ErrorCode) bool {
	got, ok := GetCode(err)
	return ok && got == code
}
