// Package apperrors provides the unified error type for linktrack services:
// structured errors with machine codes, HTTP status mapping, and the wire
// envelope the scrapper API exposes to its clients.
package apperrors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code Code `json:"code"`
	// Description is the short human-readable summary sent to clients.
	Description string `json:"description"`
	// Message carries the detailed error message.
	Message string `json:"message"`
	// HTTPStatus is the status code for this error.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, if any.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// New creates an AppError with the given code, texts, and HTTP status.
func New(code Code, description, message string, httpStatus int) *AppError {
	return &AppError{
		Code:        code,
		Description: description,
		Message:     message,
		HTTPStatus:  httpStatus,
	}
}

// --- Domain error constructors ---

// ChatAlreadyRegistered reports a duplicate chat registration.
func ChatAlreadyRegistered(tgID int64) *AppError {
	return New(CodeChatAlreadyRegistered, "Чат уже зарегистрирован",
		fmt.Sprintf("чат %d уже зарегистрирован", tgID), http.StatusConflict)
}

// ChatNotRegistered reports an operation on an unknown chat.
func ChatNotRegistered(tgID int64) *AppError {
	return New(CodeChatNotRegistered, "Чат не зарегистрирован",
		fmt.Sprintf("чат %d не зарегистрирован", tgID), http.StatusNotFound)
}

// LinkNotFound reports that the chat does not track the URL.
func LinkNotFound(tgID int64, url string) *AppError {
	return New(CodeLinkNotFound, "Ссылка не найдена",
		fmt.Sprintf("чат %d не отслеживает %s", tgID, url), http.StatusNotFound)
}

// LinkAlreadyTracked reports a duplicate tracked URL for the chat.
func LinkAlreadyTracked(url string) *AppError {
	return New(CodeLinkAlreadyTracked, "URL уже отслеживается",
		fmt.Sprintf("ссылка %s уже отслеживается", url), http.StatusConflict)
}

// TagAlreadyExists reports a duplicate tag on a link.
func TagAlreadyExists(url, tag string) *AppError {
	return New(CodeTagAlreadyExists, "Тег уже существует",
		fmt.Sprintf("ссылка %s уже имеет тег %s", url, tag), http.StatusConflict)
}

// TagNotFound reports a missing tag on a link.
func TagNotFound(url, tag string) *AppError {
	return New(CodeTagNotFound, "Ссылка c данным тегом не найдена",
		fmt.Sprintf("ссылка %s не имеет тега %s", url, tag), http.StatusNotFound)
}

// URLNotSupported reports a URL outside the known source types.
func URLNotSupported(url string) *AppError {
	return New(CodeURLNotSupported, "Неизвестный тип ссылки",
		fmt.Sprintf("ссылка %s не поддерживается", url), http.StatusBadRequest)
}

// UnsupportedFilter reports a filter token without the key:value form.
func UnsupportedFilter(filter string) *AppError {
	return New(CodeUnsupportedFilter, "Неподдерживаемый тип фильтра",
		fmt.Sprintf("фильтр %s не поддерживается", filter), http.StatusBadRequest)
}

// ResourceNotFound reports a missing upstream resource (no commits, unknown
// question id, and so on).
func ResourceNotFound(detail string) *AppError {
	return New(CodeResourceNotFound, "Ресурс не найден", detail, http.StatusBadRequest)
}

// Upstream reports a non-2xx response from an upstream API.
func Upstream(statusCode int) *AppError {
	return New(CodeUpstreamError, "Ошибка запроса к API",
		fmt.Sprintf("response with status code: %d", statusCode), http.StatusBadRequest)
}

// BadChatID reports a missing or non-numeric Telegram chat id.
func BadChatID(raw string) *AppError {
	return New(CodeBadChatID, "Некорректный идентификатор чата",
		fmt.Sprintf("идентификатор чата %q не является числом", raw), http.StatusBadRequest)
}

// BadTimeFormat reports a notify time that is not HH:MM.
func BadTimeFormat(value string) *AppError {
	return New(CodeBadTimeFormat, "Неверный формат времени",
		fmt.Sprintf("время %q не в формате HH:MM", value), http.StatusBadRequest)
}

// Internal wraps an unexpected error.
func Internal(err error) *AppError {
	e := New(CodeInternal, "Внутренняя ошибка сервиса", "unexpected error", http.StatusInternalServerError)
	e.Cause = err
	if err != nil {
		e.Message = err.Error()
	}
	return e
}
