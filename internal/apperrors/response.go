package apperrors

import (
	stderrors "errors"
)

// ErrorResponse is the JSON envelope the scrapper and bot APIs return on
// failure. Field names are part of the wire contract and must not change.
type ErrorResponse struct {
	Description      string   `json:"description"`
	Code             string   `json:"code"`
	ExceptionName    string   `json:"exceptionName"`
	ExceptionMessage string   `json:"exceptionMessage"`
	Stacktrace       []string `json:"stacktrace"`
}

// ToResponse converts an AppError to the wire envelope.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Description:      e.Description,
		Code:             string(e.Code),
		ExceptionName:    string(e.Code),
		ExceptionMessage: e.Message,
		Stacktrace:       []string{},
	}
}

// As converts err to an AppError if possible.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err is an AppError with the given code.
func Is(err error, code Code) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
