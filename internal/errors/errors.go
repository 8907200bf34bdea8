package errors

import (
	"errors"
	"fmt"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Error codes. The first digit groups the failing layer: 1 input, 2 storage,
// 3 outbound delivery, 4 conversation state.
const (
	CodeValidation       = "E100"
	CodeDatabase         = "E200"
	CodeExternalAPI      = "E300"
	CodeBroadcast        = "E310"
	CodeExport           = "E320"
	CodeState            = "E400"
	CodeCorruptedSession = "E410"
)

const temporaryFailure = "Сервис временно недоступен"

type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

// wrap builds an AppError whose Message ends with the cause text, if any.
func wrap(code string, severity Severity, retryable bool, cause error, userMessage, format string, args ...any) *AppError {
	msg := fmt.Sprintf(format, args...)
	if cause != nil {
		msg += ": " + cause.Error()
	}

	return &AppError{
		Code:        code,
		Message:     msg,
		UserMessage: userMessage,
		Severity:    severity,
		Retryable:   retryable,
		cause:       cause,
	}
}

func NewValidationError(msg string) *AppError {
	return wrap(CodeValidation, SeverityLow, false, nil, "Неверный формат данных. "+msg, "%s", msg)
}

func NewDatabaseError(cause error) *AppError {
	return wrap(CodeDatabase, SeverityHigh, true, cause, "Временная проблема, попробуйте позже", "database error")
}

func NewExternalAPIError(apiName string, cause error) *AppError {
	return wrap(CodeExternalAPI, SeverityMedium, true, cause, temporaryFailure, "external api %s", apiName)
}

// NewBroadcastError reports a message that could not be posted to a group
// or channel.
func NewBroadcastError(chatID int64, cause error) *AppError {
	return wrap(CodeBroadcast, SeverityHigh, true, cause, temporaryFailure, "broadcast to chat %d failed", chatID)
}

// NewExportError reports a catalog export that could not be rendered.
func NewExportError(cause error) *AppError {
	return wrap(CodeExport, SeverityMedium, false, cause, "Не удалось сформировать файл", "catalog export failed")
}

func NewStateError(msg string) *AppError {
	return wrap(CodeState, SeverityMedium, false, nil, "Операция невозможна в текущем состоянии", "%s", msg)
}

// NewCorruptedSessionError reports a stored session whose state is unknown.
func NewCorruptedSessionError(chatID int64, state string) *AppError {
	return wrap(CodeCorruptedSession, SeverityMedium, false, nil, "Произошла ошибка. Попробуйте снова.",
		"corrupted session for chat %d: unknown state %q", chatID, state)
}

// Code returns the AppError code carried by err, or an empty string.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Code
	}
	return ""
}
