package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"
)

// ErrorCode представляет код ошибки
type ErrorCode string

const (
	// Общие ошибки
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"

	// Ошибки жизненного цикла гива
	ErrCodeAlreadyEnded        ErrorCode = "ALREADY_ENDED"
	ErrCodeStillActive         ErrorCode = "GIVEAWAY_STILL_ACTIVE"
	ErrCodeAlreadyJoined       ErrorCode = "ALREADY_JOINED"
	ErrCodeCapacityReached     ErrorCode = "CAPACITY_REACHED"
	ErrCodeInvalidEditNoFields ErrorCode = "INVALID_EDIT_NO_FIELDS"
	ErrCodePastEndDate         ErrorCode = "PAST_END_DATE"

	// Ошибки внешних зависимостей (хранилище, верификатор, презентер)
	ErrCodeCollaboratorFailure ErrorCode = "COLLABORATOR_FAILURE"
)

// Сентинелы для сравнения через errors.Is: сравнивается только код.
var (
	ErrNotFound            = &AppError{Code: ErrCodeNotFound, Message: "giveaway not found"}
	ErrAlreadyEnded        = &AppError{Code: ErrCodeAlreadyEnded, Message: "giveaway already ended"}
	ErrStillActive         = &AppError{Code: ErrCodeStillActive, Message: "giveaway is still active"}
	ErrAlreadyJoined       = &AppError{Code: ErrCodeAlreadyJoined, Message: "user already joined"}
	ErrCapacityReached     = &AppError{Code: ErrCodeCapacityReached, Message: "giveaway is full"}
	ErrInvalidEditNoFields = &AppError{Code: ErrCodeInvalidEditNoFields, Message: "nothing to edit"}
	ErrPastEndDate         = &AppError{Code: ErrCodePastEndDate, Message: "end date is in the past"}
	ErrValidation          = &AppError{Code: ErrCodeValidation, Message: "validation failed"}
	ErrForbidden           = &AppError{Code: ErrCodeForbidden, Message: "forbidden"}
	ErrCollaboratorFailure = &AppError{Code: ErrCodeCollaboratorFailure, Message: "collaborator failure"}
)

// AppError представляет типизированную ошибку приложения
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Stack     []string               `json:"-"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Cause     error                  `json:"-"`
}

// Error возвращает строковое представление ошибки
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap возвращает причину ошибки
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// IsInternal проверяет, является ли ошибка внутренней ошибкой
func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal || e.Code == ErrCodeCollaboratorFailure
}

// WithDetail добавляет детальную информацию к ошибке
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithRequestID добавляет ID запроса к ошибке
func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// WithStack добавляет стек вызовов к ошибке
func (e *AppError) WithStack() *AppError {
	e.Stack = getStackTrace()
	return e
}

// New создает новую ошибку приложения
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap оборачивает существующую ошибку
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

func getStackTrace() []string {
	var stack []string
	for i := 2; ; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		if strings.Contains(fn.Name(), "internal/common/errors") {
			continue
		}
		stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, fn.Name()))
		if len(stack) >= 10 {
			break
		}
	}
	return stack
}

// Конструкторы для часто используемых ошибок

// NewValidationError создает ошибку валидации
func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// NewNotFoundError создает ошибку "гив не найден"
func NewNotFoundError(giveawayID string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("Giveaway not found: %s", giveawayID)).
		WithDetail("giveaway_id", giveawayID)
}

// NewAlreadyEndedError создает ошибку "гив уже завершен"
func NewAlreadyEndedError(giveawayID string) *AppError {
	return New(ErrCodeAlreadyEnded, fmt.Sprintf("Giveaway already ended: %s", giveawayID)).
		WithDetail("giveaway_id", giveawayID)
}

// NewStillActiveError создает ошибку "гив еще активен"
func NewStillActiveError(giveawayID string) *AppError {
	return New(ErrCodeStillActive, fmt.Sprintf("Giveaway is still active: %s", giveawayID)).
		WithDetail("giveaway_id", giveawayID)
}

// NewAlreadyJoinedError создает ошибку повторного участия
func NewAlreadyJoinedError(giveawayID string, userID int64) *AppError {
	return New(ErrCodeAlreadyJoined, "User already joined the giveaway").
		WithDetail("giveaway_id", giveawayID).
		WithDetail("user_id", userID)
}

// NewCapacityReachedError создает ошибку переполнения гива
func NewCapacityReachedError(giveawayID string) *AppError {
	return New(ErrCodeCapacityReached, "Giveaway reached its maximum number of entries").
		WithDetail("giveaway_id", giveawayID)
}

// NewInvalidEditNoFieldsError создает ошибку пустого редактирования
func NewInvalidEditNoFieldsError() *AppError {
	return New(ErrCodeInvalidEditNoFields, "At least one field must be provided")
}

// NewPastEndDateError создает ошибку даты окончания в прошлом
func NewPastEndDateError(endsAt time.Time) *AppError {
	return New(ErrCodePastEndDate, "End date must be in the future").
		WithDetail("ends_at", endsAt.UTC().Format(time.RFC3339))
}

// NewForbiddenError создает ошибку доступа
func NewForbiddenError(reason string) *AppError {
	return New(ErrCodeForbidden, fmt.Sprintf("Forbidden: %s", reason)).
		WithDetail("reason", reason)
}

// NewUnauthorizedError создает ошибку авторизации
func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, fmt.Sprintf("Unauthorized: %s", reason)).
		WithDetail("reason", reason)
}

// NewCollaboratorError оборачивает ошибку хранилища или внешнего сервиса
func NewCollaboratorError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeCollaboratorFailure, fmt.Sprintf("Operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// AsAppError приводит ошибку к AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil && stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus возвращает HTTP статус код для ошибки
func GetHTTPStatus(appErr *AppError) int {
	switch appErr.Code {
	case ErrCodeValidation, ErrCodeBadRequest, ErrCodeInvalidEditNoFields, ErrCodePastEndDate:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeAlreadyJoined, ErrCodeAlreadyEnded, ErrCodeStillActive, ErrCodeCapacityReached:
		return http.StatusConflict
	case ErrCodeCollaboratorFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
