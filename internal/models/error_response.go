package models

import (
	"errors"
	"net/http"
)

// ErrorKind - категория ошибки бизнес-логики.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"      // Некорректные или отсутствующие входные данные
	KindUnauthorized   ErrorKind = "unauthorized"    // Пользователь не аутентифицирован
	KindPermission     ErrorKind = "permission"      // Недостаточно прав
	KindNotFound       ErrorKind = "not_found"       // Сущность не найдена
	KindState          ErrorKind = "state"           // Операция недопустима в текущем состоянии
	KindConflict       ErrorKind = "conflict"        // Конфликт с существующими данными
	KindNotImplemented ErrorKind = "not_implemented" // Операция не поддерживается
	KindInternal       ErrorKind = "internal"        // Внутренняя ошибка
)

var kindStatus = map[ErrorKind]int{
	KindValidation:     http.StatusBadRequest,
	KindUnauthorized:   http.StatusUnauthorized,
	KindPermission:     http.StatusForbidden,
	KindNotFound:       http.StatusNotFound,
	KindState:          http.StatusConflict,
	KindConflict:       http.StatusConflict,
	KindNotImplemented: http.StatusNotImplemented,
	KindInternal:       http.StatusInternalServerError,
}

// ErrorResponse описывает ошибку с кодом, категорией и сообщением.
type ErrorResponse struct {
	StatusCode int       `json:"-"`
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"reason"`
}

// NewErrorResponse создает новую ошибку указанной категории.
func NewErrorResponse(kind ErrorKind, message string) *ErrorResponse {
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &ErrorResponse{
		StatusCode: status,
		Kind:       kind,
		Message:    message}
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	return e.Message
}

func NewValidationError(message string) *ErrorResponse {
	return NewErrorResponse(KindValidation, message)
}

func NewUnauthorizedError(message string) *ErrorResponse {
	return NewErrorResponse(KindUnauthorized, message)
}

func NewPermissionError(message string) *ErrorResponse {
	return NewErrorResponse(KindPermission, message)
}

func NewNotFoundError(message string) *ErrorResponse {
	return NewErrorResponse(KindNotFound, message)
}

func NewStateError(message string) *ErrorResponse {
	return NewErrorResponse(KindState, message)
}

func NewConflictError(message string) *ErrorResponse {
	return NewErrorResponse(KindConflict, message)
}

func NewNotImplementedError(message string) *ErrorResponse {
	return NewErrorResponse(KindNotImplemented, message)
}

// KindOf возвращает категорию ошибки; для неизвестных ошибок - KindInternal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var errorResponse *ErrorResponse
	if errors.As(err, &errorResponse) {
		return errorResponse.Kind
	}
	return KindInternal
}
