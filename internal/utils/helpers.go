package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/senyabanana/sisterly-service/internal/models"

	"github.com/go-playground/validator/v10"
)

// SendErrorResponse отправляет ошибку в формате JSON
func SendErrorResponse(w http.ResponseWriter, statusCode int, kind models.ErrorKind, message string) error {
	return SendJSON(w, statusCode, models.ErrorResponse{
		StatusCode: statusCode,
		Kind:       kind,
		Message:    message,
	})
}

// SendError отправляет типизированную ошибку бизнес-логики
func SendError(w http.ResponseWriter, errorResponse *models.ErrorResponse) error {
	return SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Kind, errorResponse.Message)
}

// SendJSON отправляет успешный ответ в формате JSON
func SendJSON(w http.ResponseWriter, statusCode int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(payload)
}

// AsErrorResponse достает типизированную ошибку из цепочки
func AsErrorResponse(err error) (*models.ErrorResponse, bool) {
	var errorResponse *models.ErrorResponse
	if errors.As(err, &errorResponse) {
		return errorResponse, true
	}
	return nil, false
}

// ParseLimitOffset обрабатывает limit и offset
func ParseLimitOffset(limitStr, offsetStr string) (int, int, error) {
	var limit, offset int
	var err error

	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > 50 {
			return 0, 0, fmt.Errorf("invalid limit parameter, must be a positive integer [0:50]")
		}
	} else {
		limit = 5
	}

	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset parameter, must be a non-negative integer")
		}
	} else {
		offset = 0
	}

	return limit, offset, nil
}

// ParseOptionalInt разбирает необязательный целочисленный параметр запроса
func ParseOptionalInt(value, name string) (int, bool, error) {
	if value == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s parameter, must be an integer", name)
	}
	return n, true, nil
}

// Contains - функция для проверки перехода по таблице допустимых переходов
func Contains[T comparable](validTransitions []T, next T) bool {
	for _, valid := range validTransitions {
		if valid == next {
			return true
		}
	}
	return false
}

// ValidateStruct проверяет структуру запроса по тегам validate
func ValidateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return models.NewValidationError(err.Error())
	}
	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, fmt.Sprintf("%s: failed on '%s'", lowerFirst(fe.Field()), fe.Tag()))
	}
	return models.NewValidationError("invalid fields: " + strings.Join(fields, "; "))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
