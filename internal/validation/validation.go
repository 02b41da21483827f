// Package validation разбирает тело запроса и проверяет его тегами validator.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"fablink/internal/errs"
	"fablink/models"

	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes ограничение размера тела запроса
const MaxBodyBytes = 1048576

// Validatable реализуется типами запросов
type Validatable interface {
	Validate() error
}

// DecodeAndValidate читает JSON из тела в payload и проверяет его.
// Возвращает *errs.HTTPError со списком ошибок полей.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, payload Validatable) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return errs.NewBadRequestError("Failed to read request body", nil)
	}
	if err := json.Unmarshal(body, payload); err != nil {
		return errs.NewBadRequestError("Invalid JSON format", nil)
	}
	return Validate(payload)
}

// Validate проверяет уже заполненный payload
func Validate(payload Validatable) error {
	if err := payload.Validate(); err != nil {
		return errs.NewBadRequestError("Validation failed", extractFieldErrors(err))
	}
	return nil
}

func extractFieldErrors(err error) []errs.FieldError {
	var fieldErrors []errs.FieldError

	var problems models.FieldProblems
	if errors.As(err, &problems) {
		for _, p := range problems {
			fieldErrors = append(fieldErrors, errs.FieldError{Field: p.Field, Error: p.Message})
		}
		return fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []errs.FieldError{{Field: "", Error: err.Error()}}
	}

	for _, fe := range validationErrors {
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: lowerFirst(fe.Field()),
			Error: message(fe),
		})
	}
	return fieldErrors
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "nefield":
		return fmt.Sprintf("must differ from %s", lowerFirst(fe.Param()))
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s:%s", fe.Tag(), fe.Param())
	}
	return fe.Tag()
}

// lowerFirst Go-имя поля -> camelCase как в JSON
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	if strings.HasSuffix(s, "ID") && len(s) > 2 {
		s = s[:len(s)-2] + "Id"
	}
	return strings.ToLower(s[:1]) + s[1:]
}
