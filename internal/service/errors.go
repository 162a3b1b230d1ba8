package service

import (
	"errors"
	"strings"
)

var (
	ErrNameTaken          = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrFileExists         = errors.New("file already exists")
	ErrFileTooLarge       = errors.New("file too large")
	ErrStorage            = errors.New("storage error")
)

// FieldError ошибка валидации конкретного поля запроса.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError собирает все ошибки валидации запроса сразу.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

// orNil возвращает nil, если ошибок не набралось.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func invalid(field, msg string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: msg}}}
}
