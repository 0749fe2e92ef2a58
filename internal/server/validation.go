package server

import (
	"strings"
	"sync"
	"unicode/utf8"

	"bingo-hall/internal/bingo"

	"github.com/go-playground/validator/v10"
)

const maxNameLength = 20

var (
	validatorOnce sync.Once
	validate      *validator.Validate
)

func commandValidator() *validator.Validate {
	validatorOnce.Do(func() {
		engine := validator.New(validator.WithRequiredStructEnabled())
		_ = engine.RegisterValidation("gamecode", func(fl validator.FieldLevel) bool {
			return bingo.ValidCode(fl.Field().String())
		})
		validate = engine
	})
	return validate
}

func validateName(name string) (string, error) {
	trimmed := normalizeText(name)
	if trimmed == "" {
		return "", ErrNameRequired
	}
	if utf8.RuneCountInString(trimmed) > maxNameLength {
		return "", ErrNameTooLong
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}
