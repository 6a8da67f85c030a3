// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MinAddressLength is the shortest address string worth sending to a
// collaborator service.
const MinAddressLength = 3

// Validator wraps the go-playground validator for structured validation.
// Using a struct allows for dependency injection and easier testing.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance with the booking rules registered:
// address, movedate and movetime.
func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("address", validateAddress)
	_ = v.RegisterValidation("movedate", validateLayout("2006-01-02"))
	_ = v.RegisterValidation("movetime", validateLayout("15:04"))
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

// Engine exposes the underlying validator so gin's binding can share the rules.
func (val *Validator) Engine() *validator.Validate {
	return val.v
}

// IsAddress reports whether s is long enough to be a usable address.
func IsAddress(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= MinAddressLength
}

func validateAddress(fl validator.FieldLevel) bool {
	return IsAddress(fl.Field().String())
}

func validateLayout(layout string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		_, err := time.Parse(layout, strings.TrimSpace(fl.Field().String()))
		return err == nil
	}
}
