package model

import (
	"github.com/go-playground/validator/v10"
)

// The same "binding" tags drive gin's query binding and tool argument checks.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}

// Validate checks a request struct and wraps failures as InputError
func Validate(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return &InputError{Err: err}
	}
	return nil
}
