// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package validation checks decoded request bodies with go-playground/validator
// and reports failures as apperr validation errors keyed by JSON field name.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/know-you/apperr"
)

// Validator is safe for concurrent use; validator caches struct metadata.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Validator{v: v}
}

// Validate returns nil or an *apperr.Error of kind validation.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Validation(err.Error())
	}

	details := make(map[string]string, len(fieldErrs))
	first := ""
	for _, fe := range fieldErrs {
		msg := friendlyMessage(fe)
		details[fe.Field()] = msg
		if first == "" {
			first = fe.Field() + " " + msg
		}
	}

	return apperr.ValidationWithDetails(first, details)
}

func friendlyMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must not exceed " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "ltefield":
		return "must not exceed " + fe.Param()
	case "gtfield":
		return "must be greater than " + fe.Param()
	case "unique":
		return "must not contain duplicates"
	default:
		return "is invalid"
	}
}
