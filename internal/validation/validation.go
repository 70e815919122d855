// Package validation checks request payloads before they leave the process.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/vasiliy-maslov/storefront/internal/apierr"
)

const passwordSpecials = "@#$%^&+="

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// в сообщениях используем имена полей из JSON
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("password", strongPassword); err != nil {
		panic(fmt.Sprintf("validation: register password rule: %v", err))
	}

	return v
}

// strongPassword mirrors the rules the registration form enforces.
func strongPassword(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	if len(p) < 8 {
		return false
	}

	var digit, lower, upper bool
	for _, r := range p {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		}
	}

	return digit && lower && upper && strings.ContainsAny(p, passwordSpecials)
}

// Struct validates s. The first failing field decides the message; overrides
// are keyed by "<GoFieldName>.<tag>", e.g. "ShippingAddress.min".
func Struct(s any, overrides map[string]string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierr.Unknown(err)
	}

	first := verrs[0]
	msg, ok := overrides[first.StructField()+"."+first.Tag()]
	if !ok {
		msg = messageFor(first)
	}

	return &apierr.Error{Kind: apierr.KindValidation, Message: msg, Err: err}
}

// Details lists every failing field with its message, keyed by JSON name.
func Details(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = messageFor(fe)
	}
	return details
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", fe.Field(), fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must contain only digits", fe.Field())
	case "eqfield":
		return fmt.Sprintf("%s does not match", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "password":
		return fmt.Sprintf("%s must be at least 8 characters with a digit, a lowercase letter, an uppercase letter and one of %s", fe.Field(), passwordSpecials)
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
