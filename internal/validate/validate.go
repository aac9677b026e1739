// Package validate wraps go-playground/validator with the field rules
// shared by the terminal client and the HTTP API.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var customTags = map[string]validator.Func{
	"phone":  validatePhone,
	"gender": validateGender,
}

// New returns a validator with the custom "phone" and "gender" tags
// registered.  It panics when a tag cannot be registered, since the
// validator would otherwise skip those fields silently.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := register(v, customTags); err != nil {
		panic(err)
	}
	return v
}

func register(v *validator.Validate, tags map[string]validator.Func) error {
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %q validation: %w", tag, err)
		}
	}
	return nil
}

// Phone reports whether s is a ten digit mobile number starting with
// 6, 7, 8 or 9.
func Phone(s string) bool {
	if len(s) != 10 {
		return false
	}
	switch s[0] {
	case '6', '7', '8', '9':
	default:
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Gender reports whether s is one of m, f or n.
func Gender(s string) bool {
	return s == "m" || s == "f" || s == "n"
}

func validatePhone(fl validator.FieldLevel) bool { return Phone(fl.Field().String()) }

func validateGender(fl validator.FieldLevel) bool { return Gender(fl.Field().String()) }

// Message flattens validator errors into one readable line, e.g.
// "phone: must be a valid phone number; tickets: must be at most 10".
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ToLower(fe.Field()), fieldMessage(fe)))
	}
	return strings.Join(parts, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "phone":
		return "must be a valid phone number"
	case "gender":
		return "must be m, f or n"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "len":
		return "must be " + fe.Param() + " characters long"
	case "eqfield":
		return "must match " + strings.ToLower(fe.Param())
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}
