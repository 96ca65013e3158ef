// Package validation checks raw form input and turns rule failures into
// field-scoped Japanese messages for re-rendering a form.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors maps a form field name to the first message that applies to it.
type Errors map[string]string

// Any reports whether at least one field failed.
func (e Errors) Any() bool {
	return len(e) > 0
}

// Get returns the message for field, or "" when it passed.
func (e Errors) Get(field string) string {
	return e[field]
}

// fallbackMessage is used when a field fails a rule without a dedicated message.
const fallbackMessage = "入力内容を確認してください"

// Validator wraps a configured go-playground validator.
// Field names in errors come from the `form` struct tag.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator with the custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("digits", isDigits); err != nil {
		panic(fmt.Sprintf("validation: register digits: %v", err))
	}
	return &Validator{validate: v}
}

// isDigits accepts ASCII decimal digits only. Empty strings are left to `required`.
func isDigits(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// check runs struct rules and keeps the first message per field.
// A non-nil error means the rules themselves could not run.
func (v *Validator) check(form any, messages map[string]string) (Errors, error) {
	errs := Errors{}
	err := v.validate.Struct(form)
	if err == nil {
		return errs, nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, fmt.Errorf("validation: %w", err)
	}
	for _, fe := range fieldErrs {
		field := fe.Field()
		if _, seen := errs[field]; seen {
			continue
		}
		msg, ok := messages[field+"."+fe.Tag()]
		if !ok {
			msg = fallbackMessage
		}
		errs[field] = msg
	}
	return errs, nil
}
