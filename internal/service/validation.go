package service

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a form field to its message
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// ключи ошибок совпадают с именами полей формы
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

func validateStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	fe := make(FieldErrors, len(verrs))
	for _, v := range verrs {
		if _, ok := fe[v.Field()]; ok {
			continue
		}
		fe[v.Field()] = fieldMessage(v)
	}
	return fe
}

func fieldMessage(v validator.FieldError) string {
	switch v.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", v.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", v.Param())
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "The two password fields didn't match."
	default:
		return "Enter a valid value."
	}
}
