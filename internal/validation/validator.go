// Package validation adapts go-playground/validator to Echo and renders
// failures as field-level errors keyed by JSON name.
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apperrors "storefront/internal/errors"
)

// Errors is a list of field-level validation failures.
type Errors []apperrors.FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HTTPError renders the failures as a 400 response.
func (e Errors) HTTPError() *apperrors.HTTPError {
	httpErr := apperrors.NewHTTPError(http.StatusBadRequest, "validation failed", "VALIDATION_ERROR")
	httpErr.Details = e
	return httpErr
}

// maxMoney is the first amount a decimal(10,2) column cannot hold.
var maxMoney = decimal.New(1, 8)

// ValidMoney reports whether d is a positive amount with at most two decimal
// places that fits a decimal(10,2) column.
func ValidMoney(d decimal.Decimal) bool {
	return d.GreaterThan(decimal.Zero) && d.LessThan(maxMoney) && d.Equal(d.Round(2))
}

// Fail builds a single-field failure for inputs checked outside struct tags.
func Fail(field, message string) Errors {
	return Errors{{Field: field, Message: message}}
}

// Validator implements echo.Validator.
type Validator struct {
	validate *validator.Validate
}

// New returns a validator with the password and money rules and decimal support registered.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	if err := v.RegisterValidation("password", validatePassword); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("money", validateMoney); err != nil {
		panic(err)
	}
	return &Validator{validate: v}
}

// Validate checks struct tags and returns Errors on failure.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperrors.FieldError{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}
	return out
}

// decimalValue lets numeric tags such as gt=0 apply to decimal.Decimal.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// validateMoney reads the decimal from the parent struct, because the custom
// type func has already turned the field into a float64 and dropped its scale.
func validateMoney(fl validator.FieldLevel) bool {
	parent := fl.Parent()
	for parent.Kind() == reflect.Ptr {
		if parent.IsNil() {
			return false
		}
		parent = parent.Elem()
	}
	if parent.Kind() != reflect.Struct {
		return false
	}

	switch d := parent.FieldByName(fl.StructFieldName()).Interface().(type) {
	case decimal.Decimal:
		return ValidMoney(d)
	case *decimal.Decimal:
		return d != nil && ValidMoney(*d)
	}
	return false
}

// validatePassword requires 8+ characters with a lowercase letter, an uppercase
// letter, a digit and a symbol.
func validatePassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len([]rune(s)) < 8 {
		return false
	}

	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid", "uuid4", "uuid_rfc4122":
		return "must be a valid UUID"
	case "url":
		return "must be a valid URL"
	case "password":
		return "must be at least 8 characters long and include a lowercase letter, an uppercase letter, a number and a special character"
	case "money":
		return "must be greater than 0, below 100000000 and have at most 2 decimal places"
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		case reflect.Slice, reflect.Array:
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	}
	return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
}
