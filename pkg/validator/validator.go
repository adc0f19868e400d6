// Package validator wraps go-playground/validator with the custom
// checks the registration API needs and flattens validation failures
// into single user-facing errors.
package validator

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	global     *validator.Validate
	phoneRegex = regexp.MustCompile(`^0[0-9]{8,9}$`)
)

const (
	ErrInvalidFormat      = "Invalid format"
	ErrFieldRequired      = "Field is required"
	ErrFieldExceedsMaxLen = "Field exceeds maximum length"
	ErrFieldBelowMinLen   = "Field is below minimum length"
	ErrFieldExceedsMaxVal = "Field exceeds maximum value"
	ErrFieldBelowMinVal   = "Field is below minimum value"
	ErrUnknownValidation  = "Unknown validation error"
)

func init() {
	SetValidator(New())
}

func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("thaiphone", validateThaiPhone)
	_ = v.RegisterValidation("future", validateFutureDate)
	_ = v.RegisterValidation("edulevel", validateEducationLevel)
	return v
}

func SetValidator(v *validator.Validate) {
	global = v
}

func Validator() *validator.Validate {
	return global
}

func validateThaiPhone(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}

func validateFutureDate(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	return ok && t.After(time.Now())
}

// validateEducationLevel accepts the six secondary-school years.
func validateEducationLevel(fl validator.FieldLevel) bool {
	val := fl.Field().Int()
	return val >= 1 && val <= 6
}

func Validate(ctx context.Context, structure any) error {
	return parseValidationErrors(Validator().StructCtx(ctx, structure))
}

func parseValidationErrors(err error) error {
	if err == nil {
		return nil
	}
	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) || len(vErrors) == 0 {
		return nil
	}
	ve := vErrors[0]
	var msg string
	switch ve.Tag() {
	case "required", "required_without":
		msg = ErrFieldRequired
	case "email", "thaiphone":
		msg = ErrInvalidFormat
	case "max":
		msg = ErrFieldExceedsMaxLen
	case "min":
		msg = ErrFieldBelowMinLen
	case "lt", "lte":
		msg = ErrFieldExceedsMaxVal
	case "gt", "gte":
		msg = ErrFieldBelowMinVal
	case "future":
		msg = "Date must be in the future"
	case "edulevel":
		msg = "Education level must be between 1 and 6"
	default:
		msg = ErrUnknownValidation
	}
	return errors.New(msg + ": " + ve.Namespace())
}
