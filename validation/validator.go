package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"easybook/models"
	"easybook/utils"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once

	phonePattern    = regexp.MustCompile(`^\+?[\d\s\-()]{7,20}$`)
	hhmmPattern     = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)
	imageURLPattern = regexp.MustCompile(`(?i)^https?://.+\.(jpg|jpeg|png|gif|webp)(\?.*)?$`)
)

// GetValidator returns the shared validator with the domain tags registered.
func GetValidator() *validator.Validate {
	once.Do(initValidator)
	return validate
}

func initValidator() {
	validate = validator.New()

	// Report json field names so clients can map errors back to their payload.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmPattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("timeslot", func(fl validator.FieldLevel) bool {
		return IsTimeSlot(fl.Field().String())
	})
	_ = validate.RegisterValidation("imageurl", func(fl validator.FieldLevel) bool {
		return imageURLPattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).IsValid()
	})
	_ = validate.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return IsWeekday(fl.Field().String())
	})
}

// Struct validates v and converts failures into a validation AppError.
func Struct(v interface{}) error {
	err := GetValidator().Struct(v)
	if err == nil {
		return nil
	}
	fields := ParseErrors(err)
	if len(fields) == 0 {
		return utils.NewValidationError("Validation failed", utils.FieldError{Message: err.Error()})
	}
	return utils.NewValidationError("Validation failed", fields...)
}

// ParseErrors turns validator output into field errors.
func ParseErrors(err error) []utils.FieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	errs := make([]utils.FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		errs = append(errs, utils.FieldError{Field: fieldPath(e), Message: prettyError(e)})
	}
	return errs
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func prettyError(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		}
		if e.Kind() == reflect.Slice || e.Kind() == reflect.Map {
			return fmt.Sprintf("%s must contain at least %s items", field, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot exceed %s characters", field, e.Param())
		}
		if e.Kind() == reflect.Slice || e.Kind() == reflect.Map {
			return fmt.Sprintf("%s cannot contain more than %s items", field, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(e.Param(), " ", ", "))
	case "email":
		return "Please provide a valid email"
	case "phone":
		return "Please provide a valid phone number"
	case "hhmm":
		return field + " must be in HH:MM format"
	case "timeslot":
		return field + " must be HH:MM or HH:MM-HH:MM"
	case "imageurl":
		return field + " must be a valid image URL"
	case "url":
		return field + " must be a valid URL"
	case "category":
		return field + " must be a valid service category"
	case "weekday":
		return field + " must be a weekday name"
	case "numeric":
		return field + " must contain only digits"
	default:
		return e.Error()
	}
}
