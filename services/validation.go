package services

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag as the field name in error output
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		val := strings.TrimSpace(fl.Field().String())
		if val == "" {
			return true
		}
		return isClockTime(val)
	})
}

// ValidateStruct runs struct tag validation and returns a ValidationError with per-field messages
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := make(map[string][]string)
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out[field] = append(out[field], "This field is required")
		case "email":
			out[field] = append(out[field], "Invalid email format")
		case "min":
			if e.Kind() == reflect.String {
				out[field] = append(out[field], fmt.Sprintf("Must be at least %s characters", e.Param()))
			} else if e.Kind() == reflect.Slice {
				out[field] = append(out[field], fmt.Sprintf("Must contain at least %s item(s)", e.Param()))
			} else {
				out[field] = append(out[field], fmt.Sprintf("Must be at least %s", e.Param()))
			}
		case "max":
			if e.Kind() == reflect.String {
				out[field] = append(out[field], fmt.Sprintf("Must be at most %s characters", e.Param()))
			} else {
				out[field] = append(out[field], fmt.Sprintf("Must be at most %s", e.Param()))
			}
		case "oneof":
			out[field] = append(out[field], "Value is not allowed")
		case "gte":
			out[field] = append(out[field], fmt.Sprintf("Must be greater than or equal to %s", e.Param()))
		case "hhmm":
			out[field] = append(out[field], "Must be a time in HH:MM format")
		case "dive":
			out[field] = append(out[field], "Contains an invalid entry")
		default:
			out[field] = append(out[field], e.Error())
		}
	}

	return &ValidationError{Message: "Validation failed", Fields: out}
}

func isClockTime(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}
