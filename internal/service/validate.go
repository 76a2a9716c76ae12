package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// report fields by their json names so errors line up with the request body
		validate.RegisterTagNameFunc(func(sf reflect.StructField) string {
			name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return sf.Name
			}
			return name
		})
	})

	return validate
}

// check runs struct tag validation and converts failures into a
// ValidationError. The result is never nil.
func check(in interface{}) (*ValidationError, error) {
	verr := &ValidationError{}

	err := validatorInstance().Struct(in)
	if err == nil {
		return verr, nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return nil, err
	}

	for _, fe := range fieldErrors {
		verr.Add(fe.Field(), validationMessage(fe.Tag(), fe.Param()))
	}

	return verr, nil
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param + " characters"
	case "max":
		return "may not be greater than " + param + " characters"
	case "eqfield":
		return "confirmation does not match"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
