// Package validation wraps go-playground/validator with the messages the
// API reports back to clients.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wadjakorntonsri/ctrltab/pkg/core/domain"
)

var rgbHex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validator checks input structs against their `validate` tags
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// report fields by their JSON name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("rgbhex", func(fl validator.FieldLevel) bool {
		return rgbHex.MatchString(fl.Field().String())
	})

	return &Validator{validate: v}
}

// Struct validates s and returns a domain validation error describing the
// first failing field, or nil.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.Validation(err.Error())
	}
	fe := fieldErrs[0]
	return domain.Validation(message(fe.Field(), fe.Tag(), fe.Param()))
}

func message(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "rgbhex":
		return fmt.Sprintf("%s must be a color in #rrggbb format", field)
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, tag)
	}
}
