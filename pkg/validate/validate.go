// Package validate checks request DTOs against their `validate` struct tags.
package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()

	// Report fields by their JSON names
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Let numeric tags such as gt=0 apply to decimal amounts
	val.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return val
}

// Struct validates s and returns a map of field name to failed rule, or nil when s is valid
func Struct(s interface{}) map[string]string {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(validationErrors))
	for _, ve := range validationErrors {
		tag := ve.Tag()
		if ve.Param() != "" {
			tag += "=" + ve.Param()
		}
		fields[ve.Field()] = tag
	}
	return fields
}
