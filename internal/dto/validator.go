package dto

import (
	"reflect"
	"strings"

	"trading-journal/pkg/utils"

	goValidator "github.com/go-playground/validator/v10"
)

// NewValidator returns a validator with the journal specific tags registered.
//
//	clock: HH:MM or HH:MM:SS
//
// Field errors are reported under their json or query name.
func NewValidator() *goValidator.Validate {
	v := goValidator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "query", "form"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return field.Name
	})
	_ = v.RegisterValidation("clock", func(fl goValidator.FieldLevel) bool {
		return utils.IsValidClock(fl.Field().String())
	})
	return v
}
