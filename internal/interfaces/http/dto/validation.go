package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// periodPattern matches the YYYY-MM accounting period key
var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// RegisterValidators installs custom binding validators on gin's
// validator engine. Call once at startup.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("period", func(fl validator.FieldLevel) bool {
			return periodPattern.MatchString(fl.Field().String())
		})
	}
}
