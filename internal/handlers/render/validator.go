package render

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

func configureValidator(validate *validator.Validate) {
	_ = validate.RegisterValidation("phone", validatePhone)
	validate.RegisterTagNameFunc(useJSONTagNames)
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

// Belarusian phone numbers only, same contract the mobile clients rely on
var phoneRegexp = regexp.MustCompile(`^\+375 \(\d{2}\) \d{3}-\d{2}-\d{2}$`)

func validatePhone(fl validator.FieldLevel) bool {
	return phoneRegexp.MatchString(fl.Field().String())
}
