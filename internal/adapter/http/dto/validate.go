package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report json names, not Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate checks a request struct and returns field errors keyed by json name,
// or nil when the struct is valid.
func Validate(s any) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			fields[field] = "is required"
		case "len":
			fields[field] = "must be " + fe.Param() + " characters"
		case "gte":
			fields[field] = "must be at least " + fe.Param()
		case "lte":
			fields[field] = "must be at most " + fe.Param()
		case "oneof":
			fields[field] = "must be one of: " + fe.Param()
		case "nefield":
			fields[field] = "must differ from " + fe.Param()
		default:
			fields[field] = "is invalid"
		}
	}

	return fields
}
