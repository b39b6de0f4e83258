package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Nigerian NUBAN account numbers are exactly 10 digits
	validate.RegisterValidation("nuban", func(fl validator.FieldLevel) bool {
		acct := fl.Field().String()
		if len(acct) != 10 {
			return false
		}
		for _, c := range acct {
			if c < '0' || c > '9' {
				return false
			}
		}
		return true
	})

	// Ethereum address: 0x followed by 40 hex characters
	validate.RegisterValidation("eth_address", func(fl validator.FieldLevel) bool {
		addr := fl.Field().String()
		if len(addr) != 42 || !strings.HasPrefix(addr, "0x") {
			return false
		}
		for _, c := range addr[2:] {
			switch {
			case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
			default:
				return false
			}
		}
		return true
	})
}

// Validate validates a struct and returns a map of field errors,
// or nil when the struct is valid.
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		details[fe.Field()] = messageFor(fe)
	}
	return details
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Value is too small"
	case "max":
		return "Value is too large"
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "nuban":
		return "Must be a 10-digit account number"
	case "eth_address":
		return "Must be a valid Ethereum address"
	default:
		return "Invalid value"
	}
}
