package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultMessage renders a per-field message for a binding tag.
func DefaultMessage(field, tag string) string {
	field = strings.ToLower(field[:1]) + field[1:]

	switch tag {
	case "required":
		return fmt.Sprintf("%s must not be empty", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s is below the minimum length", field)
	case "max":
		return fmt.Sprintf("%s exceeds the maximum length", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// TranslateError converts binding/validation failures into per-field
// messages suitable for the error envelope's details. Non-validator errors
// collapse into a single generic entry so raw decoder text never reaches
// clients.
func TranslateError(err error) map[string]string {
	messages := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			messages[strings.ToLower(fieldErr.Field())] = DefaultMessage(fieldErr.Field(), fieldErr.Tag())
		}
		return messages
	}

	messages["request"] = "request body is malformed"
	return messages
}
