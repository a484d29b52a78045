package httpx

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError converts a validator result into the validation error
// kind with a message naming the offending fields.
func ValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Validation(err.Error())
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		if fe.Tag() == "required" {
			parts = append(parts, field+" required")
			continue
		}
		parts = append(parts, field+" invalid ("+fe.Tag()+")")
	}
	return Validation(strings.Join(parts, ", "))
}
