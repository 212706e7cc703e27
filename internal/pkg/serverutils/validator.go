package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"mindcare-chat-be/internal/pkg/apperr"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks struct tags and converts violations into a coded
// validation error the error middleware can map.
func ValidateRequest(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var violations validator.ValidationErrors
	if !errors.As(err, &violations) {
		return apperr.Wrap(apperr.CodeValidationFailed, "invalid request", err)
	}

	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, fmt.Sprintf("field %s failed on %s", v.Field(), v.Tag()))
	}
	return apperr.New(apperr.CodeValidationFailed, strings.Join(parts, "; "))
}
