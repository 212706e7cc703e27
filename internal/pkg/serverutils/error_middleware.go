package serverutils

import (
	"errors"

	"mindcare-chat-be/internal/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts coded application errors into stable HTTP
// responses. Handlers just return errors.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(apperr.CodeInternal, fiberErr.Message))
		}

		code := apperr.CodeOf(err)
		return ctx.Status(statusFor(code)).JSON(ErrorResponse(code, err.Error()))
	}
}

func statusFor(code string) int {
	switch code {
	case apperr.CodeValidationFailed:
		return fiber.StatusBadRequest
	case apperr.CodeSessionNotFound:
		return fiber.StatusNotFound
	case apperr.CodeTokenQuotaExceeded:
		return fiber.StatusTooManyRequests
	case apperr.CodeProviderExhausted:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
