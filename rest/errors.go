package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/mealdiary/mealdiary"
)

// ErrorResponse is the wire shape of every failure.
type ErrorResponse struct {
	Message  string `json:"message"`
	TextCode string `json:"text_code,omitempty"`
}

// RespondError maps a rich error to its HTTP status and renders the
// {message, text_code} body. Codes on the error are HTTP statuses;
// anything unmapped degrades to a category lookup, then to 500.
func RespondError(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal).
			WithTextCode(mealdiary.TextCodeUnexpected)
	}

	status := richErr.Code
	if status == 0 {
		status = statusFromCategory(richErr.Category)
	}

	body := ErrorResponse{
		Message:  richErr.Message,
		TextCode: richErr.TextCode,
	}
	if body.TextCode == "" {
		body.TextCode = textCodeFromStatus(status)
	}

	// Internal details never leak to clients.
	if status >= fiber.StatusInternalServerError {
		body.Message = "An unexpected server error occurred"
		body.TextCode = mealdiary.TextCodeUnexpected
	}

	return c.Status(status).JSON(body)
}

func statusFromCategory(category errors.Category) int {
	switch category {
	case errors.CategoryValidation, errors.CategoryBadInput:
		return fiber.StatusBadRequest
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func textCodeFromStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return mealdiary.TextCodeInvalidInput
	case fiber.StatusUnauthorized:
		return mealdiary.TextCodeUnauthenticated
	case fiber.StatusNotFound:
		return mealdiary.TextCodeNotFound
	case fiber.StatusConflict:
		return mealdiary.TextCodeConflict
	default:
		return mealdiary.TextCodeUnexpected
	}
}
