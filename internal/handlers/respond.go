package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mahamedadballa/circlechat-server/internal/apperr"
)

// fail maps service errors to HTTP statuses. Anything unrecognized is an
// internal error; the detail stays in the logs, not the response.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, apperr.ErrBadRequest):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	case errors.Is(err, apperr.ErrUnauthorized):
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "not a participant"})
	case errors.Is(err, apperr.ErrConversationNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "conversation not found"})
	case errors.Is(err, apperr.ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, apperr.ErrUnavailable):
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"error": "store unavailable"})
	default:
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
