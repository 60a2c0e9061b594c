package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mahamedadballa/circlechat-server/internal/middleware"
	"github.com/mahamedadballa/circlechat-server/internal/service"
)

const maxUploadBytes = 10 << 20 // 10MB

type MediaHandler struct {
	media *service.MediaService
}

func NewMediaHandler(media *service.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// Upload accepts a multipart image and returns the stored media record; its
// URL becomes the content of an image message.
func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "file required"})
	}
	if fh.Size > maxUploadBytes {
		return c.Status(http.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "file too large"})
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "only images are accepted"})
	}

	f, err := fh.Open()
	if err != nil {
		return fail(c, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return fail(c, err)
	}

	media, err := h.media.UploadImage(c.Context(), middleware.UserID(c), fh.Filename, contentType, data)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"media": media})
}

// PresignedURL returns a temporary download URL for a stored object.
func (h *MediaHandler) PresignedURL(c *fiber.Ctx) error {
	url, err := h.media.PresignedURL(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"url": url})
}
