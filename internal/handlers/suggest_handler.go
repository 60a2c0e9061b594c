package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mahamedadballa/circlechat-server/internal/suggest"
)

type SuggestHandler struct {
	client *suggest.Client
}

func NewSuggestHandler(client *suggest.Client) *SuggestHandler {
	return &SuggestHandler{client: client}
}

// Suggestions returns smart reply suggestions. This endpoint never fails;
// the client falls back to a static list on any upstream trouble.
func (h *SuggestHandler) Suggestions(c *fiber.Ctx) error {
	type Req struct {
		ChatHistory string `json:"chat_history"`
		UserInput   string `json:"user_input"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	suggestions := h.client.Suggest(c.Context(), req.ChatHistory, req.UserInput)
	return c.JSON(fiber.Map{"suggestions": suggestions})
}
