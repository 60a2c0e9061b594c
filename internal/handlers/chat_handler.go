package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mahamedadballa/circlechat-server/internal/events"
	"github.com/mahamedadballa/circlechat-server/internal/metrics"
	"github.com/mahamedadballa/circlechat-server/internal/middleware"
	"github.com/mahamedadballa/circlechat-server/internal/models"
	"github.com/mahamedadballa/circlechat-server/internal/service"
)

type ChatHandler struct {
	directory *service.DirectoryService
	messages  *service.MessageLogService
	events    *events.Publisher
}

func NewChatHandler(directory *service.DirectoryService, messages *service.MessageLogService, pub *events.Publisher) *ChatHandler {
	return &ChatHandler{directory: directory, messages: messages, events: pub}
}

// EnsureConversation opens (or returns) the conversation with a peer.
func (h *ChatHandler) EnsureConversation(c *fiber.Ctx) error {
	type Req struct {
		PeerID string `json:"peer_id"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	conv, err := h.directory.EnsureConversation(c.Context(), middleware.UserID(c), req.PeerID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"conversation": conv})
}

// ListConversations lists the caller's conversations.
func (h *ChatHandler) ListConversations(c *fiber.Ctx) error {
	views, err := h.directory.ListConversationsFor(c.Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	if views == nil {
		views = []models.ConversationView{}
	}
	return c.JSON(fiber.Map{"conversations": views})
}

// GetMessages returns the conversation's ordered message view.
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	msgs, err := h.messages.OrderedView(c.Context(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

// SendMessage appends a message to the conversation.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	type Req struct {
		Text string `json:"text"`
		Type string `json:"type"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.Type == "" {
		req.Type = models.MessageText
	}
	msg, err := h.messages.Append(c.Context(), c.Params("id"), middleware.UserID(c), req.Text, req.Type)
	if err != nil {
		return fail(c, err)
	}
	metrics.MessagesAppended.Inc()
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": msg})
}

// MarkRead marks everything the caller received in the conversation as read.
func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	ids, err := h.messages.MarkConversationRead(c.Context(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(fiber.Map{"message_ids": ids})
}

// Typing relays a typing indicator to the other participant. Nothing is
// persisted; the event only exists on the wire.
func (h *ChatHandler) Typing(c *fiber.Ctx) error {
	type Req struct {
		IsTyping bool `json:"is_typing"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	uid := middleware.UserID(c)
	convID := c.Params("id")
	if _, err := h.directory.GetConversation(c.Context(), convID, uid); err != nil {
		return fail(c, err)
	}
	h.events.Typing(c.Context(), convID, uid, req.IsTyping)
	return c.JSON(fiber.Map{"message": "status updated"})
}

// AdvanceStatus moves a message's delivery status forward.
func (h *ChatHandler) AdvanceStatus(c *fiber.Ctx) error {
	type Req struct {
		Status string `json:"status"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	msg, err := h.messages.AdvanceStatus(c.Context(), c.Params("id"), middleware.UserID(c), req.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": msg})
}
