package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mahamedadballa/circlechat-server/internal/handlers"
)

type Deps struct {
	Users   *handlers.UserHandler
	Chats   *handlers.ChatHandler
	Media   *handlers.MediaHandler
	Suggest *handlers.SuggestHandler
	WS      *handlers.WSHandler

	Auth      fiber.Handler
	RateLimit fiber.Handler
	Logging   fiber.Handler
	Recovery  fiber.Handler
}

func Register(app *fiber.App, d Deps) {
	app.Use(d.Recovery)
	app.Use(d.Logging)
	app.Use(d.RateLimit)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api", d.Auth)

	api.Post("/register", d.Users.Register)
	api.Get("/me", d.Users.Me)
	api.Patch("/me", d.Users.UpdateMe)
	api.Put("/me/presence", d.Users.SetPresence)
	api.Get("/contacts", d.Users.Contacts)
	api.Get("/users/short/:shortID", d.Users.GetUserByShortID)
	api.Get("/users/:id", d.Users.GetUser)

	api.Post("/conversations", d.Chats.EnsureConversation)
	api.Get("/conversations", d.Chats.ListConversations)
	api.Get("/conversations/:id/messages", d.Chats.GetMessages)
	api.Post("/conversations/:id/messages", d.Chats.SendMessage)
	api.Post("/conversations/:id/read", d.Chats.MarkRead)
	api.Post("/conversations/:id/typing", d.Chats.Typing)
	api.Put("/messages/:id/status", d.Chats.AdvanceStatus)

	api.Post("/suggestions", d.Suggest.Suggestions)
	api.Post("/media", d.Media.Upload)
	api.Get("/media/:id/url", d.Media.PresignedURL)

	// Websocket sync feed; token comes in the query string since browsers
	// cannot set headers on websocket upgrades.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(d.WS.Serve))
}
