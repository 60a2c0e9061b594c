package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mahamedadballa/circlechat-server/internal/middleware"
	"github.com/mahamedadballa/circlechat-server/internal/models"
	"github.com/mahamedadballa/circlechat-server/internal/service"
)

type UserHandler struct {
	identity *service.IdentityService
	profile  *service.ProfileService
}

func NewUserHandler(identity *service.IdentityService, profile *service.ProfileService) *UserHandler {
	return &UserHandler{identity: identity, profile: profile}
}

// Register completes registration for the authenticated uid.
func (h *UserHandler) Register(c *fiber.Ctx) error {
	type Req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
		Email     string `json:"email"`
		Avatar    string `json:"avatar"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.FirstName == "" || req.LastName == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "first and last name required"})
	}

	user, err := h.identity.Register(c.Context(), middleware.UserID(c), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Avatar:    req.Avatar,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"user": user})
}

// Me returns the caller's profile.
func (h *UserHandler) Me(c *fiber.Ctx) error {
	user, err := h.identity.ResolveUser(c.Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// UpdateMe applies a partial profile update.
func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	var patch models.ProfilePatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	user, err := h.profile.UpdateProfile(c.Context(), middleware.UserID(c), patch)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// SetPresence flips the caller's online/offline flag.
func (h *UserHandler) SetPresence(c *fiber.Ctx) error {
	type Req struct {
		Status string `json:"status"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	if err := h.profile.SetPresence(c.Context(), middleware.UserID(c), req.Status); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": req.Status})
}

// GetUser resolves a user by uid.
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.identity.ResolveUser(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	pres, presErr := h.profile.GetPresence(c.Context(), user.UID)
	if presErr == nil {
		user.Status = pres.Status
	}
	return c.JSON(fiber.Map{"user": user})
}

// GetUserByShortID resolves a user by their shareable 9-digit ID.
func (h *UserHandler) GetUserByShortID(c *fiber.Ctx) error {
	user, err := h.identity.ResolveByShortID(c.Context(), c.Params("shortID"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// Contacts lists every other registered user.
func (h *UserHandler) Contacts(c *fiber.Ctx) error {
	users, err := h.identity.Contacts(c.Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	// An empty contact list is a valid result, not an error.
	if users == nil {
		users = []models.User{}
	}
	return c.JSON(fiber.Map{"users": users})
}
