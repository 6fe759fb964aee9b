package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, gate fiber.Handler) {
	r.Post("/register", func(c *fiber.Ctx) error {
		var req RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if req.Name == "" || req.Email == "" || req.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name, email, password required")
		}
		user, tokens, err := svc.Register(c.Context(), req)
		if err != nil {
			if errors.Is(err, ErrEmailTaken) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "server error")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user, "tokens": tokens})
	})

	r.Post("/login", func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "email and password required")
		}
		_, resp, err := svc.Login(c.Context(), req)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				return fiber.NewError(fiber.StatusUnauthorized, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "server error")
		}
		return c.JSON(resp)
	})

	r.Get("/me", gate, func(c *fiber.Ctx) error {
		user, err := svc.CurrentUser(c.Context(), UserID(c))
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "server error")
		}
		return c.JSON(user)
	})
}
