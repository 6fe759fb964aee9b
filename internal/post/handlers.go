package post

import (
	"errors"

	"backend-devconnect/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, gate fiber.Handler) {
	r.Post("/", gate, func(c *fiber.Ctx) error {
		var body struct {
			Text string `json:"text"`
		}
		if err := c.BodyParser(&body); err != nil || body.Text == "" {
			return fiber.NewError(fiber.StatusBadRequest, "text is required")
		}
		p, err := svc.Create(c.Context(), auth.UserID(c), body.Text)
		if err != nil {
			return errorResponse(err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	})

	r.Get("/", gate, func(c *fiber.Ctx) error {
		posts, err := svc.List(c.Context())
		if err != nil {
			return errorResponse(err)
		}
		return c.JSON(posts)
	})

	r.Get("/:id", gate, func(c *fiber.Ctx) error {
		p, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return errorResponse(err)
		}
		return c.JSON(p)
	})

	r.Delete("/:id", gate, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Params("id"), auth.UserID(c)); err != nil {
			return errorResponse(err)
		}
		return c.JSON(fiber.Map{"msg": "post removed"})
	})

	r.Put("/:id/like", gate, func(c *fiber.Ctx) error {
		likes, err := svc.Like(c.Context(), c.Params("id"), auth.UserID(c))
		if err != nil {
			return errorResponse(err)
		}
		return c.JSON(likes)
	})

	r.Put("/:id/unlike", gate, func(c *fiber.Ctx) error {
		likes, err := svc.Unlike(c.Context(), c.Params("id"), auth.UserID(c))
		if err != nil {
			return errorResponse(err)
		}
		return c.JSON(likes)
	})

	r.Post("/:id/comments", gate, func(c *fiber.Ctx) error {
		var body struct {
			Text string `json:"text"`
		}
		if err := c.BodyParser(&body); err != nil || body.Text == "" {
			return fiber.NewError(fiber.StatusBadRequest, "text is required")
		}
		comments, err := svc.AddComment(c.Context(), c.Params("id"), auth.UserID(c), body.Text)
		if err != nil {
			return errorResponse(err)
		}
		return c.Status(fiber.StatusCreated).JSON(comments)
	})

	r.Delete("/:id/comments/:commentID", gate, func(c *fiber.Ctx) error {
		comments, err := svc.RemoveComment(c.Context(), c.Params("id"), c.Params("commentID"), auth.UserID(c))
		if err != nil {
			return errorResponse(err)
		}
		return c.JSON(comments)
	})
}

// errorResponse maps service failures onto HTTP statuses. Storage
// errors become an opaque 500 so internals never reach clients.
func errorResponse(err error) *fiber.Error {
	switch {
	case errors.Is(err, ErrPostNotFound), errors.Is(err, ErrCommentNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotPostOwner), errors.Is(err, ErrNotCommentOwner):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrAlreadyLiked), errors.Is(err, ErrNotLiked):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "server error")
	}
}
