package profile

import (
	"errors"
	"strings"

	"backend-devconnect/internal/auth"

	"github.com/gofiber/fiber/v2"
)

type upsertRequest struct {
	Status     string `json:"status"`
	Company    string `json:"company"`
	Website    string `json:"website"`
	Location   string `json:"location"`
	Bio        string `json:"bio"`
	GithubUser string `json:"github_username"`
	Skills     string `json:"skills"`
	Youtube    string `json:"youtube"`
	Twitter    string `json:"twitter"`
	Facebook   string `json:"facebook"`
	Linkedin   string `json:"linkedin"`
	Instagram  string `json:"instagram"`
}

func RegisterRoutes(r fiber.Router, svc *Service, gate fiber.Handler) {
	r.Get("/me", gate, func(c *fiber.Ctx) error {
		p, err := svc.GetByUser(c.Context(), auth.UserID(c))
		if err != nil {
			return errorResponse(err)
		}
		return c.JSON(p)
	})

	r.Post("/", gate, func(c *fiber.Ctx) error {
		var req upsertRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if req.Status == "" || req.Skills == "" {
			return fiber.NewError(fiber.StatusBadRequest, "status and skills required")
		}
		p, err := svc.Upsert(c.Context(), auth.UserID(c), Profile{
			Status:     req.Status,
			Company:    req.Company,
			Website:    req.Website,
			Location:   req.Location,
			Bio:        req.Bio,
			GithubUser: req.GithubUser,
			Skills:     splitSkills(req.Skills),
			Social: SocialLinks{
				Youtube:   req.Youtube,
				Twitter:   req.Twitter,
				Facebook:  req.Facebook,
				Linkedin:  req.Linkedin,
				Instagram: req.Instagram,
			},
		})
		if err != nil {
			return errorResponse(err)
		}
		return c.JSON(p)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		profiles, err := svc.List(c.Context())
		if err != nil {
			return errorResponse(err)
		}
		return c.JSON(profiles)
	})

	r.Get("/user/:userID", func(c *fiber.Ctx) error {
		p, err := svc.GetByUser(c.Context(), c.Params("userID"))
		if err != nil {
			return errorResponse(err)
		}
		return c.JSON(p)
	})

	r.Delete("/", gate, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), auth.UserID(c)); err != nil {
			return errorResponse(err)
		}
		return c.JSON(fiber.Map{"msg": "user removed"})
	})

	r.Put("/experience", gate, func(c *fiber.Ctx) error {
		var entry Experience
		if err := c.BodyParser(&entry); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if entry.Title == "" || entry.Company == "" || entry.From.IsZero() {
			return fiber.NewError(fiber.StatusBadRequest, "title, company, from required")
		}
		userID := auth.UserID(c)
		p, err := svc.AddExperience(c.Context(), userID, userID, entry)
		if err != nil {
			return errorResponse(err)
		}
		return c.JSON(p)
	})

	r.Delete("/experience/:id", gate, func(c *fiber.Ctx) error {
		userID := auth.UserID(c)
		p, err := svc.RemoveExperience(c.Context(), userID, userID, c.Params("id"))
		if err != nil {
			return errorResponse(err)
		}
		return c.JSON(p)
	})

	r.Put("/education", gate, func(c *fiber.Ctx) error {
		var entry Education
		if err := c.BodyParser(&entry); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if entry.School == "" || entry.Degree == "" || entry.From.IsZero() {
			return fiber.NewError(fiber.StatusBadRequest, "school, degree, from required")
		}
		userID := auth.UserID(c)
		p, err := svc.AddEducation(c.Context(), userID, userID, entry)
		if err != nil {
			return errorResponse(err)
		}
		return c.JSON(p)
	})

	r.Delete("/education/:id", gate, func(c *fiber.Ctx) error {
		userID := auth.UserID(c)
		p, err := svc.RemoveEducation(c.Context(), userID, userID, c.Params("id"))
		if err != nil {
			return errorResponse(err)
		}
		return c.JSON(p)
	})
}

func errorResponse(err error) *fiber.Error {
	switch {
	case errors.Is(err, ErrProfileNotFound), errors.Is(err, ErrEntryNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotProfileOwner):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "server error")
	}
}

func splitSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}
	return skills
}
