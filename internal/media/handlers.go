package media

import (
	"context"

	"backend-devconnect/internal/auth"
	"backend-devconnect/internal/db"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) SaveObject(ctx context.Context, userID, url, kind string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(ctx, `
		INSERT INTO media_objects (id, user_id, url, kind)
		VALUES ($1,$2,$3,$4)
	`, id, userID, url, kind)
	if err != nil {
		return "", err
	}
	return id, nil
}

func RegisterRoutes(r fiber.Router, svc *Service, gate fiber.Handler) {
	r.Post("/upload", gate, func(c *fiber.Ctx) error {
		var body struct {
			FileName string `json:"file_name"`
			Kind     string `json:"kind"`
		}
		_ = c.BodyParser(&body)
		if body.FileName == "" {
			body.FileName = "upload"
		}
		url := "https://media.devconnect.example/" + body.FileName
		id, err := svc.SaveObject(c.Context(), auth.UserID(c), url, body.Kind)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "server error")
		}
		return c.JSON(fiber.Map{"id": id, "url": url})
	})
}
