package server

import (
	"backend-devconnect/internal/auth"
	"backend-devconnect/internal/config"
	"backend-devconnect/internal/media"
	"backend-devconnect/internal/post"
	"backend-devconnect/internal/profile"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App   *fiber.App
	Cfg   config.Config
	DB    *pgxpool.Pool
	Redis *redis.Client
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:   app,
		Cfg:   cfg,
		DB:    db,
		Redis: redisClient,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	codec := auth.NewCodec(s.Cfg.JWTSecret, s.Cfg.TokenTTL)
	gate := auth.Gate(codec)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(codec, s.DB), gate)
	post.RegisterRoutes(s.App.Group("/posts"), post.NewService(s.DB), gate)
	profile.RegisterRoutes(s.App.Group("/profiles"), profile.NewService(s.DB, s.Redis), gate)
	media.RegisterRoutes(s.App.Group("/media"), media.NewService(s.DB), gate)
}
