package server

import (
	"strarun-gateway/internal/cache"
	"strarun-gateway/internal/config"
	"strarun-gateway/internal/data"
	"strarun-gateway/internal/session"
	"strarun-gateway/internal/strava"
	"strarun-gateway/internal/transport"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App     *fiber.App
	Cfg     config.Config
	Redis   *redis.Client
	Session *session.Manager
	Data    *data.Facade
}

func NewServer(cfg config.Config, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	store := cache.NewStore(redisClient)
	creds := session.NewCredentials()
	api := strava.NewClient(transport.New(cfg.BackendURL, creds))

	s := &Server{
		App:     app,
		Cfg:     cfg,
		Redis:   redisClient,
		Session: session.NewManager(api, store, creds),
		Data:    data.NewFacade(api, store, cfg.CacheTTL),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	session.RegisterRoutes(s.App.Group("/auth"), s.Session)
	data.RegisterRoutes(s.App, s.Data, s.Session)
}
