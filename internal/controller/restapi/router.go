package restapi

import (
	"net/http"

	"github.com/fiapx/video-orchestrator/config"
	"github.com/fiapx/video-orchestrator/internal/controller/restapi/middleware"
	v1 "github.com/fiapx/video-orchestrator/internal/controller/restapi/v1"
	"github.com/fiapx/video-orchestrator/internal/usecase"
	"github.com/fiapx/video-orchestrator/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @title       Video orchestrator
// @version     1.0.0
// @host        localhost:3000
// @BasePath    /
func NewRouter(app *fiber.App, cfg *config.Config, v usecase.VideoUseCase, l logger.Interface) {
	app.Use(recover.New())

	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// K8s probe
	app.Get("/healthz", func(ctx *fiber.Ctx) error { return ctx.SendStatus(http.StatusOK) })

	// Prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Routers
	videosGroup := app.Group("/videos", middleware.Identity(cfg.Auth.JWTSecret, l))
	{
		v1.NewVideoRoutes(videosGroup, v, l)
	}
}
