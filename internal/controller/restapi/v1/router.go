package v1

import (
	"github.com/fiapx/video-orchestrator/internal/usecase"
	"github.com/fiapx/video-orchestrator/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

func NewVideoRoutes(videosGroup fiber.Router, v usecase.VideoUseCase, l logger.Interface) {
	r := &V1{v: v, logger: l, valid: validator.New(validator.WithRequiredStructEnabled())}

	{
		videosGroup.Post("/", r.createVideo)
		videosGroup.Get("/", r.listVideos)
	}
}
