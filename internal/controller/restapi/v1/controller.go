package v1

import (
	"github.com/fiapx/video-orchestrator/internal/usecase"
	"github.com/fiapx/video-orchestrator/pkg/logger"
	"github.com/go-playground/validator/v10"
)

type V1 struct {
	v      usecase.VideoUseCase
	logger logger.Interface
	valid  *validator.Validate
}
