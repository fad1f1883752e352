package usecase

import (
	"context"

	"github.com/fiapx/video-orchestrator/internal/dto"
)

type (
	VideoUseCase interface {
		CreateUpload(ctx context.Context, fileName, userID string) (dto.CreateUploadOutput, error)
		StartProcessing(ctx context.Context, videoID string) error
		FinishProcessing(ctx context.Context, input dto.FinishProcessingInput) error
		ListUserVideos(ctx context.Context, userID string) ([]dto.VideoSummary, error)
	}
)
