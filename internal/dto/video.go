package dto

import (
	"time"

	"github.com/fiapx/video-orchestrator/internal/entity"
)

type CreateUploadOutput struct {
	VideoID   string
	UploadURL string
	Status    entity.VideoStatus
}

type FinishProcessingInput struct {
	VideoID      string
	Success      bool
	ZipKey       string
	ErrorMessage string
}

type VideoSummary struct {
	VideoID     string
	FileName    string
	Status      entity.VideoStatus
	CreatedAt   time.Time
	DownloadURL *string
}
