package video

import (
	"context"
	"errors"
	"fmt"

	"github.com/fiapx/video-orchestrator/internal/dto"
	"github.com/fiapx/video-orchestrator/internal/entity"
	"github.com/fiapx/video-orchestrator/internal/infrastructure"
	"github.com/fiapx/video-orchestrator/internal/infrastructure/metrics"
	"github.com/fiapx/video-orchestrator/internal/repo"
	"github.com/fiapx/video-orchestrator/pkg/logger"
	"github.com/fiapx/video-orchestrator/pkg/types/errs"
	"github.com/google/uuid"
)

const (
	notificationDone  = "Seu vídeo está pronto!"
	notificationError = "Houve um erro no processamento"
)

type Queues struct {
	Work         string
	Notification string
}

type VideoUseCase struct {
	repo    repo.VideoRepo
	storage repo.VideoStorage
	locker  repo.Locker
	queue   infrastructure.QueueGateway
	queues  Queues

	logger logger.Interface
}

func New(
	r repo.VideoRepo,
	storage repo.VideoStorage,
	locker repo.Locker,
	queue infrastructure.QueueGateway,
	queues Queues,
	l logger.Interface,
) *VideoUseCase {
	return &VideoUseCase{
		repo:    r,
		storage: storage,
		locker:  locker,
		queue:   queue,
		queues:  queues,
		logger:  l,
	}
}

func (uc *VideoUseCase) CreateUpload(ctx context.Context, fileName, userID string) (dto.CreateUploadOutput, error) {
	videoID := uuid.NewString()

	// 1. upload slot first, nothing is stored if storage fails
	uploadURL, rawKey, err := uc.storage.GenerateUploadURL(ctx, videoID, fileName)
	if err != nil {
		return dto.CreateUploadOutput{}, fmt.Errorf("VideoUseCase - CreateUpload - uc.storage.GenerateUploadURL: %w", err)
	}

	// 2. pending record
	video := entity.NewVideo(videoID, userID, fileName, rawKey)

	err = uc.repo.Create(ctx, video)
	if err != nil {
		return dto.CreateUploadOutput{}, fmt.Errorf("VideoUseCase - CreateUpload - uc.repo.Create: %w", err)
	}

	metrics.VideoTransitionsTotal.WithLabelValues(video.Status.String()).Inc()

	return dto.CreateUploadOutput{
		VideoID:   video.ID,
		UploadURL: uploadURL,
		Status:    video.Status,
	}, nil
}

func (uc *VideoUseCase) StartProcessing(ctx context.Context, videoID string) error {
	unlock, err := uc.locker.Lock(ctx, videoID)
	if err != nil {
		return fmt.Errorf("VideoUseCase - StartProcessing - uc.locker.Lock: %w", err)
	}
	defer unlock()

	// 1. load
	video, err := uc.load(ctx, videoID)
	if err != nil {
		return fmt.Errorf("VideoUseCase - StartProcessing: %w", err)
	}

	// 2. transition, persisting only a real change
	alreadyProcessing := video.Status == entity.StatusProcessing

	err = video.StartProcessing()
	if err != nil {
		return fmt.Errorf("VideoUseCase - StartProcessing - video.StartProcessing: %w", err)
	}

	if !alreadyProcessing {
		err = uc.repo.Update(ctx, video)
		if err != nil {
			return fmt.Errorf("VideoUseCase - StartProcessing - uc.repo.Update: %w", err)
		}
		metrics.VideoTransitionsTotal.WithLabelValues(video.Status.String()).Inc()
	}

	// 3. dispatch work; a redelivery after a failed dispatch lands here again
	err = uc.queue.SendMessage(ctx, uc.queues.Work, dto.WorkMessage{
		VideoID:     video.ID,
		InputBucket: uc.storage.RawBucket(),
		InputKey:    video.RawKey,
	})
	if err != nil {
		return fmt.Errorf("VideoUseCase - StartProcessing - uc.queue.SendMessage: %w", err)
	}

	uc.logger.Info("VideoUseCase - StartProcessing - video %s sent to processing", video.ID)

	return nil
}

func (uc *VideoUseCase) FinishProcessing(ctx context.Context, input dto.FinishProcessingInput) error {
	unlock, err := uc.locker.Lock(ctx, input.VideoID)
	if err != nil {
		return fmt.Errorf("VideoUseCase - FinishProcessing - uc.locker.Lock: %w", err)
	}
	defer unlock()

	// 1. load
	video, err := uc.load(ctx, input.VideoID)
	if err != nil {
		return fmt.Errorf("VideoUseCase - FinishProcessing: %w", err)
	}

	// 2. transition
	before := *video
	reason := input.ErrorMessage

	if input.Success && input.ZipKey != "" {
		err = video.Complete(input.ZipKey)
	} else {
		if reason == "" {
			reason = entity.DefaultProcessingError
		}
		err = video.Fail()
	}
	if err != nil {
		return fmt.Errorf("VideoUseCase - FinishProcessing - transition: %w", err)
	}

	// 3. persist
	if video.Status != before.Status || video.ZipKey != before.ZipKey {
		err = uc.repo.Update(ctx, video)
		if err != nil {
			return fmt.Errorf("VideoUseCase - FinishProcessing - uc.repo.Update: %w", err)
		}
		metrics.VideoTransitionsTotal.WithLabelValues(video.Status.String()).Inc()
	}

	// 4. notify
	err = uc.queue.SendMessage(ctx, uc.queues.Notification, notificationFor(video, reason))
	if err != nil {
		return fmt.Errorf("VideoUseCase - FinishProcessing - uc.queue.SendMessage: %w", err)
	}

	if video.Status == entity.StatusError {
		uc.logger.Warn("VideoUseCase - FinishProcessing - video %s failed: %s", video.ID, reason)
	} else {
		uc.logger.Info("VideoUseCase - FinishProcessing - video %s done", video.ID)
	}

	return nil
}

func (uc *VideoUseCase) ListUserVideos(ctx context.Context, userID string) ([]dto.VideoSummary, error) {
	videos, err := uc.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("VideoUseCase - ListUserVideos - uc.repo.ListByUser: %w", err)
	}

	summaries := make([]dto.VideoSummary, 0, len(videos))
	for _, v := range videos {
		summary := dto.VideoSummary{
			VideoID:   v.ID,
			FileName:  v.FileName,
			Status:    v.Status,
			CreatedAt: v.CreatedAt,
		}

		if v.Status == entity.StatusDone && v.ZipKey != "" {
			downloadURL, err := uc.storage.GenerateDownloadURL(ctx, v.ZipKey)
			if err != nil {
				uc.logger.Error(err, "VideoUseCase - ListUserVideos - uc.storage.GenerateDownloadURL")
			} else {
				summary.DownloadURL = &downloadURL
			}
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func (uc *VideoUseCase) load(ctx context.Context, videoID string) (*entity.Video, error) {
	video, err := uc.repo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return nil, errs.ErrVideoNotFound
		}
		return nil, fmt.Errorf("uc.repo.GetByID: %w", err)
	}

	return video, nil
}
