package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/fiapx/video-orchestrator/internal/dto"
	"github.com/fiapx/video-orchestrator/internal/entity"
	"github.com/fiapx/video-orchestrator/internal/usecase"
	"github.com/fiapx/video-orchestrator/pkg/logger"
	"github.com/fiapx/video-orchestrator/pkg/types/errs"
)

type Handlers struct {
	v      usecase.VideoUseCase
	logger logger.Interface
}

func NewHandlers(v usecase.VideoUseCase, l logger.Interface) *Handlers {
	return &Handlers{v: v, logger: l}
}

// UploadEvents maps an upload notification to StartProcessing.
func (h *Handlers) UploadEvents(ctx context.Context, msg *entity.QueueMessage) error {
	var event uploadEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("Handlers - UploadEvents - json.Unmarshal: %w", errs.MarkPermanent(err))
	}
	if len(event.Records) == 0 {
		return fmt.Errorf("Handlers - UploadEvents - no records: %w", errs.ErrInvalidPayload)
	}

	key, err := url.QueryUnescape(event.Records[0].S3.Object.Key)
	if err != nil {
		return fmt.Errorf("Handlers - UploadEvents - url.QueryUnescape: %w", errs.MarkPermanent(err))
	}

	videoID, ok := entity.VideoIDFromRawKey(key)
	if !ok {
		h.logger.Warn("Handlers - UploadEvents - ignoring object %q", key)
		return fmt.Errorf("Handlers - UploadEvents - unexpected key %q: %w", key, errs.ErrInvalidPayload)
	}

	err = h.v.StartProcessing(ctx, videoID)
	if err != nil {
		return fmt.Errorf("Handlers - UploadEvents - h.v.StartProcessing: %w", err)
	}

	return nil
}

// VideoResults maps a worker result to FinishProcessing.
func (h *Handlers) VideoResults(ctx context.Context, msg *entity.QueueMessage) error {
	var event resultEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("Handlers - VideoResults - json.Unmarshal: %w", errs.MarkPermanent(err))
	}

	if event.VideoID == "" || event.Status == "" {
		return fmt.Errorf("Handlers - VideoResults - videoId and status are required: %w", errs.ErrInvalidPayload)
	}

	success := strings.ToUpper(event.Status) == entity.StatusDone.String()
	if success && event.OutputKey == "" {
		return fmt.Errorf("Handlers - VideoResults - DONE without outputKey: %w", errs.ErrInvalidPayload)
	}

	input := dto.FinishProcessingInput{
		VideoID: event.VideoID,
		Success: success,
	}
	if success {
		input.ZipKey = event.OutputKey
	} else {
		input.ErrorMessage = event.ErrorMessage
		if input.ErrorMessage == "" {
			input.ErrorMessage = entity.DefaultProcessingError
		}
	}

	err := h.v.FinishProcessing(ctx, input)
	if err != nil {
		return fmt.Errorf("Handlers - VideoResults - h.v.FinishProcessing: %w", err)
	}

	return nil
}
