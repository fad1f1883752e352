package repo

import (
	"context"

	"github.com/fiapx/video-orchestrator/internal/entity"
)

type (
	VideoRepo interface {
		Create(ctx context.Context, video *entity.Video) error
		GetByID(ctx context.Context, id string) (*entity.Video, error)
		// Update persists status and zip key when the stored version still
		// matches video.Version, and bumps it.
		Update(ctx context.Context, video *entity.Video) error
		ListByUser(ctx context.Context, userID string) ([]*entity.Video, error)
	}

	VideoStorage interface {
		GenerateUploadURL(ctx context.Context, videoID, fileName string) (url string, key string, err error)
		GenerateDownloadURL(ctx context.Context, key string) (string, error)
		RawBucket() string
	}

	Locker interface {
		// Lock blocks until key is held or ctx is done.
		Lock(ctx context.Context, key string) (unlock func(), err error)
	}
)
