package entity

import (
	"fmt"
	"time"

	"github.com/fiapx/video-orchestrator/pkg/types/errs"
	"github.com/google/uuid"
)

type Video struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	FileName string `json:"file_name"`

	RawKey string `json:"s3_key_raw"`
	ZipKey string `json:"s3_key_zip,omitempty"` // set only when DONE

	Status VideoStatus `json:"status"`

	// Version is owned by the repository and used for optimistic updates.
	Version int `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewVideo(id, userID, fileName, rawKey string) *Video {
	if id == "" {
		id = uuid.NewString()
	}

	return &Video{
		ID:       id,
		UserID:   userID,
		FileName: fileName,
		RawKey:   rawKey,
		Status:   StatusPending,
	}
}

func (v *Video) MarkUploaded() error {
	switch v.Status {
	case StatusUploaded:
		return nil
	case StatusPending:
		v.Status = StatusUploaded
		return nil
	default:
		return v.transitionErr(StatusUploaded)
	}
}

func (v *Video) StartProcessing() error {
	switch v.Status {
	case StatusProcessing:
		return nil
	case StatusPending, StatusUploaded:
		v.Status = StatusProcessing
		return nil
	default:
		return v.transitionErr(StatusProcessing)
	}
}

func (v *Video) Complete(zipKey string) error {
	if zipKey == "" {
		return fmt.Errorf("Video - Complete: %w", errs.ErrMissingArtifact)
	}

	if v.Status == StatusDone && v.ZipKey == zipKey {
		return nil
	}

	if v.Status.IsTerminal() {
		return v.transitionErr(StatusDone)
	}

	v.Status = StatusDone
	v.ZipKey = zipKey

	return nil
}

func (v *Video) Fail() error {
	switch {
	case v.Status == StatusError:
		return nil
	case v.Status.IsTerminal():
		return v.transitionErr(StatusError)
	}

	v.Status = StatusError
	v.ZipKey = ""

	return nil
}

func (v *Video) transitionErr(to VideoStatus) error {
	return fmt.Errorf("Video - %s -> %s: %w", v.Status, to, errs.ErrInvalidTransition)
}
