package video

import (
	"fmt"

	"github.com/fiapx/video-orchestrator/internal/dto"
	"github.com/fiapx/video-orchestrator/internal/entity"
)

func notificationFor(video *entity.Video, reason string) dto.NotificationMessage {
	msg := dto.NotificationMessage{
		VideoID: video.ID,
		UserID:  video.UserID,
		Status:  video.Status.String(),
		Message: notificationDone,
	}

	if video.Status == entity.StatusDone {
		zipKey := video.ZipKey
		msg.DownloadLink = &zipKey
		return msg
	}

	msg.Message = fmt.Sprintf("%s: %s", notificationError, reason)

	return msg
}
