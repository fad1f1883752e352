package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/fiapx/video-orchestrator/internal/controller/restapi/middleware"
	"github.com/fiapx/video-orchestrator/internal/controller/restapi/v1/request"
	"github.com/fiapx/video-orchestrator/internal/controller/restapi/v1/response"
	"github.com/gofiber/fiber/v2"
)

// @Summary     Request an upload slot
// @Description Creates a PENDING video and returns a presigned upload URL
// @Tags        videos
// @Accept      json
// @Produce     json
// @Param       X-User-Id header string              false "Caller identity (when JWT is disabled)"
// @Param       request   body   request.CreateVideo true  "File to upload"
// @Success     201 {object} response.CreateVideo
// @Failure     400 {object} response.Error "Invalid body"
// @Failure     401 {object} response.Error "Unidentified caller"
// @Failure     500 {object} response.Error "Internal"
// @Router      /videos [post]
func (r *V1) createVideo(ctx *fiber.Ctx) error {
	userID := middleware.UserID(ctx)

	var body request.CreateVideo

	err := ctx.BodyParser(&body)
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid request body")
	}

	body.FileName = strings.TrimSpace(body.FileName)

	err = r.valid.Struct(body)
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "fileName is required")
	}

	out, err := r.v.CreateUpload(ctx.UserContext(), body.FileName, userID)
	if err != nil {
		r.logger.Error(err, "restapi - v1 - createVideo")

		return errorResponse(ctx, http.StatusInternalServerError, "internal server error")
	}

	r.logger.Info("restapi - v1 - createVideo - video %s created for user %s", out.VideoID, userID)

	return ctx.Status(http.StatusCreated).JSON(response.CreateVideo{
		VideoID:   out.VideoID,
		UploadURL: out.UploadURL,
		Status:    out.Status.String(),
	})
}

// @Summary     List caller videos
// @Description Lists the caller's videos, newest first, with a download URL once DONE
// @Tags        videos
// @Produce     json
// @Param       X-User-Id header string false "Caller identity (when JWT is disabled)"
// @Success     200 {array}  response.Video
// @Failure     401 {object} response.Error "Unidentified caller"
// @Failure     500 {object} response.Error "Internal"
// @Router      /videos [get]
func (r *V1) listVideos(ctx *fiber.Ctx) error {
	videos, err := r.v.ListUserVideos(ctx.UserContext(), middleware.UserID(ctx))
	if err != nil {
		r.logger.Error(err, "restapi - v1 - listVideos")

		return errorResponse(ctx, http.StatusInternalServerError, "internal server error")
	}

	resp := make([]response.Video, 0, len(videos))
	for _, v := range videos {
		resp = append(resp, response.Video{
			VideoID:     v.VideoID,
			FileName:    v.FileName,
			Status:      v.Status.String(),
			CreatedAt:   v.CreatedAt.UTC().Format(time.RFC3339),
			DownloadURL: v.DownloadURL,
		})
	}

	return ctx.Status(http.StatusOK).JSON(resp)
}
