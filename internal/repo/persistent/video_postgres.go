package persistent

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/fiapx/video-orchestrator/internal/entity"
	"github.com/fiapx/video-orchestrator/pkg/postgres"
	"github.com/fiapx/video-orchestrator/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	// Table
	videosTable = "videos"

	// Columns
	idColumn        = "id"
	userIDColumn    = "user_id"
	fileNameColumn  = "file_name"
	rawKeyColumn    = "s3_key_raw"
	zipKeyColumn    = "s3_key_zip"
	statusColumn    = "status"
	versionColumn   = "version"
	createdAtColumn = "created_at"
	updatedAtColumn = "updated_at"
)

type VideoRepo struct {
	*postgres.Postgres
}

func NewVideoRepo(pg *postgres.Postgres) *VideoRepo {
	return &VideoRepo{pg}
}

func (r *VideoRepo) Create(ctx context.Context, video *entity.Video) error {
	if _, err := uuid.Parse(video.ID); err != nil {
		return fmt.Errorf("VideoRepo - Create - uuid.Parse: %w", err)
	}

	sql, args, err := r.Builder.
		Insert(videosTable).
		Columns(
			idColumn,
			userIDColumn,
			fileNameColumn,
			rawKeyColumn,
			zipKeyColumn,
			statusColumn,
			versionColumn,
		).
		Values(
			video.ID,
			video.UserID,
			video.FileName,
			video.RawKey,
			nullableString(video.ZipKey),
			string(video.Status),
			0,
		).
		Suffix("RETURNING " + createdAtColumn + ", " + updatedAtColumn).
		ToSql()
	if err != nil {
		return fmt.Errorf("VideoRepo - Create - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	err = executor.QueryRow(ctx, sql, args...).Scan(&video.CreatedAt, &video.UpdatedAt)
	if err != nil {
		return fmt.Errorf("VideoRepo - Create - executor.QueryRow: %w", err)
	}

	video.Version = 0

	return nil
}

func (r *VideoRepo) GetByID(ctx context.Context, id string) (*entity.Video, error) {
	// not a uuid, cannot be stored
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("VideoRepo - GetByID: %w", errs.ErrRecordNotFound)
	}

	sql, args, err := r.selectVideos().
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("VideoRepo - GetByID - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	video, err := scanVideo(executor.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("VideoRepo - GetByID: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("VideoRepo - GetByID - executor.QueryRow: %w", err)
	}

	return video, nil
}

func (r *VideoRepo) Update(ctx context.Context, video *entity.Video) error {
	sql, args, err := r.Builder.
		Update(videosTable).
		Set(statusColumn, string(video.Status)).
		Set(zipKeyColumn, nullableString(video.ZipKey)).
		Set(versionColumn, squirrel.Expr(versionColumn+" + 1")).
		Set(updatedAtColumn, squirrel.Expr("now()")).
		Where(squirrel.Eq{
			idColumn:      video.ID,
			versionColumn: video.Version,
		}).
		Suffix("RETURNING " + versionColumn + ", " + updatedAtColumn).
		ToSql()
	if err != nil {
		return fmt.Errorf("VideoRepo - Update - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	err = executor.QueryRow(ctx, sql, args...).Scan(&video.Version, &video.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("VideoRepo - Update: %w", errs.ErrConcurrentUpdate)
		}
		return fmt.Errorf("VideoRepo - Update - executor.QueryRow: %w", err)
	}

	return nil
}

func (r *VideoRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Video, error) {
	sql, args, err := r.selectVideos().
		Where(squirrel.Eq{userIDColumn: userID}).
		OrderBy(createdAtColumn + " DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("VideoRepo - ListByUser - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("VideoRepo - ListByUser - executor.Query: %w", err)
	}
	defer rows.Close()

	videos := make([]*entity.Video, 0)
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("VideoRepo - ListByUser - rows.Scan: %w", err)
		}
		videos = append(videos, video)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("VideoRepo - ListByUser - rows.Err: %w", err)
	}

	return videos, nil
}

func (r *VideoRepo) selectVideos() squirrel.SelectBuilder {
	return r.Builder.
		Select(
			idColumn+"::text",
			userIDColumn,
			fileNameColumn,
			rawKeyColumn,
			zipKeyColumn,
			statusColumn+"::text",
			versionColumn,
			createdAtColumn,
			updatedAtColumn,
		).
		From(videosTable)
}
