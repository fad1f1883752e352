package persistent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/fiapx/video-orchestrator/internal/entity"
	"github.com/fiapx/video-orchestrator/pkg/sqlite"
	"github.com/fiapx/video-orchestrator/pkg/types/errs"
)

// SQLiteVideoRepo stores videos in a local SQLite file. Used for local runs
// and single-node deployments.
type SQLiteVideoRepo struct {
	*sqlite.SQLite
	now func() time.Time
}

func NewSQLiteVideoRepo(db *sqlite.SQLite) *SQLiteVideoRepo {
	return &SQLiteVideoRepo{
		SQLite: db,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *SQLiteVideoRepo) Create(ctx context.Context, video *entity.Video) error {
	now := r.now()

	query, args, err := r.Builder.
		Insert(videosTable).
		Columns(
			idColumn,
			userIDColumn,
			fileNameColumn,
			rawKeyColumn,
			zipKeyColumn,
			statusColumn,
			versionColumn,
			createdAtColumn,
			updatedAtColumn,
		).
		Values(
			video.ID,
			video.UserID,
			video.FileName,
			video.RawKey,
			nullableString(video.ZipKey),
			string(video.Status),
			0,
			now,
			now,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("SQLiteVideoRepo - Create - r.Builder.ToSql: %w", err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("SQLiteVideoRepo - Create - r.DB.ExecContext: %w", err)
	}

	video.Version = 0
	video.CreatedAt = now
	video.UpdatedAt = now

	return nil
}

func (r *SQLiteVideoRepo) GetByID(ctx context.Context, id string) (*entity.Video, error) {
	query, args, err := r.selectVideos().
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("SQLiteVideoRepo - GetByID - r.Builder.ToSql: %w", err)
	}

	video, err := scanVideo(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("SQLiteVideoRepo - GetByID: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("SQLiteVideoRepo - GetByID - r.DB.QueryRowContext: %w", err)
	}

	return video, nil
}

func (r *SQLiteVideoRepo) Update(ctx context.Context, video *entity.Video) error {
	now := r.now()

	query, args, err := r.Builder.
		Update(videosTable).
		Set(statusColumn, string(video.Status)).
		Set(zipKeyColumn, nullableString(video.ZipKey)).
		Set(versionColumn, squirrel.Expr(versionColumn+" + 1")).
		Set(updatedAtColumn, now).
		Where(squirrel.Eq{
			idColumn:      video.ID,
			versionColumn: video.Version,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("SQLiteVideoRepo - Update - r.Builder.ToSql: %w", err)
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("SQLiteVideoRepo - Update - r.DB.ExecContext: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("SQLiteVideoRepo - Update - res.RowsAffected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("SQLiteVideoRepo - Update: %w", errs.ErrConcurrentUpdate)
	}

	video.Version++
	video.UpdatedAt = now

	return nil
}

func (r *SQLiteVideoRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Video, error) {
	query, args, err := r.selectVideos().
		Where(squirrel.Eq{userIDColumn: userID}).
		OrderBy(createdAtColumn + " DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("SQLiteVideoRepo - ListByUser - r.Builder.ToSql: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("SQLiteVideoRepo - ListByUser - r.DB.QueryContext: %w", err)
	}
	defer rows.Close()

	videos := make([]*entity.Video, 0)
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("SQLiteVideoRepo - ListByUser - rows.Scan: %w", err)
		}
		videos = append(videos, video)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("SQLiteVideoRepo - ListByUser - rows.Err: %w", err)
	}

	return videos, nil
}

func (r *SQLiteVideoRepo) selectVideos() squirrel.SelectBuilder {
	return r.Builder.
		Select(
			idColumn,
			userIDColumn,
			fileNameColumn,
			rawKeyColumn,
			zipKeyColumn,
			statusColumn,
			versionColumn,
			createdAtColumn,
			updatedAtColumn,
		).
		From(videosTable)
}
