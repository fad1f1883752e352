package persistent

import "github.com/fiapx/video-orchestrator/internal/entity"

// rowScanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (*entity.Video, error) {
	var (
		video  entity.Video
		zipKey *string
		status string
	)

	err := row.Scan(
		&video.ID,
		&video.UserID,
		&video.FileName,
		&video.RawKey,
		&zipKey,
		&status,
		&video.Version,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	video.Status = entity.VideoStatus(status)
	if zipKey != nil {
		video.ZipKey = *zipKey
	}

	return &video, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
