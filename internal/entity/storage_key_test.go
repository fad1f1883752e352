package entity_test

import (
	"testing"

	"github.com/fiapx/video-orchestrator/internal/entity"
	"github.com/stretchr/testify/assert"
)

const testVideoID = "0b0c4a52-5a4e-4c7e-9d1e-1f2a3b4c5d6e"

func TestNewRawKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		fileName string
		want     string
	}{
		{"clip.mp4", "raw/" + testVideoID + "-clip.mp4"},
		{"Meu Treino Final.MP4", "raw/" + testVideoID + "-meu-treino-final.mp4"},
		{".mp4", "raw/" + testVideoID + "-video.mp4"},
		{"no extension", "raw/" + testVideoID + "-no-extension"},
		{"weird.ext with space", "raw/" + testVideoID + "-weird"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, entity.NewRawKey(testVideoID, tt.fileName), tt.fileName)
	}
}

func TestVideoIDFromRawKey(t *testing.T) {
	t.Parallel()

	id, ok := entity.VideoIDFromRawKey(entity.NewRawKey(testVideoID, "Any Name.mov"))
	assert.True(t, ok)
	assert.Equal(t, testVideoID, id)

	id, ok = entity.VideoIDFromRawKey("raw/" + testVideoID + "-my clip.mp4")
	assert.True(t, ok)
	assert.Equal(t, testVideoID, id)

	for _, key := range []string{
		"other/garbage.mp4",
		"raw/short-id.mp4",
		"raw/" + testVideoID + ".mp4",
		"zips/" + testVideoID + "-x.zip",
		"",
	} {
		_, ok := entity.VideoIDFromRawKey(key)
		assert.False(t, ok, key)
	}
}
