package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamName(t *testing.T) {
	assert.Equal(t, "VIDEOS_UPLOADED", StreamName("videos.uploaded"))
	assert.Equal(t, "VIDEO_RESULTS", StreamName("video-results"))
	assert.Equal(t, "JOBS_ANY", StreamName("jobs.*"))
}
