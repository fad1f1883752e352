package nats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fiapx/video-orchestrator/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiveStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var fetches int
	s := &Source{subject: "videos.uploaded"}
	s.fetch = func(int, time.Duration) ([]*entity.QueueMessage, error) {
		fetches++
		cancel()
		return nil, nil
	}

	start := time.Now()
	_, err := s.Receive(ctx, 1, 20*time.Second)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, fetches)
	assert.Less(t, time.Since(start), time.Second)
}

func TestReceiveSplitsWaitIntoSlices(t *testing.T) {
	var waits []time.Duration
	s := &Source{subject: "videos.uploaded"}
	s.fetch = func(_ int, wait time.Duration) ([]*entity.QueueMessage, error) {
		waits = append(waits, wait)
		if len(waits) == 3 {
			return []*entity.QueueMessage{{ID: "m1"}}, nil
		}
		return nil, nil
	}

	msgs, err := s.Receive(context.Background(), 1, 20*time.Second)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	require.Len(t, waits, 3)
	for _, w := range waits {
		assert.LessOrEqual(t, w, _fetchSlice)
	}
}

func TestReceiveReturnsEmptyWhenWaitElapses(t *testing.T) {
	s := &Source{subject: "videos.uploaded"}
	s.fetch = func(_ int, wait time.Duration) ([]*entity.QueueMessage, error) {
		time.Sleep(wait)
		return nil, nil
	}

	msgs, err := s.Receive(context.Background(), 1, 10*time.Millisecond)
	assert.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestReceivePropagatesFetchError(t *testing.T) {
	s := &Source{subject: "videos.uploaded"}
	s.fetch = func(int, time.Duration) ([]*entity.QueueMessage, error) {
		return nil, errors.New("nats: connection closed")
	}

	_, err := s.Receive(context.Background(), 1, time.Second)
	assert.Error(t, err)
}
