package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fiapx/video-orchestrator/internal/entity"
	"github.com/fiapx/video-orchestrator/pkg/logger"
	"github.com/fiapx/video-orchestrator/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu       sync.Mutex
	pending  []*entity.QueueMessage
	acked    []string
	released []string
	pollErrs int
	// blockRelease makes Release wait for ctx, like a delayed requeue
	blockRelease bool
	polls    int
	closed   bool
}

func newFakeSource(bodies ...string) *fakeSource {
	s := &fakeSource{}
	for i, b := range bodies {
		s.pending = append(s.pending, &entity.QueueMessage{
			ID:   string(rune('a' + i)),
			Body: []byte(b),
		})
	}
	return s
}

func (s *fakeSource) Receive(ctx context.Context, _ int, wait time.Duration) ([]*entity.QueueMessage, error) {
	s.mu.Lock()
	s.polls++
	if s.pollErrs > 0 {
		s.pollErrs--
		s.mu.Unlock()
		return nil, errors.New("dial tcp: connection refused")
	}
	if len(s.pending) > 0 {
		msg := s.pending[0]
		s.pending = s.pending[1:]
		msg.ReceiveCount++
		s.mu.Unlock()
		return []*entity.QueueMessage{msg}, nil
	}
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(wait):
		return nil, nil
	}
}

func (s *fakeSource) Ack(_ context.Context, msg *entity.QueueMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acked = append(s.acked, msg.ID)
	return nil
}

// Release simulates the queue making the message visible again.
func (s *fakeSource) Release(ctx context.Context, msg *entity.QueueMessage) error {
	if s.blockRelease {
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = append(s.released, msg.ID)
	s.pending = append(s.pending, msg)
	return nil
}

func (s *fakeSource) Name() string { return "test-queue" }

func (s *fakeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSource) snapshot() (acked, released []string, polls int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.acked...), append([]string(nil), s.released...), s.polls
}

var testSettings = Settings{
	MaxMessages:      1,
	WaitTime:         5 * time.Millisecond,
	PollErrorBackoff: 10 * time.Millisecond,
}

func startConsumer(t *testing.T, src *fakeSource, h Handler) *Consumer {
	t.Helper()

	c := NewConsumer(src, h, testSettings, logger.NewNop())
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = c.Shutdown(ctx)
	})

	return c
}

func TestConsumerAcksOnSuccess(t *testing.T) {
	src := newFakeSource("one")
	var calls atomic.Int32

	startConsumer(t, src, func(_ context.Context, msg *entity.QueueMessage) error {
		calls.Add(1)
		assert.Equal(t, "one", string(msg.Body))
		return nil
	})

	require.Eventually(t, func() bool {
		acked, _, _ := src.snapshot()
		return len(acked) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	acked, released, _ := src.snapshot()
	assert.Equal(t, []string{"a"}, acked)
	assert.Empty(t, released)
	assert.EqualValues(t, 1, calls.Load())
}

func TestConsumerAcksPermanentFailure(t *testing.T) {
	src := newFakeSource("missing")
	var calls atomic.Int32

	startConsumer(t, src, func(context.Context, *entity.QueueMessage) error {
		calls.Add(1)
		return errs.ErrVideoNotFound
	})

	require.Eventually(t, func() bool {
		acked, _, _ := src.snapshot()
		return len(acked) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	_, released, _ := src.snapshot()
	assert.Empty(t, released)
	assert.EqualValues(t, 1, calls.Load())
}

func TestConsumerRetainsTransientFailureUntilRedelivered(t *testing.T) {
	src := newFakeSource("payload")
	var calls atomic.Int32

	startConsumer(t, src, func(_ context.Context, msg *entity.QueueMessage) error {
		if calls.Add(1) == 1 {
			return errors.New("database timeout")
		}
		assert.Equal(t, 2, msg.ReceiveCount)
		return nil
	})

	require.Eventually(t, func() bool {
		acked, _, _ := src.snapshot()
		return len(acked) == 1
	}, time.Second, 5*time.Millisecond)

	acked, released, _ := src.snapshot()
	assert.Equal(t, []string{"a"}, acked)
	assert.Equal(t, []string{"a"}, released)
	assert.EqualValues(t, 2, calls.Load())
}

func TestConsumerNeverAcksWhileTransient(t *testing.T) {
	src := newFakeSource("payload")
	var calls atomic.Int32

	startConsumer(t, src, func(context.Context, *entity.QueueMessage) error {
		calls.Add(1)
		return errs.ErrConcurrentUpdate
	})

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	acked, _, _ := src.snapshot()
	assert.Empty(t, acked)
}

func TestConsumerTreatsPanicAsTransient(t *testing.T) {
	src := newFakeSource("payload")
	var calls atomic.Int32

	startConsumer(t, src, func(context.Context, *entity.QueueMessage) error {
		if calls.Add(1) == 1 {
			panic("boom")
		}
		return nil
	})

	require.Eventually(t, func() bool {
		acked, _, _ := src.snapshot()
		return len(acked) == 1
	}, time.Second, 5*time.Millisecond)

	_, released, _ := src.snapshot()
	assert.Equal(t, []string{"a"}, released)
}

func TestConsumerRetriesPanicMentioningNotFound(t *testing.T) {
	src := newFakeSource("payload")
	var calls atomic.Int32

	startConsumer(t, src, func(context.Context, *entity.QueueMessage) error {
		if calls.Add(1) == 1 {
			panic("config key not found")
		}
		return nil
	})

	require.Eventually(t, func() bool {
		acked, _, _ := src.snapshot()
		return len(acked) == 1
	}, time.Second, 5*time.Millisecond)

	_, released, _ := src.snapshot()
	assert.Equal(t, []string{"a"}, released)
	assert.EqualValues(t, 2, calls.Load())
}

func TestConsumerBacksOffOnPollError(t *testing.T) {
	src := newFakeSource("payload")
	src.pollErrs = 2

	start := time.Now()
	startConsumer(t, src, func(context.Context, *entity.QueueMessage) error { return nil })

	require.Eventually(t, func() bool {
		acked, _, _ := src.snapshot()
		return len(acked) == 1
	}, time.Second, 5*time.Millisecond)

	assert.GreaterOrEqual(t, time.Since(start), 2*testSettings.PollErrorBackoff)
	_, _, polls := src.snapshot()
	assert.GreaterOrEqual(t, polls, 3)
}

func TestConsumerShutdownWaitsForInFlightMessage(t *testing.T) {
	src := newFakeSource("slow")
	entered := make(chan struct{})
	var handlerCtxErr atomic.Value

	c := NewConsumer(src, func(ctx context.Context, _ *entity.QueueMessage) error {
		close(entered)
		time.Sleep(50 * time.Millisecond)
		if ctx.Err() != nil {
			handlerCtxErr.Store(ctx.Err())
		}
		return nil
	}, testSettings, logger.NewNop())
	require.NoError(t, c.Start(context.Background()))

	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(ctx))

	acked, _, _ := src.snapshot()
	assert.Equal(t, []string{"a"}, acked)
	assert.Nil(t, handlerCtxErr.Load())

	src.mu.Lock()
	assert.True(t, src.closed)
	src.mu.Unlock()
}

func TestConsumerShutdownInterruptsDelayedRelease(t *testing.T) {
	src := newFakeSource("payload")
	src.blockRelease = true
	entered := make(chan struct{})
	var once sync.Once

	c := NewConsumer(src, func(context.Context, *entity.QueueMessage) error {
		once.Do(func() { close(entered) })
		time.Sleep(20 * time.Millisecond)
		return errors.New("database timeout")
	}, testSettings, logger.NewNop())
	require.NoError(t, c.Start(context.Background()))

	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	require.NoError(t, c.Shutdown(ctx))
	assert.Less(t, time.Since(start), time.Second)

	acked, released, _ := src.snapshot()
	assert.Empty(t, acked)
	assert.Equal(t, []string{"a"}, released)
}

func TestConsumerStartTwice(t *testing.T) {
	c := startConsumer(t, newFakeSource(), func(context.Context, *entity.QueueMessage) error { return nil })

	assert.Error(t, c.Start(context.Background()))
}

func TestConsumerShutdownBeforeStart(t *testing.T) {
	c := NewConsumer(newFakeSource(), func(context.Context, *entity.QueueMessage) error { return nil }, testSettings, logger.NewNop())

	assert.NoError(t, c.Shutdown(context.Background()))
}
