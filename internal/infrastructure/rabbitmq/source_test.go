package rabbitmq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fiapx/video-orchestrator/internal/entity"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToQueueMessage(t *testing.T) {
	msg := toQueueMessage(amqp.Delivery{
		MessageId:   "m1",
		DeliveryTag: 7,
		Body:        []byte(`{"videoId":"v1"}`),
	})

	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "7", msg.ReceiptHandle)
	assert.Equal(t, 1, msg.ReceiveCount)
	assert.Equal(t, `{"videoId":"v1"}`, string(msg.Body))
	assert.IsType(t, amqp.Delivery{}, msg.Handle)

	msg = toQueueMessage(amqp.Delivery{Redelivered: true})
	assert.Equal(t, 2, msg.ReceiveCount)

	msg = toQueueMessage(amqp.Delivery{Redelivered: true, Headers: amqp.Table{"x-delivery-count": int64(4)}})
	assert.Equal(t, 5, msg.ReceiveCount)
}

func TestSourceRejectsForeignHandle(t *testing.T) {
	s := &Source{queue: "uploads"}

	err := s.Ack(context.Background(), &entity.QueueMessage{Handle: "nope"})
	require.Error(t, err)

	err = s.Release(context.Background(), &entity.QueueMessage{})
	require.Error(t, err)
}

type fakeOpener struct {
	calls int
	err   error
}

func (o *fakeOpener) Channel() (*amqp.Channel, error) {
	o.calls++
	return nil, o.err
}

func TestSourceReopensChannelOnEveryReceiveAfterFailure(t *testing.T) {
	op := &fakeOpener{err: amqp.ErrClosed}
	s := &Source{conn: op, queue: "uploads", prefetch: 1}

	for range 2 {
		_, err := s.Receive(context.Background(), 1, time.Millisecond)
		require.ErrorIs(t, err, amqp.ErrClosed)
	}

	assert.Equal(t, 2, op.calls)
}

func TestPublisherReopensChannelAfterFailure(t *testing.T) {
	op := &fakeOpener{err: errors.New("dial tcp: connection refused")}
	p := &Publisher{conn: op}

	for range 2 {
		err := p.Publish(context.Background(), "video-work", []byte(`{}`))
		require.Error(t, err)
	}

	assert.Equal(t, 2, op.calls)
	assert.NoError(t, p.Close())
}

func TestNewPublisherFailsWithoutChannel(t *testing.T) {
	_, err := NewPublisher(&fakeOpener{err: amqp.ErrClosed})
	assert.ErrorIs(t, err, amqp.ErrClosed)
}

func TestReleaseSkipsDelayWhenContextDone(t *testing.T) {
	s := &Source{queue: "uploads", requeueDelay: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	// a zero Delivery has no acknowledger, so the nack itself fails
	err := s.Release(ctx, &entity.QueueMessage{Handle: amqp.Delivery{}})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
