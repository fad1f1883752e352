package nats

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fiapx/video-orchestrator/internal/entity"
	"github.com/fiapx/video-orchestrator/internal/infrastructure"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	_durableSuffix = "_ORCHESTRATOR"
	// Fetch cannot be cancelled, so a long poll is split into slices of at most this.
	_fetchSlice = time.Second
)

// Source pulls from a durable JetStream consumer bound to one subject.
type Source struct {
	subject  string
	consumer jetstream.Consumer
	nakDelay time.Duration
	fetch    func(maxMessages int, wait time.Duration) ([]*entity.QueueMessage, error)
}

var (
	_ infrastructure.MessageSource = (*Source)(nil)
	_ infrastructure.DepthReporter = (*Source)(nil)
)

func NewSource(ctx context.Context, js jetstream.JetStream, subject string, ackWait, nakDelay time.Duration) (*Source, error) {
	stream, err := ensureStream(ctx, js, subject)
	if err != nil {
		return nil, fmt.Errorf("NATSSource - New: %w", err)
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       StreamName(subject) + _durableSuffix,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       ackWait,
		FilterSubject: subject,
	})
	if err != nil {
		return nil, fmt.Errorf("NATSSource - New - stream.CreateOrUpdateConsumer: %w", err)
	}

	s := &Source{subject: subject, consumer: consumer, nakDelay: nakDelay}
	s.fetch = s.fetchBatch

	return s, nil
}

// Receive long-polls for up to wait, returning early once ctx is done.
func (s *Source) Receive(ctx context.Context, maxMessages int, wait time.Duration) ([]*entity.QueueMessage, error) {
	deadline := time.Now().Add(wait)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		slice := min(time.Until(deadline), _fetchSlice)
		if slice < time.Millisecond {
			return nil, nil
		}

		msgs, err := s.fetch(maxMessages, slice)
		if err != nil || len(msgs) > 0 {
			return msgs, err
		}
	}
}

func (s *Source) fetchBatch(maxMessages int, wait time.Duration) ([]*entity.QueueMessage, error) {
	batch, err := s.consumer.Fetch(maxMessages, jetstream.FetchMaxWait(wait))
	if err != nil {
		return nil, fmt.Errorf("NATSSource - Receive - s.consumer.Fetch: %w", err)
	}

	var msgs []*entity.QueueMessage
	for msg := range batch.Messages() {
		msgs = append(msgs, toQueueMessage(msg))
	}

	if err = batch.Error(); err != nil && !isEmptyFetch(err) {
		return msgs, fmt.Errorf("NATSSource - Receive - batch.Error: %w", err)
	}

	return msgs, nil
}

func isEmptyFetch(err error) bool {
	return errors.Is(err, nats.ErrTimeout) || errors.Is(err, jetstream.ErrNoMessages)
}

func (s *Source) Ack(ctx context.Context, msg *entity.QueueMessage) error {
	m, ok := msg.Handle.(jetstream.Msg)
	if !ok {
		return fmt.Errorf("NATSSource - Ack: unexpected handle %T", msg.Handle)
	}

	if err := m.DoubleAck(ctx); err != nil {
		return fmt.Errorf("NATSSource - Ack - m.DoubleAck: %w", err)
	}

	return nil
}

func (s *Source) Release(_ context.Context, msg *entity.QueueMessage) error {
	m, ok := msg.Handle.(jetstream.Msg)
	if !ok {
		return fmt.Errorf("NATSSource - Release: unexpected handle %T", msg.Handle)
	}

	if err := m.NakWithDelay(s.nakDelay); err != nil {
		return fmt.Errorf("NATSSource - Release - m.NakWithDelay: %w", err)
	}

	return nil
}

func (s *Source) Depth(ctx context.Context) (int64, error) {
	info, err := s.consumer.Info(ctx)
	if err != nil {
		return 0, fmt.Errorf("NATSSource - Depth - s.consumer.Info: %w", err)
	}

	return int64(info.NumPending), nil //nolint:gosec
}

func (s *Source) Name() string {
	return s.subject
}

func (s *Source) Close() error {
	return nil
}

func toQueueMessage(msg jetstream.Msg) *entity.QueueMessage {
	qm := &entity.QueueMessage{
		Body:         msg.Data(),
		ReceiveCount: 1,
		Handle:       msg,
	}

	if meta, err := msg.Metadata(); err == nil {
		qm.ID = strconv.FormatUint(meta.Sequence.Stream, 10)
		qm.ReceiptHandle = strconv.FormatUint(meta.Sequence.Consumer, 10)
		qm.ReceiveCount = int(meta.NumDelivered) //nolint:gosec
	}

	if id := msg.Headers().Get(nats.MsgIdHdr); id != "" {
		qm.ID = id
	}

	return qm
}
