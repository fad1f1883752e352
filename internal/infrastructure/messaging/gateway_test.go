package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/fiapx/video-orchestrator/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	queue string
	body  string
}

type fakePublisher struct {
	sent   []publishedMessage
	err    error
	closed bool
}

func (p *fakePublisher) Publish(_ context.Context, queue string, body []byte) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, publishedMessage{queue: queue, body: string(body)})
	return nil
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

func TestGatewaySendMessage(t *testing.T) {
	pub := &fakePublisher{}
	g := NewGateway(pub, logger.NewNop())

	err := g.SendMessage(context.Background(), "work", map[string]string{"videoId": "v1"})
	require.NoError(t, err)

	require.Len(t, pub.sent, 1)
	assert.Equal(t, "work", pub.sent[0].queue)
	assert.JSONEq(t, `{"videoId":"v1"}`, pub.sent[0].body)

	require.NoError(t, g.Close())
	assert.True(t, pub.closed)
}

func TestGatewaySendMessageErrors(t *testing.T) {
	boom := errors.New("broker unavailable")
	g := NewGateway(&fakePublisher{err: boom}, logger.NewNop())

	err := g.SendMessage(context.Background(), "work", map[string]string{"videoId": "v1"})
	require.ErrorIs(t, err, boom)

	err = g.SendMessage(context.Background(), "work", func() {})
	require.Error(t, err)
}
