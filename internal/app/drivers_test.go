package app

import (
	"context"
	"testing"
	"time"

	"github.com/fiapx/video-orchestrator/config"
	"github.com/fiapx/video-orchestrator/internal/entity"
	"github.com/fiapx/video-orchestrator/internal/repo/lock"
	"github.com/fiapx/video-orchestrator/pkg/logger"
	"github.com/fiapx/video-orchestrator/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct{ name string }

func (s stubSource) Receive(context.Context, int, time.Duration) ([]*entity.QueueMessage, error) {
	return nil, nil
}
func (s stubSource) Ack(context.Context, *entity.QueueMessage) error     { return nil }
func (s stubSource) Release(context.Context, *entity.QueueMessage) error { return nil }
func (s stubSource) Name() string                                        { return s.name }
func (s stubSource) Close() error                                        { return nil }

type depthSource struct{ stubSource }

func (depthSource) Depth(context.Context) (int64, error) { return 3, nil }

func TestClosersRunInReverseOrder(t *testing.T) {
	var order []int
	var c closers
	for i := range 3 {
		c.add(func() { order = append(order, i) })
	}

	c.closeAll()
	assert.Equal(t, []int{2, 1, 0}, order)
}

func TestDepthTargetsSkipsSourcesWithoutDepth(t *testing.T) {
	targets := depthTargets(stubSource{name: "upload"}, depthSource{stubSource{name: "result"}})

	require.Len(t, targets, 1)
	assert.Equal(t, "result", targets[0].Name)
}

func TestNewLockerDefaultsToMemory(t *testing.T) {
	var c closers
	locker, err := newLocker(&config.Config{}, logger.NewNop(), &c)

	require.NoError(t, err)
	assert.IsType(t, &lock.MemoryLocker{}, locker)
	assert.Empty(t, c)
}

func TestUnknownDrivers(t *testing.T) {
	cfg := &config.Config{}
	cfg.Repository.Driver = "mongo"
	cfg.Storage.Driver = "gcs"
	cfg.Messaging.Driver = "pubsub"
	cfg.Messaging.PublishDriver = "pubsub"

	var c closers
	_, err := newVideoRepo(context.Background(), cfg, logger.NewNop(), &c)
	assert.ErrorIs(t, err, errs.ErrUnknownDriver)

	_, err = newVideoStorage(context.Background(), cfg)
	assert.ErrorIs(t, err, errs.ErrUnknownDriver)

	b := &brokers{cfg: cfg, c: &c}
	_, err = b.source(context.Background(), "q")
	assert.ErrorIs(t, err, errs.ErrUnknownDriver)

	_, err = b.publisher(context.Background())
	assert.ErrorIs(t, err, errs.ErrUnknownDriver)
}

func TestSQLiteRepoIsMigrated(t *testing.T) {
	cfg := &config.Config{}
	cfg.Repository.Driver = config.DriverSQLite
	cfg.SQLite.Path = t.TempDir() + "/videos.db"

	var c closers
	defer c.closeAll()

	r, err := newVideoRepo(context.Background(), cfg, logger.NewNop(), &c)
	require.NoError(t, err)

	_, err = r.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, errs.ErrRecordNotFound)
}
