package queuestats

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fiapx/video-orchestrator/internal/infrastructure/metrics"
	"github.com/fiapx/video-orchestrator/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDepth struct {
	depth int64
	err   error
	calls atomic.Int32
}

func (f *fakeDepth) Depth(context.Context) (int64, error) {
	f.calls.Add(1)
	return f.depth, f.err
}

func TestReporterSetsGauge(t *testing.T) {
	ok := &fakeDepth{depth: 7}
	broken := &fakeDepth{err: errors.New("queue unreachable")}

	r := New([]Target{
		{Name: "stats-upload", Source: ok},
		{Name: "stats-result", Source: broken},
	}, logger.NewNop(), 10*time.Millisecond, time.Second)

	require.NoError(t, r.Start(context.Background()))
	assert.Error(t, r.Start(context.Background()))

	require.Eventually(t, func() bool { return ok.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, r.Shutdown(context.Background()))

	assert.InDelta(t, 7, testutil.ToFloat64(metrics.QueueDepth.WithLabelValues("stats-upload")), 0)
	assert.GreaterOrEqual(t, broken.calls.Load(), int32(2))
}
