package queuestats

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fiapx/video-orchestrator/internal/infrastructure"
	"github.com/fiapx/video-orchestrator/internal/infrastructure/metrics"
	"github.com/fiapx/video-orchestrator/pkg/logger"
)

// Target is an inbound queue whose backlog is exported as a gauge.
type Target struct {
	Name   string
	Source infrastructure.DepthReporter
}

// Reporter periodically samples queue depths into metrics.QueueDepth.
type Reporter struct {
	targets []Target
	logger  logger.Interface

	interval time.Duration
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(targets []Target, l logger.Interface, interval, timeout time.Duration) *Reporter {
	return &Reporter{
		targets:  targets,
		logger:   l,
		interval: interval,
		timeout:  timeout,
	}
}

func (r *Reporter) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return fmt.Errorf("QueueStats - Start - worker already started")
	}

	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		// first sample right away, then on every tick
		r.sample()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				r.sample()
			}
		}
	}()

	return nil
}

func (r *Reporter) sample() {
	for _, t := range r.targets {
		ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
		depth, err := t.Source.Depth(ctx)
		cancel()
		if err != nil {
			if r.ctx.Err() == nil {
				r.logger.Error(err, "QueueStats - sample - t.Source.Depth")
			}
			continue
		}

		metrics.QueueDepth.WithLabelValues(t.Name).Set(float64(depth))
	}
}

func (r *Reporter) Shutdown(ctx context.Context) error {
	if !r.started.Load() {
		return nil
	}

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})

	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}
