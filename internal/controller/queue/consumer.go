package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fiapx/video-orchestrator/internal/entity"
	"github.com/fiapx/video-orchestrator/internal/infrastructure"
	"github.com/fiapx/video-orchestrator/internal/infrastructure/metrics"
	"github.com/fiapx/video-orchestrator/pkg/logger"
	"github.com/fiapx/video-orchestrator/pkg/types/errs"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const _tracerName = "github.com/fiapx/video-orchestrator/internal/controller/queue"

// Handler processes one message. A nil error or a permanent one gets the
// message acknowledged; anything else leaves it for redelivery.
type Handler func(ctx context.Context, msg *entity.QueueMessage) error

type Settings struct {
	MaxMessages      int
	WaitTime         time.Duration
	PollErrorBackoff time.Duration
}

// Consumer drains one inbound queue, handling messages strictly one after another.
type Consumer struct {
	source   infrastructure.MessageSource
	handler  Handler
	settings Settings
	logger   logger.Interface
	tracer   trace.Tracer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func NewConsumer(source infrastructure.MessageSource, handler Handler, settings Settings, l logger.Interface) *Consumer {
	if settings.MaxMessages < 1 {
		settings.MaxMessages = 1
	}

	return &Consumer{
		source:   source,
		handler:  handler,
		settings: settings,
		logger:   l.With("queue", source.Name()),
		tracer:   otel.Tracer(_tracerName),
	}
}

func (c *Consumer) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("Consumer - Start - consumer %s already started", c.source.Name())
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.loop()
	}()

	c.logger.Info("Consumer - Start - listening on %s", c.source.Name())

	return nil
}

func (c *Consumer) loop() {
	name := c.source.Name()

	for {
		if c.ctx.Err() != nil {
			return
		}

		// 1. long poll
		msgs, err := c.source.Receive(c.ctx, c.settings.MaxMessages, c.settings.WaitTime)
		if err != nil {
			if c.ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}

			metrics.PollErrorsTotal.WithLabelValues(name).Inc()
			c.logger.Error(err, "Consumer - loop - c.source.Receive")

			// 2. back off, stopping early on shutdown
			if !c.sleep(c.settings.PollErrorBackoff) {
				return
			}
			continue
		}

		// 3. handle sequentially; a stop request lets the current message finish
		for _, msg := range msgs {
			if c.ctx.Err() != nil {
				return
			}
			c.process(msg)
		}
	}
}

func (c *Consumer) process(msg *entity.QueueMessage) {
	name := c.source.Name()
	start := time.Now()

	metrics.MessagesReceivedTotal.WithLabelValues(name).Inc()

	// in-flight handling survives shutdown
	ctx := context.WithoutCancel(c.ctx)
	ctx, span := c.tracer.Start(ctx, name+" process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.destination.name", name),
			attribute.String("messaging.message.id", msg.ID),
			attribute.Int("messaging.message.receive_count", msg.ReceiveCount),
		),
	)
	defer span.End()

	l := c.logger.With("message_id", msg.ID, "receive_count", msg.ReceiveCount)

	err := c.handle(ctx, msg)
	class := errs.Classify(err)

	metrics.MessageHandlingDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.String("orchestrator.outcome", class.String()))

	switch class {
	case errs.None:
		metrics.MessagesHandledTotal.WithLabelValues(name, metrics.OutcomeAcked).Inc()
		l.Debug("Consumer - process - message handled")
		c.ack(ctx, l, msg)

	case errs.Permanent:
		span.SetStatus(codes.Error, err.Error())
		metrics.MessagesHandledTotal.WithLabelValues(name, metrics.OutcomeDiscarded).Inc()
		l.Error(err, "Consumer - process - permanent failure, discarding message")
		c.ack(ctx, l, msg)

	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.MessagesHandledTotal.WithLabelValues(name, metrics.OutcomeRetained).Inc()
		l.Error(err, "Consumer - process - transient failure, leaving message for redelivery")

		// loop ctx: a shutdown cuts any release delay short
		if relErr := c.source.Release(c.ctx, msg); relErr != nil {
			l.Error(relErr, "Consumer - process - c.source.Release")
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg *entity.QueueMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("Consumer - handle - %w: %v", errs.ErrHandlerPanic, r)
		}
	}()

	return c.handler(ctx, msg)
}

func (c *Consumer) ack(ctx context.Context, l logger.Interface, msg *entity.QueueMessage) {
	if err := c.source.Ack(ctx, msg); err != nil {
		metrics.AckErrorsTotal.WithLabelValues(c.source.Name()).Inc()
		l.Error(err, "Consumer - ack - c.source.Ack")
	}
}

func (c *Consumer) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-c.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Shutdown stops polling and waits for the message in flight, bounded by ctx.
func (c *Consumer) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		if err := c.source.Close(); err != nil {
			c.logger.Error(err, "Consumer - Shutdown - c.source.Close")
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("Consumer - Shutdown - %s: %w", c.source.Name(), ctx.Err())
	}
}
