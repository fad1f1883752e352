package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fiapx/video-orchestrator/config"
	queuectrl "github.com/fiapx/video-orchestrator/internal/controller/queue"
	"github.com/fiapx/video-orchestrator/internal/controller/restapi"
	"github.com/fiapx/video-orchestrator/internal/controller/worker/queuestats"
	"github.com/fiapx/video-orchestrator/internal/infrastructure/messaging"
	"github.com/fiapx/video-orchestrator/internal/usecase/video"
	"github.com/fiapx/video-orchestrator/pkg/httpserver"
	"github.com/fiapx/video-orchestrator/pkg/logger"
	"github.com/fiapx/video-orchestrator/pkg/tracing"
)

func newLogger(cfg *config.Config) *logger.Logger {
	var opts []logger.Option
	if cfg.Log.File != "" {
		opts = append(opts, logger.File(cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups, cfg.Log.MaxAgeDays))
	}

	return logger.New(cfg.Log.Level, opts...)
}

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := newLogger(cfg)

	var c closers
	defer c.closeAll()

	// Tracing
	if cfg.Tracing.Enabled {
		shutdownTracing, err := tracing.Init(ctx, cfg.Tracing.EndpointURL, cfg.App.Name, cfg.App.Version)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - tracing.Init: %w", err))
		}
		c.add(func() {
			if err := shutdownTracing(context.Background()); err != nil {
				l.Error(err, "app - Run - shutdownTracing")
			}
		})
	}

	// Repository
	videoRepo, err := newVideoRepo(ctx, cfg, l, &c)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - newVideoRepo: %w", err))
	}

	videoStorage, err := newVideoStorage(ctx, cfg)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - newVideoStorage: %w", err))
	}

	locker, err := newLocker(cfg, l, &c)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - newLocker: %w", err))
	}

	// Messaging
	b := &brokers{cfg: cfg, c: &c}

	publisher, err := b.publisher(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - b.publisher: %w", err))
	}
	gateway := messaging.NewGateway(publisher, l)

	uploadSource, err := b.source(ctx, cfg.Queues.Upload)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - b.source(upload): %w", err))
	}

	resultSource, err := b.source(ctx, cfg.Queues.Result)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - b.source(result): %w", err))
	}

	// Use-Case
	videoUseCase := video.New(
		videoRepo,
		videoStorage,
		locker,
		gateway,
		video.Queues{Work: cfg.Queues.Work, Notification: cfg.Queues.Notification},
		l,
	)

	// Queue Consumers
	handlers := queuectrl.NewHandlers(videoUseCase, l)
	settings := queuectrl.Settings{
		MaxMessages:      cfg.Consumer.MaxMessages,
		WaitTime:         cfg.Consumer.WaitTime,
		PollErrorBackoff: cfg.Consumer.PollErrorBackoff,
	}
	uploadConsumer := queuectrl.NewConsumer(uploadSource, handlers.UploadEvents, settings, l)
	resultConsumer := queuectrl.NewConsumer(resultSource, handlers.VideoResults, settings, l)

	// Queue Stats Worker
	queueStatsWorker := queuestats.New(
		depthTargets(uploadSource, resultSource),
		l,
		cfg.QueueStats.Interval,
		cfg.QueueStats.Timeout,
	)

	// HTTP Server
	httpServer := httpserver.New(l, httpserver.Port(cfg.HTTP.Port), httpserver.Prefork(cfg.HTTP.UsePreforkMode))
	restapi.NewRouter(httpServer.App, cfg, videoUseCase, l)

	// Start Components
	err = uploadConsumer.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - uploadConsumer.Start: %w", err))
	}
	err = resultConsumer.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - resultConsumer.Start: %w", err))
	}
	err = queueStatsWorker.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - queueStatsWorker.Start: %w", err))
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(err, "app - Run - httpServer.Notify")
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(err, "app - Run - httpServer.Shutdown")
	}

	qsShutdownCtx, qsShutdownCancel := context.WithTimeout(ctx, cfg.QueueStats.ShutdownTimeout)
	defer qsShutdownCancel()
	err = queueStatsWorker.Shutdown(qsShutdownCtx)
	if err != nil {
		l.Error(err, "app - Run - queueStatsWorker.Shutdown")
	}

	// both loops stop polling at once, then in-flight messages are awaited
	consumerShutdownCtx, consumerShutdownCancel := context.WithTimeout(ctx, cfg.Consumer.ShutdownTimeout)
	defer consumerShutdownCancel()

	errc := make(chan error, 2)
	for _, consumer := range []*queuectrl.Consumer{uploadConsumer, resultConsumer} {
		go func(consumer *queuectrl.Consumer) {
			errc <- consumer.Shutdown(consumerShutdownCtx)
		}(consumer)
	}
	for range 2 {
		if err = <-errc; err != nil {
			l.Error(err, "app - Run - consumer.Shutdown")
		}
	}

	err = gateway.Close()
	if err != nil {
		l.Error(err, "app - Run - gateway.Close")
	}
}
