package app

import (
	"context"
	"fmt"

	"github.com/fiapx/video-orchestrator/config"
	"github.com/fiapx/video-orchestrator/internal/controller/worker/queuestats"
	"github.com/fiapx/video-orchestrator/internal/infrastructure"
	infrakafka "github.com/fiapx/video-orchestrator/internal/infrastructure/kafka"
	infranats "github.com/fiapx/video-orchestrator/internal/infrastructure/nats"
	infrarabbit "github.com/fiapx/video-orchestrator/internal/infrastructure/rabbitmq"
	infrasqs "github.com/fiapx/video-orchestrator/internal/infrastructure/sqs"
	"github.com/fiapx/video-orchestrator/internal/repo"
	"github.com/fiapx/video-orchestrator/internal/repo/lock"
	"github.com/fiapx/video-orchestrator/internal/repo/persistent"
	"github.com/fiapx/video-orchestrator/pkg/awsconfig"
	"github.com/fiapx/video-orchestrator/pkg/kafka/producer"
	"github.com/fiapx/video-orchestrator/pkg/logger"
	"github.com/fiapx/video-orchestrator/pkg/natsclient"
	"github.com/fiapx/video-orchestrator/pkg/postgres"
	"github.com/fiapx/video-orchestrator/pkg/rabbitmq"
	"github.com/fiapx/video-orchestrator/pkg/redisclient"
	"github.com/fiapx/video-orchestrator/pkg/s3client"
	"github.com/fiapx/video-orchestrator/pkg/sqlite"
	"github.com/fiapx/video-orchestrator/pkg/sqsclient"
	"github.com/fiapx/video-orchestrator/pkg/types/errs"
)

// closers run in reverse order of registration.
type closers []func()

func (c *closers) add(f func()) {
	*c = append(*c, f)
}

func (c closers) closeAll() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func awsParams(cfg *config.Config) awsconfig.Params {
	return awsconfig.Params{
		Region:    cfg.AWS.Region,
		Endpoint:  cfg.AWS.Endpoint,
		AccessKey: cfg.AWS.AccessKey,
		SecretKey: cfg.AWS.SecretKey,
	}
}

// newVideoRepo opens the configured database and applies pending migrations.
func newVideoRepo(ctx context.Context, cfg *config.Config, l logger.Interface, c *closers) (repo.VideoRepo, error) {
	switch cfg.Repository.Driver {
	case config.DriverPostgres:
		pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
		if err != nil {
			return nil, fmt.Errorf("postgres.New: %w", err)
		}
		c.add(pg.Close)

		applied, err := persistent.MigratePostgres(ctx, pg)
		if err != nil {
			return nil, fmt.Errorf("persistent.MigratePostgres: %w", err)
		}
		logMigrations(l, applied)

		return persistent.NewVideoRepo(pg), nil

	case config.DriverSQLite:
		db, err := sqlite.New(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("sqlite.New: %w", err)
		}
		c.add(func() { _ = db.Close() })

		applied, err := persistent.MigrateSQLite(ctx, db)
		if err != nil {
			return nil, fmt.Errorf("persistent.MigrateSQLite: %w", err)
		}
		logMigrations(l, applied)

		return persistent.NewSQLiteVideoRepo(db), nil
	}

	return nil, fmt.Errorf("repository %q: %w", cfg.Repository.Driver, errs.ErrUnknownDriver)
}

func logMigrations(l logger.Interface, applied []string) {
	for _, name := range applied {
		l.Info("app - migration applied: %s", name)
	}
}

func newVideoStorage(ctx context.Context, cfg *config.Config) (repo.VideoStorage, error) {
	switch cfg.Storage.Driver {
	case config.DriverS3:
		loadCtx, cancel := context.WithTimeout(ctx, cfg.AWS.CfgLoadTimeout)
		defer cancel()

		s3c, err := s3client.New(loadCtx, awsParams(cfg),
			s3client.UsePathStyle(cfg.AWS.Endpoint != ""),
			s3client.PingBucket(cfg.Storage.RawBucket),
		)
		if err != nil {
			return nil, fmt.Errorf("s3client.New: %w", err)
		}

		return persistent.NewS3Storage(s3c, cfg.Storage.RawBucket, cfg.Storage.OutputBucket,
			cfg.Storage.UploadURLTTL, cfg.Storage.DownloadURLTTL), nil

	case config.DriverMinIO:
		storage, err := persistent.NewMinIOStorage(persistent.MinIOConfig{
			Endpoint:       cfg.MinIO.Endpoint,
			AccessKey:      cfg.MinIO.AccessKey,
			SecretKey:      cfg.MinIO.SecretKey,
			UseSSL:         cfg.MinIO.UseSSL,
			Region:         cfg.MinIO.Region,
			RawBucket:      cfg.Storage.RawBucket,
			OutputBucket:   cfg.Storage.OutputBucket,
			UploadURLTTL:   cfg.Storage.UploadURLTTL,
			DownloadURLTTL: cfg.Storage.DownloadURLTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("persistent.NewMinIOStorage: %w", err)
		}

		err = storage.EnsureBuckets(ctx)
		if err != nil {
			return nil, fmt.Errorf("storage.EnsureBuckets: %w", err)
		}

		return storage, nil
	}

	return nil, fmt.Errorf("storage %q: %w", cfg.Storage.Driver, errs.ErrUnknownDriver)
}

func newLocker(cfg *config.Config, l logger.Interface, c *closers) (repo.Locker, error) {
	if cfg.Lock.RedisURL == "" {
		return lock.NewMemoryLocker(), nil
	}

	rc, err := redisclient.New(cfg.Lock.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redisclient.New: %w", err)
	}
	c.add(func() { _ = rc.Close() })

	return lock.NewRedisLocker(rc.Client, cfg.Lock.TTL, cfg.Lock.RetryInterval, l), nil
}

// brokers lazily connects each messaging driver once, so inbound and
// outbound sides can share a connection.
type brokers struct {
	cfg *config.Config
	c   *closers

	sqs    *sqsclient.SQSClient
	rabbit *rabbitmq.RabbitMQ
	nats   *natsclient.NATS
}

func (b *brokers) sqsClient(ctx context.Context) (*sqsclient.SQSClient, error) {
	if b.sqs != nil {
		return b.sqs, nil
	}

	loadCtx, cancel := context.WithTimeout(ctx, b.cfg.AWS.CfgLoadTimeout)
	defer cancel()

	client, err := sqsclient.New(loadCtx, awsParams(b.cfg))
	if err != nil {
		return nil, fmt.Errorf("sqsclient.New: %w", err)
	}
	b.sqs = client

	return client, nil
}

func (b *brokers) rabbitConn() (*rabbitmq.RabbitMQ, error) {
	if b.rabbit != nil {
		return b.rabbit, nil
	}

	conn, err := rabbitmq.New(b.cfg.RabbitMQ.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq.New: %w", err)
	}
	b.c.add(func() { _ = conn.Close() })
	b.rabbit = conn

	return conn, nil
}

func (b *brokers) natsConn() (*natsclient.NATS, error) {
	if b.nats != nil {
		return b.nats, nil
	}

	conn, err := natsclient.New(b.cfg.NATS.URL)
	if err != nil {
		return nil, fmt.Errorf("natsclient.New: %w", err)
	}
	b.c.add(conn.Close)
	b.nats = conn

	return conn, nil
}

func (b *brokers) source(ctx context.Context, queue string) (infrastructure.MessageSource, error) {
	switch b.cfg.Messaging.Driver {
	case config.DriverSQS:
		client, err := b.sqsClient(ctx)
		if err != nil {
			return nil, err
		}
		return infrasqs.NewSource(client.Client, queue), nil

	case config.DriverRabbitMQ:
		conn, err := b.rabbitConn()
		if err != nil {
			return nil, err
		}
		src, err := infrarabbit.NewSource(conn, queue, b.cfg.Consumer.MaxMessages, b.cfg.RabbitMQ.RequeueDelay)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq.NewSource: %w", err)
		}
		return src, nil

	case config.DriverNATS:
		conn, err := b.natsConn()
		if err != nil {
			return nil, err
		}
		src, err := infranats.NewSource(ctx, conn.JetStream, queue, b.cfg.NATS.AckWait, b.cfg.NATS.NakDelay)
		if err != nil {
			return nil, fmt.Errorf("nats.NewSource: %w", err)
		}
		return src, nil
	}

	return nil, fmt.Errorf("messaging %q: %w", b.cfg.Messaging.Driver, errs.ErrUnknownDriver)
}

func (b *brokers) publisher(ctx context.Context) (infrastructure.MessagePublisher, error) {
	switch b.cfg.Messaging.PublishDriver {
	case config.DriverSQS:
		client, err := b.sqsClient(ctx)
		if err != nil {
			return nil, err
		}
		return infrasqs.NewPublisher(client.Client), nil

	case config.DriverRabbitMQ:
		conn, err := b.rabbitConn()
		if err != nil {
			return nil, err
		}
		pub, err := infrarabbit.NewPublisher(conn)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq.NewPublisher: %w", err)
		}
		return pub, nil

	case config.DriverNATS:
		conn, err := b.natsConn()
		if err != nil {
			return nil, err
		}
		return infranats.NewPublisher(conn.JetStream), nil

	case config.DriverKafka:
		p, err := producer.New(ctx, b.cfg.Kafka.Brokers, producer.AutoCreateTopics(true))
		if err != nil {
			return nil, fmt.Errorf("producer.New: %w", err)
		}
		return infrakafka.NewEventProducer(p), nil
	}

	return nil, fmt.Errorf("publisher %q: %w", b.cfg.Messaging.PublishDriver, errs.ErrUnknownDriver)
}

func depthTargets(sources ...infrastructure.MessageSource) []queuestats.Target {
	var targets []queuestats.Target
	for _, src := range sources {
		if dr, ok := src.(infrastructure.DepthReporter); ok {
			targets = append(targets, queuestats.Target{Name: src.Name(), Source: dr})
		}
	}

	return targets
}
