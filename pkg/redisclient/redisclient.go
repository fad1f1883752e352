package redisclient

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	_defaultConnAttempts = 10
	_defaultConnTimeout  = time.Second
	_defaultPingTimeout  = 5 * time.Second
)

type Redis struct {
	connAttempts int
	connTimeout  time.Duration

	Client *redis.Client
}

func New(url string, opts ...Option) (*Redis, error) {
	r := &Redis{
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
	}

	for _, opt := range opts {
		opt(r)
	}

	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("Redis - New - redis.ParseURL: %w", err)
	}

	r.Client = redis.NewClient(options)

	for r.connAttempts > 0 {
		err = r.ping()
		if err == nil {
			break
		}

		log.Printf("Redis is trying to connect, attempts left: %d", r.connAttempts)

		time.Sleep(r.connTimeout)

		r.connAttempts--
	}

	if err != nil {
		_ = r.Client.Close()
		return nil, fmt.Errorf("Redis - New - connAttempts == 0: %w", err)
	}

	return r, nil
}

func (r *Redis) ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), _defaultPingTimeout)
	defer cancel()

	return r.Client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}

	return nil
}
