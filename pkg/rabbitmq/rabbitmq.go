package rabbitmq

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	_defaultConnAttempts = 10
	_defaultConnTimeout  = time.Second
)

var errClosed = errors.New("rabbitmq connection closed by client")

type connection interface {
	Channel() (*amqp.Channel, error)
	IsClosed() bool
	Close() error
}

// RabbitMQ owns one AMQP connection and redials it when the broker drops it.
type RabbitMQ struct {
	url          string
	connAttempts int
	connTimeout  time.Duration
	dial         func(url string) (connection, error)

	mu     sync.Mutex
	conn   connection
	closed bool
}

func dialAMQP(url string) (connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	return conn, nil
}

func New(url string, opts ...Option) (*RabbitMQ, error) {
	r := &RabbitMQ{
		url:          url,
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
		dial:         dialAMQP,
	}

	for _, opt := range opts {
		opt(r)
	}

	var err error
	for r.connAttempts > 0 {
		r.conn, err = r.dial(url)
		if err == nil {
			break
		}

		log.Printf("RabbitMQ is trying to connect, attempts left: %d", r.connAttempts)

		time.Sleep(r.connTimeout)

		r.connAttempts--
	}

	if err != nil {
		return nil, fmt.Errorf("RabbitMQ - New - connAttempts == 0: %w", err)
	}

	return r, nil
}

// Channel opens a channel, redialing first when the connection is gone.
// A failed redial is returned as is; callers retry on their own schedule.
func (r *RabbitMQ) Channel() (*amqp.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, fmt.Errorf("RabbitMQ - Channel: %w", errClosed)
	}

	if r.conn == nil || r.conn.IsClosed() {
		conn, err := r.dial(r.url)
		if err != nil {
			return nil, fmt.Errorf("RabbitMQ - Channel - redial: %w", err)
		}
		log.Printf("RabbitMQ reconnected")
		r.conn = conn
	}

	ch, err := r.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("RabbitMQ - Channel - r.conn.Channel: %w", err)
	}

	return ch, nil
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	if r.conn != nil && !r.conn.IsClosed() {
		return r.conn.Close()
	}

	return nil
}
