package natsclient

import (
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	_defaultConnAttempts  = 10
	_defaultConnTimeout   = time.Second
	_defaultReconnectWait = 2 * time.Second
)

type NATS struct {
	connAttempts int
	connTimeout  time.Duration

	Conn      *nats.Conn
	JetStream jetstream.JetStream
}

func New(url string, opts ...Option) (*NATS, error) {
	n := &NATS{
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
	}

	for _, opt := range opts {
		opt(n)
	}

	var err error
	for n.connAttempts > 0 {
		n.Conn, err = nats.Connect(url,
			nats.MaxReconnects(-1),
			nats.ReconnectWait(_defaultReconnectWait),
		)
		if err == nil {
			break
		}

		log.Printf("NATS is trying to connect, attempts left: %d", n.connAttempts)

		time.Sleep(n.connTimeout)

		n.connAttempts--
	}

	if err != nil {
		return nil, fmt.Errorf("NATS - New - connAttempts == 0: %w", err)
	}

	n.JetStream, err = jetstream.New(n.Conn)
	if err != nil {
		n.Conn.Close()
		return nil, fmt.Errorf("NATS - New - jetstream.New: %w", err)
	}

	return n, nil
}

func (n *NATS) Close() {
	if n.Conn != nil {
		n.Conn.Close()
	}
}
