package natsclient

import "time"

type Option func(*NATS)

func ConnAttempts(attempts int) Option {
	return func(n *NATS) {
		n.connAttempts = attempts
	}
}

func ConnTimeout(timeout time.Duration) Option {
	return func(n *NATS) {
		n.connTimeout = timeout
	}
}
