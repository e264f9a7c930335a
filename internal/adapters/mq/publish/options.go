package publish

import (
	"time"

	"github.com/okian/freethrow/pkg/logger"
)

// Option applies a configuration option to the Publisher.
type Option func(*Publisher)

// WithQoS sets the MQTT quality of service for published messages (0, 1 or 2).
func WithQoS(qos byte) Option {
	return func(p *Publisher) {
		if qos <= 2 {
			p.qos = qos
		}
	}
}

// WithRetained marks published messages as retained on the broker.
func WithRetained(retained bool) Option {
	return func(p *Publisher) {
		p.retained = retained
	}
}

// WithTimeout bounds how long a single connect or publish may wait.
func WithTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger sets the logger used by the publisher.
func WithLogger(l logger.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}
