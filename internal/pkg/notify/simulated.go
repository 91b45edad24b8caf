package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Delivery is a notification accepted by the simulated channel.
type Delivery struct {
	Notification
	SentAt time.Time
}

// SimulatedChannel logs notifications instead of sending them and keeps a
// record of every delivery.
type SimulatedChannel struct {
	logger zerolog.Logger
	delay  time.Duration

	mu         sync.Mutex
	deliveries []Delivery
	failWith   error
}

// SimulatedOption configures a SimulatedChannel.
type SimulatedOption func(*SimulatedChannel)

// WithDelayMS makes every Send wait before recording the delivery.
func WithDelayMS(ms int) SimulatedOption {
	return func(c *SimulatedChannel) {
		if ms > 0 {
			c.delay = time.Duration(ms) * time.Millisecond
		}
	}
}

// NewSimulatedChannel creates a simulated channel.
func NewSimulatedChannel(logger zerolog.Logger, opts ...SimulatedOption) *SimulatedChannel {
	c := &SimulatedChannel{logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements Channel.
func (c *SimulatedChannel) Name() string { return ChannelSimulated }

// Send implements Channel.
func (c *SimulatedChannel) Send(ctx context.Context, n Notification) error {
	if err := n.validate(); err != nil {
		return err
	}

	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrDelivery, ctx.Err())
		case <-timer.C:
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, c.failWith)
	}
	if n.FromName == "" {
		n.FromName = DefaultFromName
	}
	c.deliveries = append(c.deliveries, Delivery{Notification: n, SentAt: time.Now()})

	c.logger.Info().
		Str("to", n.ToEmail).
		Str("company", n.CompanyName).
		Str("status", n.Status).
		Str("subject", n.Subject()).
		Msg("Mock email sent")
	return nil
}

// FailWith makes subsequent sends fail with err; nil restores delivery.
func (c *SimulatedChannel) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failWith = err
}

// Deliveries returns the recorded deliveries in send order.
func (c *SimulatedChannel) Deliveries() []Delivery {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Delivery, len(c.deliveries))
	copy(out, c.deliveries)
	return out
}
