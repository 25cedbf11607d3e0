package geolocation

import (
	"context"
	"errors"
	"sync"

	"nav-tracking-service/internal/domain"
	"nav-tracking-service/internal/ports"
)

// ChannelSource is an in-process geolocation source: the API layer pushes
// fixes into it (HTTP-supplied positions) and the session consumes them as a
// subscription. Supports one subscriber at a time.
type ChannelSource struct {
	mu     sync.Mutex
	events chan ports.FixEvent
	closed bool
}

func NewChannelSource() *ChannelSource {
	return &ChannelSource{events: make(chan ports.FixEvent, 16)}
}

// Push delivers a fix to the subscriber. Returns an error once the source
// is closed.
func (c *ChannelSource) Push(fix domain.Fix) error {
	return c.deliver(ports.FixEvent{Fix: fix})
}

// Fail delivers a source-level error (permission denied, timeout) to the
// subscriber.
func (c *ChannelSource) Fail(err error) error {
	return c.deliver(ports.FixEvent{Err: err})
}

func (c *ChannelSource) deliver(ev ports.FixEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("channel source closed")
	}

	select {
	case c.events <- ev:
		return nil
	default:
		return errors.New("channel source buffer full")
	}
}

func (c *ChannelSource) Subscribe(ctx context.Context, opts ports.SubscribeOptions) (ports.Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errors.New("channel source closed")
	}
	return &channelSubscription{source: c}, nil
}

// Close ends the stream; the subscriber's event channel is closed.
func (c *ChannelSource) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
	return nil
}

type channelSubscription struct {
	source *ChannelSource
}

func (s *channelSubscription) Events() <-chan ports.FixEvent { return s.source.events }

func (s *channelSubscription) Close() error { return s.source.Close() }
