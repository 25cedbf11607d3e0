package ports

import (
	"context"
	"time"

	"nav-tracking-service/internal/domain"
)

// FixEvent carries either a position fix or a source-level error. Fixes and
// errors arrive on one typed channel so the session can reason about arrival
// order.
type FixEvent struct {
	Fix domain.Fix
	Err error
}

// SubscribeOptions tune the underlying position source.
type SubscribeOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
}

// Subscription is a cancellable stream of fix events. The channel is closed
// when the source is exhausted or the subscription is closed.
type Subscription interface {
	Events() <-chan FixEvent
	Close() error
}

// GeolocationSource is the contract for anything that produces live position
// fixes: an MQTT topic, an NMEA byte stream, or fixes pushed over HTTP.
type GeolocationSource interface {
	Subscribe(ctx context.Context, opts SubscribeOptions) (Subscription, error)
}
