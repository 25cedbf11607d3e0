package geolocation

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"

	"nav-tracking-service/internal/domain"
	"nav-tracking-service/internal/ports"
)

// NMEASource turns a stream of NMEA sentences into position fixes. It reads
// from any io.Reader (serial-port bridge, TCP connection, recorded trace
// file) so hardware access stays outside this package.
//
// Only RMC sentences with an active validity flag produce fixes; other
// sentence types and unparseable lines are skipped. The event channel is
// closed when the reader is exhausted.
type NMEASource struct {
	r io.Reader
}

func NewNMEASource(r io.Reader) *NMEASource {
	return &NMEASource{r: r}
}

func (n *NMEASource) Subscribe(ctx context.Context, opts ports.SubscribeOptions) (ports.Subscription, error) {
	events := make(chan ports.FixEvent, 16)
	done := make(chan struct{})

	go func() {
		defer close(events)

		scanner := bufio.NewScanner(n.r)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			default:
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" || !strings.HasPrefix(line, "$") {
				continue
			}

			sentence, err := nmea.Parse(line)
			if err != nil {
				// Noisy receivers emit partial sentences; skip them.
				continue
			}
			if sentence.DataType() != nmea.TypeRMC {
				continue
			}

			rmc := sentence.(nmea.RMC)
			if rmc.Validity != nmea.ValidRMC {
				continue
			}

			fix := domain.Fix{
				Coordinate: domain.Coordinate{Lat: rmc.Latitude, Lng: rmc.Longitude},
				Time:       rmcTime(rmc),
			}

			select {
			case events <- ports.FixEvent{Fix: fix}:
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}

		if err := scanner.Err(); err != nil {
			select {
			case events <- ports.FixEvent{Err: &domain.GeolocationError{Reason: "nmea stream read failed", Err: err}}:
			case <-ctx.Done():
			case <-done:
			}
		}
	}()

	return &streamSubscription{events: events, done: done}, nil
}

// rmcTime combines the RMC date and time-of-day fields into a UTC timestamp.
func rmcTime(rmc nmea.RMC) time.Time {
	if !rmc.Date.Valid || !rmc.Time.Valid {
		return time.Time{}
	}
	return time.Date(
		2000+rmc.Date.YY, time.Month(rmc.Date.MM), rmc.Date.DD,
		rmc.Time.Hour, rmc.Time.Minute, rmc.Time.Second, rmc.Time.Millisecond*int(time.Millisecond),
		time.UTC,
	)
}

type streamSubscription struct {
	events chan ports.FixEvent
	done   chan struct{}
	closed bool
}

func (s *streamSubscription) Events() <-chan ports.FixEvent { return s.events }

func (s *streamSubscription) Close() error {
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	return nil
}
