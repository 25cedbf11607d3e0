package geolocation

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"nav-tracking-service/internal/domain"
	"nav-tracking-service/internal/ports"
)

// jsonlFix is the recorded-trace wire form: one JSON object per line.
type jsonlFix struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	TimestampMS int64   `json:"timestamp_ms"`
}

// JSONLSource replays a JSON-lines fix trace as a geolocation stream. Blank
// lines are skipped; a malformed line surfaces as a source error, since a
// corrupt trace should halt a replay rather than silently thin it out.
type JSONLSource struct {
	r io.Reader
}

func NewJSONLSource(r io.Reader) *JSONLSource {
	return &JSONLSource{r: r}
}

func (j *JSONLSource) Subscribe(ctx context.Context, opts ports.SubscribeOptions) (ports.Subscription, error) {
	events := make(chan ports.FixEvent, 16)
	done := make(chan struct{})

	go func() {
		defer close(events)

		scanner := bufio.NewScanner(j.r)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			var wire jsonlFix
			if err := json.Unmarshal([]byte(line), &wire); err != nil {
				ev := ports.FixEvent{Err: &domain.GeolocationError{
					Reason: fmt.Sprintf("malformed trace line %d", lineNo),
					Err:    err,
				}}
				select {
				case events <- ev:
				case <-ctx.Done():
				case <-done:
				}
				return
			}

			fix := domain.Fix{
				Coordinate: domain.Coordinate{Lat: wire.Lat, Lng: wire.Lng},
				Time:       time.UnixMilli(wire.TimestampMS).UTC(),
			}

			select {
			case events <- ports.FixEvent{Fix: fix}:
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	return &streamSubscription{events: events, done: done}, nil
}
