package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"nav-tracking-service/internal/adapters/geolocation"
	"nav-tracking-service/internal/adapters/routing"
	"nav-tracking-service/internal/domain"
	"nav-tracking-service/internal/ports"
	"nav-tracking-service/internal/services"
)

// replay feeds a recorded position trace (NMEA or JSONL) through a tracking
// session and prints the progress timeline. Useful for checking route
// matching and ETA behavior against real traces without a GPS device.
func main() {
	tracePath := flag.String("trace", "", "trace file (.nmea/.txt for NMEA, .jsonl for JSON lines)")
	destFlag := flag.String("dest", "", "destination as lat,lng (omit to track without routing)")
	modeFlag := flag.String("mode", "driving", "travel mode: driving, walking, cycling")
	osrmURL := flag.String("osrm", "", "OSRM base URL (omit to synthesize routes locally)")
	flag.Parse()

	if *tracePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*tracePath)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	var source ports.GeolocationSource
	if ext := strings.ToLower(filepath.Ext(*tracePath)); ext == ".jsonl" || ext == ".json" {
		source = geolocation.NewJSONLSource(f)
	} else {
		source = geolocation.NewNMEASource(f)
	}

	var routeService ports.RouteService
	if *osrmURL != "" {
		routeService, err = routing.NewOSRMRouteService(*osrmURL, nil)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		routeService = routing.NewMockRouteService()
	}

	mode, err := domain.ParseTravelMode(*modeFlag)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	// The session consumes fixes from a channel we control, so the timeline
	// can be printed after each fix has been processed.
	push := geolocation.NewChannelSource()
	session, err := services.NewTrackingSession("replay", mode, services.Deps{
		Source: push,
		Routes: routeService,
	}, services.Options{})
	if err != nil {
		log.Fatal(err)
	}
	if err := session.Start(ctx); err != nil {
		log.Fatal(err)
	}

	if *destFlag != "" {
		dest, err := parseCoordinate(*destFlag)
		if err != nil {
			log.Fatal(err)
		}
		if err := session.SetDestination(dest); err != nil {
			log.Fatal(err)
		}
	}

	sub, err := source.Subscribe(ctx, ports.SubscribeOptions{})
	if err != nil {
		log.Fatal(err)
	}
	defer sub.Close()

	n := 0
	for ev := range sub.Events() {
		if ev.Err != nil {
			log.Printf("trace error: %v", ev.Err)
			continue
		}
		if err := push.Push(ev.Fix); err != nil {
			log.Fatal(err)
		}

		snap := awaitFixCount(session, n+1)
		n++
		printTimeline(n, snap)
	}

	summary, err := session.Stop()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("\ntrip: fixes=%d distance=%s duration=%s mode=%s\n",
		summary.FixCount,
		domain.PresentableDistance(summary.DistanceMeters),
		domain.PresentableDuration(summary.EndedAt.Sub(summary.StartedAt)),
		summary.Mode,
	)
}

// awaitFixCount polls until the event loop has absorbed the pushed fix.
func awaitFixCount(session *services.TrackingSession, want int) services.Snapshot {
	for {
		snap := session.Snapshot()
		if snap.FixCount >= want {
			return snap
		}
		time.Sleep(time.Millisecond)
	}
}

func printTimeline(n int, snap services.Snapshot) {
	line := fmt.Sprintf("fix=%d", n)
	if snap.Position != nil {
		line += fmt.Sprintf(" pos=%.5f,%.5f", snap.Position.Lat, snap.Position.Lng)
	}
	line += fmt.Sprintf(" traveled=%s", domain.PresentableDistance(snap.TraveledMeters))

	if p := snap.Progress; p != nil {
		line += fmt.Sprintf(" remaining=%s eta=%s speed=%.1fkm/h",
			domain.PresentableDistance(p.RemainingMeters),
			domain.PresentableETA(p.ETA),
			p.SpeedKmh,
		)
	}
	if snap.Warning != "" {
		line += " warning=" + strconv.Quote(snap.Warning)
	}
	fmt.Println(line)
}

func parseCoordinate(s string) (domain.Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return domain.Coordinate{}, fmt.Errorf("parse coordinate %q: want lat,lng", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("parse coordinate %q: %w", s, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("parse coordinate %q: %w", s, err)
	}

	c := domain.Coordinate{Lat: lat, Lng: lng}
	if !c.Valid() {
		return domain.Coordinate{}, &domain.InvalidWaypointError{Lat: lat, Lng: lng, Reason: "out of range"}
	}
	return c, nil
}
