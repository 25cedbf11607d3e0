package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"nav-tracking-service/internal/domain"
)

func newTestCache(t *testing.T) (*RedisRouteCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	c, err := NewRedisRouteCache(client, time.Minute)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	return c, mr
}

func sampleRoute() *domain.Route {
	return &domain.Route{
		Geometry: []domain.Coordinate{
			{Lat: 40.0, Lng: -74.0},
			{Lat: 40.01, Lng: -74.0},
		},
		DistanceMeters: 1113.2,
		Duration:       2 * time.Minute,
		Steps: []domain.Step{
			{Instruction: "Head north", Maneuver: "depart", DistanceMeters: 1113.2, Duration: 2 * time.Minute},
		},
	}
}

func TestRouteCacheMiss(t *testing.T) {
	c, _ := newTestCache(t)

	route, ok, err := c.Get(context.Background(), "route:driving:40,-74")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok || route != nil {
		t.Fatal("expected a miss on an empty cache")
	}
}

func TestRouteCachePutGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	key := "route:driving:40.00000,-74.00000:40.01000,-74.00000"

	if err := c.Put(ctx, key, sampleRoute()); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit")
	}
	if got.DistanceMeters != 1113.2 {
		t.Fatalf("DistanceMeters = %f, want 1113.2", got.DistanceMeters)
	}
	if len(got.Geometry) != 2 || got.Geometry[1].Lat != 40.01 {
		t.Fatalf("geometry round-trip broken: %+v", got.Geometry)
	}
	if len(got.Steps) != 1 || got.Steps[0].Maneuver != "depart" {
		t.Fatalf("steps round-trip broken: %+v", got.Steps)
	}
}

func TestRouteCacheExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	key := "route:driving:k"

	if err := c.Put(ctx, key, sampleRoute()); err != nil {
		t.Fatalf("put: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("entry should have expired")
	}
}

func TestRouteCacheNilRoute(t *testing.T) {
	c, _ := newTestCache(t)
	if err := c.Put(context.Background(), "k", nil); err == nil {
		t.Fatal("nil route must be rejected")
	}
}
