package geo

import (
	"math"
	"testing"
	"time"

	"nav-tracking-service/internal/domain"
)

func TestDistanceMetersEquator(t *testing.T) {
	// 0.001 degrees of longitude on the equator is about 111.32 meters.
	a := domain.Coordinate{Lat: 0, Lng: 0}
	b := domain.Coordinate{Lat: 0, Lng: 0.001}

	got := DistanceMeters(a, b)
	if math.Abs(got-111.32) > 0.5 {
		t.Fatalf("DistanceMeters = %f, want ~111.32", got)
	}
}

func TestDistanceMetersZero(t *testing.T) {
	a := domain.Coordinate{Lat: 40.0, Lng: -74.0}
	if got := DistanceMeters(a, a); got != 0 {
		t.Fatalf("DistanceMeters(a, a) = %f, want 0", got)
	}
}

func TestBearingDegreesCardinal(t *testing.T) {
	cases := []struct {
		name string
		a, b domain.Coordinate
		want float64
	}{
		{"north", domain.Coordinate{Lat: 0, Lng: 0}, domain.Coordinate{Lat: 1, Lng: 0}, 0},
		{"east", domain.Coordinate{Lat: 0, Lng: 0}, domain.Coordinate{Lat: 0, Lng: 1}, 90},
		{"south", domain.Coordinate{Lat: 1, Lng: 0}, domain.Coordinate{Lat: 0, Lng: 0}, 180},
		{"west", domain.Coordinate{Lat: 0, Lng: 1}, domain.Coordinate{Lat: 0, Lng: 0}, 270},
	}

	for _, tc := range cases {
		got := BearingDegrees(tc.a, tc.b)
		if math.Abs(got-tc.want) > 0.01 {
			t.Errorf("%s: BearingDegrees = %f, want %f", tc.name, got, tc.want)
		}
	}
}

func TestBearingDegreesRange(t *testing.T) {
	pts := []domain.Coordinate{
		{Lat: 40, Lng: -74}, {Lat: 40.01, Lng: -74.02}, {Lat: 39.99, Lng: -73.98},
		{Lat: -33.9, Lng: 151.2}, {Lat: 51.5, Lng: -0.12},
	}
	for _, a := range pts {
		for _, b := range pts {
			got := BearingDegrees(a, b)
			if got < 0 || got >= 360 {
				t.Fatalf("BearingDegrees(%v, %v) = %f, out of [0,360)", a, b, got)
			}
		}
	}
}

func TestBearingDegreesSamePoint(t *testing.T) {
	a := domain.Coordinate{Lat: 40.0, Lng: -74.0}
	if got := BearingDegrees(a, a); got != 0 {
		t.Fatalf("BearingDegrees(a, a) = %f, want 0", got)
	}
}

func TestPathMeters(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fixes := []domain.Fix{
		{Coordinate: domain.Coordinate{Lat: 0, Lng: 0}, Time: base},
		{Coordinate: domain.Coordinate{Lat: 0, Lng: 0.001}, Time: base.Add(time.Second)},
		{Coordinate: domain.Coordinate{Lat: 0, Lng: 0.002}, Time: base.Add(2 * time.Second)},
	}

	want := DistanceMeters(fixes[0].Coordinate, fixes[1].Coordinate) +
		DistanceMeters(fixes[1].Coordinate, fixes[2].Coordinate)

	got := PathMeters(fixes)
	if math.Abs(got-want) > 1 {
		t.Fatalf("PathMeters = %f, want %f (within 1 m)", got, want)
	}
	if math.Abs(got-222.64) > 1 {
		t.Fatalf("PathMeters = %f, want ~222.64 m", got)
	}
}

func TestPathMetersShortHistory(t *testing.T) {
	if got := PathMeters(nil); got != 0 {
		t.Fatalf("PathMeters(nil) = %f, want 0", got)
	}
	one := []domain.Fix{{Coordinate: domain.Coordinate{Lat: 1, Lng: 1}}}
	if got := PathMeters(one); got != 0 {
		t.Fatalf("PathMeters(one fix) = %f, want 0", got)
	}
}
