package model

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestBoundsContains(t *testing.T) {
	b := &Bounds{
		SouthWest: Point{Lat: 40, Lng: -10},
		NorthEast: Point{Lat: 60, Lng: 10},
		Zoom:      5,
	}
	assert.Equal(t, b.SpansAntimeridian(), false)
	assert.Equal(t, b.Contains(Point{Lat: 51.5, Lng: 0}), true)
	assert.Equal(t, b.Contains(Point{Lat: 40, Lng: -10}), true)
	assert.Equal(t, b.Contains(Point{Lat: 39.9, Lng: 0}), false)
	assert.Equal(t, b.Contains(Point{Lat: 51.5, Lng: 10.1}), false)
	assert.Equal(t, b.Contains(Point{Lat: 61, Lng: 0}), false)
}

func TestBoundsContainsAcrossAntimeridian(t *testing.T) {
	// Pacific viewport: west edge at 170, east edge at -170
	b := &Bounds{
		SouthWest: Point{Lat: -10, Lng: 170},
		NorthEast: Point{Lat: 10, Lng: -170},
		Zoom:      5,
	}
	assert.Equal(t, b.SpansAntimeridian(), true)
	assert.Equal(t, b.Contains(Point{Lat: 0, Lng: 179}), true)
	assert.Equal(t, b.Contains(Point{Lat: 0, Lng: -179}), true)
	assert.Equal(t, b.Contains(Point{Lat: 0, Lng: 180 - 0.001}), true)
	assert.Equal(t, b.Contains(Point{Lat: 0, Lng: 0}), false)
	assert.Equal(t, b.Contains(Point{Lat: 0, Lng: 160}), false)
	assert.Equal(t, b.Contains(Point{Lat: 11, Lng: 179}), false)
}

func TestPointClamp(t *testing.T) {
	assert.Equal(t, Point{Lat: 95, Lng: 0}.Clamp(), Point{Lat: 90, Lng: 0})
	assert.Equal(t, Point{Lat: -95, Lng: 0}.Clamp(), Point{Lat: -90, Lng: 0})
	assert.Equal(t, Point{Lat: 0, Lng: 190}.Clamp(), Point{Lat: 0, Lng: -170})
	assert.Equal(t, Point{Lat: 0, Lng: -190}.Clamp(), Point{Lat: 0, Lng: 170})
	assert.Equal(t, Point{Lat: 0, Lng: 180}.Clamp(), Point{Lat: 0, Lng: -180})
	assert.Equal(t, Point{Lat: 45, Lng: -45}.Clamp(), Point{Lat: 45, Lng: -45})
}

func TestFlightPlanEqual(t *testing.T) {
	a := &FlightPlan{FlightRules: "I", Departure: "EGLL", Arrival: "KJFK"}
	b := &FlightPlan{FlightRules: "I", Departure: "EGLL", Arrival: "KJFK"}
	assert.Equal(t, a.Equal(b), true)

	b.Arrival = "KBOS"
	assert.Equal(t, a.Equal(b), false)

	var nilPlan *FlightPlan
	assert.Equal(t, nilPlan.Equal(nil), true)
	assert.Equal(t, a.Equal(nil), false)
	assert.Equal(t, nilPlan.Equal(a), false)
}
