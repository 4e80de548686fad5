package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/yegors/vatmap/internal/model"
	"github.com/yegors/vatmap/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "console"})
	assert.Equal(t, err, nil)
	return log
}

const airportsJSON = `[
	{"icao": "EGLL", "iata": "LHR", "name": "London Heathrow", "lat": 51.4706, "lng": -0.4619, "fir_id": "EGTT",
	 "runways": [{"ident": "09L", "length_ft": 12799, "heading": 90}]},
	{"icao": "KJFK", "iata": "JFK", "name": "John F Kennedy Intl", "lat": 40.6398, "lng": -73.7789, "fir_id": "KZNY", "runways": []}
]`

const boundariesJSON = `[
	{"icao": "EGTT", "name": "London", "prefix": "LON",
	 "boundaries": {"id": "EGTT", "is_oceanic": false,
	  "min": {"lat": 48.9, "lng": -8.3}, "max": {"lat": 55.4, "lng": 3.1},
	  "center": {"lat": 52.2, "lng": -2.6}, "points": []}},
	{"icao": "KZNY", "name": "New York", "prefix": "NY",
	 "boundaries": {"id": "KZNY", "is_oceanic": false,
	  "min": {"lat": 38.0, "lng": -78.0}, "max": {"lat": 42.0, "lng": -71.0},
	  "center": {"lat": 40.0, "lng": -74.0}, "points": []}}
]`

func testStatic(t *testing.T) *Static {
	t.Helper()
	dir := t.TempDir()
	airportsPath := filepath.Join(dir, "airports.json")
	boundariesPath := filepath.Join(dir, "boundaries.json")
	assert.Equal(t, os.WriteFile(airportsPath, []byte(airportsJSON), 0o644), nil)
	assert.Equal(t, os.WriteFile(boundariesPath, []byte(boundariesJSON), 0o644), nil)

	st, err := LoadStatic(airportsPath, boundariesPath, testLogger(t))
	assert.Equal(t, err, nil)
	return st
}

func TestLoadStatic(t *testing.T) {
	st := testStatic(t)

	arpt := st.Airport("EGLL")
	assert.NotEqual(t, arpt, nil)
	assert.Equal(t, arpt.IATA, "LHR")
	assert.Equal(t, arpt.Runways["09L"].LengthFt, 12799)

	fir := st.FIR("EGTT")
	assert.NotEqual(t, fir, nil)
	assert.Equal(t, fir.Prefix, "LON")
}

func TestStaticControllerMatching(t *testing.T) {
	st := testStatic(t)

	assert.Equal(t, st.matchAirport("EGLL_TWR").ICAO, "EGLL")
	assert.Equal(t, st.matchAirport("LHR_N_GND").ICAO, "EGLL")
	assert.Equal(t, st.matchAirport("ZZZZ_TWR"), nil)

	assert.Equal(t, st.matchFIR("LON_CTR").ICAO, "EGTT")
	assert.Equal(t, st.matchFIR("EGTT_CTR").ICAO, "EGTT")
	assert.Equal(t, st.matchFIR("XXX_CTR"), nil)
}

func TestPilotConversion(t *testing.T) {
	fp := feedPilot{
		CID:         1234567,
		Name:        "Jane Roe",
		Callsign:    "BAW123",
		Server:      "UK",
		Latitude:    51.5,
		Longitude:   -0.4,
		Altitude:    36000,
		Groundspeed: 450,
		Transponder: "2000",
		Heading:     270,
		QNHiHg:      29.92,
		QNHMb:       1013,
		FlightPlan: &feedFlightPlan{
			FlightRules: "I",
			Aircraft:    "B77W/H",
			Departure:   "EGLL",
			Arrival:     "KJFK",
			CruiseTAS:   "480",
			Altitude:    "FL360", // free-form, defaults to zero
		},
		LogonTime:   "2026-08-23T10:00:00Z",
		LastUpdated: "2026-08-23T10:15:00Z",
	}

	p := fp.convert()
	assert.Equal(t, p.Callsign, "BAW123")
	assert.Equal(t, p.Position, model.Point{Lat: 51.5, Lng: -0.4})
	assert.Equal(t, p.QNHiHg, 2992)
	assert.Equal(t, p.FlightPlan.CruiseTAS, 480)
	assert.Equal(t, p.FlightPlan.Altitude, 0)
	assert.Equal(t, p.LogonTime.Equal(time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)), true)
	assert.Equal(t, p.LastUpdated.Equal(time.Date(2026, 8, 23, 10, 15, 0, 0, time.UTC)), true)
}

func TestControllerConversion(t *testing.T) {
	atisCode := "K"
	fc := feedController{
		CID:       7654321,
		Callsign:  "EGLL_ATIS",
		Frequency: "128.075",
		Facility:  4,
		AtisCode:  &atisCode,
		TextAtis:  []string{"EGLL INFO K", "RWY 27R IN USE"},
	}

	c := fc.convert()
	assert.Equal(t, c.FreqKhz, 128075)
	assert.Equal(t, c.Facility, model.FacilityTower)
	assert.Equal(t, c.AtisCode, "K")
	assert.Equal(t, c.TextAtis, "EGLL INFO K\nRWY 27R IN USE")

	// Observers and FSS positions are rejected
	fc.Facility = 1
	assert.Equal(t, fc.convert().Facility, model.FacilityReject)
}

func TestBuildSnapshot(t *testing.T) {
	st := testStatic(t)
	p := NewPoller(nil, st, nil, nil, nil, time.Second, testLogger(t))

	data := &feedData{
		Pilots: []feedPilot{
			{Callsign: "BAW123", Latitude: 51.5, Longitude: -0.4, Altitude: 36000, LastUpdated: "2026-08-23T10:15:00Z"},
			{Callsign: "BAW123", Latitude: 0, Longitude: 0}, // duplicate, first wins
			{Callsign: ""},                                  // dropped
		},
		Controllers: []feedController{
			{Callsign: "EGLL_TWR", Facility: 4, Frequency: "118.500"},
			{Callsign: "LON_CTR", Facility: 6, Frequency: "127.825"},
			{Callsign: "ZZZZ_TWR", Facility: 4}, // unknown station, dropped
			{Callsign: "OBS_ONLY", Facility: 0}, // rejected
		},
		ATIS: []feedController{
			{Callsign: "KJFK_ATIS", Facility: 4, Frequency: "128.725"},
		},
	}

	snap := p.buildSnapshot(context.Background(), data, time.Unix(3000, 0))

	assert.Equal(t, len(snap.Pilots), 1)
	assert.Equal(t, snap.Pilots["BAW123"].Altitude, 36000)
	assert.Equal(t, len(snap.Pilots["BAW123"].Track), 1)

	assert.Equal(t, len(snap.Airports), 2)
	egll := snap.Airports["EGLL"]
	assert.NotEqual(t, egll.Controllers.Tower, nil)
	assert.Equal(t, egll.Controllers.Tower.FreqKhz, 118500)
	kjfk := snap.Airports["KJFK"]
	assert.NotEqual(t, kjfk.Controllers.ATIS, nil)
	assert.Equal(t, kjfk.Controllers.Empty(), false)

	assert.Equal(t, len(snap.FIRs), 1)
	fir := snap.FIRs["EGTT"]
	assert.NotEqual(t, fir.Controllers["LON_CTR"], nil)

	// The static templates stay pristine
	assert.Equal(t, st.Airport("EGLL").Controllers.Empty(), true)
	assert.Equal(t, len(st.FIR("EGTT").Controllers), 0)
}

func TestBuildSnapshotTrackAccumulation(t *testing.T) {
	st := testStatic(t)
	p := NewPoller(nil, st, nil, nil, nil, time.Second, testLogger(t))

	mkData := func(ts string, alt int) *feedData {
		return &feedData{Pilots: []feedPilot{
			{Callsign: "BAW123", Latitude: 51.5, Longitude: -0.4, Altitude: alt, LastUpdated: ts},
		}}
	}

	snap1 := p.buildSnapshot(context.Background(), mkData("2026-08-23T10:15:00Z", 36000), time.Unix(1, 0))
	assert.Equal(t, len(snap1.Pilots["BAW123"].Track), 1)

	snap2 := p.buildSnapshot(context.Background(), mkData("2026-08-23T10:15:15Z", 36100), time.Unix(2, 0))
	track := snap2.Pilots["BAW123"].Track
	assert.Equal(t, len(track), 2)
	assert.Equal(t, track[0].Altitude, 36000)
	assert.Equal(t, track[1].Altitude, 36100)

	// The earlier snapshot's view of the track is unchanged
	assert.Equal(t, len(snap1.Pilots["BAW123"].Track), 1)

	// A disconnect drops the buffered track
	empty := p.buildSnapshot(context.Background(), &feedData{}, time.Unix(3, 0))
	assert.Equal(t, len(empty.Pilots), 0)
	snap4 := p.buildSnapshot(context.Background(), mkData("2026-08-23T10:16:00Z", 36000), time.Unix(4, 0))
	assert.Equal(t, len(snap4.Pilots["BAW123"].Track), 1)
}
