package diff

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/yegors/vatmap/internal/model"
)

func pilot(callsign string, alt int) *model.Pilot {
	return &model.Pilot{
		Callsign:    callsign,
		CID:         1000,
		Position:    model.Point{Lat: 50, Lng: 10},
		Altitude:    alt,
		LastUpdated: time.Unix(1000, 0),
	}
}

func snapshot(pilots ...*model.Pilot) *model.Snapshot {
	snap := model.NewSnapshot(time.Unix(2000, 0))
	for _, p := range pilots {
		snap.Pilots[p.Callsign] = p
	}
	return snap
}

func TestComputeFromNil(t *testing.T) {
	curr := snapshot(pilot("BAW123", 36000), pilot("DLH456", 24000))
	res := Compute(nil, curr)

	assert.Equal(t, len(res.Pilots.Set), 2)
	assert.Equal(t, len(res.Pilots.Delete), 0)
	assert.Equal(t, len(res.Transitions), 2)
	for _, tr := range res.Transitions {
		assert.Equal(t, tr.Kind, model.QueryUpdateOnline)
	}
}

func TestComputeIdenticalSnapshotsAreEmpty(t *testing.T) {
	a := snapshot(pilot("BAW123", 36000))
	b := snapshot(pilot("BAW123", 36000))
	res := Compute(a, b)
	assert.Equal(t, res.Empty(), true)
}

func TestComputeChangeAndRemoval(t *testing.T) {
	prev := snapshot(pilot("BAW123", 36000), pilot("DLH456", 24000), pilot("UAL1", 10000))
	climbing := pilot("BAW123", 37000)
	curr := snapshot(climbing, pilot("DLH456", 24000))

	res := Compute(prev, curr)

	assert.Equal(t, len(res.Pilots.Set), 1)
	assert.Equal(t, res.Pilots.Set[0].Callsign, "BAW123")
	assert.Equal(t, res.Pilots.Set[0].Altitude, 37000)

	// Removals are identity-only
	assert.Equal(t, len(res.Pilots.Delete), 1)
	assert.Equal(t, res.Pilots.Delete[0].Callsign, "UAL1")
	assert.Equal(t, res.Pilots.Delete[0].Altitude, 0)

	// The offline transition keeps the last-known value
	assert.Equal(t, len(res.Transitions), 1)
	assert.Equal(t, res.Transitions[0].Kind, model.QueryUpdateOffline)
	assert.Equal(t, res.Transitions[0].Pilot.Altitude, 10000)
}

func TestComputeFlightplanTransition(t *testing.T) {
	before := pilot("BAW123", 36000)
	before.FlightPlan = &model.FlightPlan{Arrival: "KJFK"}
	after := pilot("BAW123", 36000)
	after.FlightPlan = &model.FlightPlan{Arrival: "KBOS"}

	res := Compute(snapshot(before), snapshot(after))

	// A plan change is both a transition and a regular SET
	assert.Equal(t, len(res.Transitions), 1)
	assert.Equal(t, res.Transitions[0].Kind, model.QueryUpdateFlightplan)
	assert.Equal(t, res.Transitions[0].Pilot.FlightPlan.Arrival, "KBOS")
	assert.Equal(t, len(res.Pilots.Set), 1)
}

func TestComputeFilingFirstPlanIsFlightplanTransition(t *testing.T) {
	before := pilot("BAW123", 36000)
	after := pilot("BAW123", 36000)
	after.FlightPlan = &model.FlightPlan{Arrival: "KJFK"}

	res := Compute(snapshot(before), snapshot(after))
	assert.Equal(t, len(res.Transitions), 1)
	assert.Equal(t, res.Transitions[0].Kind, model.QueryUpdateFlightplan)
}

func TestApplyingDiffReproducesSnapshot(t *testing.T) {
	prev := snapshot(pilot("BAW123", 36000), pilot("UAL1", 10000))
	curr := snapshot(pilot("BAW123", 37000), pilot("DLH456", 24000))

	res := Compute(prev, curr)

	// Replay the diff over the previous state
	state := make(map[string]*model.Pilot)
	for cs, p := range prev.Pilots {
		state[cs] = p
	}
	for _, p := range res.Pilots.Set {
		state[p.Callsign] = p
	}
	for _, p := range res.Pilots.Delete {
		delete(state, p.Callsign)
	}

	assert.Equal(t, len(state), len(curr.Pilots))
	for cs, p := range curr.Pilots {
		assert.Equal(t, state[cs], p)
	}
}

func TestComputeAirportsAndFIRs(t *testing.T) {
	ctrl := &model.Controller{Callsign: "EGLL_TWR", Facility: model.FacilityTower}

	prevArpt := &model.Airport{ICAO: "EGLL"}
	prevArpt.Controllers.Set(ctrl)
	prev := snapshot()
	prev.Airports["EGLL"] = prevArpt
	prev.FIRs["EGTT"] = &model.FIR{
		ICAO:        "EGTT",
		Controllers: map[string]*model.Controller{"LON_CTR": {Callsign: "LON_CTR", Facility: model.FacilityRadar}},
	}

	// Tower logs off, EGLL drops out entirely; a new FIR comes up
	curr := snapshot()
	curr.FIRs["EGTT"] = &model.FIR{
		ICAO:        "EGTT",
		Controllers: map[string]*model.Controller{"LON_CTR": {Callsign: "LON_CTR", Facility: model.FacilityRadar}},
	}
	curr.FIRs["EDGG"] = &model.FIR{
		ICAO:        "EDGG",
		Controllers: map[string]*model.Controller{"EDGG_CTR": {Callsign: "EDGG_CTR", Facility: model.FacilityRadar}},
	}

	res := Compute(prev, curr)

	assert.Equal(t, len(res.Airports.Set), 0)
	assert.Equal(t, len(res.Airports.Delete), 1)
	assert.Equal(t, res.Airports.Delete[0].ICAO, "EGLL")

	assert.Equal(t, len(res.FIRs.Set), 1)
	assert.Equal(t, res.FIRs.Set[0].ICAO, "EDGG")
	assert.Equal(t, len(res.FIRs.Delete), 0)
}

func TestControllerTimestampChurnIsIgnored(t *testing.T) {
	mk := func(updated time.Time) *model.Snapshot {
		ctrl := &model.Controller{
			Callsign:    "EGLL_TWR",
			Facility:    model.FacilityTower,
			LogonTime:   time.Unix(500, 0),
			LastUpdated: updated,
		}
		arpt := &model.Airport{ICAO: "EGLL"}
		arpt.Controllers.Set(ctrl)
		snap := snapshot()
		snap.Airports["EGLL"] = arpt
		return snap
	}

	res := Compute(mk(time.Unix(1000, 0)), mk(time.Unix(1015, 0)))
	assert.Equal(t, res.Empty(), true)
}
