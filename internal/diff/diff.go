// Package diff computes minimal SET/DELETE batches between two consecutive
// snapshots, plus the pilot transition events consumed by named-query
// subscriptions.
package diff

import (
	"github.com/yegors/vatmap/internal/model"
)

// PilotDiff is the pilot change set of one refresh cycle. Delete entries
// are identity-only records.
type PilotDiff struct {
	Set    []*model.Pilot
	Delete []*model.Pilot
}

// Empty reports whether the cycle produced no pilot changes
func (d *PilotDiff) Empty() bool { return len(d.Set) == 0 && len(d.Delete) == 0 }

// AirportDiff is the airport change set of one refresh cycle
type AirportDiff struct {
	Set    []*model.Airport
	Delete []*model.Airport
}

// Empty reports whether the cycle produced no airport changes
func (d *AirportDiff) Empty() bool { return len(d.Set) == 0 && len(d.Delete) == 0 }

// FIRDiff is the FIR change set of one refresh cycle
type FIRDiff struct {
	Set    []*model.FIR
	Delete []*model.FIR
}

// Empty reports whether the cycle produced no FIR changes
func (d *FIRDiff) Empty() bool { return len(d.Set) == 0 && len(d.Delete) == 0 }

// Transition is one pilot state transition between two snapshots: the
// pilot appeared (online), disappeared (offline, carrying the last-known
// value) or changed flight plan.
type Transition struct {
	Kind  model.QueryUpdateKind
	Pilot *model.Pilot
}

// Result is the full outcome of diffing two snapshots
type Result struct {
	Pilots      PilotDiff
	Airports    AirportDiff
	FIRs        FIRDiff
	Transitions []Transition
}

// Empty reports whether nothing changed between the two snapshots
func (r *Result) Empty() bool {
	return r.Pilots.Empty() && r.Airports.Empty() && r.FIRs.Empty() && len(r.Transitions) == 0
}

// Compute diffs two snapshots category by category. prev may be nil, in
// which case everything in curr is new. Entities within a batch carry no
// ordering guarantee.
func Compute(prev, curr *model.Snapshot) *Result {
	res := &Result{}

	prevPilots := map[string]*model.Pilot{}
	prevAirports := map[string]*model.Airport{}
	prevFIRs := map[string]*model.FIR{}
	if prev != nil {
		prevPilots = prev.Pilots
		prevAirports = prev.Airports
		prevFIRs = prev.FIRs
	}

	for callsign, pilot := range curr.Pilots {
		existing, ok := prevPilots[callsign]
		if !ok {
			res.Pilots.Set = append(res.Pilots.Set, pilot)
			res.Transitions = append(res.Transitions, Transition{Kind: model.QueryUpdateOnline, Pilot: pilot})
			continue
		}
		if !existing.FlightPlan.Equal(pilot.FlightPlan) {
			res.Transitions = append(res.Transitions, Transition{Kind: model.QueryUpdateFlightplan, Pilot: pilot})
		}
		if !pilotEqual(existing, pilot) {
			res.Pilots.Set = append(res.Pilots.Set, pilot)
		}
	}
	for callsign, pilot := range prevPilots {
		if _, ok := curr.Pilots[callsign]; !ok {
			res.Pilots.Delete = append(res.Pilots.Delete, pilot.Ref())
			res.Transitions = append(res.Transitions, Transition{Kind: model.QueryUpdateOffline, Pilot: pilot})
		}
	}

	for icao, arpt := range curr.Airports {
		if existing, ok := prevAirports[icao]; !ok || !existing.Equal(arpt) {
			res.Airports.Set = append(res.Airports.Set, arpt)
		}
	}
	for icao, arpt := range prevAirports {
		if _, ok := curr.Airports[icao]; !ok {
			res.Airports.Delete = append(res.Airports.Delete, arpt.Ref())
		}
	}

	for icao, fir := range curr.FIRs {
		if existing, ok := prevFIRs[icao]; !ok || !existing.Equal(fir) {
			res.FIRs.Set = append(res.FIRs.Set, fir)
		}
	}
	for icao, fir := range prevFIRs {
		if _, ok := curr.FIRs[icao]; !ok {
			res.FIRs.Delete = append(res.FIRs.Delete, fir.Ref())
		}
	}

	return res
}

// pilotEqual is full structural equality over everything a subscriber can
// see, including the flight plan
func pilotEqual(a, b *model.Pilot) bool {
	return a.CID == b.CID &&
		a.Name == b.Name &&
		a.Callsign == b.Callsign &&
		a.Server == b.Server &&
		a.PilotRating == b.PilotRating &&
		a.Position == b.Position &&
		a.Altitude == b.Altitude &&
		a.Groundspeed == b.Groundspeed &&
		a.Transponder == b.Transponder &&
		a.Heading == b.Heading &&
		a.QNHiHg == b.QNHiHg &&
		a.QNHMb == b.QNHMb &&
		a.LogonTime.Equal(b.LogonTime) &&
		a.LastUpdated.Equal(b.LastUpdated) &&
		a.FlightPlan.Equal(b.FlightPlan)
}
