package model

import "time"

// Snapshot is one full point-in-time state of the network. A snapshot is
// immutable once assembled: the relay swaps whole snapshots, it never
// mutates one in place.
type Snapshot struct {
	UpdatedAt time.Time
	Pilots    map[string]*Pilot
	Airports  map[string]*Airport
	FIRs      map[string]*FIR
}

// NewSnapshot returns an empty snapshot with the given feed timestamp
func NewSnapshot(updatedAt time.Time) *Snapshot {
	return &Snapshot{
		UpdatedAt: updatedAt,
		Pilots:    make(map[string]*Pilot),
		Airports:  make(map[string]*Airport),
		FIRs:      make(map[string]*FIR),
	}
}
