package model

import "time"

// Pilot is a single connected pilot from the live feed, keyed by callsign
type Pilot struct {
	CID         int         `json:"cid"`
	Name        string      `json:"name"`
	Callsign    string      `json:"callsign"`
	Server      string      `json:"server"`
	PilotRating int         `json:"pilot_rating"`
	Position    Point       `json:"position"`
	Altitude    int         `json:"altitude"`
	Groundspeed int         `json:"groundspeed"`
	Transponder string      `json:"transponder"`
	Heading     int         `json:"heading"`
	QNHiHg      int         `json:"qnh_i_hg"` // inches of mercury x100
	QNHMb       int         `json:"qnh_mb"`
	FlightPlan  *FlightPlan `json:"flight_plan,omitempty"`
	LogonTime   time.Time   `json:"logon_time"`
	LastUpdated time.Time   `json:"last_updated"`
	Track       []TrackPoint `json:"track,omitempty"`
}

// Ref returns an identity-only copy used in DELETE batches
func (p *Pilot) Ref() *Pilot {
	return &Pilot{Callsign: p.Callsign}
}

// FlightPlan is the filed plan attached to a pilot, normalized from the
// free-form feed values
type FlightPlan struct {
	FlightRules string `json:"flight_rules"`
	Aircraft    string `json:"aircraft"`
	Departure   string `json:"departure"`
	Arrival     string `json:"arrival"`
	Alternate   string `json:"alternate"`
	CruiseTAS   int    `json:"cruise_tas"`
	Altitude    int    `json:"altitude"`
	Deptime     string `json:"deptime"`
	EnrouteTime string `json:"enroute_time"`
	FuelTime    string `json:"fuel_time"`
	Remarks     string `json:"remarks"`
	Route       string `json:"route"`
}

// Equal compares two plans field by field; nil plans are equal to nil only
func (fp *FlightPlan) Equal(other *FlightPlan) bool {
	if fp == nil || other == nil {
		return fp == other
	}
	return *fp == *other
}

// TrackPoint is one recorded position sample of a pilot
type TrackPoint struct {
	Timestamp   time.Time `json:"ts"`
	Position    Point     `json:"position"`
	Altitude    int       `json:"altitude"`
	Groundspeed int       `json:"groundspeed"`
	Heading     int       `json:"heading"`
}
