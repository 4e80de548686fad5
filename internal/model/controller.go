package model

import "time"

// Facility is the controller position type from the live feed
type Facility int

const (
	FacilityReject Facility = iota
	FacilityATIS
	FacilityDelivery
	FacilityGround
	FacilityTower
	FacilityApproach
	FacilityRadar
)

// String returns the lowercase facility name
func (f Facility) String() string {
	switch f {
	case FacilityATIS:
		return "atis"
	case FacilityDelivery:
		return "delivery"
	case FacilityGround:
		return "ground"
	case FacilityTower:
		return "tower"
	case FacilityApproach:
		return "approach"
	case FacilityRadar:
		return "radar"
	default:
		return "reject"
	}
}

// FacilityFromFeed maps the feed's numeric facility code (0 observer,
// 1 FSS, 2 delivery, 3 ground, 4 tower, 5 approach, 6 center). ATIS never
// appears here, it arrives on its own feed list. Observers, FSS and unknown
// codes map to FacilityReject and are dropped during snapshot assembly.
func FacilityFromFeed(v int) Facility {
	if v >= 2 && v <= 6 {
		return Facility(v)
	}
	return FacilityReject
}

// Controller is a connected ATC position
type Controller struct {
	CID         int       `json:"cid"`
	Name        string    `json:"name"`
	Callsign    string    `json:"callsign"`
	FreqKhz     int       `json:"freq_khz"`
	Facility    Facility  `json:"facility"`
	Rating      int       `json:"rating"`
	Server      string    `json:"server"`
	VisualRange int       `json:"visual_range"`
	AtisCode    string    `json:"atis_code,omitempty"`
	TextAtis    string    `json:"text_atis,omitempty"`
	LogonTime   time.Time `json:"logon_time"`
	LastUpdated time.Time `json:"last_updated"`
}

// Equal ignores LastUpdated: the feed bumps it every cycle even when the
// position itself is unchanged, and that must not produce diff churn.
func (c *Controller) Equal(other *Controller) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.CID == other.CID &&
		c.Name == other.Name &&
		c.Callsign == other.Callsign &&
		c.FreqKhz == other.FreqKhz &&
		c.Facility == other.Facility &&
		c.Rating == other.Rating &&
		c.Server == other.Server &&
		c.VisualRange == other.VisualRange &&
		c.AtisCode == other.AtisCode &&
		c.TextAtis == other.TextAtis &&
		c.LogonTime.Equal(other.LogonTime)
}

// ControllerSet groups the airport-level positions of one airport
type ControllerSet struct {
	ATIS     *Controller `json:"atis,omitempty"`
	Delivery *Controller `json:"delivery,omitempty"`
	Ground   *Controller `json:"ground,omitempty"`
	Tower    *Controller `json:"tower,omitempty"`
	Approach *Controller `json:"approach,omitempty"`
}

// Empty reports whether no position is staffed
func (cs *ControllerSet) Empty() bool {
	return cs.ATIS == nil && cs.Delivery == nil && cs.Ground == nil &&
		cs.Tower == nil && cs.Approach == nil
}

// Equal compares every position slot
func (cs *ControllerSet) Equal(other *ControllerSet) bool {
	return cs.ATIS.Equal(other.ATIS) &&
		cs.Delivery.Equal(other.Delivery) &&
		cs.Ground.Equal(other.Ground) &&
		cs.Tower.Equal(other.Tower) &&
		cs.Approach.Equal(other.Approach)
}

// Set stores the controller into its facility slot; reject and radar
// positions don't belong to an airport and are ignored
func (cs *ControllerSet) Set(c *Controller) {
	switch c.Facility {
	case FacilityATIS:
		cs.ATIS = c
	case FacilityDelivery:
		cs.Delivery = c
	case FacilityGround:
		cs.Ground = c
	case FacilityTower:
		cs.Tower = c
	case FacilityApproach:
		cs.Approach = c
	}
}
