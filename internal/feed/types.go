package feed

import (
	"strconv"
	"time"

	"github.com/yegors/vatmap/internal/model"
)

// Wire types for the VATSIM data feed JSON. Values are normalized into
// the entity model right after decoding; user-entered numeric fields
// arrive as free-form strings and fall back to zero.

type feedGeneral struct {
	Version          int    `json:"version"`
	Reload           int    `json:"reload"`
	UpdateTimestamp  string `json:"update_timestamp"`
	ConnectedClients int    `json:"connected_clients"`
	UniqueUsers      int    `json:"unique_users"`
}

type feedFlightPlan struct {
	FlightRules string `json:"flight_rules"`
	Aircraft    string `json:"aircraft"`
	Departure   string `json:"departure"`
	Arrival     string `json:"arrival"`
	Alternate   string `json:"alternate"`
	CruiseTAS   string `json:"cruise_tas"`
	Altitude    string `json:"altitude"`
	Deptime     string `json:"deptime"`
	EnrouteTime string `json:"enroute_time"`
	FuelTime    string `json:"fuel_time"`
	Remarks     string `json:"remarks"`
	Route       string `json:"route"`
}

type feedPilot struct {
	CID         int             `json:"cid"`
	Name        string          `json:"name"`
	Callsign    string          `json:"callsign"`
	Server      string          `json:"server"`
	PilotRating int             `json:"pilot_rating"`
	Latitude    float64         `json:"latitude"`
	Longitude   float64         `json:"longitude"`
	Altitude    int             `json:"altitude"`
	Groundspeed int             `json:"groundspeed"`
	Transponder string          `json:"transponder"`
	Heading     int             `json:"heading"`
	QNHiHg      float64         `json:"qnh_i_hg"`
	QNHMb       int             `json:"qnh_mb"`
	FlightPlan  *feedFlightPlan `json:"flight_plan"`
	LogonTime   string          `json:"logon_time"`
	LastUpdated string          `json:"last_updated"`
}

type feedController struct {
	CID         int      `json:"cid"`
	Name        string   `json:"name"`
	Callsign    string   `json:"callsign"`
	Frequency   string   `json:"frequency"`
	Facility    int      `json:"facility"`
	Rating      int      `json:"rating"`
	Server      string   `json:"server"`
	VisualRange int      `json:"visual_range"`
	AtisCode    *string  `json:"atis_code"`
	TextAtis    []string `json:"text_atis"`
	LogonTime   string   `json:"logon_time"`
	LastUpdated string   `json:"last_updated"`
}

type feedData struct {
	General     feedGeneral      `json:"general"`
	Pilots      []feedPilot      `json:"pilots"`
	Controllers []feedController `json:"controllers"`
	ATIS        []feedController `json:"atis"`
}

func parseFeedTime(s string) time.Time {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Now().UTC()
	}
	return ts.UTC()
}

func (fp *feedFlightPlan) convert() *model.FlightPlan {
	cruiseTAS, _ := strconv.Atoi(fp.CruiseTAS)
	altitude, _ := strconv.Atoi(fp.Altitude)
	return &model.FlightPlan{
		FlightRules: fp.FlightRules,
		Aircraft:    fp.Aircraft,
		Departure:   fp.Departure,
		Arrival:     fp.Arrival,
		Alternate:   fp.Alternate,
		CruiseTAS:   cruiseTAS,
		Altitude:    altitude,
		Deptime:     fp.Deptime,
		EnrouteTime: fp.EnrouteTime,
		FuelTime:    fp.FuelTime,
		Remarks:     fp.Remarks,
		Route:       fp.Route,
	}
}

func (p *feedPilot) convert() *model.Pilot {
	var plan *model.FlightPlan
	if p.FlightPlan != nil {
		plan = p.FlightPlan.convert()
	}
	return &model.Pilot{
		CID:         p.CID,
		Name:        p.Name,
		Callsign:    p.Callsign,
		Server:      p.Server,
		PilotRating: p.PilotRating,
		Position:    model.Point{Lat: p.Latitude, Lng: p.Longitude}.Clamp(),
		Altitude:    p.Altitude,
		Groundspeed: p.Groundspeed,
		Transponder: p.Transponder,
		Heading:     p.Heading,
		QNHiHg:      int(p.QNHiHg*100 + 0.5),
		QNHMb:       p.QNHMb,
		FlightPlan:  plan,
		LogonTime:   parseFeedTime(p.LogonTime),
		LastUpdated: parseFeedTime(p.LastUpdated),
	}
}

func (c *feedController) convert() *model.Controller {
	freq, _ := strconv.ParseFloat(c.Frequency, 64)
	atisCode := ""
	if c.AtisCode != nil {
		atisCode = *c.AtisCode
	}
	textAtis := ""
	for i, line := range c.TextAtis {
		if i > 0 {
			textAtis += "\n"
		}
		textAtis += line
	}
	return &model.Controller{
		CID:         c.CID,
		Name:        c.Name,
		Callsign:    c.Callsign,
		FreqKhz:     int(freq * 1000),
		Facility:    model.FacilityFromFeed(c.Facility),
		Rating:      c.Rating,
		Server:      c.Server,
		VisualRange: c.VisualRange,
		AtisCode:    atisCode,
		TextAtis:    textAtis,
		LogonTime:   parseFeedTime(c.LogonTime),
		LastUpdated: parseFeedTime(c.LastUpdated),
	}
}
