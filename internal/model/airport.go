package model

import "time"

// Runway is a single runway end of an airport
type Runway struct {
	Ident       string  `json:"ident"`
	LengthFt    int     `json:"length_ft"`
	WidthFt     int     `json:"width_ft"`
	Surface     string  `json:"surface"`
	Lighted     bool    `json:"lighted"`
	Closed      bool    `json:"closed"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ElevationFt int     `json:"elevation_ft"`
	Heading     int     `json:"heading"`
}

// WeatherInfo is decoded METAR data attached to a controlled airport
type WeatherInfo struct {
	Temperature   *float64  `json:"temperature,omitempty"`
	DewPoint      *float64  `json:"dew_point,omitempty"`
	WindSpeedKt   *int      `json:"wind_speed_kt,omitempty"`
	WindGustKt    *int      `json:"wind_gust_kt,omitempty"`
	WindDirection *int      `json:"wind_direction,omitempty"`
	Raw           string    `json:"raw"`
	Timestamp     time.Time `json:"ts"`
}

// Equal compares the raw report; two reports with the same text decode
// identically
func (w *WeatherInfo) Equal(other *WeatherInfo) bool {
	if w == nil || other == nil {
		return w == other
	}
	return w.Raw == other.Raw
}

// Airport is a static airport enriched with live controllers and weather,
// keyed by ICAO code
type Airport struct {
	ICAO        string            `json:"icao"`
	IATA        string            `json:"iata"`
	Name        string            `json:"name"`
	Position    Point             `json:"position"`
	FIRID       string            `json:"fir_id"`
	IsPseudo    bool              `json:"is_pseudo"`
	Controllers ControllerSet     `json:"controllers"`
	Runways     map[string]Runway `json:"runways,omitempty"`
	WX          *WeatherInfo      `json:"wx,omitempty"`
}

// Ref returns an identity-only copy used in DELETE batches
func (a *Airport) Ref() *Airport {
	return &Airport{ICAO: a.ICAO}
}

// Equal is full structural equality over everything a subscriber can see
func (a *Airport) Equal(other *Airport) bool {
	if a.ICAO != other.ICAO || a.IATA != other.IATA || a.Name != other.Name ||
		a.Position != other.Position || a.FIRID != other.FIRID || a.IsPseudo != other.IsPseudo {
		return false
	}
	if !a.Controllers.Equal(&other.Controllers) || !a.WX.Equal(other.WX) {
		return false
	}
	if len(a.Runways) != len(other.Runways) {
		return false
	}
	for ident, rwy := range a.Runways {
		o, ok := other.Runways[ident]
		if !ok || o != rwy {
			return false
		}
	}
	return true
}

// StripWeather returns a copy without the weather payload, for sessions
// that have show-weather turned off
func (a *Airport) StripWeather() *Airport {
	if a.WX == nil {
		return a
	}
	clone := *a
	clone.WX = nil
	return &clone
}
