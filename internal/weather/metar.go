package weather

import (
	"encoding/json"
	"time"

	"github.com/yegors/vatmap/internal/model"
)

// windDir tolerates the aviationweather.gov quirk of reporting variable
// winds as the string "VRB" in an otherwise numeric field
type windDir struct {
	deg *int
}

func (w *windDir) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" || b[0] == '"' {
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	w.deg = &v
	return nil
}

// metarReport is one decoded METAR from the aviationweather.gov data API
type metarReport struct {
	ICAOID      string   `json:"icaoId"`
	ReportTime  string   `json:"reportTime"`
	Temperature *float64 `json:"temp"`
	DewPoint    *float64 `json:"dewp"`
	WindDir     windDir  `json:"wdir"`
	WindSpeedKt *int     `json:"wspd"`
	WindGustKt  *int     `json:"wgst"`
	RawOb       string   `json:"rawOb"`
}

func (m *metarReport) convert() *model.WeatherInfo {
	ts, err := time.Parse("2006-01-02 15:04:05", m.ReportTime)
	if err != nil {
		ts = time.Now().UTC()
	}
	return &model.WeatherInfo{
		Temperature:   m.Temperature,
		DewPoint:      m.DewPoint,
		WindSpeedKt:   m.WindSpeedKt,
		WindGustKt:    m.WindGustKt,
		WindDirection: m.WindDir.deg,
		Raw:           m.RawOb,
		Timestamp:     ts.UTC(),
	}
}
