package feed

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/yegors/vatmap/internal/model"
	"github.com/yegors/vatmap/pkg/logger"
)

// staticAirport is the on-disk airport record. The dataset is derived from
// the OurAirports dumps and preprocessed into a single JSON file.
type staticAirport struct {
	ICAO     string         `json:"icao"`
	IATA     string         `json:"iata"`
	Name     string         `json:"name"`
	Lat      float64        `json:"lat"`
	Lng      float64        `json:"lng"`
	FIRID    string         `json:"fir_id"`
	IsPseudo bool           `json:"is_pseudo"`
	Runways  []model.Runway `json:"runways"`
}

// staticFIR is the on-disk FIR record with its boundary polygons
type staticFIR struct {
	ICAO       string           `json:"icao"`
	Name       string           `json:"name"`
	Prefix     string           `json:"prefix"`
	Boundaries model.Boundaries `json:"boundaries"`
}

// Static is the immutable airport and FIR reference data. Lookups resolve
// controller callsigns to the airport or region they staff; snapshot
// assembly clones the matched template instead of mutating it.
type Static struct {
	airports  map[string]*model.Airport // by ICAO
	iataIndex map[string]string         // IATA -> ICAO
	firs      map[string]*model.FIR     // by ICAO
	firPrefix map[string]string         // staffing prefix -> FIR ICAO
}

// LoadStatic reads both reference datasets from disk
func LoadStatic(airportsPath, boundariesPath string, log *logger.Logger) (*Static, error) {
	st := &Static{
		airports:  make(map[string]*model.Airport),
		iataIndex: make(map[string]string),
		firs:      make(map[string]*model.FIR),
		firPrefix: make(map[string]string),
	}

	raw, err := os.ReadFile(airportsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read airports file: %w", err)
	}
	var airports []staticAirport
	if err := json.Unmarshal(raw, &airports); err != nil {
		return nil, fmt.Errorf("failed to parse airports file: %w", err)
	}
	for _, a := range airports {
		if a.ICAO == "" {
			continue
		}
		runways := make(map[string]model.Runway, len(a.Runways))
		for _, rwy := range a.Runways {
			runways[rwy.Ident] = rwy
		}
		st.airports[a.ICAO] = &model.Airport{
			ICAO:     a.ICAO,
			IATA:     a.IATA,
			Name:     a.Name,
			Position: model.Point{Lat: a.Lat, Lng: a.Lng},
			FIRID:    a.FIRID,
			IsPseudo: a.IsPseudo,
			Runways:  runways,
		}
		if a.IATA != "" {
			st.iataIndex[a.IATA] = a.ICAO
		}
	}

	raw, err = os.ReadFile(boundariesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read boundaries file: %w", err)
	}
	var firs []staticFIR
	if err := json.Unmarshal(raw, &firs); err != nil {
		return nil, fmt.Errorf("failed to parse boundaries file: %w", err)
	}
	for _, f := range firs {
		if f.ICAO == "" {
			continue
		}
		st.firs[f.ICAO] = &model.FIR{
			ICAO:       f.ICAO,
			Name:       f.Name,
			Prefix:     f.Prefix,
			Boundaries: f.Boundaries,
		}
		if f.Prefix != "" {
			st.firPrefix[f.Prefix] = f.ICAO
		}
	}

	log.Info("static data loaded",
		logger.Int("airports", len(st.airports)),
		logger.Int("firs", len(st.firs)))
	return st, nil
}

// Airport returns the static template for an ICAO code
func (st *Static) Airport(icao string) *model.Airport {
	return st.airports[icao]
}

// FIR returns the static template for an ICAO code
func (st *Static) FIR(icao string) *model.FIR {
	return st.firs[icao]
}

// matchAirport resolves an airport-level controller callsign. The staffed
// station is the callsign segment before the first underscore; it may be an
// ICAO or an IATA code.
func (st *Static) matchAirport(callsign string) *model.Airport {
	station, _, _ := strings.Cut(callsign, "_")
	if a, ok := st.airports[station]; ok {
		return a
	}
	if icao, ok := st.iataIndex[station]; ok {
		return st.airports[icao]
	}
	return nil
}

// matchFIR resolves a radar controller callsign against the FIR staffing
// prefixes, falling back to FIR ICAO codes
func (st *Static) matchFIR(callsign string) *model.FIR {
	station, _, _ := strings.Cut(callsign, "_")
	if icao, ok := st.firPrefix[station]; ok {
		return st.firs[icao]
	}
	if f, ok := st.firs[station]; ok {
		return f
	}
	return nil
}
