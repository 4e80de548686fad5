package model

// Boundaries is the polygon set of a FIR. Boundary geometry is static for
// the lifetime of the process, so equality only needs the boundary id.
type Boundaries struct {
	ID        string    `json:"id"`
	Region    string    `json:"region"`
	Division  string    `json:"division"`
	IsOceanic bool      `json:"is_oceanic"`
	Min       Point     `json:"min"`
	Max       Point     `json:"max"`
	Center    Point     `json:"center"`
	Points    [][]Point `json:"points"`
}

// Equal compares by id only; geometry never changes within a run
func (b *Boundaries) Equal(other *Boundaries) bool {
	return b.ID == other.ID
}

// FIR is a flight information region enriched with live radar controllers,
// keyed by ICAO code
type FIR struct {
	ICAO        string                 `json:"icao"`
	Name        string                 `json:"name"`
	Prefix      string                 `json:"prefix"`
	Boundaries  Boundaries             `json:"boundaries"`
	Controllers map[string]*Controller `json:"controllers,omitempty"`
}

// Ref returns an identity-only copy used in DELETE batches
func (f *FIR) Ref() *FIR {
	return &FIR{ICAO: f.ICAO}
}

// Empty reports whether no radar controller covers the region
func (f *FIR) Empty() bool {
	return len(f.Controllers) == 0
}

// Equal is structural equality over everything a subscriber can see
func (f *FIR) Equal(other *FIR) bool {
	if f.ICAO != other.ICAO || f.Name != other.Name || f.Prefix != other.Prefix {
		return false
	}
	if !f.Boundaries.Equal(&other.Boundaries) {
		return false
	}
	if len(f.Controllers) != len(other.Controllers) {
		return false
	}
	for cs, ctrl := range f.Controllers {
		o, ok := other.Controllers[cs]
		if !ok || !ctrl.Equal(o) {
			return false
		}
	}
	return true
}
